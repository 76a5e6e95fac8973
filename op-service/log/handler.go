package log

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/big"
	"reflect"
	"time"

	"github.com/holiman/uint256"

	"github.com/ethereum/go-ethereum/common/hexutil"
	elog "github.com/ethereum/go-ethereum/log"
)

const (
	timeFormatMs                 = "2006-01-02T15:04:05.000-0700"
	levelMaxVerbosity slog.Level = math.MinInt

	// maxLoggedBytes bounds how much of a byte string attribute is printed.
	// Batches and channels are routinely hundreds of kilobytes.
	maxLoggedBytes = 32
)

type leveler struct{ minLevel slog.Level }

func (l *leveler) Level() slog.Level {
	return l.minLevel
}

func JSONMsHandler(wr io.Writer) slog.Handler {
	return JSONMsHandlerWithLevel(wr, levelMaxVerbosity)
}

func JSONMsHandlerWithLevel(wr io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr { return replaceAttr(attr, false) },
		Level:       &leveler{level},
	})
}

func LogfmtMsHandler(wr io.Writer) slog.Handler {
	return LogfmtMsHandlerWithLevel(wr, levelMaxVerbosity)
}

func LogfmtMsHandlerWithLevel(wr io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr { return replaceAttr(attr, true) },
		Level:       &leveler{level},
	})
}

// replaceAttr renames time and level keys the way geth does, prints times with
// millisecond precision, and flattens big numbers, stringers and byte strings.
func replaceAttr(attr slog.Attr, logfmt bool) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		if attr.Value.Kind() == slog.KindTime {
			if logfmt {
				return slog.String("t", attr.Value.Time().Format(timeFormatMs))
			}
			return slog.Attr{Key: "t", Value: attr.Value}
		}
	case slog.LevelKey:
		if l, ok := attr.Value.Any().(slog.Level); ok {
			return slog.Any("lvl", elog.LevelString(l))
		}
	}

	switch v := attr.Value.Any().(type) {
	case time.Time:
		if logfmt {
			attr = slog.String(attr.Key, v.Format(timeFormatMs))
		}
	case *big.Int:
		attr.Value = slog.StringValue(nilOr(v == nil, func() string { return v.String() }))
	case *uint256.Int:
		attr.Value = slog.StringValue(nilOr(v == nil, func() string { return v.Dec() }))
	case hexutil.Bytes:
		attr.Value = slog.StringValue(shortBytes(v))
	case []byte:
		attr.Value = slog.StringValue(shortBytes(v))
	case fmt.Stringer:
		isNil := v == nil || (reflect.ValueOf(v).Kind() == reflect.Pointer && reflect.ValueOf(v).IsNil())
		attr.Value = slog.StringValue(nilOr(isNil, func() string { return v.String() }))
	}
	return attr
}

func nilOr(isNil bool, str func() string) string {
	if isNil {
		return "<nil>"
	}
	return str()
}

func shortBytes(b []byte) string {
	if len(b) <= maxLoggedBytes {
		return hexutil.Encode(b)
	}
	return fmt.Sprintf("%s..(%d bytes)", hexutil.Encode(b[:maxLoggedBytes]), len(b))
}
