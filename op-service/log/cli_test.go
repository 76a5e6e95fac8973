package log

import (
	"bytes"
	"encoding/json"
	"flag"
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
)

func TestLevelFromString(t *testing.T) {
	for input, expected := range map[string]slog.Level{
		"trace": log.LevelTrace,
		"TRCE":  log.LevelTrace,
		"debug": log.LevelDebug,
		"info":  log.LevelInfo,
		"Warn":  log.LevelWarn,
		"eror":  log.LevelError,
		"crit":  log.LevelCrit,
	} {
		lvl, err := LevelFromString(input)
		require.NoError(t, err, input)
		require.Equal(t, expected, lvl, input)
	}
	_, err := LevelFromString("loud")
	require.ErrorContains(t, err, "unknown level")
}

func TestFormatFlagValue(t *testing.T) {
	fv := NewFormatFlagValue(FormatText)
	require.NoError(t, fv.Set("JSON"))
	require.Equal(t, FormatJSON, fv.FormatType())
	require.ErrorContains(t, fv.Set("yaml"), "unrecognized log-format")

	clone := fv.Clone().(*FormatFlagValue)
	require.NoError(t, clone.Set("logfmt"))
	require.Equal(t, FormatJSON, fv.FormatType())
}

func TestReadCLIConfig(t *testing.T) {
	cfg := readConfig(t, "--log.level=debug", "--log.format=json-ms", "--log.color=false")
	require.Equal(t, CLIConfig{Level: log.LevelDebug, Format: FormatJSONMs, Color: false}, cfg)

	cfg = readConfig(t)
	require.Equal(t, log.LevelInfo, cfg.Level)
	require.Equal(t, FormatText, cfg.Format)
}

func readConfig(t *testing.T, args ...string) CLIConfig {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range CLIFlags("TEST") {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse(args))
	return ReadCLIConfig(cli.NewContext(cli.NewApp(), set, nil))
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, CLIConfig{Level: log.LevelInfo, Format: FormatJSONMs})
	logger.Debug("hidden")
	logger.Info("measured", "gas", big.NewInt(1234), "batch", hexutil.Bytes(bytes.Repeat([]byte{0xab}, 100)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "measured", entry["msg"])
	require.Equal(t, "info", entry["lvl"])
	require.Equal(t, "1234", entry["gas"])
	require.Contains(t, entry["batch"], "(100 bytes)")
}

func TestFormatHandlerPanicsOnUnknown(t *testing.T) {
	require.Panics(t, func() { FormatHandler("yaml", false, log.LevelInfo) })
}
