// Package testlog provides a log handler for unit tests.
package testlog

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

var useColorInTestLog = os.Getenv("OP_TESTLOG_DISABLE_COLOR") != "true"

// Testing interface to log to.
// Standard Go testing.TB implements this.
type Testing interface {
	Logf(format string, args ...any)
	Helper()
	Name() string
	Cleanup(func())
}

// testWriter forwards every formatted record to the unit test log of t.
// Writes after the test has finished are dropped, since t.Logf panics then.
type testWriter struct {
	t    Testing
	mu   sync.Mutex
	done bool
}

func newTestWriter(t Testing) *testWriter {
	w := &testWriter{t: t}
	t.Cleanup(func() {
		w.mu.Lock()
		w.done = true
		w.mu.Unlock()
	})
	return w
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.done {
		w.t.Logf("%s", strings.TrimSuffix(string(p), "\n"))
	}
	return len(p), nil
}

// Logger returns a logger which logs to the unit test log of t.
func Logger(t Testing, level slog.Level) log.Logger {
	return log.NewLogger(handler(t, level))
}

func handler(t Testing, level slog.Level) slog.Handler {
	return log.NewTerminalHandlerWithLevel(newTestWriter(t), level, useColorInTestLog)
}
