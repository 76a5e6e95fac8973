package ioutil

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/schollz/progressbar/v3"
)

// Progressor is notified of curr out of total units of work being done.
type Progressor func(curr, total int64)

// BarProgressor renders a progress bar to w, created on the first update.
func BarProgressor(w io.Writer, description string) Progressor {
	var bar *progressbar.ProgressBar
	var once sync.Once
	var mu sync.Mutex
	return func(curr, total int64) {
		once.Do(func() {
			bar = progressbar.NewOptions64(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription(description),
				progressbar.OptionShowCount(),
				progressbar.OptionSetItsString("blocks"),
				progressbar.OptionShowIts(),
				progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(w, "\n") }),
			)
		})
		mu.Lock()
		defer mu.Unlock()
		_ = bar.Set64(curr)
	}
}

func NoopProgressor() Progressor {
	return func(curr, total int64) {}
}

type LogProgressor struct {
	L        log.Logger
	Msg      string
	Interval time.Duration

	lastLog time.Time
	mu      sync.Mutex
}

func NewLogProgressor(l log.Logger, msg string) *LogProgressor {
	return &LogProgressor{
		L:   l,
		Msg: msg,
	}
}

func (l *LogProgressor) Progressor(curr, total int64) {
	if curr != total && !l.calcInterval() {
		return
	}

	msg := l.Msg
	if msg == "" {
		msg = "progress"
	}
	l.L.Info(msg, "current", curr, "total", total)
}

func (l *LogProgressor) calcInterval() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	interval := l.Interval
	if interval == 0 {
		interval = time.Second
	}
	if time.Since(l.lastLog) < interval {
		return false
	}
	l.lastLog = time.Now()
	return true
}

// Counter reports completed units of work to a Progressor.
// It is safe for concurrent use. The Progressor sees strictly increasing values.
type Counter struct {
	Total      int64
	Progressor Progressor

	mu   sync.Mutex
	curr atomic.Int64
}

// Inc marks one more unit of work as done.
func (c *Counter) Inc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	curr := c.curr.Add(1)
	if c.Progressor != nil {
		c.Progressor(curr, c.Total)
	}
}

func (c *Counter) Current() int64 {
	return c.curr.Load()
}
