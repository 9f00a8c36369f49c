package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brogergvhs/noveld/internal/util"

	"github.com/mattn/go-isatty"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// MPBProgressManager renders one bar per volume. Without a terminal it
// degrades to a pass-through writer and silent handles.
type MPBProgressManager struct {
	p   *mpb.Progress
	out io.Writer

	mu     sync.Mutex
	closed bool
}

func NewProgressManager(out *os.File) *MPBProgressManager {
	if !IsTerminal(out) {
		return &MPBProgressManager{out: out}
	}

	p := mpb.New(
		mpb.WithWidth(52),
		mpb.WithOutput(out),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	return &MPBProgressManager{p: p, out: out}
}

// NewSilentProgressManager never draws bars; log lines go straight to out.
func NewSilentProgressManager(out io.Writer) *MPBProgressManager {
	return &MPBProgressManager{out: out}
}

func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Write prints above the running bars so log lines do not tear them.
func (pm *MPBProgressManager) Write(b []byte) (int, error) {
	pm.mu.Lock()
	live := pm.p != nil && !pm.closed
	pm.mu.Unlock()

	if live {
		return pm.p.Write(b)
	}

	return pm.out.Write(b)
}

func (pm *MPBProgressManager) Close() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.closed {
		return
	}
	pm.closed = true

	if pm.p != nil {
		pm.p.Wait()
	}
}

func (pm *MPBProgressManager) Register(prefix string) *ProgressHandle {
	h := &ProgressHandle{
		pm:     pm,
		prefix: prefix,
	}
	if pm.p != nil {
		h.initBar()
	}
	return h
}

type ProgressHandle struct {
	pm     *MPBProgressManager
	prefix string
	bar    *mpb.Bar

	total int64
	bytes int64

	start   time.Time
	elapsed atomic.Int64

	final atomic.Bool
}

func (h *ProgressHandle) initBar() {
	h.start = time.Now()

	h.bar = h.pm.p.New(
		0,
		mpb.BarStyle().Rbound("]"),

		mpb.PrependDecorators(
			decor.Name(h.prefix+"  "),
		),

		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.CountersNoUnit(" | %d/%d episodios", decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				return " | " + util.Human(atomic.LoadInt64(&h.bytes))
			}),

			decor.Any(func(_ decor.Statistics) string {
				if h.final.Load() {
					return fmt.Sprintf(" | %ds", h.elapsed.Load())
				}

				return fmt.Sprintf(" | %ds", int(time.Since(h.start).Seconds()))
			}),
		),
	)
}

func (h *ProgressHandle) SetTotal(total int) {
	if h.final.Load() {
		return
	}

	atomic.StoreInt64(&h.total, int64(total))
	if h.bar != nil {
		h.bar.SetTotal(int64(total), false)
	}
}

// Update reports done episodes and the markup bytes collected so far.
func (h *ProgressHandle) Update(done, total int, bytes int64) {
	if h.final.Load() {
		return
	}

	if total > 0 {
		atomic.StoreInt64(&h.total, int64(total))
		if h.bar != nil {
			h.bar.SetTotal(int64(total), false)
		}
	}

	atomic.StoreInt64(&h.bytes, bytes)
	if h.bar != nil {
		h.bar.SetCurrent(int64(done))
	}
}

func (h *ProgressHandle) MarkDone() {
	if h.final.Swap(true) {
		return
	}

	if h.bar == nil {
		return
	}

	h.elapsed.Store(int64(time.Since(h.start).Seconds()))
	total := atomic.LoadInt64(&h.total)
	h.bar.SetCurrent(total)
	h.bar.SetTotal(total, true)
}

// Abort removes the bar of a volume that failed midway.
func (h *ProgressHandle) Abort() {
	if h.final.Swap(true) {
		return
	}

	if h.bar != nil {
		h.bar.Abort(true)
	}
}
