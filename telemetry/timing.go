package telemetry

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// TimingCollector records phases in start order.
type TimingCollector struct {
	mu    sync.Mutex
	spans []*span
}

type span struct {
	name  string
	start time.Time
	end   time.Time
}

// NewTimingCollector creates an empty collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{}
}

// Start begins timing a phase.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &span{name: name, start: time.Now()}
	c.spans = append(c.spans, s)
	return &timingTimer{collector: c, span: s}
}

// Report writes one line per phase plus a total. Phases still running at
// report time are marked.
func (c *TimingCollector) Report(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.spans) == 0 {
		return
	}

	var total time.Duration
	for _, s := range c.spans {
		if s.end.IsZero() {
			_, _ = fmt.Fprintf(w, "%s: running\n", s.name)
			continue
		}
		duration := s.end.Sub(s.start)
		total += duration
		_, _ = fmt.Fprintf(w, "%s: %s\n", s.name, formatDuration(duration))
	}
	_, _ = fmt.Fprintf(w, "total: %s\n", formatDuration(total))
}

type timingTimer struct {
	collector *TimingCollector
	span      *span
}

func (t *timingTimer) End() {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	if t.span.end.IsZero() {
		t.span.end = time.Now()
	}
}

// formatDuration shows milliseconds under a second, seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
