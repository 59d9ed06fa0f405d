package ingest

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Progress reports how many passages have been loaded.
// A nil writer silences it.
type Progress struct {
	mu        sync.Mutex
	writer    io.Writer
	unit      string
	total     int
	current   int
	interval  int
	reported  int
	startTime time.Time
	started   bool
}

// NewProgress creates a progress reporter that prints every interval items.
func NewProgress(writer io.Writer, unit string, total, interval int) *Progress {
	if interval < 1 {
		interval = 1
	}
	return &Progress{writer: writer, unit: unit, total: total, interval: interval}
}

// Start resets the counters and the clock.
func (p *Progress) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startTime = time.Now()
	p.started = true
	p.current = 0
	p.reported = 0
}

// Add records delta more items, capped at the total.
func (p *Progress) Add(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	p.current = min(p.current+delta, p.total)
	if p.current-p.reported >= p.interval {
		p.print()
		p.reported = p.current
	}
}

// Finish prints the final line.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	p.print()
	if p.writer != nil {
		fmt.Fprintln(p.writer)
	}
}

// Current returns the number of items recorded so far.
func (p *Progress) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Elapsed returns the time since Start.
func (p *Progress) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

// print writes the progress line. Must be called with lock held.
func (p *Progress) print() {
	if p.writer == nil {
		return
	}
	rate := float64(p.current) / time.Since(p.startTime).Seconds()
	pct := 0.0
	if p.total > 0 {
		pct = float64(p.current) / float64(p.total) * 100
	}
	fmt.Fprintf(p.writer, "\rLoaded: %d/%d (%.1f%%) - %.1f %s/s", p.current, p.total, pct, rate, p.unit)
}
