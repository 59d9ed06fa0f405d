package guard

import (
	"sync"
	"time"
)

// Default admission limits per user.
const (
	DefaultPerMinute = 10
	DefaultPerHour   = 50
)

// window is the admission history of one user.
type window struct {
	mu    sync.Mutex
	times []time.Time
	dead  bool // removed from the limiter map by Sweep
}

// prune drops admissions at or before now-1h.
func (w *window) prune(now time.Time) {
	cutoff := now.Add(-time.Hour)
	i := 0
	for i < len(w.times) && !w.times[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.times = append(w.times[:0], w.times[i:]...)
	}
}

// countSince returns the number of admissions strictly after t.
func (w *window) countSince(t time.Time) int {
	n := 0
	for j := len(w.times) - 1; j >= 0 && w.times[j].After(t); j-- {
		n++
	}
	return n
}

// RateLimiter enforces per-user sliding window admission limits.
// Each user has its own lock; the shared map lock is held only for lookup.
type RateLimiter struct {
	perMinute int
	perHour   int

	mu      sync.Mutex
	windows map[string]*window
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter) error

// WithLimits sets the per-minute and per-hour limits.
func WithLimits(perMinute, perHour int) RateLimiterOption {
	return func(l *RateLimiter) error {
		if perMinute <= 0 || perHour <= 0 {
			return ErrInvalidLimit
		}
		l.perMinute = perMinute
		l.perHour = perHour
		return nil
	}
}

// NewRateLimiter creates a limiter with the default 10/minute and 50/hour limits.
func NewRateLimiter(opts ...RateLimiterOption) (*RateLimiter, error) {
	l := &RateLimiter{
		perMinute: DefaultPerMinute,
		perHour:   DefaultPerHour,
		windows:   make(map[string]*window),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// PerMinute returns the configured per-minute limit.
func (l *RateLimiter) PerMinute() int { return l.perMinute }

// PerHour returns the configured per-hour limit.
func (l *RateLimiter) PerHour() int { return l.perHour }

func (l *RateLimiter) window(userID string) *window {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[userID]
	if !ok {
		w = &window{}
		l.windows[userID] = w
	}
	return w
}

// Admit records an admission for userID at now, or returns
// ErrPerMinuteExceeded / ErrPerHourExceeded. Denied calls are not recorded.
// Timestamps are expected to be non-decreasing per user.
func (l *RateLimiter) Admit(userID string, now time.Time) error {
	for {
		w := l.window(userID)
		w.mu.Lock()
		if w.dead {
			// Swept between lookup and lock; retry with a fresh window.
			w.mu.Unlock()
			continue
		}
		err := l.admitLocked(w, now)
		w.mu.Unlock()
		return err
	}
}

func (l *RateLimiter) admitLocked(w *window, now time.Time) error {
	w.prune(now)
	if w.countSince(now.Add(-time.Minute)) >= l.perMinute {
		return ErrPerMinuteExceeded
	}
	if len(w.times) >= l.perHour {
		return ErrPerHourExceeded
	}
	w.times = append(w.times, now)
	return nil
}

// Counts returns the admissions recorded for userID in the trailing minute
// and hour relative to now, without recording anything.
func (l *RateLimiter) Counts(userID string, now time.Time) (minute, hour int) {
	l.mu.Lock()
	w, ok := l.windows[userID]
	l.mu.Unlock()
	if !ok {
		return 0, 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	hourAgo := now.Add(-time.Hour)
	return w.countSince(now.Add(-time.Minute)), w.countSince(hourAgo)
}

// Sweep drops users whose admissions have all expired and returns how many
// windows were removed.
func (l *RateLimiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for id, w := range l.windows {
		w.mu.Lock()
		w.prune(now)
		if len(w.times) == 0 {
			w.dead = true
			delete(l.windows, id)
			removed++
		}
		w.mu.Unlock()
	}
	return removed
}

// Len returns the number of tracked users.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
