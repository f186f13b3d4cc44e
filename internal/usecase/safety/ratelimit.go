package safety

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RateLimitVerdict is the outcome of a rate limit check.
type RateLimitVerdict struct {
	Allowed        bool
	Remaining      int
	ResetInSeconds int
}

// WindowStore persists request timestamps per identifier. The in-memory
// implementation below is per-process; the interface allows swapping in a
// shared backend later without touching the limiter logic.
type WindowStore interface {
	// Window returns the retained timestamps and replaces them atomically
	// with the result of prune.
	Window(identifier string, prune func(ts []time.Time) []time.Time) []time.Time
	// ActiveCount returns the number of identifiers with retained entries.
	ActiveCount() int
}

// RateLimiter enforces a sliding one-minute window per identifier.
type RateLimiter struct {
	store     WindowStore
	limit     int
	window    time.Duration
	now       func() time.Time
	decisions *prometheus.CounterVec
	active    prometheus.Gauge
}

// RateLimiterOption configures optional limiter collaborators.
type RateLimiterOption func(*RateLimiter)

// WithClock overrides the limiter's time source. Tests use this.
func WithClock(now func() time.Time) RateLimiterOption {
	return func(rl *RateLimiter) { rl.now = now }
}

// WithMetrics attaches decision and occupancy metrics.
func WithMetrics(decisions *prometheus.CounterVec, active prometheus.Gauge) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.decisions = decisions
		rl.active = active
	}
}

// NewRateLimiter creates a limiter allowing `limit` requests per sliding
// minute per identifier.
func NewRateLimiter(store WindowStore, limit int, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		store:  store,
		limit:  limit,
		window: time.Minute,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Check records the request when allowed and returns the verdict. A denied
// request is not recorded, so a client hammering the endpoint does not push
// its own reset further out.
func (rl *RateLimiter) Check(identifier string) RateLimitVerdict {
	now := rl.now()
	cutoff := now.Add(-rl.window)

	var verdict RateLimitVerdict
	rl.store.Window(identifier, func(ts []time.Time) []time.Time {
		kept := ts[:0]
		for _, t := range ts {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}

		if len(kept) >= rl.limit {
			verdict = RateLimitVerdict{
				Allowed:        false,
				Remaining:      0,
				ResetInSeconds: resetSeconds(kept[0], rl.window, now),
			}
			return kept
		}

		kept = append(kept, now)
		verdict = RateLimitVerdict{
			Allowed:        true,
			Remaining:      rl.limit - len(kept),
			ResetInSeconds: resetSeconds(kept[0], rl.window, now),
		}
		return kept
	})

	if rl.decisions != nil {
		if verdict.Allowed {
			rl.decisions.WithLabelValues("allowed").Inc()
		} else {
			rl.decisions.WithLabelValues("denied").Inc()
		}
	}
	if rl.active != nil {
		rl.active.Set(float64(rl.store.ActiveCount()))
	}
	return verdict
}

// resetSeconds is the time until the oldest retained entry leaves the
// window, rounded up.
func resetSeconds(oldest time.Time, window time.Duration, now time.Time) int {
	d := oldest.Add(window).Sub(now)
	if d <= 0 {
		return 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return secs
}

// MemoryWindowStore is the default per-process WindowStore.
type MemoryWindowStore struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewMemoryWindowStore creates an empty in-memory store.
func NewMemoryWindowStore() *MemoryWindowStore {
	return &MemoryWindowStore{windows: make(map[string][]time.Time)}
}

// Window implements WindowStore.
func (s *MemoryWindowStore) Window(identifier string, prune func(ts []time.Time) []time.Time) []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := prune(s.windows[identifier])
	if len(kept) == 0 {
		delete(s.windows, identifier)
	} else {
		s.windows[identifier] = kept
	}
	return kept
}

// ActiveCount implements WindowStore.
func (s *MemoryWindowStore) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}
