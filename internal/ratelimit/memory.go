package ratelimit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultSweepInterval = 5 * time.Minute

type entry struct {
	count     int
	resetTime time.Time
}

// MemoryLimiter is a process-local fixed-window counter keyed by identifier.
// Counts are not shared between instances of the service.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	clock   Clock
	logger  *zap.Logger

	sweepEvery time.Duration
	stopChan   chan struct{}
	done       chan struct{}
	running    bool
}

type MemoryOption func(*MemoryLimiter)

func WithClock(c Clock) MemoryOption {
	return func(l *MemoryLimiter) { l.clock = c }
}

func WithSweepInterval(d time.Duration) MemoryOption {
	return func(l *MemoryLimiter) {
		if d > 0 {
			l.sweepEvery = d
		}
	}
}

func WithLogger(logger *zap.Logger) MemoryOption {
	return func(l *MemoryLimiter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func NewMemory(opts ...MemoryOption) *MemoryLimiter {
	l := &MemoryLimiter{
		entries:    make(map[string]*entry),
		clock:      SystemClock,
		logger:     zap.NewNop(),
		sweepEvery: DefaultSweepInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check implements Limiter. It never fails.
func (l *MemoryLimiter) Check(_ context.Context, key string, policy Policy) (Result, error) {
	return l.Allow(key, policy), nil
}

// Allow counts one operation for key and reports whether it fits in the current window.
// A denied call still increments the counter.
func (l *MemoryLimiter) Allow(key string, policy Policy) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()

	e, exists := l.entries[key]
	if !exists || now.After(e.resetTime) {
		l.entries[key] = &entry{
			count:     1,
			resetTime: now.Add(policy.Window),
		}
		return Result{
			Allowed:   true,
			Remaining: policy.MaxRequests - 1,
			ResetIn:   ceilSeconds(policy.Window),
		}
	}

	e.count++
	resetIn := ceilSeconds(e.resetTime.Sub(now))

	if e.count > policy.MaxRequests {
		return Result{Allowed: false, Remaining: 0, ResetIn: resetIn}
	}

	return Result{
		Allowed:   true,
		Remaining: policy.MaxRequests - e.count,
		ResetIn:   resetIn,
	}
}

// Sweep drops every entry whose window has already ended and returns how many were removed.
func (l *MemoryLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	removed := 0
	for key, e := range l.entries {
		if now.After(e.resetTime) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Number of identifiers currently tracked
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Start launches the periodic sweep. It runs until Stop is called or ctx is done,
// after which Start may launch it again.
func (l *MemoryLimiter) Start(ctx context.Context) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.stopChan = make(chan struct{})
	l.done = make(chan struct{})
	stop, done := l.stopChan, l.done
	l.mu.Unlock()

	l.logger.Info("rate limiter sweep started", zap.Duration("interval", l.sweepEvery))

	go func() {
		defer close(done)

		ticker := time.NewTicker(l.sweepEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := l.Sweep(); n > 0 {
					l.logger.Debug("rate limiter swept expired entries", zap.Int("removed", n))
				}
			case <-stop:
				return
			case <-ctx.Done():
				l.mu.Lock()
				if l.done == done {
					l.running = false
				}
				l.mu.Unlock()
				l.logger.Info("rate limiter sweep stopped", zap.Error(ctx.Err()))
				return
			}
		}
	}()
}

// Stop ends the sweep task and waits for it to exit. Safe to call more than once.
func (l *MemoryLimiter) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	close(l.stopChan)
	done := l.done
	l.mu.Unlock()

	<-done
	l.logger.Info("rate limiter sweep stopped")
}
