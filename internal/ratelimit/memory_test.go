package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestAllow_FirstCall(t *testing.T) {
	l := NewMemory(WithClock(newFakeClock()))

	res := l.Allow("chat:u1", ChatPolicy)

	assert.True(t, res.Allowed)
	assert.Equal(t, 19, res.Remaining)
	assert.Equal(t, 60, res.ResetIn)
	assert.Equal(t, 1, l.Len())
}

func TestAllow_ChatPolicyScenario(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock))

	for i := 0; i < 20; i++ {
		res := l.Allow("chat:u1", ChatPolicy)
		require.True(t, res.Allowed, "call %d", i+1)
		assert.Equal(t, 19-i, res.Remaining, "call %d", i+1)
		clock.Advance(10 * time.Millisecond)
	}

	clock.Advance(12 * time.Second)
	res := l.Allow("chat:u1", ChatPolicy)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	// 60s window minus 12.2s elapsed, rounded up
	assert.Equal(t, 48, res.ResetIn)
}

func TestAllow_CheckoutPolicyIsolation(t *testing.T) {
	l := NewMemory(WithClock(newFakeClock()))

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("checkout:u1", CheckoutPolicy).Allowed)
	}
	denied := l.Allow("checkout:u1", CheckoutPolicy)
	assert.False(t, denied.Allowed)
	assert.Equal(t, 0, denied.Remaining)

	other := l.Allow("checkout:u2", CheckoutPolicy)
	assert.True(t, other.Allowed)
	assert.Equal(t, 4, other.Remaining)
}

func TestAllow_DeniedCallsStillCount(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock))
	policy := Policy{MaxRequests: 2, Window: time.Minute}

	l.Allow("k", policy)
	l.Allow("k", policy)
	for i := 0; i < 3; i++ {
		assert.False(t, l.Allow("k", policy).Allowed)
	}

	l.mu.Lock()
	count := l.entries["k"].count
	l.mu.Unlock()
	assert.Equal(t, 5, count)
}

func TestAllow_ResetInNonIncreasingWithinWindow(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock))

	prev := l.Allow("chat:u1", ChatPolicy).ResetIn
	for i := 0; i < 30; i++ {
		clock.Advance(1700 * time.Millisecond)
		res := l.Allow("chat:u1", ChatPolicy)
		assert.LessOrEqual(t, res.ResetIn, prev)
		prev = res.ResetIn
	}
}

func TestAllow_NewWindowAfterExpiry(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock))

	for i := 0; i < 10; i++ {
		l.Allow("checkout:u1", CheckoutPolicy)
	}
	require.False(t, l.Allow("checkout:u1", CheckoutPolicy).Allowed)

	// Exactly at resetTime the window is still active
	clock.Advance(time.Minute)
	assert.False(t, l.Allow("checkout:u1", CheckoutPolicy).Allowed)

	clock.Advance(time.Millisecond)
	res := l.Allow("checkout:u1", CheckoutPolicy)
	assert.True(t, res.Allowed)
	assert.Equal(t, 4, res.Remaining)
	assert.Equal(t, 60, res.ResetIn)
}

func TestAllow_ResetInRoundsUp(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock))
	policy := Policy{MaxRequests: 10, Window: 1500 * time.Millisecond}

	assert.Equal(t, 2, l.Allow("k", policy).ResetIn)

	clock.Advance(600 * time.Millisecond)
	assert.Equal(t, 1, l.Allow("k", policy).ResetIn)
}

func TestSweep_RemovesOnlyExpired(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock))

	l.Allow("short", Policy{MaxRequests: 1, Window: time.Second})
	l.Allow("long", Policy{MaxRequests: 1, Window: time.Hour})
	l.Allow("long", Policy{MaxRequests: 1, Window: time.Hour})

	clock.Advance(2 * time.Second)
	removed := l.Sweep()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, l.Len())

	l.mu.Lock()
	long, ok := l.entries["long"]
	l.mu.Unlock()
	require.True(t, ok)
	assert.Equal(t, 2, long.count)
}

func TestCheck_NeverErrors(t *testing.T) {
	l := NewMemory(WithClock(newFakeClock()))
	policy := Policy{MaxRequests: 1, Window: time.Minute}

	for i := 0; i < 3; i++ {
		_, err := l.Check(context.Background(), "k", policy)
		require.NoError(t, err)
	}
}

func TestAllow_ConcurrentCallersAdmitExactlyMax(t *testing.T) {
	l := NewMemory(WithClock(newFakeClock()))
	policy := Policy{MaxRequests: 50, Window: time.Minute}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("chat:shared", policy).Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestStartStop(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock), WithSweepInterval(5*time.Millisecond))

	for i := 0; i < 5; i++ {
		l.Allow(fmt.Sprintf("k%d", i), Policy{MaxRequests: 1, Window: time.Second})
	}
	clock.Advance(2 * time.Second)

	l.Start(context.Background())
	l.Start(context.Background())

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 5*time.Millisecond)

	l.Stop()
	l.Stop()
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	l := NewMemory(WithSweepInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	l.Start(ctx)
	cancel()

	select {
	case <-l.done:
	case <-time.After(time.Second):
		t.Fatal("sweep goroutine did not exit after cancel")
	}
	l.Stop()
}

func TestStart_RestartsAfterContextCancel(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock), WithSweepInterval(5*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	l.Start(ctx)
	first := l.done
	cancel()

	select {
	case <-first:
	case <-time.After(time.Second):
		t.Fatal("sweep goroutine did not exit after cancel")
	}

	l.Allow("chat:user-1", ChatPolicy)
	clock.Advance(2 * time.Minute)
	require.Equal(t, 1, l.Len())

	l.Start(context.Background())
	defer l.Stop()

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestNewLimiter(t *testing.T) {
	lim, mem, err := NewLimiter(BackendMemory, nil)
	require.NoError(t, err)
	assert.NotNil(t, mem)
	assert.Equal(t, Limiter(mem), lim)

	_, _, err = NewLimiter(BackendRedis, nil)
	assert.Error(t, err)

	_, _, err = NewLimiter("leaky_bucket", nil)
	assert.Error(t, err)
}
