package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend error")

func newTestBreaker(now *time.Time) *CircuitBreaker {
	return New(Config{
		Name:        "webhook",
		MaxFailures: 3,
		Timeout:     10 * time.Second,
		Now:         func() time.Time { return *now },
	})
}

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&now)

	for i := 0; i < 3; i++ {
		err := cb.Call(func() error { return errBackend })
		require.ErrorIs(t, err, errBackend)
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&now)

	for i := 0; i < 3; i++ {
		_ = cb.Call(func() error { return errBackend })
	}

	now = now.Add(11 * time.Second)
	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 0, cb.Metrics().FailureCount)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&now)

	for i := 0; i < 3; i++ {
		_ = cb.Call(func() error { return errBackend })
	}

	now = now.Add(11 * time.Second)
	_ = cb.Call(func() error { return errBackend })
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&now)

	_ = cb.Call(func() error { return errBackend })
	_ = cb.Call(func() error { return errBackend })
	_ = cb.Call(func() error { return nil })
	_ = cb.Call(func() error { return errBackend })

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 1, cb.Metrics().FailureCount)
}

func TestCircuitBreaker_ResetAndStateHook(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var transitions []string
	cb := New(Config{
		Name:        "webhook",
		MaxFailures: 1,
		Now:         func() time.Time { return now },
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		},
	})

	_ = cb.Call(func() error { return errBackend })
	cb.Reset()

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, []string{"webhook:closed->open", "webhook:open->closed"}, transitions)
}
