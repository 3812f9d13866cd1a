package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether the operation identified by key may proceed under policy.
type Limiter interface {
	Check(ctx context.Context, key string, policy Policy) (Result, error)
}

// Policy is the per-route ceiling: at most MaxRequests checks per Window.
type Policy struct {
	MaxRequests int
	Window      time.Duration
}

var (
	// Conversational chat
	ChatPolicy = Policy{MaxRequests: 20, Window: time.Minute}

	// Checkout attempts
	CheckoutPolicy = Policy{MaxRequests: 5, Window: time.Minute}
)

// Result of a single check. ResetIn is in whole seconds, rounded up.
type Result struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
	ResetIn   int  `json:"reset_in"`
}

// Rounds a duration up to whole seconds at millisecond precision
func ceilSeconds(d time.Duration) int {
	ms := d.Milliseconds()
	if ms <= 0 {
		return 0
	}
	return int((ms + 999) / 1000)
}
