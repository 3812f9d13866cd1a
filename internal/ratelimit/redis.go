package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/storage"
	"github.com/redis/go-redis/v9"
)

// Increments the window counter and returns it with the remaining window in
// milliseconds. A counter without a TTL (first hit, or one written elsewhere)
// gets a fresh window.
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisLimiter applies the same fixed-window rules as MemoryLimiter with the counters
// held in Redis, so every instance sharing the Redis sees the same counts.
type RedisLimiter struct {
	redis  *storage.RedisClient
	script *redis.Script
}

func NewRedis(client *storage.RedisClient) *RedisLimiter {
	return &RedisLimiter{redis: client, script: fixedWindowScript}
}

func (r *RedisLimiter) Check(ctx context.Context, key string, policy Policy) (Result, error) {
	redisKey := fmt.Sprintf("ratelimit:fixed:%s", key)

	vals, err := r.redis.Run(ctx, r.script, []string{redisKey}, policy.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(vals) != 2 {
		return Result{}, fmt.Errorf("rate limit script: unexpected reply length %d", len(vals))
	}

	count := int(vals[0])
	ttl := time.Duration(vals[1]) * time.Millisecond
	if ttl < 0 {
		ttl = policy.Window
	}

	if count > policy.MaxRequests {
		return Result{Allowed: false, Remaining: 0, ResetIn: ceilSeconds(ttl)}, nil
	}

	return Result{
		Allowed:   true,
		Remaining: policy.MaxRequests - count,
		ResetIn:   ceilSeconds(ttl),
	}, nil
}
