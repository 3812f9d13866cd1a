package ratelimit

import (
	"fmt"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/storage"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// NewLimiter picks the counter backend. The memory limiter is returned alongside so the
// caller can own its sweep task; it is nil for the redis backend.
func NewLimiter(backend string, redis *storage.RedisClient, opts ...MemoryOption) (Limiter, *MemoryLimiter, error) {
	switch backend {
	case BackendRedis:
		if redis == nil {
			return nil, nil, fmt.Errorf("rate limit backend %q requires REDIS_URL", backend)
		}
		return NewRedis(redis), nil, nil
	case BackendMemory, "":
		mem := NewMemory(opts...)
		return mem, mem, nil
	default:
		return nil, nil, fmt.Errorf("unknown rate limit backend: %s", backend)
	}
}
