package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/storage"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLimiter(t *testing.T) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := storage.NewRedis("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewRedis(client), mr
}

func TestRedisCheck_FirstCall(t *testing.T) {
	l, mr := newTestRedisLimiter(t)

	res, err := l.Check(context.Background(), "chat:user-1", ChatPolicy)
	require.NoError(t, err)

	assert.Equal(t, Result{Allowed: true, Remaining: 19, ResetIn: 60}, res)
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:fixed:chat:user-1"))
}

func TestRedisCheck_ChatScenario(t *testing.T) {
	l, mr := newTestRedisLimiter(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		res, err := l.Check(ctx, "chat:user-1", ChatPolicy)
		require.NoError(t, err)
		require.True(t, res.Allowed, "call %d", i+1)
		assert.Equal(t, 19-i, res.Remaining)
	}

	mr.FastForward(12 * time.Second)

	res, err := l.Check(ctx, "chat:user-1", ChatPolicy)
	require.NoError(t, err)
	assert.Equal(t, Result{Allowed: false, Remaining: 0, ResetIn: 48}, res)
}

func TestRedisCheck_CheckoutPolicyIsolation(t *testing.T) {
	l, _ := newTestRedisLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, err := l.Check(ctx, "checkout:user-1", CheckoutPolicy)
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}

	res, err := l.Check(ctx, "checkout:user-1", CheckoutPolicy)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	res, err = l.Check(ctx, "checkout:user-2", CheckoutPolicy)
	require.NoError(t, err)
	assert.Equal(t, Result{Allowed: true, Remaining: 4, ResetIn: 60}, res)
}

func TestRedisCheck_DeniedCallsStillCount(t *testing.T) {
	l, mr := newTestRedisLimiter(t)
	policy := Policy{MaxRequests: 2, Window: time.Minute}

	for i := 0; i < 5; i++ {
		_, err := l.Check(context.Background(), "k", policy)
		require.NoError(t, err)
	}

	count, err := mr.Get("ratelimit:fixed:k")
	require.NoError(t, err)
	assert.Equal(t, "5", count)
}

func TestRedisCheck_NewWindowAfterExpiry(t *testing.T) {
	l, mr := newTestRedisLimiter(t)
	ctx := context.Background()
	policy := Policy{MaxRequests: 1, Window: time.Second}

	res, err := l.Check(ctx, "k", policy)
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = l.Check(ctx, "k", policy)
	require.NoError(t, err)
	require.False(t, res.Allowed)

	mr.FastForward(2 * time.Second)

	res, err = l.Check(ctx, "k", policy)
	require.NoError(t, err)
	assert.Equal(t, Result{Allowed: true, Remaining: 0, ResetIn: 1}, res)
}

func TestRedisCheck_ResetInRoundsUp(t *testing.T) {
	l, _ := newTestRedisLimiter(t)

	res, err := l.Check(context.Background(), "k", Policy{MaxRequests: 3, Window: 1500 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 2, res.ResetIn)
}

func TestRedisCheck_CounterWithoutTTLGetsWindow(t *testing.T) {
	l, mr := newTestRedisLimiter(t)
	require.NoError(t, mr.Set("ratelimit:fixed:chat:user-1", "3"))

	res, err := l.Check(context.Background(), "chat:user-1", ChatPolicy)
	require.NoError(t, err)

	assert.Equal(t, Result{Allowed: true, Remaining: 16, ResetIn: 60}, res)
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:fixed:chat:user-1"))
}

func TestRedisCheck_UnexpectedReply(t *testing.T) {
	l, _ := newTestRedisLimiter(t)
	l.script = redis.NewScript(`return {1}`)

	_, err := l.Check(context.Background(), "k", ChatPolicy)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected reply length 1")
}

func TestRedisCheck_BackendDown(t *testing.T) {
	l, mr := newTestRedisLimiter(t)
	mr.Close()

	_, err := l.Check(context.Background(), "k", ChatPolicy)
	assert.Error(t, err)
}

func TestNewLimiter_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := storage.NewRedis("redis://" + mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	lim, mem, err := NewLimiter(BackendRedis, client)
	require.NoError(t, err)
	assert.Nil(t, mem)
	assert.IsType(t, &RedisLimiter{}, lim)
}
