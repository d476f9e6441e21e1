package guardrail

import (
	"context"
	"testing"
	"time"

	"hotelbot/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func setupRedisLimiter(t *testing.T) (*miniredis.Miniredis, *RedisRateLimiter) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisRateLimiter(client, 20, time.Minute)
}

func TestRedisRateLimiter_TwentyFirstIsRejected(t *testing.T) {
	mr, limiter := setupRedisLimiter(t)
	ctx := context.Background()

	for i := 1; i <= 20; i++ {
		ok, err := limiter.Allow(ctx, "whatsapp:+15550001")
		require.NoError(t, err)
		assert.True(t, ok, "message %d should pass", i)
	}
	ok, err := limiter.Allow(ctx, "whatsapp:+15550001")
	require.NoError(t, err)
	assert.False(t, ok)

	// Other senders keep their own counter.
	ok, err = limiter.Allow(ctx, "whatsapp:+15550002")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, mr.Exists("whatsapp:inbound:whatsapp:+15550001"))
	assert.InDelta(t, time.Minute.Seconds(), mr.TTL("whatsapp:inbound:whatsapp:+15550001").Seconds(), 1)
}

func TestRedisRateLimiter_WindowRearms(t *testing.T) {
	mr, limiter := setupRedisLimiter(t)
	ctx := context.Background()

	for i := 0; i < 21; i++ {
		_, err := limiter.Allow(ctx, "whatsapp:+15550001")
		require.NoError(t, err)
	}
	mr.FastForward(61 * time.Second)

	ok, err := limiter.Allow(ctx, "whatsapp:+15550001")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryRateLimiter_FixedWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryRateLimiter(20, time.Minute).WithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		ok, _ := limiter.Allow(ctx, "whatsapp:+1")
		assert.True(t, ok)
	}
	ok, _ := limiter.Allow(ctx, "whatsapp:+1")
	assert.False(t, ok)

	// Hits late in the window do not extend it.
	now = now.Add(59 * time.Second)
	ok, _ = limiter.Allow(ctx, "whatsapp:+1")
	assert.False(t, ok)

	now = now.Add(time.Second)
	ok, _ = limiter.Allow(ctx, "whatsapp:+1")
	assert.True(t, ok)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, assert.AnError
}

func TestAllowInbound(t *testing.T) {
	ctx := context.Background()
	g := NewGuardrail(NewMemoryRateLimiter(1, time.Minute), 24*time.Hour, PolicyPermissive, zap.NewNop())

	require.NoError(t, g.AllowInbound(ctx, "whatsapp:+1"))
	assert.ErrorIs(t, g.AllowInbound(ctx, "whatsapp:+1"), ErrRateLimited)

	open := NewGuardrail(failingLimiter{}, 24*time.Hour, PolicyPermissive, zap.NewNop())
	assert.NoError(t, open.AllowInbound(ctx, "whatsapp:+1"))
}

func observedGuardrail(policy Policy, now time.Time) (*Guardrail, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	g := NewGuardrail(NewMemoryRateLimiter(20, time.Minute), 24*time.Hour, policy, zap.New(core))
	g.Now = func() time.Time { return now }
	return g, logs
}

func TestCheckWindow_Permissive(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	g, logs := observedGuardrail(PolicyPermissive, now)

	recent := now.Add(-time.Hour)
	check := g.CheckWindow(&models.Conversation{ID: "c1", LastGuestMessageAt: &recent})
	assert.Equal(t, WindowCheck{Allowed: true}, check)
	assert.Equal(t, 0, logs.Len())

	stale := now.Add(-25 * time.Hour)
	check = g.CheckWindow(&models.Conversation{ID: "c1", LastGuestMessageAt: &stale})
	assert.True(t, check.Expired)
	assert.True(t, check.Allowed)
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "Outside 24h messaging window")

	check = g.CheckWindow(&models.Conversation{ID: "c2"})
	assert.True(t, check.Expired)
	assert.True(t, check.Allowed)
}

func TestCheckWindow_Strict(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	g, logs := observedGuardrail(PolicyStrict, now)

	stale := now.Add(-25 * time.Hour)
	check := g.CheckWindow(&models.Conversation{ID: "c1", LastGuestMessageAt: &stale})
	assert.Equal(t, WindowCheck{Expired: true, Allowed: false}, check)
	assert.Equal(t, 1, logs.Len())
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, PolicyStrict, ParsePolicy("strict"))
	assert.Equal(t, PolicyPermissive, ParsePolicy("permissive"))
	assert.Equal(t, PolicyPermissive, ParsePolicy(""))
}
