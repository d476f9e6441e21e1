package guardrail

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hotelbot/utils"

	"github.com/go-redis/redis/v8"
)

// RateLimiter counts inbound messages per sender inside a fixed window.
type RateLimiter interface {
	// Allow records a hit for sender and reports whether it is within the limit.
	Allow(ctx context.Context, sender string) (bool, error)
}

// The window is armed by the first hit and never extended by later ones.
var fixedWindowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RedisRateLimiter shares counters across instances through Redis.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, limit: limit, window: window}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, sender string) (bool, error) {
	key := utils.InboundRateLimitPrefix + sender
	n, err := fixedWindowScript.Run(ctx, l.client, []string{key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit script failed for %s: %w", key, err)
	}
	return n <= int64(l.limit), nil
}

type fixedWindow struct {
	count   int
	expires time.Time
}

// MemoryRateLimiter is a process-local fixed window limiter.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*fixedWindow
	limit   int
	window  time.Duration
	now     func() time.Time
}

func NewMemoryRateLimiter(limit int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		windows: make(map[string]*fixedWindow),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// WithClock overrides the time source.
func (l *MemoryRateLimiter) WithClock(now func() time.Time) *MemoryRateLimiter {
	l.now = now
	return l
}

func (l *MemoryRateLimiter) Allow(_ context.Context, sender string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key := utils.InboundRateLimitPrefix + sender
	w, ok := l.windows[key]
	if !ok || !now.Before(w.expires) {
		w = &fixedWindow{expires: now.Add(l.window)}
		l.windows[key] = w
	}
	w.count++

	if len(l.windows) > 10000 {
		for k, v := range l.windows {
			if !now.Before(v.expires) {
				delete(l.windows, k)
			}
		}
	}
	return w.count <= l.limit, nil
}
