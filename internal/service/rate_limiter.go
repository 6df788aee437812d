package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Limiter decides whether a keyed request fits inside its rate window. It is
// an injected dependency so deployments can swap the shared redis counter for
// the process-local fallback without touching call sites.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, resetAt time.Time)
}

// rateLimitScript is a Lua script for sliding window rate limiting
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

local windowStart = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', windowStart)

local count = redis.call('ZCARD', key)

if count >= limit then
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local resetAt = 0
    if #oldest >= 2 then
        resetAt = tonumber(oldest[2]) + window
    else
        resetAt = now + window
    end
    return {0, resetAt}
end

redis.call('ZADD', key, now, now .. '-' .. math.random())
redis.call('EXPIRE', key, window + 10)

local resetAt = now + window
return {1, resetAt}
`)

// RedisLimiter is a sliding-window limiter backed by a shared redis counter,
// safe across horizontally-scaled instances.
type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (rl *RedisLimiter) Allow(
	ctx context.Context,
	key string,
	limit int,
	window time.Duration,
) (allowed bool, resetAt time.Time) {
	now := time.Now().Unix()
	fullKey := fmt.Sprintf("ratelimit:%s", key)

	result, err := rateLimitScript.Run(
		ctx,
		rl.client,
		[]string{fullKey},
		now,
		int64(window.Seconds()),
		limit,
	).Int64Slice()

	if err != nil {
		log.Warn().
			Err(err).
			Str("key", key).
			Msg("rate limit check failed, denying request for safety")
		return false, time.Now().Add(window)
	}

	if len(result) != 2 {
		log.Warn().Str("key", key).Msg("unexpected rate limit result, denying request for safety")
		return false, time.Now().Add(window)
	}

	return result[0] == 1, time.Unix(result[1], 0)
}

// LocalLimiter is a process-local fixed-window counter. It provides no
// cross-instance guarantee and resets on restart; it exists as the dev and
// degraded-mode fallback when redis is not configured.
type LocalLimiter struct {
	mu          sync.Mutex
	windows     map[string]*localWindow
	lastCleanup time.Time
}

type localWindow struct {
	count   int
	startAt time.Time
}

const (
	localLimiterMaxEntries      = 10000
	localLimiterCleanupInterval = time.Minute
)

func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{
		windows:     make(map[string]*localWindow),
		lastCleanup: time.Now(),
	}
}

func (ll *LocalLimiter) Allow(
	_ context.Context,
	key string,
	limit int,
	window time.Duration,
) (allowed bool, resetAt time.Time) {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	now := time.Now()
	ll.cleanup(now, window)

	entry, exists := ll.windows[key]
	if !exists || now.Sub(entry.startAt) >= window {
		entry = &localWindow{startAt: now}
		ll.windows[key] = entry
	}

	if entry.count >= limit {
		return false, entry.startAt.Add(window)
	}

	entry.count++
	return true, entry.startAt.Add(window)
}

func (ll *LocalLimiter) cleanup(now time.Time, window time.Duration) {
	if now.Sub(ll.lastCleanup) < localLimiterCleanupInterval && len(ll.windows) < localLimiterMaxEntries {
		return
	}
	ll.lastCleanup = now

	for key, entry := range ll.windows {
		if now.Sub(entry.startAt) >= window {
			delete(ll.windows, key)
		}
	}
}
