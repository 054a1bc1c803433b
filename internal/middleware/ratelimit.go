package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ramgerassy/ace-ai-sub001/internal/config"
	"github.com/ramgerassy/ace-ai-sub001/internal/metrics"
	"github.com/ramgerassy/ace-ai-sub001/internal/response"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Limiter decides whether one more request from key is admitted.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter implements a per-key token bucket held in process.
// The bucket refills completely once per interval.
type MemoryLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	rate      int
	interval  time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	tokens   int
	lastSeen time.Time
}

func NewMemoryLimiter(rate int, interval time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		visitors:  make(map[string]*visitor),
		rate:      rate,
		interval:  interval,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	v, exists := rl.visitors[key]
	if !exists {
		v = &visitor{tokens: rl.rate, lastSeen: now}
		rl.visitors[key] = v
	}

	// Refill tokens based on elapsed time.
	if refill := int(now.Sub(v.lastSeen)/rl.interval) * rl.rate; refill > 0 {
		v.tokens += refill
		if v.tokens > rl.rate {
			v.tokens = rl.rate
		}
		v.lastSeen = now
	}

	if v.tokens <= 0 {
		return false, nil
	}
	v.tokens--
	return true, nil
}

// sweep drops visitors idle for more than two intervals. Runs at most once
// per interval, under rl.mu.
func (rl *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.interval {
		return
	}
	rl.lastSweep = now
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > 2*rl.interval {
			delete(rl.visitors, key)
		}
	}
}

// fixedWindow increments the counter and starts its window on first hit.
var fixedWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RedisLimiter is a fixed-window counter shared by every instance.
type RedisLimiter struct {
	rdb    redis.Cmdable
	name   string
	rate   int
	window time.Duration
}

func NewRedisLimiter(rdb redis.Cmdable, name string, rate int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, name: name, rate: rate, window: window}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := config.CacheKey.RateLimitKey(rl.name, key)

	n, err := fixedWindow.Run(ctx, rl.rdb, []string{k}, rl.window.Milliseconds()).Int64()
	if err != nil {
		return true, err
	}
	return n <= int64(rl.rate), nil
}

// NewLimiter returns a Redis-backed limiter when rdb is set, otherwise an
// in-memory one.
func NewLimiter(rdb redis.Cmdable, name string, limit config.RateLimit) Limiter {
	if rdb != nil {
		return NewRedisLimiter(rdb, name, limit.Requests, limit.Window)
	}
	return NewMemoryLimiter(limit.Requests, limit.Window)
}

// RateLimit rejects clients over budget with 429. Limiter errors are
// logged and the request is let through.
func RateLimit(name string, limiter Limiter, limit config.RateLimit, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "rate_limiter").Str("limiter", name).Logger()
	retryAfter := strconv.Itoa(int(limit.Window.Seconds()))

	return func(c *gin.Context) {
		ok, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn().Err(err).Msg("Limiter unavailable, admitting request")
			c.Next()
			return
		}
		if !ok {
			metrics.RateLimited(name)
			c.Header("Retry-After", retryAfter)
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}
