package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Limiter decides whether key may make another request in the current window.
// When it may not, retryAfter is how long until the window resets.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (ok bool, retryAfter time.Duration)
}

// RateLimiter counts requests per key in fixed windows held in process memory.
// Expired windows are swept at most once per window so the map only holds
// clients seen recently.
type RateLimiter struct {
	mu        sync.Mutex
	windows   map[string]*clientWindow
	nextSweep time.Time
	clock     func() time.Time
}

type clientWindow struct {
	count int
	ends  time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{windows: make(map[string]*clientWindow), clock: time.Now}
}

func (r *RateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock()
	if !now.Before(r.nextSweep) {
		r.sweep(now)
		r.nextSweep = now.Add(window)
	}

	w, ok := r.windows[key]
	if !ok || !now.Before(w.ends) {
		r.windows[key] = &clientWindow{count: 1, ends: now.Add(window)}
		return true, 0
	}
	if w.count >= limit {
		return false, w.ends.Sub(now)
	}
	w.count++
	return true, 0
}

func (r *RateLimiter) sweep(now time.Time) {
	for key, w := range r.windows {
		if !now.Before(w.ends) {
			delete(r.windows, key)
		}
	}
}

// Len returns the number of tracked clients.
func (r *RateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.windows)
}

// windowScript increments the counter, starts its expiry on first use and
// returns the new count with the remaining TTL in milliseconds.
var windowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

const redisTimeout = 250 * time.Millisecond

// RedisLimiter shares the window counters between instances. It lets requests
// through whenever Redis cannot answer.
type RedisLimiter struct {
	client redis.Scripter
	prefix string
}

func NewRedisLimiter(client redis.Scripter) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: "ratelimit:"}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration) {
	if l == nil || l.client == nil || limit <= 0 || window <= 0 {
		return true, 0
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	vals, err := windowScript.Run(ctx, l.client, []string{l.prefix + key}, max(window.Milliseconds(), 1)).Int64Slice()
	if err != nil || len(vals) != 2 {
		return true, 0
	}
	if vals[0] <= int64(limit) {
		return true, 0
	}
	return false, time.Duration(max(vals[1], 0)) * time.Millisecond
}

// RateLimit rejects requests from one client IP beyond limit per window with
// 429 and a Retry-After header. A nil limiter or a non-positive limit disables it.
func RateLimit(limiter Limiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}
		ok, retryAfter := limiter.Allow(c.Request.Context(), ip, limit, window)
		if !ok {
			secs := int(math.Ceil(retryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(max(secs, 1)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded, try again later"})
			return
		}
		c.Next()
	}
}
