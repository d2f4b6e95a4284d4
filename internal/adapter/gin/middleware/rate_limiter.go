package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"menu-service/pkg/logger"
)

// MsgRateLimited is the body sent with 429 responses.
const MsgRateLimited = "Demasiadas solicitudes, intente de nuevo más tarde"

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstCapacity     int
}

// tokenBucket refills at ARGV[1] tokens/s up to ARGV[2] and takes one token.
// State lives in a hash {last_refill, tokens}.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
local last_refill = tonumber(bucket[1]) or now
local tokens = tonumber(bucket[2]) or capacity

local elapsed = math.max(0, now - last_refill)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', key, 'last_refill', tostring(now), 'tokens', tostring(tokens))
redis.call('EXPIRE', key, ttl)
return allowed
`)

// RateLimiter implements per-client, per-route rate limiting with a token bucket in Redis.
type RateLimiter struct {
	client *redis.Client
	config RateLimiterConfig
	log    *zap.Logger
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(client *redis.Client, config RateLimiterConfig, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
		log:    log,
	}
}

// Allow takes one token from key's bucket.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := rl.now(ctx)

	allowed, err := tokenBucket.Run(ctx, rl.client, []string{key},
		rl.config.RequestsPerSecond,
		rl.config.BurstCapacity,
		strconv.FormatFloat(now, 'f', 6, 64),
		rl.ttlSeconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit script: %w", err)
	}
	return allowed == 1, nil
}

// now prefers the Redis clock so that every replica refills buckets against the same time source.
func (rl *RateLimiter) now(ctx context.Context) float64 {
	t, err := rl.client.Time(ctx).Result()
	if err != nil {
		t = time.Now()
	}
	return float64(t.UnixMicro()) / 1e6
}

// ttlSeconds is how long an idle bucket takes to refill completely.
func (rl *RateLimiter) ttlSeconds() int {
	if rl.config.RequestsPerSecond <= 0 {
		return 60
	}
	return int(math.Ceil(float64(rl.config.BurstCapacity)/rl.config.RequestsPerSecond)) + 1
}

func (rl *RateLimiter) retryAfter() string {
	if rl.config.RequestsPerSecond <= 0 {
		return "60"
	}
	return strconv.Itoa(int(math.Ceil(1 / rl.config.RequestsPerSecond)))
}

// Middleware returns the Gin handler. It fails open when Redis is unavailable.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.client == nil || !rl.config.Enabled {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		clientIP := c.ClientIP()
		key := fmt.Sprintf("ratelimit:tb:%s:%s:%s", c.Request.Method, route, clientIP)

		allowed, err := rl.Allow(c.Request.Context(), key)
		if err != nil {
			logger.WithContext(c.Request.Context(), rl.log).Warn("rate limiter redis error, allowing request",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !allowed {
			logger.WithContext(c.Request.Context(), rl.log).Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("route", route),
				zap.Float64("limit", rl.config.RequestsPerSecond),
				zap.Int("burst", rl.config.BurstCapacity),
			)
			c.Header("Retry-After", rl.retryAfter())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": MsgRateLimited})
			return
		}

		c.Next()
	}
}
