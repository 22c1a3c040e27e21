package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// RateLimiterConfig holds configuration for rate limiting
type RateLimiterConfig struct {
	MessagesPerMinute int // Max chatbot messages per client per minute
	BurstSize         int // Allow burst of N requests
	CacheSize         int // Max clients tracked at once
}

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a new token bucket
func NewTokenBucket(maxTokens float64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow checks if a request can proceed and consumes a token if so
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()

	tb.tokens = min(tb.maxTokens, tb.tokens+(elapsed*tb.refillRate))
	tb.lastRefill = now

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// Remaining returns the number of tokens remaining
func (tb *TokenBucket) Remaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := time.Since(tb.lastRefill).Seconds()
	return int(min(tb.maxTokens, tb.tokens+(elapsed*tb.refillRate)))
}

// ClientRateLimiter keeps one bucket per tenant and client IP. Buckets live
// in a bounded LRU cache, so idle clients fall out without a sweeper.
type ClientRateLimiter struct {
	config  RateLimiterConfig
	buckets *lru.Cache
	mu      sync.Mutex
	logger  *zap.Logger
}

func NewClientRateLimiter(config RateLimiterConfig, logger *zap.Logger) (*ClientRateLimiter, error) {
	if config.CacheSize <= 0 {
		config.CacheSize = 4096
	}
	if config.BurstSize <= 0 {
		config.BurstSize = 1
	}
	cache, err := lru.New(config.CacheSize)
	if err != nil {
		return nil, err
	}
	return &ClientRateLimiter{config: config, buckets: cache, logger: logger}, nil
}

func (l *ClientRateLimiter) bucket(key string) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.buckets.Get(key); ok {
		return v.(*TokenBucket)
	}
	refillRate := float64(l.config.MessagesPerMinute) / 60.0
	b := NewTokenBucket(float64(l.config.BurstSize), refillRate)
	l.buckets.Add(key, b)
	return b
}

// Allow consumes a token for key and reports what is left.
func (l *ClientRateLimiter) Allow(key string) (allowed bool, remaining int) {
	b := l.bucket(key)
	allowed = b.Allow()
	return allowed, b.Remaining()
}

// Tracked returns how many clients currently hold a bucket.
func (l *ClientRateLimiter) Tracked() int {
	return l.buckets.Len()
}

// RateLimitMiddleware limits requests per tenant and client IP. It must run
// after TenantMiddleware.
func RateLimitMiddleware(limiter *ClientRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant, ok := TenantFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "tenant not resolved"})
			return
		}

		key := tenant.Key + "|" + c.ClientIP()
		allowed, remaining := limiter.Allow(key)
		limit := limiter.config.BurstSize

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			if logger := LoggerFromContext(c); logger != nil {
				logger.Warn("Rate limit exceeded",
					zap.String("tenant", tenant.Key),
					zap.String("client_ip", c.ClientIP()),
					zap.Int("limit", limit))
			}

			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"limit":       limit,
				"remaining":   remaining,
				"retry_after": 60,
			})
			return
		}

		c.Next()
	}
}
