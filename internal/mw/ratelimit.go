package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// IPRateLimiter keeps one token bucket per client IP. Buckets of clients that
// have been quiet for idle are evicted.
type IPRateLimiter struct {
	mu  sync.Mutex
	ips *cache.Cache
	r   rate.Limit
	b   int
	ttl time.Duration
}

// NewIPRateLimiter creates a limiter allowing r requests per second with burst b.
func NewIPRateLimiter(r rate.Limit, b int, idle time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		ips: cache.New(idle, 2*idle),
		r:   r,
		b:   b,
		ttl: idle,
	}
}

// GetLimiter returns the bucket for ip, creating it on first use.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	if v, ok := i.ips.Get(ip); ok {
		limiter := v.(*rate.Limiter)
		i.ips.Set(ip, limiter, i.ttl)
		return limiter
	}
	limiter := rate.NewLimiter(i.r, i.b)
	i.ips.Set(ip, limiter, i.ttl)
	return limiter
}

// Allow consumes one token for ip.
func (i *IPRateLimiter) Allow(ip string) bool {
	return i.GetLimiter(ip).Allow()
}

// RateLimiter rejects requests beyond the per-IP budget with 429.
func RateLimiter(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
