package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per caller. Callers are keyed by
// uid when signed in and by client IP otherwise; idle buckets expire.
type RateLimiter struct {
	name    string
	limit   rate.Limit
	burst   int
	buckets *cache.Cache
}

// NewRateLimiter allows perMinute requests per caller with a burst of the
// same size.
func NewRateLimiter(name string, perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &RateLimiter{
		name:    name,
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		buckets: cache.New(10*time.Minute, 5*time.Minute),
	}
}

func (l *RateLimiter) bucket(key string) *rate.Limiter {
	if v, ok := l.buckets.Get(key); ok {
		lim := v.(*rate.Limiter)
		l.buckets.SetDefault(key, lim)
		return lim
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	if err := l.buckets.Add(key, lim, cache.DefaultExpiration); err != nil {
		// lost the race to another request for the same key
		if v, ok := l.buckets.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

// Middleware rejects callers over their budget with 429 and Retry-After
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString("uid")
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		r := l.bucket(l.name + ":" + key).Reserve()
		if delay := r.Delay(); delay > 0 {
			r.Cancel()
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, slow down",
				"code":  "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
