package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"insight-agent/config"
)

const limiterIdleExpiry = 30 * time.Minute

type sessionLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter caps how many messages each session may send per minute.
// Limiters for idle sessions are dropped periodically so the map does
// not grow without bound.
func RateLimiter(cfg *config.Config, logger *zap.Logger) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[uuid.UUID]*sessionLimiter)
	)

	perSecond := rate.Limit(float64(cfg.RateLimitPerMin) / 60.0)
	burst := cfg.RateLimitBurstSize
	if burst < 1 {
		burst = 1
	}

	go func() {
		ticker := time.NewTicker(limiterIdleExpiry)
		defer ticker.Stop()
		for range ticker.C {
			mu.Lock()
			for id, sl := range limiters {
				if time.Since(sl.lastSeen) > limiterIdleExpiry {
					delete(limiters, id)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		// Health checks and sample lookups are not rate limited.
		if c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		value, exists := c.Get("sessionID")
		if !exists {
			c.Next()
			return
		}
		sessionID, ok := value.(uuid.UUID)
		if !ok {
			c.Next()
			return
		}

		mu.Lock()
		sl, exists := limiters[sessionID]
		if !exists {
			sl = &sessionLimiter{limiter: rate.NewLimiter(perSecond, burst)}
			limiters[sessionID] = sl
		}
		sl.lastSeen = time.Now()
		mu.Unlock()

		if !sl.limiter.Allow() {
			logger.Warn("Session rate limited",
				zap.String("session_id", sessionID.String()),
				zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Please slow down.",
			})
			return
		}

		c.Next()
	}
}
