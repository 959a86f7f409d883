package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/byebilly/waitlist-api/internal/service"
	appErrors "github.com/byebilly/waitlist-api/pkg/errors"
	"github.com/byebilly/waitlist-api/pkg/ratelimit"
	"github.com/byebilly/waitlist-api/pkg/response"
)

// Rate limit decisions reported to metrics.
const (
	decisionAllowed  = "allowed"
	decisionDenied   = "denied"
	decisionBypassed = "bypassed"
)

// RateLimit bounds requests per client IP using limiter. The check fails open:
// a nil limiter or a Redis error lets the request through.
func RateLimit(limiter *ratelimit.Limiter, scope string, metrics *service.MetricsService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if limiter == nil {
			metrics.RecordRateLimit(decisionBypassed)
			c.Next()
			return
		}

		ip := c.ClientIP()
		result, err := limiter.Allow(c.Request.Context(), scope+":"+ip)
		if err != nil {
			metrics.RecordRateLimit(decisionBypassed)
			logger.Warn("rate limit check failed, allowing request", zap.String("scope", scope), zap.String("ip", ip), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			metrics.RecordRateLimit(decisionDenied)
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(result.RetryAfter)))
			response.Error(c, appErrors.Clone(appErrors.ErrRateLimited, "too many requests, please try again later"))
			c.Abort()
			return
		}

		metrics.RecordRateLimit(decisionAllowed)
		c.Next()
	}
}

func retryAfterSeconds(d time.Duration) int {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}
