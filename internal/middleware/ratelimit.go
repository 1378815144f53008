package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/GunarsK-portfolio/rbac-auth-service/internal/metrics"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/ratelimit"
	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
)

// Rejection messages for the built-in limiters.
const (
	LoginLimitMessage  = "Too many login attempts, please try again later"
	SignupLimitMessage = "Too many registration attempts, please try again later"
)

// RateLimitConfig configures one rate-limited route.
type RateLimitConfig struct {
	Name    string
	Message string
	Limiter ratelimit.Limiter
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Clock   clock.Clock
}

// RateLimit counts every request per client IP and answers 429 once the
// window is exhausted. A failing backend lets the request through.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return func(c *gin.Context) {
		res, err := cfg.Limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			cfg.Logger.WarnContext(c.Request.Context(), "rate limiter unavailable, allowing request",
				"limiter", cfg.Name, "err", err)
			c.Next()
			return
		}

		resetIn := secondsUntil(cfg.Clock.Now(), res.ResetAt)
		c.Header("RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("RateLimit-Reset", strconv.Itoa(resetIn))

		if !res.Allowed {
			cfg.Metrics.RateLimited(cfg.Name)
			c.Header("Retry-After", strconv.Itoa(resetIn))
			abortWithMessage(c, http.StatusTooManyRequests, cfg.Message)
			return
		}
		c.Next()
	}
}

func secondsUntil(now, then time.Time) int {
	d := then.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
