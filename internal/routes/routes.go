// Package routes defines HTTP routes for the auth service.
package routes

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/GunarsK-portfolio/rbac-auth-service/internal/config"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/handlers"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/metrics"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/middleware"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/models"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/ratelimit"
	"github.com/benbjohnson/clock"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies holds everything the router wires together.
type Dependencies struct {
	Config  *config.Config
	Logger  *slog.Logger
	Clock   clock.Clock
	Metrics *metrics.Metrics
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer

	Tokens middleware.TokenVerifier
	Users  middleware.UserLoader

	LoginLimiter  ratelimit.Limiter
	SignupLimiter ratelimit.Limiter

	AuthHandler   *handlers.AuthHandler
	UserHandler   *handlers.UserHandler
	HealthHandler *handlers.HealthHandler
}

// Setup configures all HTTP routes for the application. Client IPs are read
// from forwarding headers only when the peer is one of cfg.TrustedProxies.
func Setup(router *gin.Engine, deps Dependencies) error {
	cfg := deps.Config

	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(deps.Metrics.Middleware())

	if len(cfg.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
		corsConfig.ExposeHeaders = []string{"RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset", "Retry-After", middleware.RequestIDHeader}
		router.Use(cors.New(corsConfig))
		router.Use(middleware.CSRF(cfg.AllowedOrigins))
	}

	router.GET("/health", deps.HealthHandler.Check)
	router.GET("/metrics", gin.WrapH(metricsHandler(deps.Gatherer)))

	protect := middleware.ProtectRoute(deps.Tokens, deps.Users, deps.Logger)
	adminOnly := middleware.AuthorizeRoles(models.RoleAdmin)

	loginLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Name:    "login",
		Message: middleware.LoginLimitMessage,
		Limiter: deps.LoginLimiter,
		Metrics: deps.Metrics,
		Logger:  deps.Logger,
		Clock:   deps.Clock,
	})
	signupLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Name:    "signup",
		Message: middleware.SignupLimitMessage,
		Limiter: deps.SignupLimiter,
		Metrics: deps.Metrics,
		Logger:  deps.Logger,
		Clock:   deps.Clock,
	})

	api := router.Group("/api")
	{
		api.GET("/public", deps.UserHandler.Public)

		auth := api.Group("/auth")
		{
			auth.POST("/signup", signupLimit, deps.AuthHandler.Signup)
			auth.POST("/login", loginLimit, deps.AuthHandler.Login)
			auth.POST("/logout", deps.AuthHandler.Logout)

			auth.GET("/profile", protect, deps.AuthHandler.GetProfile)
			auth.PUT("/profile", protect, deps.AuthHandler.UpdateProfile)
			auth.POST("/profile/avatar", protect, deps.AuthHandler.UploadAvatar)
			auth.GET("/validate", protect, deps.AuthHandler.Validate)
		}

		users := api.Group("/users")
		{
			users.GET("/public", deps.UserHandler.Public)
			users.GET("/protected", protect, deps.UserHandler.Protected)
			users.GET("/moderator", protect, middleware.AuthorizeRoles(models.RoleModerator, models.RoleAdmin), deps.UserHandler.Moderator)
			users.GET("/admin", protect, adminOnly, deps.UserHandler.Admin)

			users.GET("", protect, adminOnly, deps.UserHandler.List)
			users.GET("/:id", protect, adminOnly, deps.UserHandler.Get)
			users.PUT("/:id/role", protect, adminOnly, deps.UserHandler.UpdateRole)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})
	return nil
}

func metricsHandler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
