// Package main is the entry point for the auth service.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GunarsK-portfolio/rbac-auth-service/internal/config"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/database"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/handlers"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/metrics"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/ratelimit"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/repository"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/routes"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/service"
	"github.com/GunarsK-portfolio/rbac-auth-service/internal/storage"
	"github.com/GunarsK-portfolio/rbac-auth-service/pkg/redis"
	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("auth service stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DSN(), database.DefaultOptions())
	if err != nil {
		return err
	}

	clk := clock.New()
	tokens, err := service.NewTokenService(cfg.JWTSecret, cfg.JWTTTL, clk)
	if err != nil {
		return err
	}

	var avatars storage.ObjectStore
	if cfg.AvatarStorageEnabled() {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return err
		}
		avatars = store
	} else {
		logger.Info("avatar storage not configured, uploads disabled")
	}

	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, tokens, service.NewPasswordHasher(cfg.BcryptCost), avatars, cfg.AvatarMaxBytes)

	healthChecks := map[string]handlers.HealthCheck{
		"postgres": func(ctx context.Context) error { return database.Ping(ctx, db) },
	}

	loginLimiter, signupLimiter, cleanup, err := newLimiters(ctx, cfg, clk, healthChecks)
	if err != nil {
		return err
	}
	defer cleanup()

	m := metrics.New(prometheus.DefaultRegisterer)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	err = routes.Setup(router, routes.Dependencies{
		Config:        cfg,
		Logger:        logger,
		Clock:         clk,
		Metrics:       m,
		Tokens:        tokens,
		Users:         authService,
		LoginLimiter:  loginLimiter,
		SignupLimiter: signupLimiter,
		AuthHandler: handlers.NewAuthHandler(authService,
			handlers.NewCookieHelper(handlers.CookieConfig{Domain: cfg.CookieDomain, Secure: !cfg.IsDevelopment()}),
			m, logger, cfg.IsDevelopment(), cfg.AvatarMaxBytes),
		UserHandler:   handlers.NewUserHandler(authService, logger, cfg.IsDevelopment()),
		HealthHandler: handlers.NewHealthHandler(healthChecks),
	})
	if err != nil {
		return err
	}

	return serve(ctx, router, cfg.Port, logger, db)
}

// newLimiters builds the login and signup limiters for the configured
// backend. The returned cleanup releases background resources.
func newLimiters(ctx context.Context, cfg *config.Config, clk clock.Clock, checks map[string]handlers.HealthCheck) (login, signup ratelimit.Limiter, cleanup func(), err error) {
	if cfg.RateLimitBackend == config.RateLimitRedis {
		client, err := redis.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }

		login = ratelimit.NewRedisLimiter(client, "login", cfg.LoginRateLimit.Max, cfg.LoginRateLimit.Window, clk)
		signup = ratelimit.NewRedisLimiter(client, "signup", cfg.SignupRateLimit.Max, cfg.SignupRateLimit.Window, clk)
		return login, signup, func() { _ = client.Close() }, nil
	}

	loginMem := ratelimit.NewMemoryLimiter(cfg.LoginRateLimit.Max, cfg.LoginRateLimit.Window, clk)
	signupMem := ratelimit.NewMemoryLimiter(cfg.SignupRateLimit.Max, cfg.SignupRateLimit.Window, clk)
	return loginMem, signupMem, func() {
		loginMem.Close()
		signupMem.Close()
	}, nil
}

func serve(ctx context.Context, handler http.Handler, port string, logger *slog.Logger, db *gorm.DB) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting auth service", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down auth service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
