// Package config handles configuration loading for the auth service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/GunarsK-portfolio/rbac-auth-service/internal/service"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Rate limiter backends.
const (
	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

// Config holds all configuration for the auth service. It is loaded once at
// startup and treated as read-only afterwards.
type Config struct {
	Port        string
	Environment string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	LoginRateLimit   RateLimit
	SignupRateLimit  RateLimit
	RateLimitBackend string
	AllowedOrigins   []string
	TrustedProxies   []string
	CookieDomain     string

	AvatarMaxBytes int64
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3PublicURL    string
}

// RateLimit configures one fixed-window limiter.
type RateLimit struct {
	Max    int
	Window time.Duration
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables always win.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "5001"),
		Environment: getEnv("ENVIRONMENT", EnvProduction),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "auth"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		JWTTTL:     parseDuration(getEnv("JWT_TTL", "1h"), time.Hour),
		BcryptCost: getEnvAsInt("BCRYPT_COST", 10),

		LoginRateLimit: RateLimit{
			Max:    getEnvAsInt("LOGIN_RATE_LIMIT_MAX", 5),
			Window: parseDuration(getEnv("LOGIN_RATE_LIMIT_WINDOW", "15m"), 15*time.Minute),
		},
		SignupRateLimit: RateLimit{
			Max:    getEnvAsInt("SIGNUP_RATE_LIMIT_MAX", 3),
			Window: parseDuration(getEnv("SIGNUP_RATE_LIMIT_WINDOW", "1h"), time.Hour),
		},
		RateLimitBackend: strings.ToLower(getEnv("RATE_LIMIT_BACKEND", RateLimitMemory)),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "")),
		TrustedProxies:   splitList(getEnv("TRUSTED_PROXIES", "")),
		CookieDomain:     getEnv("COOKIE_DOMAIN", ""),

		AvatarMaxBytes: int64(getEnvAsInt("AVATAR_MAX_BYTES", 5<<20)),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
		S3PublicURL:    getEnv("S3_PUBLIC_URL", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required settings are present and consistent.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.JWTSecret) < service.MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", service.MinSecretLength))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		errs = append(errs, fmt.Errorf("ENVIRONMENT must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Environment))
	}
	if c.RateLimitBackend != RateLimitMemory && c.RateLimitBackend != RateLimitRedis {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BACKEND must be %q or %q, got %q", RateLimitMemory, RateLimitRedis, c.RateLimitBackend))
	}
	for name, rl := range map[string]RateLimit{"LOGIN": c.LoginRateLimit, "SIGNUP": c.SignupRateLimit} {
		if rl.Max <= 0 || rl.Window <= 0 {
			errs = append(errs, fmt.Errorf("%s_RATE_LIMIT_MAX and %s_RATE_LIMIT_WINDOW must be positive", name, name))
		}
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// DSN returns the Postgres connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// AvatarStorageEnabled reports whether S3 settings are present.
func (c *Config) AvatarStorageEnabled() bool {
	return c.S3Bucket != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
