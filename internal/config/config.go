package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config represents the full runtime configuration tree.
type Config struct {
	App        AppConfig
	Capture    CaptureConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Cors       CORSConfig
	Monitoring MonitoringConfig
}

// AppConfig captures application-level settings.
type AppConfig struct {
	Name    string `validate:"required"`
	Env     string `validate:"oneof=development staging production"`
	Version string
	Port    string `validate:"required"`
}

// CaptureConfig sizes the ring/snapshot pair and locates the backing
// region.
type CaptureConfig struct {
	Size       int    `validate:"gt=0"`
	RegionPath string // empty selects an anonymous in-memory region
}

// DatabaseConfig stores snapshot-archive connectivity. An empty DSN
// disables the archive entirely.
type DatabaseConfig struct {
	Driver          string `validate:"oneof=postgres mysql"`
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig stores redis connectivity info.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	TLS      bool
}

// AuthConfig stores operator-token settings. An empty key hash disables
// the protected routes.
type AuthConfig struct {
	OperatorKeyHash string
	JWTSecret       string `validate:"required"`
	TokenIssuer     string
	AccessTokenTTL  time.Duration
}

// RateLimitConfig manages throttling parameters.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	RedisPrefix       string
}

// CORSConfig declares cross-origin policy.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

// MonitoringConfig adds observability tunables.
type MonitoringConfig struct {
	PrometheusEnabled bool
	SentryDSN         string
	SentrySampleRate  float64
}

// Load reads from environment (optionally .env) and builds Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:    getenv("APP_NAME", "dramconsoled"),
			Env:     getenv("APP_ENV", "development"),
			Version: getenv("APP_VERSION", "0.1.0"),
			Port:    getenv("PORT", "8080"),
		},
		Capture: CaptureConfig{
			Size:       getInt("CAPTURE_SIZE", 8192),
			RegionPath: getenv("REGION_PATH", ""),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getenv("DB_DRIVER", "postgres")),
			DSN:             getenv("DB_DSN", ""),
			MaxOpenConns:    getInt("DB_MAX_OPEN", 10),
			MaxIdleConns:    getInt("DB_MAX_IDLE", 5),
			ConnMaxLifetime: time.Duration(getInt("DB_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute,
			AutoMigrate:     getBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Username: getenv("REDIS_USER", ""),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
			TLS:      getBool("REDIS_TLS", false),
		},
		Auth: AuthConfig{
			OperatorKeyHash: getenv("OPERATOR_KEY_HASH", ""),
			JWTSecret:       getenv("JWT_SECRET", "change-me"),
			TokenIssuer:     getenv("JWT_ISSUER", "dramconsole"),
			AccessTokenTTL:  time.Duration(getInt("JWT_ACCESS_EXP_MIN", 15)) * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getInt("RATE_LIMIT_PER_MIN", 120),
			RedisPrefix:       getenv("RATE_LIMIT_PREFIX", "dramconsole:ratelimit"),
		},
		Cors: CORSConfig{
			AllowedOrigins:   splitAndTrim(getenv("CORS_ORIGINS", "")),
			AllowedMethods:   splitAndTrim(getenv("CORS_METHODS", "GET,POST,OPTIONS")),
			AllowedHeaders:   splitAndTrim(getenv("CORS_HEADERS", "Authorization,Content-Type,Accept")),
			AllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", false),
		},
		Monitoring: MonitoringConfig{
			PrometheusEnabled: getBool("PROMETHEUS_ENABLED", true),
			SentryDSN:         getenv("SENTRY_DSN", ""),
			SentrySampleRate:  getFloat("SENTRY_SAMPLE_RATE", 0.2),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getenv(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

func getInt(key string, def int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return i
}

func getBool(key string, def bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return parsed
}

func getFloat(key string, def float64) float64 {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return def
	}
	return parsed
}

func splitAndTrim(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
