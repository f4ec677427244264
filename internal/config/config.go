package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTP      HTTPConfig
	Auth      AuthConfig
	Registry  RegistryConfig
	Store     StoreConfig
	Postgres  PostgresConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Admin     AdminConfig
}

type HTTPConfig struct {
	Port           string
	GinMode        string
	AllowedOrigins []string
}

type AuthConfig struct {
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     string
	RefreshTokenTTL    string
	PasswordHasher     string
	PasswordPepper     string
	AdminEmails        []string
}

type RegistryConfig struct {
	Backend  string
	BoltPath string
}

type StoreConfig struct {
	Driver     string
	SQLitePath string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type LogConfig struct {
	Level  string
	Format string
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

type AdminConfig struct {
	Username string
	Email    string
	Password string
}

func Load() Config {
	return Config{
		HTTP: HTTPConfig{
			Port:           getenv("PORT", "8080"),
			GinMode:        os.Getenv("GIN_MODE"),
			AllowedOrigins: getList("ALLOWED_ORIGINS", nil),
		},
		Auth: AuthConfig{
			AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
			RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
			AccessTokenTTL:     getenv("ACCESS_TOKEN_EXPIRATION", "15m"),
			RefreshTokenTTL:    getenv("REFRESH_TOKEN_EXPIRATION", "720h"),
			PasswordHasher:     getenv("PASSWORD_HASHER", "argon2"),
			PasswordPepper:     os.Getenv("PASSWORD_PEPPER"),
			AdminEmails:        getList("PERMISSION_ADMIN_EMAILS", nil),
		},
		Registry: RegistryConfig{
			Backend:  getenv("REGISTRY_BACKEND", "memory"),
			BoltPath: getenv("REGISTRY_BOLT_PATH", "refresh_tokens.db"),
		},
		Store: StoreConfig{
			Driver:     getenv("STORE_DRIVER", "postgres"),
			SQLitePath: getenv("SQLITE_PATH", "fotowand.db"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Log: LogConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getInt("RATE_LIMIT_RPM", 60),
		},
		Admin: AdminConfig{
			Username: getenv("ADMIN_USERNAME", "admin"),
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
	}
}

// ParseDuration reads a TTL setting. A bare number is taken as seconds.
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(value)
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var cleaned []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return fallback
	}
	return cleaned
}
