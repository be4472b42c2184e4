// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// BaseURL is the public-facing URL used for links and redirects.
	BaseURL string

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// Database holds MariaDB connection settings.
	Database DatabaseConfig

	// Redis holds Redis connection settings.
	Redis RedisConfig

	// Auth holds token signing and verification settings.
	Auth AuthConfig

	// RateLimit holds the per-route-class quotas and windows.
	RateLimit RateLimitConfig

	// CORS holds the cross-origin allow-list.
	CORS CORSConfig

	// MaxBodySize is the largest request body accepted before parsing, in bytes.
	MaxBodySize int64

	// TMDB holds settings for the catalog seeding utility.
	TMDB TMDBConfig
}

// DatabaseConfig holds MariaDB connection parameters. Individual fields
// (Host, User, Password, Name) are read from separate env vars so container
// orchestrators can manage each independently. If DATABASE_URL is set, it
// takes precedence over the individual fields.
type DatabaseConfig struct {
	// Host is the MariaDB address in host:port format (default: "localhost:3306").
	// If no port is specified, 3306 is appended automatically.
	Host string

	// User is the MariaDB username (default: "cinevault").
	User string

	// Password is the MariaDB password (default: "cinevault").
	Password string

	// Name is the database name (default: "cinevault").
	Name string

	// dsnOverride is set when DATABASE_URL is provided, bypassing individual fields.
	dsnOverride string

	// MaxOpenConns is the maximum number of open connections in the pool.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections in the pool.
	MaxIdleConns int

	// ConnMaxLifetime is how long a connection can be reused.
	ConnMaxLifetime time.Duration
}

// DSN returns the go-sql-driver/mysql connection string. If DATABASE_URL was
// set, it is returned as-is. Otherwise the DSN is built from the individual
// Host/User/Password/Name fields using the driver's Config.FormatDSN()
// to safely handle special characters in passwords.
func (d DatabaseConfig) DSN() string {
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// ensurePort appends the default port if the host string doesn't include one.
// Allows users to set DB_HOST=mydb (gets :3306) or DB_HOST=mydb:3307 (as-is).
func ensurePort(host, defaultPort string) string {
	_, _, err := net.SplitHostPort(host)
	if err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	// SecretKey is the symmetric HS256 signing key (32+ bytes in production).
	// Compromise of this key compromises every issued and future token.
	SecretKey string

	// TokenTTL is how long an issued access token remains valid.
	TokenTTL time.Duration

	// MaxTokenLength is the largest raw bearer token accepted before parsing.
	// Oversized tokens are rejected without touching the JWT parser.
	MaxTokenLength int
}

// RateLimitConfig holds quota and window settings for the three route
// classes. Auth endpoints get the narrowest quota since login and
// registration are the primary credential-stuffing targets.
type RateLimitConfig struct {
	// General applies to all routes without a more specific class.
	General ClassQuota

	// Auth applies to login and registration.
	Auth ClassQuota

	// Catalog applies to the read-heavy movie listing endpoints.
	Catalog ClassQuota
}

// ClassQuota is the request budget for one route class.
type ClassQuota struct {
	// Max is the number of requests allowed per window per client IP.
	Max int

	// Window is the length of the counting window.
	Window time.Duration
}

// CORSConfig holds the cross-origin allow-list.
type CORSConfig struct {
	// AllowedOrigins is the list of origins permitted to make cross-origin
	// requests. Requests from any other origin are rejected with 403.
	AllowedOrigins []string
}

// TMDBConfig holds settings for the catalog seeding utility (cmd/seed).
type TMDBConfig struct {
	// APIKey is the TMDB API key. Only required when running the seeder.
	APIKey string

	// BaseURL is the TMDB API root. Overridable for tests.
	BaseURL string
}

// Load reads configuration from environment variables with sensible defaults.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost:3306"),
			User:            getEnv("DB_USER", "cinevault"),
			Password:        getEnv("DB_PASSWORD", "cinevault"),
			Name:            getEnv("DB_NAME", "cinevault"),
			dsnOverride:     getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},

		Auth: AuthConfig{
			SecretKey:      getEnv("SECRET_KEY", ""),
			TokenTTL:       getEnvDuration("TOKEN_TTL", 168*time.Hour), // 7 days
			MaxTokenLength: getEnvInt("MAX_TOKEN_LENGTH", 8192),
		},

		RateLimit: RateLimitConfig{
			General: ClassQuota{
				Max:    getEnvInt("RATE_GENERAL_MAX", 120),
				Window: getEnvDuration("RATE_GENERAL_WINDOW", time.Minute),
			},
			Auth: ClassQuota{
				Max:    getEnvInt("RATE_AUTH_MAX", 10),
				Window: getEnvDuration("RATE_AUTH_WINDOW", time.Minute),
			},
			Catalog: ClassQuota{
				Max:    getEnvInt("RATE_CATALOG_MAX", 60),
				Window: getEnvDuration("RATE_CATALOG_WINDOW", time.Minute),
			},
		},

		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:8080"}),
		},

		MaxBodySize: getEnvInt64("MAX_BODY_SIZE", 1024*1024), // 1MB

		TMDB: TMDBConfig{
			APIKey:  getEnv("TMDB_API_KEY", ""),
			BaseURL: getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		},
	}

	// Validate required fields in production. Case-insensitive check catches
	// common variants like "Production", "prod", etc.
	envLower := strings.ToLower(cfg.Env)
	if envLower == "production" || envLower == "prod" {
		if cfg.Auth.SecretKey == "" {
			return nil, fmt.Errorf("SECRET_KEY is required in production")
		}
		if len(cfg.Auth.SecretKey) < 32 {
			return nil, fmt.Errorf("SECRET_KEY must be at least 32 characters in production")
		}
	}

	// Provide a dev-only default secret so local dev works without .env.
	if cfg.Auth.SecretKey == "" {
		cfg.Auth.SecretKey = "dev-secret-key-do-not-use-in-production!!"
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvInt64 reads an int64 env var or returns the default.
func getEnvInt64(key string, defaultVal int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "168h") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList reads a comma-separated env var or returns the default.
func getEnvList(key string, defaultVal []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
