package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all application configuration
type Config struct {
	// Environment name (development, production, test)
	Environment string

	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Token and password settings
	Auth AuthConfig

	// Per-IP request limits
	RateLimit RateLimitConfig

	// Allowed CORS origins
	CORS CORSConfig

	// Seed import settings
	Import ImportConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL            string // takes precedence over the discrete fields when set
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	MigrationsPath string
	AutoMigrate    bool
}

// AuthConfig holds session token and password hashing settings
type AuthConfig struct {
	SecretKey  string
	Algorithm  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// ExpiresIn is the lifetime reported to clients in the login response.
	ExpiresIn  time.Duration
	BcryptCost int

	generated bool
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	LoginPerHour     int
	RefreshPerHour   int
	PublicPerMinute  int
	MaxTrackedClient int
}

// CORSConfig holds cross-origin settings
type CORSConfig struct {
	AllowedOrigins []string
}

// ImportConfig holds seed import settings
type ImportConfig struct {
	BatchSize int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "console"
}

var supportedAlgorithms = map[string]bool{
	"HS256": true,
	"HS384": true,
	"HS512": true,
}

// Load reads configuration from .env files and environment variables
func Load() (*Config, error) {
	env := getEnv("ENV", getEnv("ENVIRONMENT", EnvDevelopment))

	// Real environment variables always win over .env files
	loadDotEnv(".env."+env, ".env")

	cfg := &Config{
		Environment: env,
		Server: ServerConfig{
			Port:            getEnv("PORT", "8000"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			RequestTimeout:  getDurationEnv("SERVER_REQUEST_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			Host:           getEnv("POSTGRES_SERVER", "localhost"),
			Port:           getEnv("POSTGRES_PORT", "5432"),
			User:           getEnv("POSTGRES_USER", "postgres"),
			Password:       getEnv("POSTGRES_PASSWORD", "postgres"),
			Name:           getEnv("POSTGRES_DB", "personal_website"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:    getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
			AutoMigrate:    getBoolEnv("DB_AUTO_MIGRATE", true),
		},
		Auth: AuthConfig{
			SecretKey:  getEnv("SECRET_KEY", ""),
			Algorithm:  strings.ToUpper(getEnv("JWT_ALGORITHM", "HS256")),
			AccessTTL:  time.Duration(getIntEnv("ACCESS_TOKEN_EXPIRE_MINUTES", 1440)) * time.Minute,
			RefreshTTL: time.Duration(getIntEnv("REFRESH_TOKEN_EXPIRE_DAYS", 14)) * 24 * time.Hour,
			ExpiresIn:  time.Duration(getIntEnv("TOKEN_EXPIRES_IN_SECONDS", 3600)) * time.Second,
			BcryptCost: getIntEnv("BCRYPT_COST", 12),
		},
		RateLimit: RateLimitConfig{
			LoginPerHour:     getIntEnv("RATE_LIMIT_LOGIN_PER_HOUR", 10),
			RefreshPerHour:   getIntEnv("RATE_LIMIT_REFRESH_PER_HOUR", 60),
			PublicPerMinute:  getIntEnv("RATE_LIMIT_PUBLIC_PER_MINUTE", 120),
			MaxTrackedClient: getIntEnv("RATE_LIMIT_MAX_CLIENTS", 10000),
		},
		CORS: CORSConfig{
			AllowedOrigins: getListEnv("CORS_ORIGINS", nil),
		},
		Import: ImportConfig{
			BatchSize: getIntEnv("IMPORT_BATCH_SIZE", 500),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if env == EnvDevelopment && len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{
			"http://localhost:3000",
			"http://localhost:8000",
		}
	}

	if cfg.Auth.SecretKey == "" && env != EnvProduction {
		key, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.Auth.SecretKey = key
		cfg.Auth.generated = true
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		if c.Database.Host == "" {
			return fmt.Errorf("POSTGRES_SERVER is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("POSTGRES_DB is required")
		}
	} else if _, err := url.Parse(c.Database.URL); err != nil {
		return fmt.Errorf("DATABASE_URL is invalid: %w", err)
	}
	if c.Auth.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	if !supportedAlgorithms[c.Auth.Algorithm] {
		return fmt.Errorf("JWT_ALGORITHM %q is not supported", c.Auth.Algorithm)
	}
	if c.Auth.AccessTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.Auth.RefreshTTL <= 0 {
		return fmt.Errorf("REFRESH_TOKEN_EXPIRE_DAYS must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	if c.RateLimit.LoginPerHour <= 0 || c.RateLimit.RefreshPerHour <= 0 || c.RateLimit.PublicPerMinute <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.Import.BatchSize <= 0 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be positive")
	}
	return nil
}

// IsProduction reports whether the process runs with ENV=production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GeneratedSecret reports whether SECRET_KEY was missing and replaced with a
// random per-process key. Tokens will not survive a restart in that case.
func (a *AuthConfig) GeneratedSecret() bool {
	return a.generated
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func loadDotEnv(files ...string) {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		// godotenv.Load does not override variables that are already set
		_ = godotenv.Load(f)
	}
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate secret key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated variable, dropping empty items
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
