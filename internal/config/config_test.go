package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into assertions
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "ENVIRONMENT", "PORT", "DATABASE_URL", "POSTGRES_SERVER", "POSTGRES_DB",
		"SECRET_KEY", "JWT_ALGORITHM", "ACCESS_TOKEN_EXPIRE_MINUTES", "REFRESH_TOKEN_EXPIRE_DAYS",
		"TOKEN_EXPIRES_IN_SECONDS", "BCRYPT_COST", "CORS_ORIGINS", "IMPORT_BATCH_SIZE",
		"RATE_LIMIT_LOGIN_PER_HOUR", "DB_AUTO_MIGRATE", "SERVER_REQUEST_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", EnvDevelopment)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "personal_website", cfg.Database.Name)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTTL)
	assert.Equal(t, 14*24*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, time.Hour, cfg.Auth.ExpiresIn)
	assert.Equal(t, 10, cfg.RateLimit.LoginPerHour)
	assert.Equal(t, 500, cfg.Import.BatchSize)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:8000"}, cfg.CORS.AllowedOrigins)

	assert.NotEmpty(t, cfg.Auth.SecretKey)
	assert.True(t, cfg.Auth.GeneratedSecret())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "staging")
	t.Setenv("SECRET_KEY", "from-env")
	t.Setenv("JWT_ALGORITHM", "hs512")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "30")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("SERVER_REQUEST_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.SecretKey)
	assert.False(t, cfg.Auth.GeneratedSecret())
	assert.Equal(t, "HS512", cfg.Auth.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 3*time.Second, cfg.Server.RequestTimeout)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", EnvProduction)

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SECRET_KEY", "prod-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Empty(t, cfg.CORS.AllowedOrigins)
}

func TestLoad_UnparseableNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", EnvDevelopment)
	t.Setenv("IMPORT_BATCH_SIZE", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Import.BatchSize)
}

func validConfig() *Config {
	return &Config{
		Database:  DatabaseConfig{Host: "localhost", Name: "personal_website"},
		Auth:      AuthConfig{SecretKey: "k", Algorithm: "HS256", AccessTTL: time.Hour, RefreshTTL: time.Hour, BcryptCost: 10},
		RateLimit: RateLimitConfig{LoginPerHour: 1, RefreshPerHour: 1, PublicPerMinute: 1},
		Import:    ImportConfig{BatchSize: 1},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cases := map[string]func(c *Config){
		"missing host":        func(c *Config) { c.Database.Host = "" },
		"missing secret":      func(c *Config) { c.Auth.SecretKey = "" },
		"asymmetric alg":      func(c *Config) { c.Auth.Algorithm = "RS256" },
		"none alg":            func(c *Config) { c.Auth.Algorithm = "none" },
		"zero access ttl":     func(c *Config) { c.Auth.AccessTTL = 0 },
		"negative refresh":    func(c *Config) { c.Auth.RefreshTTL = -time.Hour },
		"bcrypt cost too low": func(c *Config) { c.Auth.BcryptCost = 3 },
		"zero login limit":    func(c *Config) { c.RateLimit.LoginPerHour = 0 },
		"zero batch size":     func(c *Config) { c.Import.BatchSize = 0 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestGetDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "blog", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=blog sslmode=disable", c.GetDSN())

	c.URL = "postgres://u:p@db:5432/blog?sslmode=disable"
	assert.Equal(t, c.URL, c.GetDSN())
}
