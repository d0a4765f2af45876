package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "5432", cfg.DB.Port)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "50051", cfg.App.GRPCPort)
	assert.Equal(t, "8080", cfg.App.HTTPPort)
	assert.Equal(t, "8081", cfg.App.GinPort)
	assert.Equal(t, 300, cfg.Redis.CacheTTL)
	assert.Equal(t, 20, cfg.RateLimit.BurstCapacity)
	assert.Equal(t, "user-profile-service", cfg.Logger.ServiceName)
	assert.Equal(t, 100, cfg.Logger.MaxSizeMB)
	assert.True(t, cfg.Logger.Compress)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := "DB_DRIVER=SQLite\nDB_SQLITE_PATH=/tmp/profiles.db\nGIN_PORT=9000\nREDIS_CACHE_TTL=60\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	t.Setenv("GIN_PORT", "9100")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/profiles.db", cfg.DB.SQLitePath)
	assert.Equal(t, "9100", cfg.App.GinPort, "environment overrides the file")
	assert.Equal(t, 60, cfg.Redis.CacheTTL)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
}

func TestLoadConfig_ProductionLogging(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.True(t, cfg.Logger.EnableSampling)
}

func validConfig() *Config {
	return &Config{
		DB:        DatabaseConfig{Driver: DriverPostgres, Host: "localhost", Name: "db"},
		Redis:     RedisConfig{Enabled: true, Host: "localhost", Port: "6379", CacheTTL: 60},
		App:       AppConfig{GRPCPort: "50051", HTTPPort: "8080", GinPort: "8081", ShutdownTimeoutSeconds: 5},
		RateLimit: RateLimitConfig{Enabled: true, RequestsPerSecond: 10, BurstCapacity: 20},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown driver", func(c *Config) { c.DB.Driver = "mysql" }, `unsupported DB_DRIVER "mysql"`},
		{"sqlite without path", func(c *Config) { c.DB.Driver = DriverSQLite }, "DB_SQLITE_PATH is required"},
		{"duplicate ports", func(c *Config) { c.App.GinPort = "8080" }, "must differ"},
		{"missing port", func(c *Config) { c.App.GRPCPort = "" }, "GRPC_PORT is required"},
		{"shutdown timeout", func(c *Config) { c.App.ShutdownTimeoutSeconds = 0 }, "SHUTDOWN_TIMEOUT_SECONDS"},
		{"cache ttl", func(c *Config) { c.Redis.CacheTTL = 0 }, "REDIS_CACHE_TTL"},
		{"rate limit without redis", func(c *Config) { c.Redis.Enabled = false }, "rate limiting requires Redis"},
		{"rate limit params", func(c *Config) { c.RateLimit.BurstCapacity = 0 }, "RATE_LIMIT_RPS and RATE_LIMIT_BURST"},
		{"log format", func(c *Config) { c.Logger.Format = "xml" }, `unsupported LOG_FORMAT "xml"`},
		{"redis disabled without limiter", func(c *Config) { c.Redis.Enabled = false; c.RateLimit.Enabled = false }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", User: "u", Password: "p", Name: "n", Port: "5432", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable", c.DSN())
}
