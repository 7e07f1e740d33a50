package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"ENV", "LOG_LEVEL", "LOG_FORMAT", "DATA_PATH", "SERVER_PORT", "CORS_ORIGINS",
	"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
	"DB_DRIVER", "DB_DSN", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_TTL",
	"RATIO_TABLE_PATH", "RATIO_TABLE_WATCH", "RATE_LIMIT_ENABLED", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
}

// clearEnv blanks every config key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
	}
}

func validConfig() *Config {
	return &Config{
		App:       AppConfig{Environment: "development"},
		Logger:    LoggerConfig{Level: "info"},
		Data:      DataConfig{Path: "/var/lib/sensifinder"},
		Database:  DatabaseConfig{Driver: DriverSQLite},
		Redis:     RedisConfig{TTL: 5 * time.Minute},
		RateLimit: RateLimitConfig{Enabled: true, Rate: 2, Burst: 10},
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()

	cfg, err := Load([]string{"-env-file", filepath.Join(dataDir, "missing.env"), "-data-path", dataDir})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.True(t, cfg.Ratios.Watch)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, filepath.Join(dataDir, "sensifinder.db"), cfg.SQLitePath())
	assert.Equal(t, filepath.Join(dataDir, "devices.bleve"), cfg.SearchIndexPath())
	assert.Equal(t, filepath.Join(dataDir, "sessions"), cfg.SessionsPath())
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_TTL", "1m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load([]string{
		"-env-file", filepath.Join(dataDir, "missing.env"),
		"-data-path", dataDir,
		"-port", "9100",
	})
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()
	t.Setenv("REDIS_TTL", "soon")

	_, err := Load([]string{"-env-file", filepath.Join(dataDir, "missing.env"), "-data-path", dataDir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_TTL")
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()

	_, err := Load([]string{
		"-env-file", filepath.Join(dataDir, "missing.env"),
		"-data-path", dataDir,
		"-db-driver", "postgres",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DSN")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "production", mutate: func(c *Config) { c.App.Environment = "production" }},
		{name: "unknown environment", mutate: func(c *Config) { c.App.Environment = "test" }, wantErr: true},
		{name: "environment is case sensitive", mutate: func(c *Config) { c.App.Environment = "DEVELOPMENT" }, wantErr: true},
		{name: "uppercase log level", mutate: func(c *Config) { c.Logger.Level = "DEBUG" }},
		{name: "bad log level", mutate: func(c *Config) { c.Logger.Level = "verbose" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.Logger.Format = "xml" }, wantErr: true},
		{name: "empty data path", mutate: func(c *Config) { c.Data.Path = "" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: true},
		{name: "postgres with dsn", mutate: func(c *Config) {
			c.Database.Driver = DriverPostgres
			c.Database.DSN = "postgres://localhost/sensifinder"
		}},
		{name: "redis without ttl", mutate: func(c *Config) {
			c.Redis.Addr = "localhost:6379"
			c.Redis.TTL = 0
		}, wantErr: true},
		{name: "rate limit zero burst", mutate: func(c *Config) { c.RateLimit.Burst = 0 }, wantErr: true},
		{name: "rate limit disabled ignores values", mutate: func(c *Config) {
			c.RateLimit = RateLimitConfig{Enabled: false}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("~/sensi", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "sensi"), got)

	got, err = expandPath("/abs/../abs/path", "")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)

	got, err = expandPath("relative", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("SENSI_TEST_KEY", "env-value")

	assert.Equal(t, "flag-value", getConfigValue("flag-value", "SENSI_TEST_KEY", "default"))
	assert.Equal(t, "env-value", getConfigValue("", "SENSI_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "SENSI_TEST_MISSING", "default"))
}

func TestTypedConfigValues(t *testing.T) {
	t.Setenv("SENSI_BOOL", "YES")
	t.Setenv("SENSI_INT", "not-a-number")
	t.Setenv("SENSI_FLOAT", "2.5")

	assert.True(t, getBoolConfigValue("", "SENSI_BOOL", false))
	assert.False(t, getBoolConfigValue("off", "SENSI_BOOL", true))
	assert.Equal(t, 7, getIntConfigValue("", "SENSI_INT", 7))
	assert.Equal(t, 3, getIntConfigValue("3", "SENSI_INT", 7))
	assert.InDelta(t, 2.5, getFloatConfigValue("", "SENSI_FLOAT", 1), 0.0001)
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("SENSI_FROM_FILE", "")
	t.Setenv("SENSI_QUOTED", "")
	t.Setenv("SENSI_PRESET", "original-value")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := `# comment

SENSI_FROM_FILE=hello
  SENSI_QUOTED = "with spaces"
SENSI_PRESET=overwritten
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	require.NoError(t, loadEnvFile(envFile))
	assert.Equal(t, "hello", os.Getenv("SENSI_FROM_FILE"))
	assert.Equal(t, "with spaces", os.Getenv("SENSI_QUOTED"))
	assert.Equal(t, "original-value", os.Getenv("SENSI_PRESET"))
}

func TestLoadEnvFile_Errors(t *testing.T) {
	assert.Error(t, loadEnvFile("/nonexistent/file/.env"))

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("NOT_A_PAIR\n"), 0o600))
	assert.Error(t, loadEnvFile(envFile))
}
