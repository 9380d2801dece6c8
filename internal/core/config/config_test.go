package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_ENV", "LOG_LEVEL", "SERVER_PORT",
	"STORE_DRIVER", "STORE_TIMEOUT", "REDIS_URL", "STORE_REST_URL", "STORE_REST_API_KEY", "DATABASE_DSN",
	"DEFAULT_DISCIPLINE", "SCANNER_KEY_GAP", "SCANNER_QUIESCENCE", "MAX_SCAN_LENGTH", "STOP_CACHE_TTL", "MIRROR_QUEUE_SIZE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for _, k := range configKeys {
			os.Unsetenv(k)
		}
	})
}

// TestLoad_Defaults verifies that default values are used when env vars are missing.
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(".")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, 5*time.Second, cfg.Store.Timeout)
	assert.Equal(t, "unordered", cfg.Loading.DefaultDiscipline)
	assert.Equal(t, 100*time.Millisecond, cfg.Loading.ScannerKeyGap)
	assert.Equal(t, 150*time.Millisecond, cfg.Loading.ScannerQuiescence)
	assert.Equal(t, 64, cfg.Loading.MaxScanLength)
	assert.Equal(t, 5*time.Minute, cfg.Loading.StopCacheTTL)
	assert.Equal(t, 256, cfg.Loading.MirrorQueueSize)
}

// TestLoad_EnvVars verifies that environment variables override defaults.
func TestLoad_EnvVars(t *testing.T) {
	clearEnv(t)
	os.Setenv("APP_ENV", "production")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("STORE_DRIVER", "redis")
	os.Setenv("REDIS_URL", "redis://localhost:6379/0")
	os.Setenv("STORE_TIMEOUT", "2s")
	os.Setenv("DEFAULT_DISCIPLINE", "strict")
	os.Setenv("SCANNER_KEY_GAP", "40ms")

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, StoreDriverRedis, cfg.Store.Driver)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Store.RedisURL)
	assert.Equal(t, 2*time.Second, cfg.Store.Timeout)
	assert.Equal(t, "strict", cfg.Loading.DefaultDiscipline)
	assert.Equal(t, 40*time.Millisecond, cfg.Loading.ScannerKeyGap)
}

// TestLoad_File verifies that values are loaded from a .env file.
func TestLoad_File(t *testing.T) {
	clearEnv(t)
	content := []byte(`
APP_ENV=staging
LOG_LEVEL=warn
SERVER_PORT=7070
STORE_DRIVER=rest
STORE_REST_URL=https://records.example.com
STORE_REST_API_KEY=key_staging
MAX_SCAN_LENGTH=32
`)
	err := os.WriteFile(".env", content, 0644)
	require.NoError(t, err)
	defer os.Remove(".env")

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 7070, cfg.ServerPort)
	assert.Equal(t, StoreDriverREST, cfg.Store.Driver)
	assert.Equal(t, "https://records.example.com", cfg.Store.RESTURL)
	assert.Equal(t, "key_staging", cfg.Store.RESTAPIKey)
	assert.Equal(t, 32, cfg.Loading.MaxScanLength)
}

// TestLoad_ValidationFailure verifies that a driver without its connection settings is rejected.
func TestLoad_ValidationFailure(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		want   string
	}{
		{name: "RedisWithoutURL", driver: "redis", want: "REDIS_URL"},
		{name: "RESTWithoutURL", driver: "rest", want: "STORE_REST_URL"},
		{name: "PostgresWithoutDSN", driver: "postgres", want: "DATABASE_DSN"},
		{name: "UnknownDriver", driver: "cassandra", want: "unsupported STORE_DRIVER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			os.Setenv("STORE_DRIVER", tt.driver)

			cfg, err := Load(".")
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateRequired(t *testing.T) {
	type required struct {
		Name string `mapstructure:"NAME" required:"true"`
	}

	err := validateRequired(&required{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required configuration: NAME")

	assert.NoError(t, validateRequired(&required{Name: "dock-7"}))
}
