package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("TASKLIST_HTTP_ADDR", ":4000")
	t.Setenv("TASKLIST_DATABASE_DSN", "postgres://env")
	t.Setenv("TASKLIST_SECRET_KEY", "env-secret")
	t.Setenv("TASKLIST_ACCESS_TOKEN_TTL", "10m")
	t.Setenv("TASKLIST_REFRESH_TOKEN_TTL", "72h")
	t.Setenv("TASKLIST_REFRESH_TOKEN_BYTES", "96")
	t.Setenv("TASKLIST_BCRYPT_COST", "12")
	t.Setenv("TASKLIST_STORE_TIMEOUT", "500ms")
	t.Setenv("TASKLIST_SESSION_SWEEP_INTERVAL", "0s")
	t.Setenv("TASKLIST_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TASKLIST_LOG_LEVEL", "warn")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, ":4000", c.EndpointAddrHTTP)
	assert.Equal(t, "postgres://env", c.DatabaseDSN)
	assert.Equal(t, "env-secret", c.SecretKey)
	assert.Equal(t, 10*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 72*time.Hour, c.RefreshTokenValidityDuration)
	assert.Equal(t, 96, c.RefreshTokenBytes)
	assert.Equal(t, 12, c.BcryptCost)
	assert.Equal(t, 500*time.Millisecond, c.StoreTimeout)
	assert.Equal(t, time.Duration(0), c.SessionSweepInterval)
	assert.Equal(t, "https://a.example,https://b.example", c.CORSAllowedOrigins)
	assert.Equal(t, "warn", c.LogLevel)
}

func TestParseEnv_EmptyValuesIgnored(t *testing.T) {
	t.Setenv("TASKLIST_SECRET_KEY", "")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "secretKey", c.SecretKey)
}

func TestParseEnv_InvalidValuesPanic(t *testing.T) {
	t.Run("int", func(t *testing.T) {
		t.Setenv("TASKLIST_BCRYPT_COST", "ten")
		require.Panics(t, func() { parseEnv(&Config{}) })
	})
	t.Run("duration", func(t *testing.T) {
		t.Setenv("TASKLIST_STORE_TIMEOUT", "soon")
		require.Panics(t, func() { parseEnv(&Config{}) })
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TASKLIST_LOG_LEVEL=debug\nTASKLIST_HTTP_ADDR=:5000\n"), 0o600))

	orig := dotEnvFile
	t.Cleanup(func() { dotEnvFile = orig })
	dotEnvFile = path

	// registers cleanup so the variables set by godotenv do not leak
	t.Setenv("TASKLIST_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("TASKLIST_LOG_LEVEL"))
	t.Setenv("TASKLIST_HTTP_ADDR", ":6000")

	loadDotEnv()

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, ":6000", c.EndpointAddrHTTP, "process environment wins over .env")
}
