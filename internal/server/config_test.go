package server

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir in Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

// TestLoadConfigDefaults verifies the defaults used when no variables are set.
func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	expected := *NewConfig()
	expected.AllowedOrigins = []string{}
	assert.Equal(t, expected, *cfg)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Empty(t, cfg.AllowedOrigins)
}

// TestLoadConfigFromEnvironment verifies every variable is read and sanitized.
func TestLoadConfigFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("ALLOWED_ORIGINS", " https://control.example.com , ,http://overlay.local ")
	t.Setenv("MAX_MESSAGE_SIZE", "1024")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("MAX_BODY_BYTES", "2048")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, []string{"https://control.example.com", "http://overlay.local"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(1024), cfg.MaxMessageSize)
	assert.Equal(t, RateLimitConfig{Burst: 5, RefillInterval: 2 * time.Second}, cfg.RateLimit())
	assert.Equal(t, int64(2048), cfg.MaxBodyBytes)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.TrustProxyHeaders)
}

// TestLoadConfigRejectsMalformedValues verifies parse failures surface as errors.
func TestLoadConfigRejectsMalformedValues(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "soon")

	_, err := LoadConfig()
	assert.Error(t, err)
}

// TestSanitizeConfigFallsBackToDefaults verifies out-of-range values are replaced.
func TestSanitizeConfigFallsBackToDefaults(t *testing.T) {
	cfg := sanitizeConfig(Config{
		Port:            "  ",
		MaxMessageSize:  -1,
		RateLimitBurst:  0,
		RateLimitRefill: -time.Second,
		MaxBodyBytes:    0,
		ShutdownTimeout: 0,
	})

	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, int64(defaultMaxMessageSize), cfg.MaxMessageSize)
	assert.Equal(t, defaultRateLimitBurst, cfg.RateLimitBurst)
	assert.Equal(t, defaultRateLimitInterval, cfg.RateLimitRefill)
	assert.Equal(t, int64(defaultMaxBodyBytes), cfg.MaxBodyBytes)
	assert.Equal(t, defaultShutdownTimeout, cfg.ShutdownTimeout)
}
