package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(envOf(map[string]string{"AUTH_HS256_SECRET": "s"}))
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 3, cfg.RateLimit.Limit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "chirp:ratelimit:posts", cfg.RateLimit.Prefix)
	assert.False(t, cfg.RateLimit.FailOpen)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(envOf(map[string]string{
		"AUTH_JWKS_URL":        "https://clerk.example.com/.well-known/jwks.json",
		"APPVIEW_PORT":         "9000",
		"LOG_LEVEL":            "debug",
		"REDIS_URL":            "redis://localhost:6379/0",
		"RATE_LIMIT_PREFIX":    "test",
		"RATE_LIMIT_POSTS":     "5",
		"RATE_LIMIT_WINDOW":    "30s",
		"RATE_LIMIT_FAIL_OPEN": "true",
		"CORS_ALLOWED_ORIGINS": "https://a.example.com, https://b.example.com",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 5, cfg.RateLimit.Limit)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, "test", cfg.RateLimit.Prefix)
	assert.True(t, cfg.RateLimit.FailOpen)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "no auth source", env: map[string]string{}},
		{name: "bad window", env: map[string]string{"AUTH_HS256_SECRET": "s", "RATE_LIMIT_WINDOW": "soon"}},
		{name: "zero limit", env: map[string]string{"AUTH_HS256_SECRET": "s", "RATE_LIMIT_POSTS": "0"}},
		{name: "bad bool", env: map[string]string{"AUTH_HS256_SECRET": "s", "RATE_LIMIT_FAIL_OPEN": "maybe"}},
		{name: "bad log level", env: map[string]string{"AUTH_HS256_SECRET": "s", "LOG_LEVEL": "loud"}},
		{name: "plain http jwks in production", env: map[string]string{"AUTH_JWKS_URL": "http://idp.local/jwks"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(envOf(tt.env))
			assert.Error(t, err)
		})
	}
}
