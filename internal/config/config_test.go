package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "GO_ENV", "DATABASE_URL", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"MODEL_DIR", "DATASET_PATH", "STRICT_FEATURES", "LOG_LEVEL", "LOG_FORMAT",
	"BODY_LIMIT_BYTES", "STATS_CACHE_TTL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 10*time.Minute, cfg.StatsCacheTTL)
	assert.False(t, cfg.StrictFeatures)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 65536, cfg.BodyLimitBytes)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GO_ENV", "production")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("MODEL_DIR", "/srv/models")
	t.Setenv("STRICT_FEATURES", "true")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("STATS_CACHE_TTL", "30s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, "/srv/models", cfg.ModelDir)
	assert.True(t, cfg.StrictFeatures)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.StatsCacheTTL)
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"port":       {"PORT", "http"},
		"port range": {"PORT", "70000"},
		"redis db":   {"REDIS_DB", "-1"},
		"ttl":        {"STATS_CACHE_TTL", "soon"},
		"strict":     {"STRICT_FEATURES", "maybe"},
		"body limit": {"BODY_LIMIT_BYTES", "0"},
		"log level":  {"LOG_LEVEL", "verbose"},
		"log format": {"LOG_FORMAT", "xml"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), kv[0])
		})
	}
}
