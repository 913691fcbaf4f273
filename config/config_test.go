package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "")
	t.Setenv("DB_SCHEMA", "")
	t.Setenv("CACHE_TTL_SECONDS", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DefaultSchema, cfg.DBSchema)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, int64(100), cfg.RateLimitPerMinute)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "9000")
	t.Setenv("CACHE_TTL_SECONDS", "120")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("ALLOWED_ORIGINS", "https://admin.morpheus.mall")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"https://admin.morpheus.mall"}, cfg.AllowedOrigins)
}

func TestLoad_InvalidNumbers(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	t.Run("cache ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL_SECONDS", "soon")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("rate limit", func(t *testing.T) {
		t.Setenv("CACHE_TTL_SECONDS", "")
		t.Setenv("RATE_LIMIT_PER_MINUTE", "0")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoad_FileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
allowed_origins:
  - https://admin.morpheus.mall
  - https://ops.morpheus.mall
kafka_brokers: ["broker:9092"]
kafka_topic: mall.events
rate_limit_per_minute: 20
cache_ttl_seconds: 90
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("KAFKA_BROKERS", "ignored:9092")
	t.Setenv("CACHE_TTL_SECONDS", "")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://admin.morpheus.mall", "https://ops.morpheus.mall"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"broker:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "mall.events", cfg.KafkaTopic)
	assert.Equal(t, int64(20), cfg.RateLimitPerMinute)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBHost: "db", DBPort: "5432", DBUser: "mall", DBPassword: "secret",
		DBName: "mall", DBSSLMode: "disable", DBSchema: "morpheus",
	}
	assert.Equal(t,
		"host=db port=5432 user=mall password=secret dbname=mall sslmode=disable search_path=morpheus",
		cfg.DSN())
}
