package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "memory", c.Cache.Backend)
	assert.Equal(t, 300*time.Second, c.Cache.TTL)
	assert.Equal(t, 30, c.RateLimit.Max)
	assert.Equal(t, time.Hour, c.RateLimit.Window)
	assert.Equal(t, 200, c.Scrape.FetchCap)
	assert.Equal(t, 20, c.Scrape.PageSize)
	assert.Equal(t, 1, c.Classifier.FlagThreshold)
	assert.Equal(t, "llama-3.3-70b-versatile", c.LLM.Model)
	assert.Equal(t, "none", c.History.Backend)
}

func TestLoadKeepsFileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
cache:
  backend: redis
  ttl: 60s
rate_limit:
  max: 5
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "redis", c.Cache.Backend)
	assert.Equal(t, time.Minute, c.Cache.TTL)
	assert.Equal(t, 5, c.RateLimit.Max)
	assert.True(t, c.UsesRedis())
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "cache:\n  backend: memcached\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "cache.backend")
}

func TestKafkaHistoryRequiresBrokers(t *testing.T) {
	path := writeConfig(t, "history:\n  backend: kafka\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "kafka.brokers")
}

func TestApplyEnvOverrides(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	env := map[string]string{
		"SCRAPEDO_API_TOKEN": "tok",
		"GROQ_API_KEY":       "key",
		"PORT":               "7000",
		"REDIS_ADDR":         "cache.internal:6380",
		"KAFKA_BROKERS":      "k1:9092,k2:9092",
	}
	c.applyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "tok", c.Scrape.ProxyToken)
	assert.Equal(t, "key", c.LLM.APIKey)
	assert.Equal(t, 7000, c.Server.Port)
	assert.Equal(t, "cache.internal", c.Redis.Host)
	assert.Equal(t, 6380, c.Redis.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
}

func TestRefreshRequiresRedisCache(t *testing.T) {
	path := writeConfig(t, "refresh:\n  enabled: true\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "refresh.enabled requires")

	path = writeConfig(t, "cache:\n  backend: redis\nrefresh:\n  enabled: true\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Refresh.Workers)
	assert.Equal(t, 3, cfg.Refresh.RetryLimit)
}
