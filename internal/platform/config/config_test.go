package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.PostgresDSN)
	assert.Nil(t, cfg.Kafka.Brokers)
	assert.Equal(t, "nameaffirm.idv.attempts", cfg.Kafka.IDVTopic)
	assert.Equal(t, "nameaffirm.proctoring.attempts", cfg.Kafka.ProctoringTopic)
	assert.Equal(t, time.Hour, cfg.ConfigCacheTTL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("NAMEAFFIRM_ADDR", ":9000")
	t.Setenv("NAMEAFFIRM_KAFKA_BROKERS", " broker-1:9092, broker-2:9092 ,broker-1:9092,")
	t.Setenv("NAMEAFFIRM_CONFIG_CACHE_TTL", "15m")
	t.Setenv("NAMEAFFIRM_REDIS_POOL_SIZE", "32")

	cfg := FromEnv()

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 15*time.Minute, cfg.ConfigCacheTTL)
	assert.Equal(t, 32, cfg.Redis.PoolSize)
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("NAMEAFFIRM_REDIS_POOL_SIZE", "lots")
	t.Setenv("NAMEAFFIRM_CONFIG_CACHE_TTL", "soon")

	cfg := FromEnv()

	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, time.Hour, cfg.ConfigCacheTTL)
}
