package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration so main stays lean. Values come
// from the environment with development defaults baked in.
type Config struct {
	Addr          string
	PostgresDSN   string
	JWTSigningKey string

	Redis RedisConfig
	Kafka KafkaConfig

	// ConfigCacheTTL bounds staleness of the per-user certificate flag cache.
	ConfigCacheTTL time.Duration
}

// RedisConfig holds connection settings for the config cache backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds broker and topic settings for attempt event consumption
// and name-update notifications.
type KafkaConfig struct {
	Brokers            []string
	ConsumerGroup      string
	IDVTopic           string
	ProctoringTopic    string
	NotificationsTopic string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:          envOr("NAMEAFFIRM_ADDR", ":8080"),
		PostgresDSN:   envOr("NAMEAFFIRM_POSTGRES_DSN", ""),
		JWTSigningKey: envOr("NAMEAFFIRM_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Redis: RedisConfig{
			URL:          envOr("NAMEAFFIRM_REDIS_URL", ""),
			PoolSize:     envInt("NAMEAFFIRM_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("NAMEAFFIRM_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("NAMEAFFIRM_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("NAMEAFFIRM_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("NAMEAFFIRM_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:            splitList(envOr("NAMEAFFIRM_KAFKA_BROKERS", "")),
			ConsumerGroup:      envOr("NAMEAFFIRM_KAFKA_GROUP", "nameaffirm"),
			IDVTopic:           envOr("NAMEAFFIRM_KAFKA_IDV_TOPIC", "nameaffirm.idv.attempts"),
			ProctoringTopic:    envOr("NAMEAFFIRM_KAFKA_PROCTORING_TOPIC", "nameaffirm.proctoring.attempts"),
			NotificationsTopic: envOr("NAMEAFFIRM_KAFKA_NOTIFICATIONS_TOPIC", "nameaffirm.name.updates"),
		},
		ConfigCacheTTL: envDuration("NAMEAFFIRM_CONFIG_CACHE_TTL", time.Hour),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// splitList parses a comma-separated value like a broker list, trimming each
// entry and dropping empties and duplicates while preserving order.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
