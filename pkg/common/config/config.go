package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers []string
	KafkaGroupID string

	// Event topics
	ContestEventsTopic  string
	CollectRequestTopic string

	// Media source (tag lookup + recent media)
	MediaSourceBaseURL     string
	MediaSourceAccessToken string
	MediaSourceTimeout     time.Duration
	MediaSourcePageSize    int

	// Collector
	CollectorInterval time.Duration

	// Vote counter cache
	VoteCountCacheTTL time.Duration

	// Admin API
	AdminKeyHash string

	// Caption screening
	ScreeningRulesPath string

	// Rate limiting
	RateLimitRPS   int
	RateLimitBurst int
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "framefest"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "framefest123"),
		PostgresDB:       getEnv("POSTGRES_DB", "framefest"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers: getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "framefest-platform"),

		ContestEventsTopic:  getEnv("CONTEST_EVENTS_TOPIC", "contest-events"),
		CollectRequestTopic: getEnv("COLLECT_REQUEST_TOPIC", "collect-requests"),

		MediaSourceBaseURL:     getEnv("MEDIA_SOURCE_BASE_URL", "https://graph.facebook.com/v18.0"),
		MediaSourceAccessToken: getEnv("MEDIA_SOURCE_ACCESS_TOKEN", ""),
		MediaSourceTimeout:     getDuration("MEDIA_SOURCE_TIMEOUT", 15*time.Second),
		MediaSourcePageSize:    getIntEnv("MEDIA_SOURCE_PAGE_SIZE", 50),

		CollectorInterval: getDuration("COLLECTOR_INTERVAL", 1*time.Hour),

		VoteCountCacheTTL: getDuration("VOTE_COUNT_CACHE_TTL", 30*time.Second),

		AdminKeyHash: getEnv("ADMIN_KEY_HASH", ""),

		ScreeningRulesPath: getEnv("SCREENING_RULES_PATH", ""),

		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
