package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Kafka configuration
	Kafka KafkaConfig

	// Reservation and reconciliation tuning
	Booking BookingConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	CacheTTL time.Duration
}

// KafkaConfig holds Kafka configuration for the event-cancellation pipeline
type KafkaConfig struct {
	Brokers               []string
	EventCancelledTopic   string
	RefundConsumerGroupID string
	Enabled               bool
}

// BookingConfig holds hold/booking TTLs and sweep intervals
type BookingConfig struct {
	// HoldTTL is how long a seat hold or a pending booking may live before a
	// reconciliation sweep reclaims it.
	HoldTTL time.Duration

	// ReferenceMaxAttempts bounds the booking-reference collision retry loop.
	ReferenceMaxAttempts int

	HoldSweepInterval        time.Duration
	BookingSweepInterval     time.Duration
	EventStatusSweepInterval time.Duration
	RefundRetryInterval      time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "stagepass_db"),
			User:     getEnv("DB_USER", "stagepass_user"),
			Password: getEnv("DB_PASSWORD", "stagepass_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			CacheTTL: getDurationEnv("REDIS_CACHE_TTL", 1*time.Hour),
		},

		Kafka: KafkaConfig{
			Brokers:               getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			EventCancelledTopic:   getEnv("KAFKA_EVENT_CANCELLED_TOPIC", "event-cancellations"),
			RefundConsumerGroupID: getEnv("KAFKA_REFUND_GROUP_ID", "stagepass-refund-workers"),
			Enabled:               getBoolEnv("KAFKA_ENABLED", true),
		},

		Booking: BookingConfig{
			HoldTTL:                  getDurationEnv("HOLD_TTL", 15*time.Minute),
			ReferenceMaxAttempts:     getIntEnv("BOOKING_REF_MAX_ATTEMPTS", 4),
			HoldSweepInterval:        getDurationEnv("HOLD_SWEEP_INTERVAL", 5*time.Minute),
			BookingSweepInterval:     getDurationEnv("BOOKING_SWEEP_INTERVAL", 5*time.Minute),
			EventStatusSweepInterval: getDurationEnv("EVENT_STATUS_SWEEP_INTERVAL", 1*time.Hour),
			RefundRetryInterval:      getDurationEnv("REFUND_RETRY_INTERVAL", 10*time.Minute),
		},

		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
