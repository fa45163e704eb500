package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Crypto    CryptoConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Orders    OrdersConfig
	Analytics AnalyticsConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
	File   string // optional rotated log file, in addition to stdout
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// CryptoConfig locates the secret used to encrypt customer PII at rest.
// Key takes precedence, then S3 when enabled, then KeyFile.
type CryptoConfig struct {
	Key       string
	KeyFile   string
	S3Enabled bool
	S3Bucket  string
	S3Region  string
	S3Key     string
}

// RedisConfig holds the analytics cache configuration.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// KafkaConfig holds the order event publisher configuration.
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string

	// PublishTimeout bounds one publish, retries included.
	PublishTimeout time.Duration
}

// OrdersConfig tunes order creation.
type OrdersConfig struct {
	NumberAttempts int
}

// AnalyticsConfig tunes the reporting endpoints.
type AnalyticsConfig struct {
	DefaultWindow time.Duration
	MaxLimit      int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "orders"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			File:   getEnv("LOG_FILE", ""),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		Crypto: CryptoConfig{
			Key:       getEnv("CRYPTO_KEY", ""),
			KeyFile:   getEnv("CRYPTO_KEY_FILE", ""),
			S3Enabled: getEnvAsBool("CRYPTO_KEY_S3_ENABLED", false),
			S3Bucket:  getEnv("CRYPTO_KEY_S3_BUCKET", ""),
			S3Region:  getEnv("CRYPTO_KEY_S3_REGION", "us-east-1"),
			S3Key:     getEnv("CRYPTO_KEY_S3_KEY", "keys/order-pii.key"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsDuration("ANALYTICS_CACHE_TTL", 60*time.Second),
		},
		Kafka: KafkaConfig{
			Enabled:        getEnvAsBool("KAFKA_ENABLED", false),
			Brokers:        getEnvAsList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:          getEnv("KAFKA_TOPIC", "order-events"),
			PublishTimeout: getEnvAsDuration("KAFKA_PUBLISH_TIMEOUT", 5*time.Second),
		},
		Orders: OrdersConfig{
			NumberAttempts: getEnvAsInt("ORDER_NUMBER_ATTEMPTS", 5),
		},
		Analytics: AnalyticsConfig{
			DefaultWindow: getEnvAsDuration("ANALYTICS_DEFAULT_WINDOW", 30*24*time.Hour),
			MaxLimit:      getEnvAsInt("ANALYTICS_MAX_LIMIT", 100),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Crypto.Key == "" && c.Crypto.KeyFile == "" && !c.Crypto.S3Enabled {
		return fmt.Errorf("an encryption key is required (CRYPTO_KEY, CRYPTO_KEY_FILE or CRYPTO_KEY_S3_ENABLED)")
	}

	if c.Crypto.S3Enabled {
		if c.Crypto.S3Bucket == "" {
			return fmt.Errorf("crypto S3 bucket is required when S3 key loading is enabled")
		}
		if c.Crypto.S3Region == "" {
			return fmt.Errorf("crypto S3 region is required when S3 key loading is enabled")
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required when the analytics cache is enabled")
	}

	if c.Redis.TTL <= 0 {
		return fmt.Errorf("analytics cache TTL must be positive")
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers are required when events are enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka topic is required when events are enabled")
		}
		if c.Kafka.PublishTimeout <= 0 {
			return fmt.Errorf("kafka publish timeout must be positive")
		}
	}

	if c.Orders.NumberAttempts < 1 {
		return fmt.Errorf("order number attempts must be at least 1")
	}

	if c.Analytics.DefaultWindow <= 0 {
		return fmt.Errorf("analytics default window must be positive")
	}

	if c.Analytics.MaxLimit < 1 {
		return fmt.Errorf("analytics max limit must be at least 1")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration parses values such as "90s" or "720h".
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
