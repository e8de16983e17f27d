package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Log        LogConfig
	S3         S3Config
	Interleave InterleaveConfig
	Evaluation EvaluationConfig
	Email      EmailConfig
	Ingestion  IngestionConfig
	Sentry     SentryConfig
}

// InterleaveConfig parameterises C2/C3 (spec.md §6).
type InterleaveConfig struct {
	RecommendationsPerUser    int // L for article multileave
	TopicsMultileavedPerBatch int // L for topic multileave
	SystemsMultileavedPerUser int // K for both
	UsersPerBatch             int // page size B
	CommonPrefix              bool
}

// EvaluationConfig parameterises C6 (spec.md §6).
type EvaluationConfig struct {
	ClickedEmailWeight float64
	ClickedWebWeight   float64
	SavedWeight        float64
	StateWeights       map[string]float64
}

// EmailConfig parameterises C4 (spec.md §4.4, §6).
type EmailConfig struct {
	ArticlesPerDateInEmail int
	DigestWeekday          int // 0-6, used for weekly cadence
	BaseURL                string
	SendTimeout            time.Duration
	FromAddress            string
	ResendAPIKey           string
}

// IngestionConfig bounds the external push surface (spec.md §6).
type IngestionConfig struct {
	MaxUsersPerRecommendation int
	MaxRecommendationsPerUser int
	MaxExplanationLen         int
	MaxTopicLength            int
}

// SentryConfig configures fatal-path error reporting for batch jobs.
type SentryConfig struct {
	DSN         string
	Environment string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret   string
	RefreshSecret  string
	AccessExpiry   time.Duration
	RefreshExpiry  time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// S3Config holds S3 storage configuration
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "arxivdigest"),
			Password:        getEnv("DB_PASSWORD", "arxivdigest"),
			DBName:          getEnv("DB_NAME", "arxivdigest"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			AccessSecret:   getEnv("JWT_ACCESS_SECRET", ""),
			RefreshSecret:  getEnv("JWT_REFRESH_SECRET", ""),
			AccessExpiry:   getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry:  getEnvAsDuration("JWT_REFRESH_EXPIRY", 168*time.Hour),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Bucket:    getEnv("S3_BUCKET", ""),
			Region:    getEnv("S3_REGION", "eu-central"),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
		},
		Interleave: InterleaveConfig{
			RecommendationsPerUser:    getEnvAsInt("RECOMMENDATIONS_PER_USER", 10),
			TopicsMultileavedPerBatch: getEnvAsInt("TOPICS_MULTILEAVED_PER_BATCH", 10),
			SystemsMultileavedPerUser: getEnvAsInt("SYSTEMS_MULTILEAVED_PER_USER", 3),
			UsersPerBatch:             getEnvAsInt("USERS_PER_BATCH", 500),
			CommonPrefix:              getEnvAsBool("INTERLEAVE_COMMON_PREFIX", false),
		},
		Evaluation: EvaluationConfig{
			ClickedEmailWeight: getEnvAsFloat("CLICKED_EMAIL_WEIGHT", 1.0),
			ClickedWebWeight:   getEnvAsFloat("CLICKED_WEB_WEIGHT", 1.0),
			SavedWeight:        getEnvAsFloat("SAVED_WEIGHT", 2.0),
			StateWeights: map[string]float64{
				"USER_ADDED":                   getEnvAsFloat("STATE_WEIGHT_USER_ADDED", 2.0),
				"USER_REJECTED":                getEnvAsFloat("STATE_WEIGHT_USER_REJECTED", 0.0),
				"SYSTEM_RECOMMENDED_ACCEPTED":  getEnvAsFloat("STATE_WEIGHT_SYSTEM_RECOMMENDED_ACCEPTED", 1.0),
				"SYSTEM_RECOMMENDED_REJECTED":  getEnvAsFloat("STATE_WEIGHT_SYSTEM_RECOMMENDED_REJECTED", 0.0),
				"EXPIRED":                      getEnvAsFloat("STATE_WEIGHT_EXPIRED", 0.0),
				"REFRESHED":                    getEnvAsFloat("STATE_WEIGHT_REFRESHED", 0.5),
			},
		},
		Email: EmailConfig{
			ArticlesPerDateInEmail: getEnvAsInt("ARTICLES_PER_DATE_IN_EMAIL", 5),
			DigestWeekday:          getEnvAsInt("DIGEST_WEEKDAY", 4),
			BaseURL:                getEnv("DIGEST_BASE_URL", "http://localhost:8080"),
			SendTimeout:            getEnvAsDuration("MAIL_SEND_TIMEOUT", 10*time.Second),
			FromAddress:            getEnv("MAIL_FROM_ADDRESS", "digest@arxivdigest.example"),
			ResendAPIKey:           getEnv("RESEND_API_KEY", ""),
		},
		Ingestion: IngestionConfig{
			MaxUsersPerRecommendation: getEnvAsInt("MAX_USERS_PER_RECOMMENDATION", 10000),
			MaxRecommendationsPerUser: getEnvAsInt("MAX_RECOMMENDATIONS_PER_USER", 100),
			MaxExplanationLen:         getEnvAsInt("MAX_EXPLANATION_LEN", 280),
			MaxTopicLength:            getEnvAsInt("MAX_TOPIC_LENGTH", 64),
		},
		Sentry: SentryConfig{
			DSN:         getEnv("SENTRY_DSN", ""),
			Environment: getEnv("SENTRY_ENVIRONMENT", "development"),
		},
	}

	// Validate required fields
	if cfg.JWT.AccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.JWT.RefreshSecret == "" {
		return nil, fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
