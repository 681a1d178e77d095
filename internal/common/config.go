package common

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	Extract  ExtractConfig
	Notify   NotifyConfig
	Storage  StorageConfig
	Queue    QueueConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string `validate:"required"`
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr      string `validate:"required"`
	BodyLimit int    `validate:"gt=0"`
}

// OCRConfig holds recognition-related configuration
type OCRConfig struct {
	Language string `validate:"required"`
	DPI      int    `validate:"gt=0"`
	MaxPages int    // 0 = no limit
}

// ExtractConfig holds extraction rule configuration
type ExtractConfig struct {
	RulesPath string // optional JSON rule file; empty -> compiled-in defaults
}

// NotifyConfig holds downstream notification configuration
type NotifyConfig struct {
	BaseURL string        `validate:"required,url"`
	Timeout time.Duration `validate:"gt=0"`
}

// StorageConfig holds transient file and archive configuration
type StorageConfig struct {
	UploadDir string `validate:"required"`
	S3Bucket  string // optional; empty disables archival
	S3Region  string
}

// QueueConfig holds background worker configuration
type QueueConfig struct {
	Workers        int `validate:"gt=0"`
	Size           int `validate:"gt=0"`
	ProcessTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			Addr:      getEnv("HTTP_ADDR", ":8000"),
			BodyLimit: getEnvAsInt("HTTP_BODY_LIMIT", 32<<20),
		},
		OCR: OCRConfig{
			Language: getEnv("OCR_LANG", "eng"),
			DPI:      getEnvAsInt("OCR_DPI", 300),
			MaxPages: getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		Extract: ExtractConfig{
			RulesPath: getEnv("RULES_PATH", ""),
		},
		Notify: NotifyConfig{
			BaseURL: getEnv("NOTIFICATION_SERVICE_URL", "http://notification-service:8080"),
			Timeout: getEnvAsDuration("NOTIFY_TIMEOUT", 5*time.Second),
		},
		Storage: StorageConfig{
			UploadDir: getEnv("UPLOAD_DIR", os.TempDir()),
			S3Bucket:  getEnv("S3_BUCKET_NAME", ""),
			S3Region:  getEnv("AWS_REGION", "us-east-1"),
		},
		Queue: QueueConfig{
			Workers:        getEnvAsInt("QUEUE_WORKERS", 4),
			Size:           getEnvAsInt("QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("QUEUE_PROCESS_TIMEOUT", 3*time.Minute),
		},
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return NewAppError("CONFIG_ERROR", "invalid configuration", err)
	}
	return nil
}

// Helper functions for environment variable parsing
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
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
