package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Record store backends
const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Object store backends
const (
	ObjectStoreS3    = "s3"
	ObjectStoreMinIO = "minio"
	ObjectStoreNone  = "none"
)

// MaxReceiptURLTTL is the longest lifetime S3 accepts for a presigned URL
const MaxReceiptURLTTL = 7 * 24 * time.Hour

// Config holds all configuration for the application
type Config struct {
	// Server
	Port        string
	CORSOrigins []string
	Env         string
	LogLevel    string

	// Record store
	StoreBackend string
	DatabaseURL  string
	Mongo        MongoConfig

	// Receipt storage
	ObjectStore string
	S3          S3Config
	MinIO       MinIOConfig

	// Event fan-out
	AMQP AMQPConfig

	// Rate limiting of mutating routes
	RateLimit RateLimitConfig
}

// MongoConfig holds MongoDB connection settings
type MongoConfig struct {
	URI      string
	Database string
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for LocalStack or another S3-compatible endpoint
	PublicBaseURL   string // Optional: when set, receipt URLs are PublicBaseURL/path instead of presigned
	URLTTL          time.Duration
}

// MinIOConfig holds MinIO configuration
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// AMQPConfig holds the broker settings. An empty URL disables publishing.
type AMQPConfig struct {
	URL      string
	Exchange string
}

// RateLimitConfig holds the per-client request budget
type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		Env:          getEnv("ENV", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", StorePostgres)),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", ""),
			Database: getEnv("MONGO_DATABASE", "giderler"),
		},
		ObjectStore: strings.ToLower(getEnv("OBJECT_STORE", ObjectStoreNone)),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "eu-central-1"),
			Bucket:          getEnv("S3_BUCKET", "giderler-receipts"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			PublicBaseURL:   strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		},
		MinIO: MinIOConfig{
			Endpoint:        getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretAccessKey: getEnv("MINIO_SECRET_KEY", ""),
			BucketName:      getEnv("MINIO_BUCKET", "giderler-receipts"),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "giderler.events"),
		},
	}

	var err error
	if cfg.MinIO.UseSSL, err = getBool("MINIO_USE_SSL", false); err != nil {
		return nil, err
	}
	if cfg.S3.URLTTL, err = getDuration("RECEIPT_URL_TTL", MaxReceiptURLTTL); err != nil {
		return nil, err
	}
	if cfg.RateLimit.PerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 60); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Burst, err = getInt("RATE_LIMIT_BURST", 10); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case StoreMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required")
		}
		if c.Mongo.Database == "" {
			return fmt.Errorf("MONGO_DATABASE is required")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StorePostgres, StoreMongo, c.StoreBackend)
	}

	switch c.ObjectStore {
	case ObjectStoreS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required")
		}
		if c.S3.URLTTL <= 0 || c.S3.URLTTL > MaxReceiptURLTTL {
			return fmt.Errorf("RECEIPT_URL_TTL must be between 1s and %s", MaxReceiptURLTTL)
		}
	case ObjectStoreMinIO:
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required")
		}
		if c.MinIO.BucketName == "" {
			return fmt.Errorf("MINIO_BUCKET is required")
		}
	case ObjectStoreNone:
	default:
		return fmt.Errorf("OBJECT_STORE must be one of s3, minio, none, got %q", c.ObjectStore)
	}

	if c.AMQP.URL != "" && c.AMQP.Exchange == "" {
		return fmt.Errorf("AMQP_EXCHANGE is required when AMQP_URL is set")
	}
	if c.RateLimit.PerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration such as 24h: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
