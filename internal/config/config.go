package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	RecordStorePostgres = "postgres"
	RecordStoreDynamo   = "dynamodb"
	RecordStoreMemory   = "memory"

	BlobStoreS3     = "s3"
	BlobStoreMemory = "memory"
)

type Config struct {
	Port string

	RecordStore string
	BlobStore   string

	DatabaseURL     string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBConnMaxLife   time.Duration
	AWSRegion       string
	AWSEndpoint     string
	DynamoTable     string
	S3Bucket        string
	S3PublicBaseURL string
	MaxResumeBytes  int64

	ReportLocation *time.Location

	GeminiAPIKey string
	GeminiModel  string

	RedisURL        string
	RateLimit       int
	RateLimitWindow time.Duration
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file loaded, using environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		RecordStore:     getEnv("RECORD_STORE", RecordStorePostgres),
		BlobStore:       getEnv("BLOB_STORE", BlobStoreS3),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		DBMaxOpenConns:  getInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:  getInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLife:   getDuration("DB_CONN_MAX_LIFE", 30*time.Minute),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		AWSEndpoint:     getEnv("AWS_ENDPOINT_URL", ""),
		DynamoTable:     getEnv("DYNAMODB_TABLE", "job_applications"),
		S3Bucket:        getEnv("S3_BUCKET", "resumes"),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		MaxResumeBytes:  int64(getInt("MAX_RESUME_BYTES", 5<<20)),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		RedisURL:        getEnv("REDIS_URL", ""),
		RateLimit:       getInt("RATE_LIMIT", 30),
		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", time.Minute),
	}

	loc, err := time.LoadLocation(getEnv("REPORT_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("REPORT_TIMEZONE: %w", err)
	}
	cfg.ReportLocation = loc

	switch cfg.RecordStore {
	case RecordStorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when RECORD_STORE=%s", RecordStorePostgres)
		}
	case RecordStoreDynamo, RecordStoreMemory:
	default:
		return nil, fmt.Errorf("unknown RECORD_STORE %q", cfg.RecordStore)
	}

	switch cfg.BlobStore {
	case BlobStoreS3, BlobStoreMemory:
	default:
		return nil, fmt.Errorf("unknown BLOB_STORE %q", cfg.BlobStore)
	}

	if cfg.MaxResumeBytes <= 0 {
		return nil, fmt.Errorf("MAX_RESUME_BYTES must be positive")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
		log.Printf("⚠️  Ignoring invalid %s=%q", key, value)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
		log.Printf("⚠️  Ignoring invalid %s=%q", key, value)
	}
	return fallback
}
