package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-application-tracker/internal/analytics"
	"github.com/justsurfingit/job-application-tracker/internal/awsutil"
	"github.com/justsurfingit/job-application-tracker/internal/config"
	"github.com/justsurfingit/job-application-tracker/internal/database"
	"github.com/justsurfingit/job-application-tracker/internal/handlers"
	"github.com/justsurfingit/job-application-tracker/internal/middleware"
	"github.com/justsurfingit/job-application-tracker/internal/services"
	"github.com/justsurfingit/job-application-tracker/internal/storage"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx := context.Background()

	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// 2. Stores (created once, shared read-only by every request)
	records, err := newRecordStore(ctx, cfg)
	if err != nil {
		log.Fatal("Record store unavailable: ", err)
	}
	blobs, memoryBlobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		log.Fatal("Blob store unavailable: ", err)
	}

	// 3. Core services
	appService := services.NewApplicationService(records, blobs)
	if err := appService.VerifyStatusConstraint(ctx); err != nil {
		log.Fatal("Status constraint check failed: ", err)
	}
	log.Println("✅ Status constraint matches application statuses")

	llmService, err := services.NewLLMService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal("Failed to create Gemini client: ", err)
	}
	if !llmService.Enabled() {
		log.Println("⚠️  GEMINI_API_KEY not set, posting extraction disabled")
	}

	// 4. Rate limiting
	var limiter middleware.Limiter = middleware.NewRateLimiter()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("Invalid REDIS_URL: ", err)
		}
		limiter = middleware.NewRedisLimiter(redis.NewClient(opts))
		log.Println("Using Redis rate limiter")
	}

	// 5. Handlers
	appHandler := handlers.NewApplicationHandler(appService, analytics.New(cfg.ReportLocation), llmService, cfg.MaxResumeBytes)

	// 6. Router & CORS
	r := gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// 7. Routes
	handlers.RegisterRoutes(r.Group("/api/v1"), appHandler, middleware.RateLimit(limiter, cfg.RateLimit, cfg.RateLimitWindow))
	if memoryBlobs != nil {
		resumes := &handlers.ResumeHandler{Blobs: memoryBlobs}
		r.GET("/resumes/*key", resumes.GetResume)
	}

	log.Printf("🚀 Server starting on port %s...", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server failed to start: ", err)
	}
}

func newRecordStore(ctx context.Context, cfg *config.Config) (storage.RecordStore, error) {
	switch cfg.RecordStore {
	case config.RecordStorePostgres:
		db, err := database.Connect(database.PostgresConfig{
			DSN:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLife,
		})
		if err != nil {
			return nil, err
		}
		return storage.NewGormStore(db), nil
	case config.RecordStoreDynamo:
		awsConfig, err := awsutil.Load(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		log.Printf("Using DynamoDB table %s", cfg.DynamoTable)
		return storage.NewDynamoStore(awsutil.NewDynamoClient(awsConfig, cfg.AWSEndpoint), cfg.DynamoTable), nil
	case config.RecordStoreMemory:
		log.Println("⚠️  Using in-memory record store, data is lost on restart")
		return storage.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown record store %q", cfg.RecordStore)
}

func newBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, *storage.MemoryBlobStore, error) {
	switch cfg.BlobStore {
	case config.BlobStoreS3:
		awsConfig, err := awsutil.Load(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, nil, err
		}
		client := awsutil.NewS3Client(awsConfig, cfg.AWSEndpoint)
		log.Printf("Using S3 bucket %s", cfg.S3Bucket)
		return storage.NewS3BlobStore(client, cfg.S3Bucket, cfg.AWSRegion, cfg.AWSEndpoint, cfg.S3PublicBaseURL), nil, nil
	case config.BlobStoreMemory:
		base := cfg.S3PublicBaseURL
		if base == "" {
			base = fmt.Sprintf("http://localhost:%s/resumes", cfg.Port)
		}
		blobs := storage.NewMemoryBlobStore(base, "resumes")
		return blobs, blobs, nil
	}
	return nil, nil, fmt.Errorf("unknown blob store %q", cfg.BlobStore)
}
