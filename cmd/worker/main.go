package main

import (
	"context"
	"log"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/cookshelf/backend/config"
	"github.com/cookshelf/backend/internal/database"
	"github.com/cookshelf/backend/internal/jobs"
	"github.com/cookshelf/backend/internal/logger"
	"github.com/cookshelf/backend/internal/repository"
	"github.com/cookshelf/backend/internal/service"
)

// The seed job writes recipes under this system account.
const seedActorID = 1

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	db, err := database.New(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to redis", zap.Error(err))
	}

	ctx := context.Background()

	recipeRepo := repository.NewRecipeRepository(db, zapLogger)
	categoryRepo := repository.NewCategoryRepository(db)

	var images *service.ImageService
	if s3Cfg, err := config.NewS3Config(ctx, cfg); err == nil {
		images = service.NewImageService(recipeRepo, s3Cfg.Client, s3Cfg.BucketName,
			cfg.AWSRegion, cfg.UploadStagingDir, zapLogger)
	} else {
		zapLogger.Warn("s3 unavailable, image upload jobs will fail", zap.Error(err))
	}

	var summaries *service.SummaryService
	if cfg.GeminiAPIKey != "" {
		generator, err := service.NewGeminiGenerator(ctx, cfg.GeminiAPIKey)
		if err != nil {
			zapLogger.Fatal("failed to initialize gemini", zap.Error(err))
		}
		summaries = service.NewSummaryService(recipeRepo, generator, redisClient, zapLogger)
	}

	seeder := jobs.NewSeeder(recipeRepo, categoryRepo, seedActorID, zapLogger)
	handler := jobs.NewHandler(images, summaries, seeder, zapLogger)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
		},
	)

	mux := asynq.NewServeMux()
	handler.Register(mux)

	zapLogger.Info("worker starting", zap.Int("concurrency", cfg.WorkerConcurrency))
	if err := srv.Run(mux); err != nil {
		zapLogger.Fatal("worker stopped with error", zap.Error(err))
	}
}
