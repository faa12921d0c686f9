package main

import (
	"context"
	"flag"
	"log"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/cookshelf/backend/config"
	"github.com/cookshelf/backend/internal/database"
	"github.com/cookshelf/backend/internal/jobs"
	"github.com/cookshelf/backend/internal/logger"
	"github.com/cookshelf/backend/internal/repository"
)

// Imports a recipe fixture file, either directly or via the worker queue.
func main() {
	path := flag.String("file", "fixtures/recipes.json", "Fixture file to import")
	actorID := flag.Uint("actor", 1, "User id recorded as the creator")
	enqueue := flag.Bool("enqueue", false, "Enqueue the import instead of running it inline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	ctx := context.Background()

	if *enqueue {
		client := jobs.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, zapLogger)
		defer func() { _ = client.Close() }()

		if err := client.EnqueueSeed(ctx, *path); err != nil {
			zapLogger.Fatal("failed to enqueue seed job", zap.Error(err))
		}
		zapLogger.Info("seed job enqueued", zap.String("path", *path))
		return
	}

	db, err := database.New(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	seeder := jobs.NewSeeder(
		repository.NewRecipeRepository(db, zapLogger),
		repository.NewCategoryRepository(db),
		*actorID,
		zapLogger,
	)
	if err := seeder.Run(ctx, *path); err != nil {
		zapLogger.Fatal("seed failed", zap.Error(err))
	}
}
