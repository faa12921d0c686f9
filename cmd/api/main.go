package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/cookshelf/backend/config"
	"github.com/cookshelf/backend/internal/database"
	"github.com/cookshelf/backend/internal/jobs"
	"github.com/cookshelf/backend/internal/logger"
	"github.com/cookshelf/backend/internal/server"
	"github.com/cookshelf/backend/internal/service"
)

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

	s3Cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		zapLogger.Warn("s3 unavailable, image uploads disabled", zap.Error(err))
		s3Cfg = nil
	}

	var generator service.TextGenerator
	if cfg.GeminiAPIKey != "" {
		generator, err = service.NewGeminiGenerator(ctx, cfg.GeminiAPIKey)
		if err != nil {
			zapLogger.Warn("gemini unavailable, summaries disabled", zap.Error(err))
			generator = nil
		}
	}

	jobClient := jobs.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, zapLogger)
	defer func() { _ = jobClient.Close() }()

	srv := server.New(server.Deps{
		Config:    cfg,
		DB:        db,
		Redis:     redisClient,
		S3:        s3Cfg,
		Enqueuer:  jobClient,
		Generator: generator,
		Logger:    zapLogger,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(cfg.ServerHost + ":" + cfg.ServerPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		zapLogger.Info("received signal", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("shutdown error", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
