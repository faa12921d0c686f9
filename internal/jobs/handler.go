package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/cookshelf/backend/internal/service"
)

// Handler processes the background task types. One instance serves the whole
// worker process.
type Handler struct {
	images    *service.ImageService
	summaries *service.SummaryService
	seeder    *Seeder
	logger    *zap.Logger
}

func NewHandler(images *service.ImageService, summaries *service.SummaryService, seeder *Seeder, logger *zap.Logger) *Handler {
	return &Handler{
		images:    images,
		summaries: summaries,
		seeder:    seeder,
		logger:    logger,
	}
}

// Register wires the task types onto the asynq mux.
func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeImageUpload, h.HandleImageUpload)
	mux.HandleFunc(TypeSummary, h.HandleSummary)
	mux.HandleFunc(TypeSeed, h.HandleSeed)
}

func (h *Handler) HandleImageUpload(ctx context.Context, task *asynq.Task) error {
	var payload ImageUploadPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid image upload payload: %w: %w", err, asynq.SkipRetry)
	}

	h.logger.Info("processing image upload",
		zap.Uint("image_id", payload.ImageID),
		zap.String("object_key", payload.ObjectKey),
	)
	return h.images.Upload(ctx, payload.ImageID, payload.ObjectKey)
}

func (h *Handler) HandleSummary(ctx context.Context, task *asynq.Task) error {
	var payload SummaryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid summary payload: %w: %w", err, asynq.SkipRetry)
	}

	h.logger.Info("processing summary generation", zap.Uint("recipe_id", payload.RecipeID))
	return h.summaries.Generate(ctx, payload.RecipeID)
}

func (h *Handler) HandleSeed(ctx context.Context, task *asynq.Task) error {
	var payload SeedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid seed payload: %w: %w", err, asynq.SkipRetry)
	}

	h.logger.Info("processing seed import", zap.String("path", payload.Path))
	return h.seeder.Run(ctx, payload.Path)
}
