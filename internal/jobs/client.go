package jobs

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	apperr "github.com/cookshelf/backend/internal/errors"
)

// Client enqueues background tasks. It wraps the asynq client so callers
// never touch task construction or queue options.
type Client struct {
	asynq  *asynq.Client
	logger *zap.Logger
}

func NewClient(redisOpt asynq.RedisClientOpt, logger *zap.Logger) *Client {
	return &Client{
		asynq:  asynq.NewClient(redisOpt),
		logger: logger,
	}
}

func (c *Client) Close() error { return c.asynq.Close() }

// EnqueueImageUpload schedules the S3 push for a staged image.
func (c *Client) EnqueueImageUpload(ctx context.Context, imageID uint, objectKey string) error {
	return c.enqueue(ctx, TypeImageUpload, ImageUploadPayload{ImageID: imageID, ObjectKey: objectKey},
		asynq.MaxRetry(5), asynq.Timeout(2*time.Minute))
}

// EnqueueSummary schedules summary generation for a recipe.
func (c *Client) EnqueueSummary(ctx context.Context, recipeID uint) error {
	return c.enqueue(ctx, TypeSummary, SummaryPayload{RecipeID: recipeID},
		asynq.MaxRetry(3), asynq.Timeout(time.Minute))
}

// EnqueueSeed schedules a fixture import.
func (c *Client) EnqueueSeed(ctx context.Context, path string) error {
	return c.enqueue(ctx, TypeSeed, SeedPayload{Path: path},
		asynq.MaxRetry(1), asynq.Timeout(10*time.Minute))
}

func (c *Client) enqueue(ctx context.Context, taskType string, payload any, opts ...asynq.Option) error {
	task, err := newTask(taskType, payload)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to build task")
	}
	info, err := c.asynq.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeUnavailable, "failed to enqueue task")
	}
	c.logger.Debug("enqueued task",
		zap.String("type", taskType),
		zap.String("task_id", info.ID),
		zap.String("queue", info.Queue),
	)
	return nil
}
