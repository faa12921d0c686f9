package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type names. Queue consumers and producers must agree on these.
const (
	TypeImageUpload = "recipe:image_upload"
	TypeSummary     = "recipe:summary"
	TypeSeed        = "recipe:seed"
)

// ImageUploadPayload moves a staged recipe image to S3.
type ImageUploadPayload struct {
	ImageID   uint   `json:"image_id"`
	ObjectKey string `json:"object_key"`
}

// SummaryPayload generates and caches the AI summary for a recipe.
type SummaryPayload struct {
	RecipeID uint `json:"recipe_id"`
}

// SeedPayload loads a recipe fixture file into the database.
type SeedPayload struct {
	Path string `json:"path"`
}

func newTask(taskType string, payload any) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, data), nil
}
