package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	apperr "github.com/cookshelf/backend/internal/errors"
	"github.com/cookshelf/backend/internal/models"
	"github.com/cookshelf/backend/internal/repository"
)

const (
	summaryKeyPrefix = "recipe:summary:"
	summaryTTL       = 24 * time.Hour
)

// TextGenerator produces a short text for a prompt. The production
// implementation calls Gemini; tests use a canned generator.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator generates text with the Gemini API.
type GeminiGenerator struct {
	model *genai.GenerativeModel
}

func NewGeminiGenerator(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiGenerator{model: client.GenerativeModel("gemini-1.5-flash")}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeUnavailable, "gemini request failed")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", apperr.New(apperr.CodeUnavailable, "gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", apperr.New(apperr.CodeUnavailable, "gemini returned no text parts")
	}
	return sb.String(), nil
}

// SummaryService generates one-paragraph recipe summaries asynchronously and
// caches them in redis. The API reads the cache only; generation happens in
// the worker.
type SummaryService struct {
	recipes   *repository.RecipeRepository
	generator TextGenerator
	redis     *redis.Client
	logger    *zap.Logger
}

func NewSummaryService(recipes *repository.RecipeRepository, generator TextGenerator, redisClient *redis.Client, logger *zap.Logger) *SummaryService {
	return &SummaryService{
		recipes:   recipes,
		generator: generator,
		redis:     redisClient,
		logger:    logger,
	}
}

// Get returns the cached summary or RecipeNotFound-style absence when the
// summary has not been generated yet.
func (s *SummaryService) Get(ctx context.Context, recipeID uint) (string, error) {
	summary, err := s.redis.Get(ctx, summaryKey(recipeID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperr.New(apperr.CodeNotFound, "summary not generated yet")
	}
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeUnavailable, "failed to read summary cache")
	}
	return summary, nil
}

// Generate builds a prompt from the recipe, calls the generator and caches
// the result. Called from the worker.
func (s *SummaryService) Generate(ctx context.Context, recipeID uint) error {
	recipe, err := s.recipes.FindByID(ctx, recipeID, false)
	if err != nil {
		return err
	}

	summary, err := s.generator.Generate(ctx, summaryPrompt(recipe))
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, summaryKey(recipeID), summary, summaryTTL).Err(); err != nil {
		return apperr.Wrap(err, apperr.CodeUnavailable, "failed to cache summary")
	}

	s.logger.Info("generated recipe summary", zap.Uint("recipe_id", recipeID))
	return nil
}

func summaryKey(recipeID uint) string {
	return fmt.Sprintf("%s%d", summaryKeyPrefix, recipeID)
}

func summaryPrompt(recipe *models.Recipe) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a short, appetizing one-paragraph summary of the recipe %q.", recipe.Name)
	if recipe.Category != nil {
		fmt.Fprintf(&sb, " It belongs to the %q category.", recipe.Category.Name)
	}
	fmt.Fprintf(&sb, " It serves %d and takes about %d minutes to prepare.", recipe.Serves, recipe.TimeToPrepare)
	if len(recipe.Instructions) > 0 {
		sb.WriteString(" The steps are:")
		for _, instruction := range recipe.Instructions {
			fmt.Fprintf(&sb, " %s.", strings.TrimSuffix(instruction.Text, "."))
		}
	}
	return sb.String()
}
