package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	apperr "github.com/cookshelf/backend/internal/errors"
	"github.com/cookshelf/backend/internal/models"
	"github.com/cookshelf/backend/internal/repository"
)

// seedFile is the fixture format: recipes reference their category by name,
// categories are created on first use.
type seedFile struct {
	Recipes []seedRecipe `json:"recipes"`
}

type seedRecipe struct {
	Name         string            `json:"name"`
	Category     string            `json:"category"`
	Calories     float64           `json:"calories"`
	Carbo        float64           `json:"carbo"`
	Fats         float64           `json:"fats"`
	Proteins     float64           `json:"proteins"`
	Cholesterol  float64           `json:"cholesterol"`
	Serves       int               `json:"serves"`
	Instructions []seedInstruction `json:"instructions"`
}

type seedInstruction struct {
	Text          string  `json:"text"`
	Category      string  `json:"category"`
	TimeInMinutes int     `json:"time_in_minutes"`
	Complexity    float64 `json:"complexity"`
}

// Seeder imports recipe fixtures. Used by both the seed CLI and the worker.
type Seeder struct {
	recipes    *repository.RecipeRepository
	categories *repository.CategoryRepository
	actorID    uint
	logger     *zap.Logger
}

func NewSeeder(recipes *repository.RecipeRepository, categories *repository.CategoryRepository, actorID uint, logger *zap.Logger) *Seeder {
	return &Seeder{
		recipes:    recipes,
		categories: categories,
		actorID:    actorID,
		logger:     logger,
	}
}

// Run imports every recipe in the fixture file. Import is not transactional
// across recipes: a bad entry aborts the run but earlier recipes stay.
func (s *Seeder) Run(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInvalid, "failed to read fixture file")
	}

	var file seedFile
	if err := json.Unmarshal(data, &file); err != nil {
		return apperr.Wrap(err, apperr.CodeInvalid, "failed to parse fixture file")
	}

	for _, entry := range file.Recipes {
		if err := s.importRecipe(ctx, entry); err != nil {
			return fmt.Errorf("importing %q: %w", entry.Name, err)
		}
	}

	s.logger.Info("seeded recipes", zap.String("path", path), zap.Int("count", len(file.Recipes)))
	return nil
}

func (s *Seeder) importRecipe(ctx context.Context, entry seedRecipe) error {
	var categoryID *uint
	if entry.Category != "" {
		category, err := s.ensureCategory(ctx, entry.Category)
		if err != nil {
			return err
		}
		categoryID = &category.ID
	}

	serves := entry.Serves
	if serves < 1 {
		serves = 1
	}

	recipe := &models.Recipe{
		Name:             entry.Name,
		RecipeCategoryID: categoryID,
		Calories:         entry.Calories,
		Carbo:            entry.Carbo,
		Fats:             entry.Fats,
		Proteins:         entry.Proteins,
		Cholesterol:      entry.Cholesterol,
		Serves:           serves,
		IsPublished:      true,
		CreatedByID:      s.actorID,
	}
	for _, step := range entry.Instructions {
		recipe.Instructions = append(recipe.Instructions, models.RecipeInstruction{
			Text:          step.Text,
			Category:      step.Category,
			TimeInMinutes: step.TimeInMinutes,
			Complexity:    step.Complexity,
		})
	}

	_, err := s.recipes.Create(ctx, recipe)
	return err
}

func (s *Seeder) ensureCategory(ctx context.Context, name string) (*models.RecipeCategory, error) {
	category, err := s.categories.FindByName(ctx, name)
	if err == nil {
		return category, nil
	}
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		return nil, err
	}
	return s.categories.Create(ctx, &models.RecipeCategory{Name: name, CreatedByID: s.actorID})
}
