package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cookshelf/backend/internal/models"
)

func TestRecompute(t *testing.T) {
	instructions := []models.RecipeInstruction{
		{Complexity: 5, TimeInMinutes: 10},
		{Complexity: 4, TimeInMinutes: 25},
	}

	complexity, timeToPrepare := Recompute(instructions)
	assert.Equal(t, 4.5, complexity)
	assert.Equal(t, 35, timeToPrepare)
}

func TestRecomputeRoundsToOneDecimal(t *testing.T) {
	instructions := []models.RecipeInstruction{
		{Complexity: 1, TimeInMinutes: 5},
		{Complexity: 2, TimeInMinutes: 5},
		{Complexity: 2, TimeInMinutes: 5},
	}

	// mean is 1.666..., rounds to 1.7
	complexity, timeToPrepare := Recompute(instructions)
	assert.Equal(t, 1.7, complexity)
	assert.Equal(t, 15, timeToPrepare)
}

func TestRecomputeSingleInstruction(t *testing.T) {
	complexity, timeToPrepare := Recompute([]models.RecipeInstruction{
		{Complexity: 3, TimeInMinutes: 12},
	})
	assert.Equal(t, 3.0, complexity)
	assert.Equal(t, 12, timeToPrepare)
}

func TestRecomputeNoInstructionsResetsToZero(t *testing.T) {
	complexity, timeToPrepare := Recompute(nil)
	assert.Equal(t, 0.0, complexity)
	assert.Equal(t, 0, timeToPrepare)
}

func TestApply(t *testing.T) {
	recipe := &models.Recipe{Complexity: 4.5, TimeToPrepare: 35}

	Apply(recipe, []models.RecipeInstruction{{Complexity: 2, TimeInMinutes: 8}})
	assert.Equal(t, 2.0, recipe.Complexity)
	assert.Equal(t, 8, recipe.TimeToPrepare)

	Apply(recipe, nil)
	assert.Equal(t, 0.0, recipe.Complexity)
	assert.Equal(t, 0, recipe.TimeToPrepare)
}
