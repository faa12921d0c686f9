package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cookshelf/backend/internal/models"
)

func TestSummaryPrompt(t *testing.T) {
	recipe := &models.Recipe{
		Name:          "Shakshuka",
		Category:      &models.RecipeCategory{Name: "Breakfast"},
		Serves:        2,
		TimeToPrepare: 30,
		Instructions: []models.RecipeInstruction{
			{Text: "Simmer the sauce."},
			{Text: "Poach the eggs"},
		},
	}

	prompt := summaryPrompt(recipe)
	assert.Contains(t, prompt, `"Shakshuka"`)
	assert.Contains(t, prompt, `"Breakfast"`)
	assert.Contains(t, prompt, "serves 2")
	assert.Contains(t, prompt, "30 minutes")
	assert.Contains(t, prompt, "Simmer the sauce. Poach the eggs.")
}

func TestSummaryKey(t *testing.T) {
	assert.Equal(t, "recipe:summary:42", summaryKey(42))
}
