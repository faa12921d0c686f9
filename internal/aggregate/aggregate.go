package aggregate

import (
	"math"

	"github.com/cookshelf/backend/internal/models"
)

// Recompute derives a recipe's aggregate fields from its instruction set:
// complexity is the arithmetic mean of the instructions' complexity rounded to
// one decimal, time to prepare is the sum of the instructions' times.
//
// A recipe with no instructions resets both aggregates to zero. This is a
// deliberate policy choice: keeping the stale value would leave a recipe
// claiming preparation effort it no longer has.
func Recompute(instructions []models.RecipeInstruction) (complexity float64, timeToPrepare int) {
	if len(instructions) == 0 {
		return 0, 0
	}
	var sum float64
	for _, in := range instructions {
		sum += in.Complexity
		timeToPrepare += in.TimeInMinutes
	}
	complexity = math.Round(sum/float64(len(instructions))*10) / 10
	return complexity, timeToPrepare
}

// Apply recomputes and writes the aggregates onto the recipe.
func Apply(recipe *models.Recipe, instructions []models.RecipeInstruction) {
	recipe.Complexity, recipe.TimeToPrepare = Recompute(instructions)
}
