package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cookshelf/backend/internal/models"
	"github.com/cookshelf/backend/internal/repository"
)

const fixture = `{
  "recipes": [
    {
      "name": "Shakshuka",
      "category": "Breakfast",
      "calories": 320,
      "serves": 2,
      "instructions": [
        {"text": "Simmer the sauce", "complexity": 5, "time_in_minutes": 20},
        {"text": "Poach the eggs", "complexity": 4, "time_in_minutes": 10}
      ]
    },
    {
      "name": "Granola bowl",
      "category": "Breakfast",
      "instructions": []
    }
  ]
}`

func TestSeederRun(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RecipeCategory{},
		&models.Recipe{},
		&models.RecipeInstruction{},
		&models.IngredientCategory{},
		&models.Ingredient{},
		&models.RecipeIngredient{},
		&models.RecipeImage{},
	))

	path := filepath.Join(t.TempDir(), "recipes.json")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))

	logger := zap.NewNop()
	seeder := NewSeeder(
		repository.NewRecipeRepository(db, logger),
		repository.NewCategoryRepository(db),
		1,
		logger,
	)
	require.NoError(t, seeder.Run(context.Background(), path))

	var recipes []models.Recipe
	require.NoError(t, db.Order("id ASC").Find(&recipes).Error)
	require.Len(t, recipes, 2)
	assert.Equal(t, 4.5, recipes[0].Complexity)
	assert.Equal(t, 30, recipes[0].TimeToPrepare)
	assert.Equal(t, 0.0, recipes[1].Complexity)
	assert.Equal(t, 1, recipes[1].Serves)

	// Both recipes share the one created category.
	var count int64
	require.NoError(t, db.Model(&models.RecipeCategory{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSeederRejectsMissingFile(t *testing.T) {
	seeder := NewSeeder(nil, nil, 1, zap.NewNop())
	assert.Error(t, seeder.Run(context.Background(), "/does/not/exist.json"))
}
