package repository

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cookshelf/backend/internal/models"
)

// newTestDB opens a fresh in-memory sqlite database with the full schema.
// Each call gets its own database; cache=shared keeps gorm's pooled
// connections pointed at the same in-memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.RecipeCategory{},
		&models.Recipe{},
		&models.RecipeInstruction{},
		&models.IngredientCategory{},
		&models.Ingredient{},
		&models.RecipeIngredient{},
		&models.RecipeImage{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newTestRecipeRepo(t *testing.T) (*RecipeRepository, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewRecipeRepository(db, zap.NewNop()), db
}
