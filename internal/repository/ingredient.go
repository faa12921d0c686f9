package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperr "github.com/cookshelf/backend/internal/errors"
	"github.com/cookshelf/backend/internal/models"
)

type IngredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

func (r *IngredientRepository) List(ctx context.Context) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if err := r.db.WithContext(ctx).Preload("Category").Order("name ASC").Find(&ingredients).Error; err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to list ingredients")
	}
	return ingredients, nil
}

func (r *IngredientRepository) FindByID(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).Preload("Category").First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "ingredient not found")
		}
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to load ingredient")
	}
	return &ingredient, nil
}

func (r *IngredientRepository) Create(ctx context.Context, ingredient *models.Ingredient) (*models.Ingredient, error) {
	if err := r.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Newf(apperr.CodeConflict, "ingredient %q already exists", ingredient.Name)
		}
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to create ingredient")
	}
	return ingredient, nil
}

func (r *IngredientRepository) CreateCategory(ctx context.Context, category *models.IngredientCategory) (*models.IngredientCategory, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Newf(apperr.CodeConflict, "ingredient category %q already exists", category.Name)
		}
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to create ingredient category")
	}
	return category, nil
}
