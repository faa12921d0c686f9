package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperr "github.com/cookshelf/backend/internal/errors"
	"github.com/cookshelf/backend/internal/models"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.RecipeCategory, error) {
	var categories []models.RecipeCategory
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to list categories")
	}
	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (*models.RecipeCategory, error) {
	var category models.RecipeCategory
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "category not found")
		}
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to load category")
	}
	return &category, nil
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*models.RecipeCategory, error) {
	var category models.RecipeCategory
	if err := r.db.WithContext(ctx).First(&category, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "category not found")
		}
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to load category")
	}
	return &category, nil
}

// Create inserts a category. Names are unique; a duplicate fails the create
// rather than silently reusing the existing row.
func (r *CategoryRepository) Create(ctx context.Context, category *models.RecipeCategory) (*models.RecipeCategory, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Newf(apperr.CodeConflict, "category %q already exists", category.Name)
		}
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to create category")
	}
	return category, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id uint, name string, actorID uint) (*models.RecipeCategory, error) {
	res := r.db.WithContext(ctx).
		Model(&models.RecipeCategory{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":          name,
			"updated_by_id": actorID,
			"updated_on":    time.Now().UTC(),
		})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, apperr.Newf(apperr.CodeConflict, "category %q already exists", name)
		}
		return nil, apperr.Wrap(res.Error, apperr.CodeInternal, "failed to update category")
	}
	if res.RowsAffected == 0 {
		return nil, apperr.New(apperr.CodeNotFound, "category not found")
	}
	return r.FindByID(ctx, id)
}

func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.RecipeCategory{}, "id = ?", id)
	if res.Error != nil {
		return apperr.Wrap(res.Error, apperr.CodeInternal, "failed to delete category")
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.CodeNotFound, "category not found")
	}
	return nil
}
