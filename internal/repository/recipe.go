package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cookshelf/backend/internal/aggregate"
	apperr "github.com/cookshelf/backend/internal/errors"
	"github.com/cookshelf/backend/internal/models"
	"github.com/cookshelf/backend/internal/query"
)

// RecipeRepository is the sole writer boundary for recipes, instructions and
// ingredient mappings. Every instruction mutation runs in one transaction with
// the aggregate recompute so readers never observe instructions and aggregates
// out of step.
type RecipeRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewRecipeRepository(db *gorm.DB, logger *zap.Logger) *RecipeRepository {
	return &RecipeRepository{db: db, logger: logger}
}

// listQuery builds the joined, filtered listing query. Rebuilt for each use so
// the count and page queries never share gorm statement state.
func (r *RecipeRepository) listQuery(ctx context.Context, filters query.FilterSet) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Joins("LEFT JOIN recipe_categories ON recipe_categories.id = recipes.recipe_category_id").
		Where("recipes.is_deleted = ? AND recipes.is_published = ?", false, true)
	for _, f := range filters.Filters {
		q = q.Where(f.Clause, f.Args...)
	}
	return q
}

// Find returns one page of visible recipes plus the page metadata computed
// from the post-filter row count.
func (r *RecipeRepository) Find(ctx context.Context, filters query.FilterSet, sorts query.SortSet, page, pageSize int) ([]models.Recipe, query.Page, error) {
	var total int64
	if err := r.listQuery(ctx, filters).Count(&total).Error; err != nil {
		return nil, query.Page{}, apperr.Wrap(err, apperr.CodeInternal, "failed to count recipes")
	}

	pg, err := query.NewPage(page, pageSize, total)
	if err != nil {
		return nil, query.Page{}, err
	}

	var recipes []models.Recipe
	err = r.listQuery(ctx, filters).
		Order(sorts.OrderClause()).
		Offset(pg.Offset).
		Limit(pg.PageSize).
		Preload("Category").
		Preload("Instructions", instructionOrder).
		Preload("Ingredients.Ingredient").
		Find(&recipes).Error
	if err != nil {
		return nil, query.Page{}, apperr.Wrap(err, apperr.CodeInternal, "failed to list recipes")
	}
	return recipes, pg, nil
}

func instructionOrder(db *gorm.DB) *gorm.DB {
	return db.Order("recipe_instructions.id ASC")
}

// FindByID returns one recipe with its instruction and ingredient lists.
// Unless includeHidden is set (owner-only edit paths), the visibility
// invariant applies and unpublished or soft-deleted recipes read as absent.
func (r *RecipeRepository) FindByID(ctx context.Context, id uint, includeHidden bool) (*models.Recipe, error) {
	q := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Instructions", instructionOrder).
		Preload("Ingredients.Ingredient").
		Preload("Images")
	if includeHidden {
		q = q.Where("id = ? AND is_deleted = ?", id, false)
	} else {
		q = q.Where("id = ? AND is_deleted = ? AND is_published = ?", id, false, true)
	}

	var recipe models.Recipe
	if err := q.First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "recipe not found")
		}
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to load recipe")
	}
	return &recipe, nil
}

// Create persists a recipe together with any attached instructions. The
// aggregates are computed from the instruction set before the insert, so the
// row is never visible in a stale state.
func (r *RecipeRepository) Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	aggregate.Apply(recipe, recipe.Instructions)

	if err := r.db.WithContext(ctx).Create(recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Wrap(err, apperr.CodeConflict, "recipe violates a uniqueness constraint")
		}
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to create recipe")
	}
	return r.FindByID(ctx, recipe.ID, true)
}

// Update applies a field-level patch. The caller (service layer) has already
// reduced the patch to the closed allow-list of patchable columns.
func (r *RecipeRepository) Update(ctx context.Context, id uint, fields map[string]any, actorID uint) (*models.Recipe, error) {
	fields["updated_by_id"] = actorID
	fields["updated_on"] = time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(fields)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, apperr.Wrap(res.Error, apperr.CodeConflict, "recipe violates a uniqueness constraint")
		}
		return nil, apperr.Wrap(res.Error, apperr.CodeInternal, "failed to update recipe")
	}
	if res.RowsAffected == 0 {
		return nil, apperr.New(apperr.CodeNotFound, "recipe not found")
	}
	return r.FindByID(ctx, id, true)
}

// SoftDelete marks the recipe deleted with an audit stamp. The row is never
// physically removed.
func (r *RecipeRepository) SoftDelete(ctx context.Context, id uint, actorID uint) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]any{
			"is_deleted":    true,
			"deleted_by_id": actorID,
			"deleted_on":    now,
		})
	if res.Error != nil {
		return apperr.Wrap(res.Error, apperr.CodeInternal, "failed to delete recipe")
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.CodeNotFound, "recipe not found")
	}
	return nil
}

// lockRecipe loads the recipe row inside tx, taking a row-level lock on
// postgres so concurrent instruction mutations on the same recipe serialize
// on the recompute step. Other dialects (sqlite in tests) run the same path
// without the locking clause.
func (r *RecipeRepository) lockRecipe(tx *gorm.DB, id uint) (*models.Recipe, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var recipe models.Recipe
	if err := q.First(&recipe, "id = ? AND is_deleted = ?", id, false).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "recipe not found")
		}
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to lock recipe")
	}
	return &recipe, nil
}

// recompute re-reads the instruction set inside tx and writes back the
// derived aggregates. Must only run with the recipe row locked.
func (r *RecipeRepository) recompute(tx *gorm.DB, recipeID uint, actorID uint) error {
	var instructions []models.RecipeInstruction
	if err := tx.Where("recipe_id = ?", recipeID).Order("id ASC").Find(&instructions).Error; err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to load instructions for recompute")
	}

	complexity, timeToPrepare := aggregate.Recompute(instructions)
	err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Updates(map[string]any{
		"complexity":      complexity,
		"time_to_prepare": timeToPrepare,
		"updated_by_id":   actorID,
		"updated_on":      time.Now().UTC(),
	}).Error
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to write back aggregates")
	}
	return nil
}

// AddInstruction appends an instruction and recomputes the aggregates in the
// same transaction.
func (r *RecipeRepository) AddInstruction(ctx context.Context, recipeID uint, instruction *models.RecipeInstruction, actorID uint) (*models.Recipe, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.lockRecipe(tx, recipeID); err != nil {
			return err
		}
		instruction.RecipeID = recipeID
		if err := tx.Create(instruction).Error; err != nil {
			return apperr.Wrap(err, apperr.CodeConflict, "failed to create instruction")
		}
		return r.recompute(tx, recipeID, actorID)
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, recipeID, true)
}

// UpdateInstruction patches an instruction after verifying it belongs to the
// given recipe, then recomputes. An instruction id that exists under a
// different recipe reads as absent, not as someone else's step.
func (r *RecipeRepository) UpdateInstruction(ctx context.Context, recipeID, instructionID uint, fields map[string]any, actorID uint) (*models.Recipe, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.lockRecipe(tx, recipeID); err != nil {
			return err
		}

		res := tx.Model(&models.RecipeInstruction{}).
			Where("id = ? AND recipe_id = ?", instructionID, recipeID).
			Updates(fields)
		if res.Error != nil {
			return apperr.Wrap(res.Error, apperr.CodeInternal, "failed to update instruction")
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.CodeNotFound, "recipe has no such instruction")
		}
		return r.recompute(tx, recipeID, actorID)
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, recipeID, true)
}

// DeleteInstruction removes an instruction (ownership-checked) and
// recomputes. Deleting the last instruction resets both aggregates to zero.
func (r *RecipeRepository) DeleteInstruction(ctx context.Context, recipeID, instructionID uint, actorID uint) (*models.Recipe, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.lockRecipe(tx, recipeID); err != nil {
			return err
		}

		res := tx.Where("id = ? AND recipe_id = ?", instructionID, recipeID).
			Delete(&models.RecipeInstruction{})
		if res.Error != nil {
			return apperr.Wrap(res.Error, apperr.CodeInternal, "failed to delete instruction")
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.CodeNotFound, "recipe has no such instruction")
		}
		return r.recompute(tx, recipeID, actorID)
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, recipeID, true)
}

// AddIngredient attaches an ingredient with a quantity. Re-adding the same
// ingredient is a conflict, not an upsert.
func (r *RecipeRepository) AddIngredient(ctx context.Context, recipeID, ingredientID uint, quantity float64) (*models.Recipe, error) {
	mapping := models.RecipeIngredient{
		RecipeID:     recipeID,
		IngredientID: ingredientID,
		Quantity:     quantity,
	}
	if err := r.db.WithContext(ctx).Create(&mapping).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.New(apperr.CodeConflict, "ingredient already on recipe")
		}
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to add ingredient")
	}
	return r.FindByID(ctx, recipeID, true)
}

// RemoveIngredient detaches an ingredient from the recipe.
func (r *RecipeRepository) RemoveIngredient(ctx context.Context, recipeID, ingredientID uint) error {
	res := r.db.WithContext(ctx).
		Where("recipe_id = ? AND ingredient_id = ?", recipeID, ingredientID).
		Delete(&models.RecipeIngredient{})
	if res.Error != nil {
		return apperr.Wrap(res.Error, apperr.CodeInternal, "failed to remove ingredient")
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.CodeNotFound, "recipe has no such ingredient")
	}
	return nil
}

// CreateImage records a pending image upload for a recipe.
func (r *RecipeRepository) CreateImage(ctx context.Context, image *models.RecipeImage) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to record image")
	}
	return nil
}

// MarkImageUploaded flips a pending image to uploaded with its public URL.
func (r *RecipeRepository) MarkImageUploaded(ctx context.Context, imageID uint, url string) error {
	res := r.db.WithContext(ctx).
		Model(&models.RecipeImage{}).
		Where("id = ?", imageID).
		Updates(map[string]any{"state": models.ImageStateUploaded, "url": url})
	if res.Error != nil {
		return apperr.Wrap(res.Error, apperr.CodeInternal, "failed to mark image uploaded")
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.CodeNotFound, "image not found")
	}
	return nil
}
