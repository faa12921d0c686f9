package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	apperr "github.com/cookshelf/backend/internal/errors"
	"github.com/cookshelf/backend/internal/models"
	"github.com/cookshelf/backend/internal/query"
	"github.com/cookshelf/backend/internal/repository"
)

// recipePatchFields is the closed set of patchable recipe fields, mapped to
// typed setters. Field names outside this set reject the whole patch; there is
// no reflection-style passthrough to the database.
var recipePatchFields = map[string]func(*recipePatch, any) bool{
	"name":               func(p *recipePatch, v any) bool { return asString(v, func(s string) { p.fields["name"] = s }) },
	"recipe_category_id": func(p *recipePatch, v any) bool { return asUint(v, func(u uint) { p.categoryID = &u }) },
	"calories":           nonNegativeSetter("calories"),
	"carbo":              nonNegativeSetter("carbo"),
	"fats":               nonNegativeSetter("fats"),
	"proteins":           nonNegativeSetter("proteins"),
	"cholesterol":        nonNegativeSetter("cholesterol"),
	"serves": func(p *recipePatch, v any) bool {
		return asUint(v, func(u uint) {
			if u >= 1 {
				p.fields["serves"] = u
			} else {
				p.invalid = true
			}
		})
	},
	"is_published": func(p *recipePatch, v any) bool {
		b, ok := v.(bool)
		if ok {
			p.publish = &b
		}
		return ok
	},
}

// instructionPatchFields is the closed set of patchable instruction fields.
var instructionPatchFields = map[string]bool{
	"text":            true,
	"category":        true,
	"time_in_minutes": true,
	"complexity":      true,
}

type recipePatch struct {
	fields     map[string]any
	categoryID *uint
	publish    *bool
	invalid    bool
}

func asString(v any, set func(string)) bool {
	s, ok := v.(string)
	if ok {
		set(s)
	}
	return ok
}

// asUint accepts JSON numbers (float64 after decoding) that are whole and
// non-negative.
func asUint(v any, set func(uint)) bool {
	f, ok := v.(float64)
	if !ok || f < 0 || f != float64(uint(f)) {
		return false
	}
	set(uint(f))
	return true
}

func nonNegativeSetter(column string) func(*recipePatch, any) bool {
	return func(p *recipePatch, v any) bool {
		f, ok := v.(float64)
		if !ok {
			return false
		}
		if f < 0 {
			p.invalid = true
			return true
		}
		p.fields[column] = f
		return true
	}
}

// RecipeService orchestrates the repositories and collaborators behind the
// recipe API. It is the only layer that maps actor identity onto
// authorization and audit decisions; repositories stay transport-agnostic.
type RecipeService struct {
	recipes     *repository.RecipeRepository
	categories  *repository.CategoryRepository
	ingredients *repository.IngredientRepository
	usernames   UsernameResolver
	logger      *zap.Logger
}

func NewRecipeService(
	recipes *repository.RecipeRepository,
	categories *repository.CategoryRepository,
	ingredients *repository.IngredientRepository,
	usernames UsernameResolver,
	logger *zap.Logger,
) *RecipeService {
	return &RecipeService{
		recipes:     recipes,
		categories:  categories,
		ingredients: ingredients,
		usernames:   usernames,
		logger:      logger,
	}
}

// ListRecipes compiles the filter and sort fragments and returns one page of
// visible recipes. The compiled sets are returned as well so the handler can
// build pagination links that preserve the caller's view.
func (s *RecipeService) ListRecipes(ctx context.Context, rawFilters, rawSort string, page, pageSize int) ([]models.Recipe, query.Page, query.FilterSet, query.SortSet, error) {
	filters, err := query.CompileFilters(rawFilters, time.Now().UTC())
	if err != nil {
		return nil, query.Page{}, query.FilterSet{}, query.SortSet{}, err
	}
	sorts, err := query.CompileSort(rawSort)
	if err != nil {
		return nil, query.Page{}, query.FilterSet{}, query.SortSet{}, err
	}

	recipes, pg, err := s.recipes.Find(ctx, filters, sorts, page, pageSize)
	if err != nil {
		return nil, query.Page{}, query.FilterSet{}, query.SortSet{}, err
	}
	return recipes, pg, filters, sorts, nil
}

// GetRecipe returns a visible recipe or RecipeNotFound.
func (s *RecipeService) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	return s.recipes.FindByID(ctx, id, false)
}

// CreateRecipe resolves the category, persists the recipe with any attached
// instructions in one transaction, and returns the hydrated result. Recipes
// publish on creation; the draft state is a plausible future extension.
func (s *RecipeService) CreateRecipe(ctx context.Context, recipe *models.Recipe, actor *TokenClaims) (*models.Recipe, error) {
	if recipe.Name == "" {
		return nil, apperr.New(apperr.CodeInvalid, "recipe name is required")
	}
	if recipe.Serves < 1 {
		recipe.Serves = 1
	}
	for i := range recipe.Instructions {
		if err := validateInstruction(&recipe.Instructions[i]); err != nil {
			return nil, err
		}
	}

	if recipe.RecipeCategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *recipe.RecipeCategoryID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	recipe.CreatedByID = actor.UserID
	recipe.IsPublished = true
	recipe.PublishedByID = &actor.UserID
	recipe.PublishedOn = &now

	return s.recipes.Create(ctx, recipe)
}

// PatchRecipe applies a field-level patch after reducing it to the closed
// allow-list. A changed category is re-validated for existence.
func (s *RecipeService) PatchRecipe(ctx context.Context, id uint, patch map[string]any, actor *TokenClaims) (*models.Recipe, error) {
	if _, err := s.authorizeOwner(ctx, id, actor); err != nil {
		return nil, err
	}

	p := recipePatch{fields: map[string]any{}}
	for key, value := range patch {
		setter, ok := recipePatchFields[key]
		if !ok {
			return nil, apperr.Newf(apperr.CodeInvalid, "field %q is not patchable", key).WithMeta("field", key)
		}
		if !setter(&p, value) || p.invalid {
			return nil, apperr.Newf(apperr.CodeInvalid, "invalid value for field %q", key).WithMeta("field", key)
		}
	}

	if p.categoryID != nil {
		if _, err := s.categories.FindByID(ctx, *p.categoryID); err != nil {
			return nil, err
		}
		p.fields["recipe_category_id"] = *p.categoryID
	}
	if p.publish != nil {
		p.fields["is_published"] = *p.publish
		if *p.publish {
			p.fields["published_by_id"] = actor.UserID
			p.fields["published_on"] = time.Now().UTC()
		}
	}
	if len(p.fields) == 0 {
		return nil, apperr.New(apperr.CodeInvalid, "patch contains no fields")
	}

	return s.recipes.Update(ctx, id, p.fields, actor.UserID)
}

// DeleteRecipe soft-deletes with the actor's audit stamp.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id uint, actor *TokenClaims) error {
	if _, err := s.authorizeOwner(ctx, id, actor); err != nil {
		return err
	}
	return s.recipes.SoftDelete(ctx, id, actor.UserID)
}

// AddInstruction appends a step and recomputes the aggregates.
func (s *RecipeService) AddInstruction(ctx context.Context, recipeID uint, instruction *models.RecipeInstruction, actor *TokenClaims) (*models.Recipe, error) {
	if _, err := s.authorizeOwner(ctx, recipeID, actor); err != nil {
		return nil, err
	}
	if err := validateInstruction(instruction); err != nil {
		return nil, err
	}
	return s.recipes.AddInstruction(ctx, recipeID, instruction, actor.UserID)
}

// UpdateInstruction patches a step after the ownership check.
func (s *RecipeService) UpdateInstruction(ctx context.Context, recipeID, instructionID uint, patch map[string]any, actor *TokenClaims) (*models.Recipe, error) {
	if _, err := s.authorizeOwner(ctx, recipeID, actor); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	for key, value := range patch {
		if !instructionPatchFields[key] {
			return nil, apperr.Newf(apperr.CodeInvalid, "field %q is not patchable", key).WithMeta("field", key)
		}
		switch key {
		case "complexity":
			f, ok := value.(float64)
			if !ok || f < 1 || f > 5 {
				return nil, apperr.New(apperr.CodeInvalid, "instruction complexity must be between 1 and 5")
			}
			fields[key] = f
		case "time_in_minutes":
			f, ok := value.(float64)
			if !ok || f < 0 || f != float64(int(f)) {
				return nil, apperr.New(apperr.CodeInvalid, "instruction time must be a non-negative integer")
			}
			fields[key] = int(f)
		default:
			str, ok := value.(string)
			if !ok {
				return nil, apperr.Newf(apperr.CodeInvalid, "invalid value for field %q", key).WithMeta("field", key)
			}
			fields[key] = str
		}
	}
	if len(fields) == 0 {
		return nil, apperr.New(apperr.CodeInvalid, "patch contains no fields")
	}

	return s.recipes.UpdateInstruction(ctx, recipeID, instructionID, fields, actor.UserID)
}

// DeleteInstruction removes a step and recomputes.
func (s *RecipeService) DeleteInstruction(ctx context.Context, recipeID, instructionID uint, actor *TokenClaims) (*models.Recipe, error) {
	if _, err := s.authorizeOwner(ctx, recipeID, actor); err != nil {
		return nil, err
	}
	return s.recipes.DeleteInstruction(ctx, recipeID, instructionID, actor.UserID)
}

// AddIngredient attaches an existing ingredient with a quantity.
func (s *RecipeService) AddIngredient(ctx context.Context, recipeID, ingredientID uint, quantity float64, actor *TokenClaims) (*models.Recipe, error) {
	if _, err := s.authorizeOwner(ctx, recipeID, actor); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, apperr.New(apperr.CodeInvalid, "quantity must not be negative")
	}
	if _, err := s.ingredients.FindByID(ctx, ingredientID); err != nil {
		return nil, err
	}
	return s.recipes.AddIngredient(ctx, recipeID, ingredientID, quantity)
}

// RemoveIngredient detaches an ingredient.
func (s *RecipeService) RemoveIngredient(ctx context.Context, recipeID, ingredientID uint, actor *TokenClaims) error {
	if _, err := s.authorizeOwner(ctx, recipeID, actor); err != nil {
		return err
	}
	return s.recipes.RemoveIngredient(ctx, recipeID, ingredientID)
}

// CreatorName resolves the display name for a creator id, degrading to the
// raw id when the username service is unavailable. Lookup failures are logged
// and never fail the read.
func (s *RecipeService) CreatorName(ctx context.Context, userID uint) string {
	fallback := strconv.FormatUint(uint64(userID), 10)
	if s.usernames == nil {
		return fallback
	}
	name, err := s.usernames.Resolve(ctx, userID)
	if err != nil {
		s.logger.Warn("username lookup failed, falling back to raw id",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return fallback
	}
	return name
}

// authorizeOwner loads the recipe bypassing the visibility gate (owners may
// edit their drafts) and enforces owner-or-admin on mutation.
func (s *RecipeService) authorizeOwner(ctx context.Context, recipeID uint, actor *TokenClaims) (*models.Recipe, error) {
	recipe, err := s.recipes.FindByID(ctx, recipeID, true)
	if err != nil {
		return nil, err
	}
	if recipe.CreatedByID != actor.UserID && !actor.IsAdmin {
		return nil, apperr.New(apperr.CodeForbidden, "only the recipe owner may modify it")
	}
	return recipe, nil
}

func validateInstruction(instruction *models.RecipeInstruction) error {
	if instruction.Text == "" {
		return apperr.New(apperr.CodeInvalid, "instruction text is required")
	}
	if instruction.Complexity < 1 || instruction.Complexity > 5 {
		return apperr.New(apperr.CodeInvalid, "instruction complexity must be between 1 and 5")
	}
	if instruction.TimeInMinutes < 0 {
		return apperr.New(apperr.CodeInvalid, "instruction time must not be negative")
	}
	return nil
}
