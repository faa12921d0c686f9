package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperr "github.com/cookshelf/backend/internal/errors"
	"github.com/cookshelf/backend/internal/middleware"
	"github.com/cookshelf/backend/internal/models"
	"github.com/cookshelf/backend/internal/repository"
)

// IngredientHandler serves the shared ingredient catalog. Reads are public;
// like categories, catalog writes are admin-only since ingredients are shared
// across all recipes.
type IngredientHandler struct {
	ingredients *repository.IngredientRepository
	validator   middleware.TokenValidator
}

func NewIngredientHandler(ingredients *repository.IngredientRepository, validator middleware.TokenValidator) *IngredientHandler {
	return &IngredientHandler{ingredients: ingredients, validator: validator}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.GET("/:id", h.GetIngredient)
		ingredients.POST("", middleware.Auth(h.validator), middleware.RequireAdmin(), h.CreateIngredient)
	}
}

func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.ingredients.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": ingredients})
}

func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ingredient, err := h.ingredients.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

type ingredientRequest struct {
	Name                 string `json:"name" binding:"required"`
	IngredientCategoryID *uint  `json:"ingredient_category_id"`
}

func (h *IngredientHandler) CreateIngredient(c *gin.Context) {
	var req ingredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(err, apperr.CodeInvalid, "ingredient name is required"))
		return
	}

	created, err := h.ingredients.Create(c.Request.Context(), &models.Ingredient{
		Name:                 req.Name,
		IngredientCategoryID: req.IngredientCategoryID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
