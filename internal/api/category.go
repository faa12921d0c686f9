package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperr "github.com/cookshelf/backend/internal/errors"
	"github.com/cookshelf/backend/internal/middleware"
	"github.com/cookshelf/backend/internal/models"
	"github.com/cookshelf/backend/internal/repository"
)

// CategoryHandler serves recipe categories. Reads are public; writes are
// admin-only since categories are shared vocabulary across all recipes.
type CategoryHandler struct {
	categories *repository.CategoryRepository
	validator  middleware.TokenValidator
}

func NewCategoryHandler(categories *repository.CategoryRepository, validator middleware.TokenValidator) *CategoryHandler {
	return &CategoryHandler{categories: categories, validator: validator}
}

func (h *CategoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	categories := router.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategory)

		admin := categories.Group("", middleware.Auth(h.validator), middleware.RequireAdmin())
		admin.POST("", h.CreateCategory)
		admin.PATCH("/:id", h.UpdateCategory)
		admin.DELETE("/:id", h.DeleteCategory)
	}
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": categories})
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	category, err := h.categories.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(err, apperr.CodeInvalid, "category name is required"))
		return
	}

	created, err := h.categories.Create(c.Request.Context(), &models.RecipeCategory{
		Name:        req.Name,
		CreatedByID: middleware.Claims(c).UserID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(err, apperr.CodeInvalid, "category name is required"))
		return
	}

	updated, err := h.categories.Update(c.Request.Context(), id, req.Name, middleware.Claims(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
