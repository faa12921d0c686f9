package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperr "github.com/cookshelf/backend/internal/errors"
	"github.com/cookshelf/backend/internal/middleware"
	"github.com/cookshelf/backend/internal/models"
	"github.com/cookshelf/backend/internal/service"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Enqueuer schedules background work from request handlers. Satisfied by
// jobs.Client; tests use a recording stub.
type Enqueuer interface {
	EnqueueImageUpload(ctx context.Context, imageID uint, objectKey string) error
	EnqueueSummary(ctx context.Context, recipeID uint) error
}

type RecipeHandler struct {
	recipes   *service.RecipeService
	images    *service.ImageService
	summaries *service.SummaryService
	enqueuer  Enqueuer
	validator middleware.TokenValidator
	logger    *zap.Logger
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	images *service.ImageService,
	summaries *service.SummaryService,
	enqueuer Enqueuer,
	validator middleware.TokenValidator,
	logger *zap.Logger,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:   recipes,
		images:    images,
		summaries: summaries,
		enqueuer:  enqueuer,
		validator: validator,
		logger:    logger,
	}
}

// RegisterRoutes mounts the recipe routes. Extra write middleware (e.g. the
// rate limiter) runs after authentication on every mutating route.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, writeMiddleware ...gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.GET("/:id/summary", h.GetSummary)

		write := recipes.Group("", middleware.Auth(h.validator))
		write.Use(writeMiddleware...)
		write.POST("", h.CreateRecipe)
		write.PATCH("/:id", h.PatchRecipe)
		write.DELETE("/:id", h.DeleteRecipe)
		write.POST("/:id/instructions", h.AddInstruction)
		write.PATCH("/:id/instructions/:instructionID", h.PatchInstruction)
		write.DELETE("/:id/instructions/:instructionID", h.DeleteInstruction)
		write.POST("/:id/ingredients", h.AddIngredient)
		write.DELETE("/:id/ingredients/:ingredientID", h.RemoveIngredient)
		write.POST("/:id/image", h.UploadImage)
		write.POST("/:id/summary", h.RequestSummary)
	}
}

// ListRecipes serves the filtered, sorted, paginated listing.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "page_size", defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	recipes, pg, filters, sorts, err := h.recipes.ListRecipes(
		c.Request.Context(),
		c.Query("filters"),
		c.Query("sort"),
		page,
		pageSize,
	)
	if err != nil {
		writeError(c, err)
		return
	}

	views := make([]RecipeView, 0, len(recipes))
	for i := range recipes {
		views = append(views, h.view(c.Request.Context(), &recipes[i]))
	}

	c.JSON(http.StatusOK, newPageEnvelope(views, pg, c.Request.URL.Path, filters, sorts))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(c.Request.Context(), recipe))
}

type createRecipeRequest struct {
	Name             string  `json:"name" binding:"required"`
	RecipeCategoryID *uint   `json:"recipe_category_id"`
	Calories         float64 `json:"calories"`
	Carbo            float64 `json:"carbo"`
	Fats             float64 `json:"fats"`
	Proteins         float64 `json:"proteins"`
	Cholesterol      float64 `json:"cholesterol"`
	Serves           int     `json:"serves"`
	Instructions     []struct {
		Text          string  `json:"text"`
		Category      string  `json:"category"`
		TimeInMinutes int     `json:"time_in_minutes"`
		Complexity    float64 `json:"complexity"`
	} `json:"instructions"`
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req createRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(err, apperr.CodeInvalid, "invalid recipe payload"))
		return
	}

	recipe := &models.Recipe{
		Name:             req.Name,
		RecipeCategoryID: req.RecipeCategoryID,
		Calories:         req.Calories,
		Carbo:            req.Carbo,
		Fats:             req.Fats,
		Proteins:         req.Proteins,
		Cholesterol:      req.Cholesterol,
		Serves:           req.Serves,
	}
	for _, step := range req.Instructions {
		recipe.Instructions = append(recipe.Instructions, models.RecipeInstruction{
			Text:          step.Text,
			Category:      step.Category,
			TimeInMinutes: step.TimeInMinutes,
			Complexity:    step.Complexity,
		})
	}

	created, err := h.recipes.CreateRecipe(c.Request.Context(), recipe, middleware.Claims(c))
	if err != nil {
		writeError(c, err)
		return
	}

	if h.enqueuer != nil {
		if err := h.enqueuer.EnqueueSummary(c.Request.Context(), created.ID); err != nil {
			h.logger.Warn("failed to enqueue summary generation",
				zap.Uint("recipe_id", created.ID), zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, h.view(c.Request.Context(), created))
}

func (h *RecipeHandler) PatchRecipe(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, apperr.Wrap(err, apperr.CodeInvalid, "invalid patch payload"))
		return
	}

	updated, err := h.recipes.PatchRecipe(c.Request.Context(), id, patch, middleware.Claims(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(c.Request.Context(), updated))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.recipes.DeleteRecipe(c.Request.Context(), id, middleware.Claims(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type instructionRequest struct {
	Text          string  `json:"text" binding:"required"`
	Category      string  `json:"category"`
	TimeInMinutes int     `json:"time_in_minutes"`
	Complexity    float64 `json:"complexity" binding:"required"`
}

func (h *RecipeHandler) AddInstruction(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req instructionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(err, apperr.CodeInvalid, "invalid instruction payload"))
		return
	}

	updated, err := h.recipes.AddInstruction(c.Request.Context(), id, &models.RecipeInstruction{
		Text:          req.Text,
		Category:      req.Category,
		TimeInMinutes: req.TimeInMinutes,
		Complexity:    req.Complexity,
	}, middleware.Claims(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(c.Request.Context(), updated))
}

func (h *RecipeHandler) PatchInstruction(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	instructionID, ok := idParam(c, "instructionID")
	if !ok {
		return
	}
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, apperr.Wrap(err, apperr.CodeInvalid, "invalid patch payload"))
		return
	}

	updated, err := h.recipes.UpdateInstruction(c.Request.Context(), id, instructionID, patch, middleware.Claims(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(c.Request.Context(), updated))
}

func (h *RecipeHandler) DeleteInstruction(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	instructionID, ok := idParam(c, "instructionID")
	if !ok {
		return
	}

	updated, err := h.recipes.DeleteInstruction(c.Request.Context(), id, instructionID, middleware.Claims(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(c.Request.Context(), updated))
}

type addIngredientRequest struct {
	IngredientID uint    `json:"ingredient_id" binding:"required"`
	Quantity     float64 `json:"quantity"`
}

func (h *RecipeHandler) AddIngredient(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req addIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(err, apperr.CodeInvalid, "invalid ingredient payload"))
		return
	}

	updated, err := h.recipes.AddIngredient(c.Request.Context(), id, req.IngredientID, req.Quantity, middleware.Claims(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(c.Request.Context(), updated))
}

func (h *RecipeHandler) RemoveIngredient(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ingredientID, ok := idParam(c, "ingredientID")
	if !ok {
		return
	}
	if err := h.recipes.RemoveIngredient(c.Request.Context(), id, ingredientID, middleware.Claims(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage stages the multipart file and schedules the S3 push.
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if h.images == nil {
		writeError(c, apperr.New(apperr.CodeUnavailable, "image uploads are not enabled"))
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		writeError(c, apperr.Wrap(err, apperr.CodeInvalid, "image file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		writeError(c, apperr.Wrap(err, apperr.CodeInvalid, "failed to read image file"))
		return
	}
	defer func() { _ = file.Close() }()

	image, err := h.images.Stage(c.Request.Context(), id, fileHeader.Filename, file)
	if err != nil {
		writeError(c, err)
		return
	}

	if h.enqueuer != nil {
		if err := h.enqueuer.EnqueueImageUpload(c.Request.Context(), image.ID, image.ObjectKey); err != nil {
			writeError(c, err)
			return
		}
	}

	c.JSON(http.StatusAccepted, image)
}

// RequestSummary forces (re)generation of the summary.
func (h *RecipeHandler) RequestSummary(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if h.summaries == nil || h.enqueuer == nil {
		writeError(c, apperr.New(apperr.CodeUnavailable, "summaries are not enabled"))
		return
	}
	if _, err := h.recipes.GetRecipe(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	if err := h.enqueuer.EnqueueSummary(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "summary generation scheduled"})
}

// GetSummary returns the cached summary, scheduling generation on a miss.
func (h *RecipeHandler) GetSummary(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	// Summaries are disabled when no generator is configured.
	if h.summaries == nil {
		writeError(c, apperr.New(apperr.CodeUnavailable, "summaries are not enabled"))
		return
	}

	// Only summarize recipes the caller could read.
	if _, err := h.recipes.GetRecipe(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	summary, err := h.summaries.Get(c.Request.Context(), id)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"summary": summary})
		return
	}
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		writeError(c, err)
		return
	}

	if h.enqueuer != nil {
		if err := h.enqueuer.EnqueueSummary(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "summary generation scheduled"})
}

func (h *RecipeHandler) view(ctx context.Context, recipe *models.Recipe) RecipeView {
	return RecipeView{
		Recipe:        *recipe,
		CreatedByName: h.recipes.CreatorName(ctx, recipe.CreatedByID),
	}
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		writeError(c, apperr.Newf(apperr.CodeInvalid, "invalid %s parameter", name))
		return 0, false
	}
	return uint(id), true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
