package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cookshelf/backend/internal/models"
	"github.com/cookshelf/backend/internal/repository"
	"github.com/cookshelf/backend/internal/service"
)

// recordingEnqueuer captures enqueued work instead of touching redis.
type recordingEnqueuer struct {
	imageUploads []uint
	summaries    []uint
}

func (e *recordingEnqueuer) EnqueueImageUpload(_ context.Context, imageID uint, _ string) error {
	e.imageUploads = append(e.imageUploads, imageID)
	return nil
}

func (e *recordingEnqueuer) EnqueueSummary(_ context.Context, recipeID uint) error {
	e.summaries = append(e.summaries, recipeID)
	return nil
}

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	auth     *service.AuthService
	enqueuer *recordingEnqueuer
}

// newTestEnv builds a fully wired router on in-memory sqlite.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	logger := zap.NewNop()
	recipeRepo := repository.NewRecipeRepository(db, logger)
	categoryRepo := repository.NewCategoryRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	userRepo := repository.NewUserRepository(db)

	auth := service.NewAuthService(userRepo, "test-secret")
	recipes := service.NewRecipeService(recipeRepo, categoryRepo, ingredientRepo, nil, logger)
	images := service.NewImageService(recipeRepo, nil, "test-bucket", "us-east-1", t.TempDir(), logger)
	enqueuer := &recordingEnqueuer{}

	router := gin.New()
	v1 := router.Group("/api/v1")
	NewAuthHandler(auth).RegisterRoutes(v1)
	NewRecipeHandler(recipes, images, nil, enqueuer, auth, logger).RegisterRoutes(v1)
	NewCategoryHandler(categoryRepo, auth).RegisterRoutes(v1)
	NewIngredientHandler(ingredientRepo, auth).RegisterRoutes(v1)

	return &testEnv{router: router, db: db, auth: auth, enqueuer: enqueuer}
}

// token creates a user row and returns a bearer token for it.
func (e *testEnv) token(t *testing.T, username string, admin bool) string {
	t.Helper()
	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "x",
		IsAdmin:      admin,
	}
	require.NoError(t, e.db.Create(user).Error)

	token, err := e.auth.GenerateToken(&service.TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	})
	require.NoError(t, err)
	return token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}
