package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cookshelf/backend/internal/models"
	"github.com/cookshelf/backend/internal/query"
)

// setupPostgres starts a disposable postgres container. The suite is gated on
// INTEGRATION_TESTS because it needs a local Docker daemon.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run container-backed tests")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "testuser",
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections"),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=testuser password=testpass dbname=testdb sslmode=disable",
		host, port.Port())
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
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
	return db
}

// TestConcurrentInstructionMutations exercises the row-lock path: concurrent
// instruction appends on the same recipe must serialize on the recompute so
// no update is lost.
func TestConcurrentInstructionMutations(t *testing.T) {
	db := setupPostgres(t)
	repo := NewRecipeRepository(db, zap.NewNop())
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Recipe{
		Name: "contended", Serves: 1, IsPublished: true, CreatedByID: 1,
	})
	require.NoError(t, err)

	const writers = 8
	errCh := make(chan error, writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			_, err := repo.AddInstruction(ctx, created.ID, &models.RecipeInstruction{
				Text:          fmt.Sprintf("step %d", n),
				TimeInMinutes: 10,
				Complexity:    3,
			}, 1)
			errCh <- err
		}(i)
	}
	for i := 0; i < writers; i++ {
		require.NoError(t, <-errCh)
	}

	final, err := repo.FindByID(ctx, created.ID, true)
	require.NoError(t, err)
	assert.Len(t, final.Instructions, writers)
	assert.Equal(t, 3.0, final.Complexity)
	assert.Equal(t, writers*10, final.TimeToPrepare)
}

func TestPostgresVisibilityAndPagination(t *testing.T) {
	db := setupPostgres(t)
	repo := NewRecipeRepository(db, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := repo.Create(ctx, &models.Recipe{
			Name: fmt.Sprintf("recipe %d", i), Serves: 1, IsPublished: true, CreatedByID: 1,
		})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &models.Recipe{
		Name: "draft", Serves: 1, IsPublished: false, CreatedByID: 1,
	})
	require.NoError(t, err)

	sorts, err := query.CompileSort("")
	require.NoError(t, err)

	recipes, page, err := repo.Find(ctx, query.FilterSet{}, sorts, 1, 10)
	require.NoError(t, err)
	assert.Len(t, recipes, 10)
	assert.Equal(t, int64(25), page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
}
