package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cookshelf/backend/config"
	"github.com/cookshelf/backend/internal/api"
	"github.com/cookshelf/backend/internal/middleware"
	"github.com/cookshelf/backend/internal/repository"
	"github.com/cookshelf/backend/internal/service"
)

// Deps are the shared resources the server wires into handlers.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Redis     *redis.Client
	S3        *config.S3Config
	Enqueuer  api.Enqueuer
	Generator service.TextGenerator
	Logger    *zap.Logger
}

// Server owns the HTTP listener and the wired router.
type Server struct {
	router *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

// New wires repositories, services and handlers into a ready router.
func New(deps Deps) *Server {
	logger := deps.Logger

	recipeRepo := repository.NewRecipeRepository(deps.DB, logger)
	categoryRepo := repository.NewCategoryRepository(deps.DB)
	ingredientRepo := repository.NewIngredientRepository(deps.DB)
	userRepo := repository.NewUserRepository(deps.DB)

	auth := service.NewAuthService(userRepo, deps.Config.JWTSecret)

	var resolver service.UsernameResolver
	if deps.Config.UsernameServiceURL != "" {
		resolver = service.NewHTTPUsernameResolver(deps.Config.UsernameServiceURL, 2*time.Second)
	}
	recipes := service.NewRecipeService(recipeRepo, categoryRepo, ingredientRepo, resolver, logger)

	var images *service.ImageService
	if deps.S3 != nil {
		images = service.NewImageService(recipeRepo, deps.S3.Client, deps.S3.BucketName,
			deps.Config.AWSRegion, deps.Config.UploadStagingDir, logger)
	}

	var summaries *service.SummaryService
	if deps.Generator != nil {
		summaries = service.NewSummaryService(recipeRepo, deps.Generator, deps.Redis, logger)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(nil))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	var writeMiddleware []gin.HandlerFunc
	if deps.Redis != nil {
		writeMiddleware = append(writeMiddleware, middleware.NewWriteRateLimiter(deps.Redis).Middleware())
	}

	v1 := router.Group("/api/v1")
	api.NewAuthHandler(auth).RegisterRoutes(v1)
	api.NewRecipeHandler(recipes, images, summaries, deps.Enqueuer, auth, logger).RegisterRoutes(v1, writeMiddleware...)
	api.NewCategoryHandler(categoryRepo, auth).RegisterRoutes(v1)
	api.NewIngredientHandler(ingredientRepo, auth).RegisterRoutes(v1)

	return &Server{
		router: router,
		logger: logger,
	}
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler { return s.router }

// Start blocks serving HTTP until the listener fails or is shut down.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.logger.Info("http server listening", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	s.logger.Info("shutting down http server")
	return s.http.Shutdown(ctx)
}
