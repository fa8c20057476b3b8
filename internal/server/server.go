package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
}

// New wires services and handlers onto a router. redisClient may be nil.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, images service.ImageStore) *Server {
	if !cfg.DebugHTTP() {
		gin.SetMode(gin.ReleaseMode)
	}

	v := validation.New(cfg.Rules)

	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, redisClient, v)
	userService := service.NewUserService(db)
	catalogService := service.NewCatalogService(db, v)
	recipeService := service.NewRecipeService(db, v, images)
	interactionService := service.NewInteractionService(db)

	handlers := router.Handlers{
		Auth:        api.NewAuthHandler(authService),
		Users:       api.NewUserHandler(db, authService, userService, cfg.PageSize, cfg.Rules.MaxPageSize),
		Catalog:     api.NewCatalogHandler(catalogService),
		Recipes:     api.NewRecipeHandler(db, recipeService, interactionService, cfg.PageSize, cfg.Rules.MaxPageSize),
		Tokens:      authService,
		CORSOrigins: cfg.CORSOrigins,
	}
	if redisClient != nil {
		handlers.RateLimiter = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeRateLimit)
	}

	r := router.SetupRouter(db, handlers)
	if _, local := images.(*service.LocalImageStore); local && strings.HasPrefix(cfg.MediaURL, "/") {
		r.Static(cfg.MediaURL, cfg.MediaDir)
	}

	return &Server{
		cfg:    cfg,
		router: r,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Router exposes the configured engine, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start serves HTTP until Shutdown is called
func (s *Server) Start() error {
	logging.Info().Str("addr", s.http.Addr).Msg("starting server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
