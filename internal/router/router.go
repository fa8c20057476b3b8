package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Auth    *api.AuthHandler
	Users   *api.UserHandler
	Catalog *api.CatalogHandler
	Recipes *api.RecipeHandler

	Tokens      middleware.TokenValidator
	RateLimiter *middleware.RateLimiter
	CORSOrigins []string
}

// SetupRouter configures the application routes
func SetupRouter(db *gorm.DB, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(h.CORSOrigins...))
	router.Use(middleware.ErrorHandler())

	router.GET("/health", api.HealthCheck)

	requireAuth := middleware.AuthMiddleware(h.Tokens)
	optionalAuth := middleware.OptionalAuth(h.Tokens)
	requireAdmin := middleware.RequireAdmin(db)

	apiGroup := router.Group("/api")

	auth := apiGroup.Group("/auth")
	{
		h.Auth.RegisterRoutes(auth)
		auth.POST("/token/logout", requireAuth, h.Auth.Logout)
	}

	users := apiGroup.Group("/users")
	{
		users.POST("", h.Users.Register)
		users.GET("", optionalAuth, h.Users.List)
		users.GET("/me", requireAuth, h.Users.Me)
		users.POST("/set_password", requireAuth, h.Users.SetPassword)
		users.GET("/subscriptions", requireAuth, h.Users.Subscriptions)
		users.GET("/:id", optionalAuth, h.Users.Get)
		users.POST("/:id/subscribe", requireAuth, h.Users.Subscribe)
		users.DELETE("/:id/subscribe", requireAuth, h.Users.Unsubscribe)
	}

	h.Catalog.RegisterRoutes(apiGroup)
	apiGroup.POST("/tags", requireAuth, requireAdmin, h.Catalog.CreateTag)
	apiGroup.POST("/ingredients", requireAuth, requireAdmin, h.Catalog.CreateIngredient)

	recipes := apiGroup.Group("/recipes")
	{
		create := []gin.HandlerFunc{requireAuth}
		if h.RateLimiter != nil {
			create = append(create, h.RateLimiter.RateLimitMiddleware())
		}
		create = append(create, h.Recipes.Create)

		recipes.GET("", optionalAuth, h.Recipes.List)
		recipes.POST("", create...)
		recipes.GET("/download_shopping_cart", requireAuth, h.Recipes.DownloadShoppingCart)
		recipes.GET("/:id", optionalAuth, h.Recipes.Get)
		recipes.PATCH("/:id", requireAuth, h.Recipes.Update)
		recipes.DELETE("/:id", requireAuth, h.Recipes.Delete)
		recipes.POST("/:id/favorite", requireAuth, h.Recipes.AddFavorite)
		recipes.DELETE("/:id/favorite", requireAuth, h.Recipes.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", requireAuth, h.Recipes.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", requireAuth, h.Recipes.RemoveFromShoppingCart)
	}

	return router
}
