package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/representation"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// AuthHandler issues and revokes tokens
type AuthHandler struct {
	authService service.IAuthService
}

func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	useJSONFieldNames()
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the token routes. Logout is mounted by the router
// because it needs the auth middleware.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/token/login", h.Login)
}

// Login exchanges email and password for a token
func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	token, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, types.TokenResponse{AuthToken: token})
}

// Logout revokes the token used for the request
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.CurrentClaims(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UserHandler serves the user directory and subscriptions
type UserHandler struct {
	db          *gorm.DB
	authService service.IAuthService
	userService service.IUserService
	pages       paginator
}

func NewUserHandler(db *gorm.DB, authService service.IAuthService, userService service.IUserService, pageSize, maxPageSize int) *UserHandler {
	useJSONFieldNames()
	return &UserHandler{
		db:          db,
		authService: authService,
		userService: userService,
		pages:       paginator{defaultLimit: pageSize, maxLimit: maxPageSize},
	}
}

// Register creates an account
func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	logging.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	c.JSON(http.StatusCreated, gin.H{
		"email":      user.Email,
		"id":         user.ID,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	})
}

func (h *UserHandler) List(c *gin.Context) {
	page, err := h.pages.parse(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	users, total, err := h.userService.ListUsers(c.Request.Context(), page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	results, err := representation.Users(h.db.WithContext(c.Request.Context()), users, middleware.CurrentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, page, total, results))
}

// Me returns the authenticated user
func (h *UserHandler) Me(c *gin.Context) {
	h.render(c, middleware.CurrentUserID(c))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.render(c, id)
}

func (h *UserHandler) render(c *gin.Context, id uint) {
	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := representation.User(h.db.WithContext(c.Request.Context()), user, middleware.CurrentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.authService.SetPassword(c.Request.Context(), middleware.CurrentUserID(c), &req); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists the authors the viewer follows with their recipes
func (h *UserHandler) Subscriptions(c *gin.Context) {
	page, err := h.pages.parse(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	recipesLimit, err := representation.ParseRecipesLimit(c.GetQuery("recipes_limit"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	viewerID := middleware.CurrentUserID(c)
	authors, total, err := h.userService.ListSubscriptions(c.Request.Context(), viewerID, page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	db := h.db.WithContext(c.Request.Context())
	results := make([]types.SubscriptionResponse, 0, len(authors))
	for i := range authors {
		sub, err := representation.Subscription(db, &authors[i], viewerID, recipesLimit)
		if err != nil {
			_ = c.Error(err)
			return
		}
		results = append(results, sub)
	}
	c.JSON(http.StatusOK, newPage(c, page, total, results))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	recipesLimit, err := representation.ParseRecipesLimit(c.GetQuery("recipes_limit"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	viewerID := middleware.CurrentUserID(c)
	author, err := h.userService.Subscribe(c.Request.Context(), viewerID, authorID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := representation.Subscription(h.db.WithContext(c.Request.Context()), author, viewerID, recipesLimit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.userService.Unsubscribe(c.Request.Context(), middleware.CurrentUserID(c), authorID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
