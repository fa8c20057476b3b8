package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/representation"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeHandler serves recipes, favorites and the shopping cart
type RecipeHandler struct {
	db                 *gorm.DB
	recipeService      service.IRecipeService
	interactionService service.IInteractionService
	pages              paginator
}

func NewRecipeHandler(db *gorm.DB, recipeService service.IRecipeService, interactionService service.IInteractionService, pageSize, maxPageSize int) *RecipeHandler {
	useJSONFieldNames()
	return &RecipeHandler{
		db:                 db,
		recipeService:      recipeService,
		interactionService: interactionService,
		pages:              paginator{defaultLimit: pageSize, maxLimit: maxPageSize},
	}
}

// List returns a page of recipes, newest first. Supported filters are
// tags (repeatable slug), author, is_favorited and is_in_shopping_cart.
func (h *RecipeHandler) List(c *gin.Context) {
	page, err := h.pages.parse(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	filter, err := recipeFilter(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipes, total, err := h.recipeService.ListRecipes(c.Request.Context(), filter, page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	results, err := representation.Recipes(h.db.WithContext(c.Request.Context()), recipes, filter.ViewerID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, page, total, results))
}

func recipeFilter(c *gin.Context) (service.RecipeFilter, error) {
	filter := service.RecipeFilter{
		ViewerID:         middleware.CurrentUserID(c),
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      c.Query("is_favorited") == "1",
		IsInShoppingCart: c.Query("is_in_shopping_cart") == "1",
	}
	if raw := c.Query("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filter, apperr.Validation("author", "author must be a user id")
		}
		filter.AuthorID = uint(author)
	}
	return filter, nil
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.render(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) Create(c *gin.Context) {
	var req types.RecipeWriteRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), middleware.CurrentUserID(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.render(c, http.StatusCreated, recipe)
}

// Update replaces a recipe. Only the author or an admin may do this.
func (h *RecipeHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req types.RecipeWriteRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	viewer, err := h.viewer(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), viewer, id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.render(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	viewer, err := h.viewer(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), viewer, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.mark(c, h.interactionService.AddFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.unmark(c, h.interactionService.RemoveFavorite)
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.mark(c, h.interactionService.AddToShoppingCart)
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.unmark(c, h.interactionService.RemoveFromShoppingCart)
}

// DownloadShoppingCart sends the aggregated shopping list as a text file
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	items, err := h.interactionService.ShoppingList(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	var buf bytes.Buffer
	if err := service.WriteShoppingList(&buf, items); err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", service.ShoppingListFilename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

func (h *RecipeHandler) mark(c *gin.Context, add func(context.Context, uint, uint) (*models.Recipe, error)) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := add(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, representation.RecipeShort(recipe))
}

func (h *RecipeHandler) unmark(c *gin.Context, remove func(context.Context, uint, uint) error) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := remove(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) render(c *gin.Context, status int, recipe *models.Recipe) {
	resp, err := representation.Recipe(h.db.WithContext(c.Request.Context()), recipe, middleware.CurrentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(status, resp)
}

// viewer loads the caller's role from storage rather than the token.
func (h *RecipeHandler) viewer(c *gin.Context) (service.Viewer, error) {
	var user models.User
	err := h.db.WithContext(c.Request.Context()).Select("id", "role").First(&user, middleware.CurrentUserID(c)).Error
	if err != nil {
		if apperr.IsNotFound(err) {
			return service.Viewer{}, apperr.ErrUnauthorized
		}
		return service.Viewer{}, fmt.Errorf("failed to load user role: %w", err)
	}
	return service.Viewer{ID: user.ID, Role: user.Role}, nil
}
