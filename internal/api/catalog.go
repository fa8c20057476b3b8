package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/representation"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// CatalogHandler serves tags and ingredients
type CatalogHandler struct {
	catalogService service.ICatalogService
}

func NewCatalogHandler(catalogService service.ICatalogService) *CatalogHandler {
	useJSONFieldNames()
	return &CatalogHandler{catalogService: catalogService}
}

// RegisterRoutes registers the public read routes. Creation routes are
// admin-only and mounted by the router.
func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/tags", h.ListTags)
	router.GET("/tags/:id", h.GetTag)
	router.GET("/ingredients", h.ListIngredients)
	router.GET("/ingredients/:id", h.GetIngredient)
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.catalogService.ListTags(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, representation.Tags(tags))
}

func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	tag, err := h.catalogService.GetTag(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, representation.Tag(tag))
}

func (h *CatalogHandler) CreateTag(c *gin.Context) {
	var req types.CreateTagRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	tag, err := h.catalogService.CreateTag(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	logging.Info().Uint("tag_id", tag.ID).Str("slug", tag.Slug).Msg("tag created")
	c.JSON(http.StatusCreated, representation.Tag(tag))
}

// ListIngredients filters by the optional case-insensitive name prefix
func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.catalogService.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, representation.Ingredients(ingredients))
}

func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	ingredient, err := h.catalogService.GetIngredient(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, representation.Ingredient(ingredient))
}

func (h *CatalogHandler) CreateIngredient(c *gin.Context) {
	var req types.CreateIngredientRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	ingredient, err := h.catalogService.CreateIngredient(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	logging.Info().Uint("ingredient_id", ingredient.ID).Msg("ingredient created")
	c.JSON(http.StatusCreated, representation.Ingredient(ingredient))
}
