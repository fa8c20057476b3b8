package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/representation"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// RecipeFilter narrows ListRecipes. Zero fields do not filter. The
// favorited and shopping cart filters are relative to ViewerID and match
// nothing for an anonymous viewer.
type RecipeFilter struct {
	ViewerID         uint
	AuthorID         uint
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}

// RecipeService handles recipe operations
type RecipeService struct {
	db        *gorm.DB
	validator *validation.Validator
	images    ImageStore
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, v *validation.Validator, images ImageStore) *RecipeService {
	return &RecipeService{
		db:        db,
		validator: v,
		images:    images,
	}
}

// CreateRecipe validates req and stores the recipe with its ingredient rows
// and tags in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uint, req *types.RecipeWriteRequest) (*models.Recipe, error) {
	if err := s.validator.ValidateRecipe(req, true); err != nil {
		return nil, err
	}

	imageURL, err := s.storeImage(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(req.Name),
		Text:        req.Text,
		Image:       imageURL,
		CookingTime: req.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := loadTags(tx, req.Tags)
		if err != nil {
			return err
		}
		if err := checkIngredients(tx, req.Ingredients); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return apperr.FromConstraint(err, "", "recipe violates a storage constraint")
		}
		if err := tx.Model(recipe).Omit("Tags.*").Association("Tags").Replace(tags); err != nil {
			return fmt.Errorf("failed to set recipe tags: %w", err)
		}
		return insertIngredients(tx, recipe.ID, req.Ingredients)
	})
	if err != nil {
		s.discardImage(ctx, imageURL)
		return nil, err
	}

	logging.Info().Uint("recipe_id", recipe.ID).Uint("author_id", authorID).Msg("created recipe")
	return s.GetRecipe(ctx, recipe.ID)
}

// GetRecipe retrieves a recipe by ID with its author, tags and ingredients
func (s *RecipeService) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := representation.PreloadRecipe(s.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("recipe")
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return &recipe, nil
}

// UpdateRecipe replaces the recipe's fields, ingredient rows and tags. The
// image is kept when req carries none.
func (s *RecipeService) UpdateRecipe(ctx context.Context, viewer Viewer, id uint, req *types.RecipeWriteRequest) (*models.Recipe, error) {
	recipe, err := s.findRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanModify(recipe.AuthorID) {
		return nil, apperr.ErrForbidden
	}
	if err := s.validator.ValidateRecipe(req, false); err != nil {
		return nil, err
	}

	oldImage := recipe.Image
	var newImage string
	if strings.TrimSpace(req.Image) != "" {
		if newImage, err = s.storeImage(ctx, req.Image); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"name":         strings.TrimSpace(req.Name),
		"text":         req.Text,
		"cooking_time": req.CookingTime,
	}
	if newImage != "" {
		updates["image"] = newImage
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := loadTags(tx, req.Tags)
		if err != nil {
			return err
		}
		if err := checkIngredients(tx, req.Ingredients); err != nil {
			return err
		}

		if err := tx.Model(recipe).Omit(clause.Associations).Updates(updates).Error; err != nil {
			return apperr.FromConstraint(err, "", "recipe violates a storage constraint")
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientsInRecipe{}).Error; err != nil {
			return fmt.Errorf("failed to clear recipe ingredients: %w", err)
		}
		if err := insertIngredients(tx, recipe.ID, req.Ingredients); err != nil {
			return err
		}
		if err := tx.Model(recipe).Omit("Tags.*").Association("Tags").Replace(tags); err != nil {
			return fmt.Errorf("failed to set recipe tags: %w", err)
		}
		return nil
	})
	if err != nil {
		s.discardImage(ctx, newImage)
		return nil, err
	}

	if newImage != "" {
		s.discardImage(ctx, oldImage)
	}
	return s.GetRecipe(ctx, recipe.ID)
}

// DeleteRecipe removes the recipe together with its ingredient rows, tag
// links, favorites and shopping cart entries.
func (s *RecipeService) DeleteRecipe(ctx context.Context, viewer Viewer, id uint) error {
	recipe, err := s.findRecipe(ctx, id)
	if err != nil {
		return err
	}
	if !viewer.CanModify(recipe.AuthorID) {
		return apperr.ErrForbidden
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.IngredientsInRecipe{}, &models.Favorite{}, &models.ShoppingCart{}} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete recipe relations: %w", err)
			}
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("failed to clear recipe tags: %w", err)
		}
		if err := tx.Delete(recipe).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.discardImage(ctx, recipe.Image)
	logging.Info().Uint("recipe_id", recipe.ID).Uint("viewer_id", viewer.ID).Msg("deleted recipe")
	return nil
}

// ListRecipes returns one page of matching recipes, newest first, and the
// total number of matches.
func (s *RecipeService) ListRecipes(ctx context.Context, filter RecipeFilter, page Pagination) ([]models.Recipe, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := s.filtered(db, filter).Model(&models.Recipe{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	var recipes []models.Recipe
	err := representation.PreloadRecipe(s.filtered(db, filter)).
		Scopes(page.Scope).
		Order(models.RecipeOrder).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, total, nil
}

func (s *RecipeService) filtered(db *gorm.DB, filter RecipeFilter) *gorm.DB {
	query := db.Model(&models.Recipe{})
	if filter.AuthorID != 0 {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		tagged := db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if filter.IsFavorited || filter.IsInShoppingCart {
		if filter.ViewerID == 0 {
			return query.Where("1 = 0")
		}
	}
	if filter.IsFavorited {
		query = query.Where("recipes.id IN (?)",
			db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", filter.ViewerID))
	}
	if filter.IsInShoppingCart {
		query = query.Where("recipes.id IN (?)",
			db.Model(&models.ShoppingCart{}).Select("recipe_id").Where("user_id = ?", filter.ViewerID))
	}
	return query
}

func (s *RecipeService) findRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("recipe")
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return &recipe, nil
}

func (s *RecipeService) storeImage(ctx context.Context, dataURI string) (string, error) {
	data, contentType, err := DecodeImage(dataURI)
	if err != nil {
		return "", err
	}
	url, err := s.images.Save(ctx, data, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return url, nil
}

func (s *RecipeService) discardImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		logging.Warn().Err(err).Str("url", url).Msg("failed to delete image")
	}
}

func loadTags(tx *gorm.DB, ids []uint) ([]models.Tag, error) {
	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Order("id ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	if len(tags) != len(ids) {
		return nil, apperr.Validation("tags", fmt.Sprintf("unknown tag id %d", firstMissing(ids, tagIDs(tags))))
	}
	return tags, nil
}

func checkIngredients(tx *gorm.DB, items []types.IngredientAmount) error {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	var found []uint
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("failed to load ingredients: %w", err)
	}
	if len(found) != len(ids) {
		return apperr.Validation("ingredients", fmt.Sprintf("unknown ingredient id %d", firstMissing(ids, found)))
	}
	return nil
}

// insertIngredients bulk-inserts the rows in request order, which fixes their
// rendering order.
func insertIngredients(tx *gorm.DB, recipeID uint, items []types.IngredientAmount) error {
	rows := make([]models.IngredientsInRecipe, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.IngredientsInRecipe{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return apperr.FromConstraint(err, "ingredients", validation.MsgDuplicateIngredients)
	}
	return nil
}

func tagIDs(tags []models.Tag) []uint {
	ids := make([]uint, 0, len(tags))
	for _, tag := range tags {
		ids = append(ids, tag.ID)
	}
	return ids
}

func firstMissing(want, have []uint) uint {
	present := make(map[uint]struct{}, len(have))
	for _, id := range have {
		present[id] = struct{}{}
	}
	for _, id := range want {
		if _, ok := present[id]; !ok {
			return id
		}
	}
	return 0
}
