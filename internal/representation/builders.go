package representation

import (
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// PreloadRecipe loads everything Recipe needs to render, with tags by id and
// ingredient rows in insertion order.
func PreloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.id ASC")
		}).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order(models.RecipeIngredientOrder)
		}).
		Preload("Ingredients.Ingredient")
}

func Tag(tag *models.Tag) types.TagResponse {
	return types.TagResponse{
		ID:    tag.ID,
		Name:  tag.Name,
		Color: tag.Color,
		Slug:  tag.Slug,
	}
}

func Tags(tags []models.Tag) []types.TagResponse {
	out := make([]types.TagResponse, 0, len(tags))
	for i := range tags {
		out = append(out, Tag(&tags[i]))
	}
	return out
}

func Ingredient(ingredient *models.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{
		ID:              ingredient.ID,
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	}
}

func Ingredients(ingredients []models.Ingredient) []types.IngredientResponse {
	out := make([]types.IngredientResponse, 0, len(ingredients))
	for i := range ingredients {
		out = append(out, Ingredient(&ingredients[i]))
	}
	return out
}

// User renders a public profile.
func User(db *gorm.DB, user *models.User, viewerID uint) (types.UserResponse, error) {
	subscribed, err := IsSubscribed(db, user.ID, viewerID)
	if err != nil {
		return types.UserResponse{}, err
	}
	return types.UserResponse{
		Email:        user.Email,
		ID:           user.ID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
	}, nil
}

// Users renders each user in order.
func Users(db *gorm.DB, users []models.User, viewerID uint) ([]types.UserResponse, error) {
	out := make([]types.UserResponse, 0, len(users))
	for i := range users {
		resp, err := User(db, &users[i], viewerID)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

// Recipe renders the full recipe. The recipe must have been loaded through
// PreloadRecipe.
func Recipe(db *gorm.DB, recipe *models.Recipe, viewerID uint) (types.RecipeResponse, error) {
	author, err := User(db, &recipe.Author, viewerID)
	if err != nil {
		return types.RecipeResponse{}, err
	}
	favorited, err := IsFavorited(db, recipe.ID, viewerID)
	if err != nil {
		return types.RecipeResponse{}, err
	}
	inCart, err := IsInShoppingCart(db, recipe.ID, viewerID)
	if err != nil {
		return types.RecipeResponse{}, err
	}

	ingredients := make([]types.RecipeIngredientResponse, 0, len(recipe.Ingredients))
	for _, row := range recipe.Ingredients {
		ingredients = append(ingredients, types.RecipeIngredientResponse{
			ID:              row.Ingredient.ID,
			Name:            row.Ingredient.Name,
			MeasurementUnit: row.Ingredient.MeasurementUnit,
			Amount:          row.Amount,
		})
	}

	return types.RecipeResponse{
		ID:               recipe.ID,
		Tags:             Tags(recipe.Tags),
		Author:           author,
		Ingredients:      ingredients,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             recipe.Name,
		Image:            recipe.Image,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
	}, nil
}

// Recipes renders each recipe in order.
func Recipes(db *gorm.DB, recipes []models.Recipe, viewerID uint) ([]types.RecipeResponse, error) {
	out := make([]types.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		resp, err := Recipe(db, &recipes[i], viewerID)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

func RecipeShort(recipe *models.Recipe) types.RecipeShortResponse {
	return types.RecipeShortResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}

// Subscription renders an author with the total number of their recipes and
// the first recipesLimit of them in storage-default order. A nil limit
// includes every recipe.
func Subscription(db *gorm.DB, author *models.User, viewerID uint, recipesLimit *int) (types.SubscriptionResponse, error) {
	user, err := User(db, author, viewerID)
	if err != nil {
		return types.SubscriptionResponse{}, err
	}

	var count int64
	if err := db.Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&count).Error; err != nil {
		return types.SubscriptionResponse{}, fmt.Errorf("failed to count recipes: %w", err)
	}

	recipes := []models.Recipe{}
	if recipesLimit == nil || *recipesLimit > 0 {
		query := db.Where("author_id = ?", author.ID).Order(models.RecipeOrder)
		if recipesLimit != nil {
			query = query.Limit(*recipesLimit)
		}
		if err := query.Find(&recipes).Error; err != nil {
			return types.SubscriptionResponse{}, fmt.Errorf("failed to list recipes: %w", err)
		}
	}

	short := make([]types.RecipeShortResponse, 0, len(recipes))
	for i := range recipes {
		short = append(short, RecipeShort(&recipes[i]))
	}

	return types.SubscriptionResponse{
		UserResponse: user,
		Recipes:      short,
		RecipesCount: count,
	}, nil
}

// ParseRecipesLimit interprets the recipes_limit query parameter. An absent
// or empty parameter means no limit.
func ParseRecipesLimit(raw string, present bool) (*int, error) {
	if !present || raw == "" {
		return nil, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.Validation("recipes_limit", "must be an integer")
	}
	if limit < 0 {
		return nil, apperr.Validation("recipes_limit", "must not be negative")
	}
	return &limit, nil
}
