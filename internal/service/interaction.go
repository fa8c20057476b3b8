package service

import (
	"context"
	"fmt"
	"io"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	MsgAlreadyFavorited  = "recipe is already in favorites"
	MsgNotFavorited      = "recipe is not in favorites"
	MsgAlreadyInCart     = "recipe is already in the shopping cart"
	MsgNotInCart         = "recipe is not in the shopping cart"
	ShoppingListFilename = "shopping_list.txt"
)

// mark is a unique (user, recipe) relation such as a favorite.
type mark struct {
	model     interface{}
	newRow    func(userID, recipeID uint) interface{}
	duplicate string
	missing   string
}

var (
	favoriteMark = mark{
		model: &models.Favorite{},
		newRow: func(userID, recipeID uint) interface{} {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
		duplicate: MsgAlreadyFavorited,
		missing:   MsgNotFavorited,
	}
	shoppingCartMark = mark{
		model: &models.ShoppingCart{},
		newRow: func(userID, recipeID uint) interface{} {
			return &models.ShoppingCart{UserID: userID, RecipeID: recipeID}
		},
		duplicate: MsgAlreadyInCart,
		missing:   MsgNotInCart,
	}
)

// InteractionService toggles favorites and shopping cart entries.
type InteractionService struct {
	db *gorm.DB
}

func NewInteractionService(db *gorm.DB) *InteractionService {
	return &InteractionService{db: db}
}

func (s *InteractionService) AddFavorite(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	return s.add(ctx, favoriteMark, userID, recipeID)
}

func (s *InteractionService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return s.remove(ctx, favoriteMark, userID, recipeID)
}

func (s *InteractionService) AddToShoppingCart(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	return s.add(ctx, shoppingCartMark, userID, recipeID)
}

func (s *InteractionService) RemoveFromShoppingCart(ctx context.Context, userID, recipeID uint) error {
	return s.remove(ctx, shoppingCartMark, userID, recipeID)
}

func (s *InteractionService) add(ctx context.Context, m mark, userID, recipeID uint) (*models.Recipe, error) {
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	if err := db.First(&recipe, recipeID).Error; err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("recipe")
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	var count int64
	if err := db.Model(m.model).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check relation: %w", err)
	}
	if count > 0 {
		return nil, apperr.Validation("", m.duplicate)
	}

	if err := db.Create(m.newRow(userID, recipeID)).Error; err != nil {
		return nil, apperr.FromConstraint(err, "", m.duplicate)
	}
	return &recipe, nil
}

func (s *InteractionService) remove(ctx context.Context, m mark, userID, recipeID uint) error {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to get recipe: %w", err)
	}
	if count == 0 {
		return apperr.NotFound("recipe")
	}

	result := db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(m.model)
	if result.Error != nil {
		return fmt.Errorf("failed to delete relation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.Validation("", m.missing)
	}
	return nil
}

// ShoppingList sums ingredient amounts over every recipe in the user's cart,
// one line per (name, unit), ordered by name.
func (s *InteractionService) ShoppingList(ctx context.Context, userID uint) ([]types.ShoppingListItem, error) {
	items := []types.ShoppingListItem{}
	err := s.db.WithContext(ctx).
		Table("ingredients_in_recipe").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(ingredients_in_recipe.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = ingredients_in_recipe.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = ingredients_in_recipe.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC, ingredients.measurement_unit ASC").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build shopping list: %w", err)
	}
	return items, nil
}

// WriteShoppingList renders items as the downloadable text file.
func WriteShoppingList(w io.Writer, items []types.ShoppingListItem) error {
	if _, err := fmt.Fprintln(w, "Shopping list"); err != nil {
		return err
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "Your shopping cart is empty.")
		return err
	}
	for i, item := range items {
		if _, err := fmt.Fprintf(w, "%d. %s (%s) - %d\n", i+1, item.Name, item.MeasurementUnit, item.Amount); err != nil {
			return err
		}
	}
	return nil
}
