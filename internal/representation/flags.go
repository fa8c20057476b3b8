// Package representation renders stored entities into their response shapes,
// annotated with flags relative to the viewing user. A zero viewer ID is an
// anonymous viewer, for whom every flag is false. Flags are looked up fresh
// on every call.
package representation

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// IsFavorited reports whether the viewer has favorited the recipe.
func IsFavorited(db *gorm.DB, recipeID, viewerID uint) (bool, error) {
	if viewerID == 0 {
		return false, nil
	}
	return exists(db, &models.Favorite{}, "user_id = ? AND recipe_id = ?", viewerID, recipeID)
}

// IsInShoppingCart reports whether the recipe is in the viewer's cart.
func IsInShoppingCart(db *gorm.DB, recipeID, viewerID uint) (bool, error) {
	if viewerID == 0 {
		return false, nil
	}
	return exists(db, &models.ShoppingCart{}, "user_id = ? AND recipe_id = ?", viewerID, recipeID)
}

// IsSubscribed reports whether the viewer follows the author.
func IsSubscribed(db *gorm.DB, authorID, viewerID uint) (bool, error) {
	if viewerID == 0 {
		return false, nil
	}
	return exists(db, &models.Follow{}, "user_id = ? AND author_id = ?", viewerID, authorID)
}

func exists(db *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := db.Model(model).Where(query, args...).Limit(1).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up relation: %w", err)
	}
	return count > 0, nil
}
