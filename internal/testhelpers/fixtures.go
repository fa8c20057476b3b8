package testhelpers

import (
	"fmt"
	"sync/atomic"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "testpassword123"

var seq atomic.Int64

func next() int64 {
	return seq.Add(1)
}

// CreateTestUser creates a user with a unique email and username.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := next()
	user := &models.User{
		Email:        fmt.Sprintf("cook%d@example.com", n),
		Username:     fmt.Sprintf("cook%d", n),
		FirstName:    "Test",
		LastName:     "Cook",
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAdmin creates a user with the admin role.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := CreateTestUser(t, db)
	if err := db.Model(user).Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("failed to promote test user: %v", err)
	}
	user.Role = models.RoleAdmin
	return user
}

// CreateTestTag creates a tag with a unique slug.
func CreateTestTag(t *testing.T, db *gorm.DB) *models.Tag {
	t.Helper()
	n := next()
	tag := &models.Tag{
		Name:  fmt.Sprintf("tag_%d", n),
		Color: "#E26C2D",
		Slug:  fmt.Sprintf("tag-%d", n),
	}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

// CreateTestIngredient creates an ingredient with the given name and unit.
func CreateTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create test ingredient: %v", err)
	}
	return ingredient
}

// CreateTestRecipe creates a recipe by author with one ingredient row per
// entry of amounts and the given tags.
func CreateTestRecipe(t *testing.T, db *gorm.DB, author *models.User, amounts map[*models.Ingredient]int, tags ...*models.Tag) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        fmt.Sprintf("Recipe %d", next()),
		Text:        "Mix everything and cook.",
		Image:       "recipes/images/test.png",
		CookingTime: 30,
	}
	for _, tag := range tags {
		recipe.Tags = append(recipe.Tags, *tag)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags.*").Create(recipe).Error; err != nil {
			return err
		}
		for ingredient, amount := range amounts {
			row := &models.IngredientsInRecipe{
				RecipeID:     recipe.ID,
				IngredientID: ingredient.ID,
				Amount:       amount,
			}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}
	return recipe
}
