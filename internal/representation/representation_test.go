package representation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func intPtr(v int) *int { return &v }

func TestFlagsForAnonymousViewer(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	author := testhelpers.CreateTestUser(t, db)
	recipe := testhelpers.CreateTestRecipe(t, db, author, nil)

	favorited, err := IsFavorited(db, recipe.ID, 0)
	require.NoError(t, err)
	assert.False(t, favorited)

	inCart, err := IsInShoppingCart(db, recipe.ID, 0)
	require.NoError(t, err)
	assert.False(t, inCart)

	subscribed, err := IsSubscribed(db, author.ID, 0)
	require.NoError(t, err)
	assert.False(t, subscribed)
}

func TestFlagsFollowStoredRelations(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	author := testhelpers.CreateTestUser(t, db)
	viewer := testhelpers.CreateTestUser(t, db)
	recipe := testhelpers.CreateTestRecipe(t, db, author, nil)

	require.NoError(t, db.Create(&models.Favorite{UserID: viewer.ID, RecipeID: recipe.ID}).Error)
	require.NoError(t, db.Create(&models.Follow{UserID: viewer.ID, AuthorID: author.ID}).Error)

	favorited, err := IsFavorited(db, recipe.ID, viewer.ID)
	require.NoError(t, err)
	assert.True(t, favorited)

	inCart, err := IsInShoppingCart(db, recipe.ID, viewer.ID)
	require.NoError(t, err)
	assert.False(t, inCart)

	subscribed, err := IsSubscribed(db, author.ID, viewer.ID)
	require.NoError(t, err)
	assert.True(t, subscribed)

	// The relation is directed.
	reverse, err := IsSubscribed(db, viewer.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, reverse)
}

func TestRecipeRendersIngredientsInInsertionOrder(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	author := testhelpers.CreateTestUser(t, db)
	viewer := testhelpers.CreateTestUser(t, db)
	tag := testhelpers.CreateTestTag(t, db)
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")
	eggs := testhelpers.CreateTestIngredient(t, db, "eggs", "pcs")

	recipe := testhelpers.CreateTestRecipe(t, db, author, nil, tag)
	require.NoError(t, db.Create(&models.IngredientsInRecipe{RecipeID: recipe.ID, IngredientID: eggs.ID, Amount: 2}).Error)
	require.NoError(t, db.Create(&models.IngredientsInRecipe{RecipeID: recipe.ID, IngredientID: flour.ID, Amount: 200}).Error)
	require.NoError(t, db.Create(&models.ShoppingCart{UserID: viewer.ID, RecipeID: recipe.ID}).Error)

	var loaded models.Recipe
	require.NoError(t, PreloadRecipe(db).First(&loaded, recipe.ID).Error)

	resp, err := Recipe(db, &loaded, viewer.ID)
	require.NoError(t, err)

	assert.Equal(t, recipe.ID, resp.ID)
	assert.Equal(t, author.Username, resp.Author.Username)
	assert.False(t, resp.Author.IsSubscribed)
	assert.False(t, resp.IsFavorited)
	assert.True(t, resp.IsInShoppingCart)
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, tag.Slug, resp.Tags[0].Slug)
	require.Len(t, resp.Ingredients, 2)
	assert.Equal(t, "eggs", resp.Ingredients[0].Name)
	assert.Equal(t, 2, resp.Ingredients[0].Amount)
	assert.Equal(t, "flour", resp.Ingredients[1].Name)
	assert.Equal(t, "g", resp.Ingredients[1].MeasurementUnit)
}

func TestSubscriptionTruncatesRecipes(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	author := testhelpers.CreateTestUser(t, db)
	viewer := testhelpers.CreateTestUser(t, db)
	first := testhelpers.CreateTestRecipe(t, db, author, nil)
	second := testhelpers.CreateTestRecipe(t, db, author, nil)
	third := testhelpers.CreateTestRecipe(t, db, author, nil)
	require.NoError(t, db.Create(&models.Follow{UserID: viewer.ID, AuthorID: author.ID}).Error)

	resp, err := Subscription(db, author, viewer.ID, intPtr(2))
	require.NoError(t, err)
	assert.True(t, resp.IsSubscribed)
	assert.EqualValues(t, 3, resp.RecipesCount)
	require.Len(t, resp.Recipes, 2)
	assert.Equal(t, third.ID, resp.Recipes[0].ID)
	assert.Equal(t, second.ID, resp.Recipes[1].ID)

	resp, err = Subscription(db, author, viewer.ID, nil)
	require.NoError(t, err)
	require.Len(t, resp.Recipes, 3)
	assert.Equal(t, first.ID, resp.Recipes[2].ID)

	resp, err = Subscription(db, author, viewer.ID, intPtr(0))
	require.NoError(t, err)
	assert.Empty(t, resp.Recipes)
	assert.NotNil(t, resp.Recipes)
	assert.EqualValues(t, 3, resp.RecipesCount)
}

func TestParseRecipesLimit(t *testing.T) {
	limit, err := ParseRecipesLimit("", false)
	require.NoError(t, err)
	assert.Nil(t, limit)

	limit, err = ParseRecipesLimit("", true)
	require.NoError(t, err)
	assert.Nil(t, limit)

	limit, err = ParseRecipesLimit("3", true)
	require.NoError(t, err)
	assert.Equal(t, 3, *limit)

	limit, err = ParseRecipesLimit("0", true)
	require.NoError(t, err)
	assert.Equal(t, 0, *limit)

	for _, raw := range []string{"-1", "abc", "2.5"} {
		_, err = ParseRecipesLimit(raw, true)
		verr, ok := apperr.AsValidation(err)
		require.True(t, ok, raw)
		assert.Equal(t, "recipes_limit", verr.Field)
	}
}
