package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func recipeBody(ingredients map[uint]int, tags ...uint) map[string]interface{} {
	items := []map[string]interface{}{}
	for id, amount := range ingredients {
		items = append(items, map[string]interface{}{"id": id, "amount": amount})
	}
	return map[string]interface{}{
		"ingredients":  items,
		"tags":         tags,
		"image":        pngDataURI,
		"name":         "Pancakes",
		"text":         "Whisk, rest, fry.",
		"cooking_time": 25,
	}
}

func TestCreateAndGetRecipe(t *testing.T) {
	env := setupTestEnv(t)
	author := testhelpers.CreateTestUser(t, env.db)
	tag := testhelpers.CreateTestTag(t, env.db)
	flour := testhelpers.CreateTestIngredient(t, env.db, "flour", "g")

	w := env.do(t, "POST", "/api/recipes", env.token(t, author), recipeBody(map[uint]int{flour.ID: 200}, tag.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "Pancakes", created["name"])
	assert.Equal(t, false, created["is_favorited"])
	assert.Contains(t, created["image"], "/media/recipes/images/")

	ingredients := created["ingredients"].([]interface{})
	require.Len(t, ingredients, 1)
	row := ingredients[0].(map[string]interface{})
	assert.Equal(t, "flour", row["name"])
	assert.EqualValues(t, 200, row["amount"])

	w = env.do(t, "GET", fmt.Sprintf("/api/recipes/%v", created["id"]), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.Equal(t, created["id"], got["id"])
	gotAuthor := got["author"].(map[string]interface{})
	assert.Equal(t, author.Username, gotAuthor["username"])
}

func TestCreateRecipeValidation(t *testing.T) {
	env := setupTestEnv(t)
	author := testhelpers.CreateTestUser(t, env.db)
	tag := testhelpers.CreateTestTag(t, env.db)
	flour := testhelpers.CreateTestIngredient(t, env.db, "flour", "g")
	token := env.token(t, author)

	body := recipeBody(map[uint]int{flour.ID: 200}, tag.ID)
	body["cooking_time"] = 0
	w := env.do(t, "POST", "/api/recipes", token, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cooking_time", decode(t, w)["field"])

	body = recipeBody(map[uint]int{flour.ID: 1001}, tag.ID)
	w = env.do(t, "POST", "/api/recipes", token, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "amount", decode(t, w)["field"])

	body = recipeBody(map[uint]int{flour.ID: 10}, tag.ID)
	delete(body, "image")
	w = env.do(t, "POST", "/api/recipes", token, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "image", decode(t, w)["field"])

	body = recipeBody(map[uint]int{999999: 10}, tag.ID)
	w = env.do(t, "POST", "/api/recipes", token, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, "POST", "/api/recipes", "", recipeBody(map[uint]int{flour.ID: 10}, tag.ID))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateAndDeletePermissions(t *testing.T) {
	env := setupTestEnv(t)
	author := testhelpers.CreateTestUser(t, env.db)
	stranger := testhelpers.CreateTestUser(t, env.db)
	admin := testhelpers.CreateTestAdmin(t, env.db)
	tag := testhelpers.CreateTestTag(t, env.db)
	flour := testhelpers.CreateTestIngredient(t, env.db, "flour", "g")
	recipe := testhelpers.CreateTestRecipe(t, env.db, author, map[*models.Ingredient]int{flour: 100}, tag)
	path := fmt.Sprintf("/api/recipes/%d", recipe.ID)

	body := recipeBody(map[uint]int{flour.ID: 300}, tag.ID)
	delete(body, "image")

	w := env.do(t, "PATCH", path, env.token(t, stranger), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, "PATCH", "/api/recipes/999999", env.token(t, stranger), body)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, "PATCH", path, env.token(t, author), body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode(t, w)
	assert.Equal(t, "Pancakes", updated["name"])
	assert.Equal(t, recipe.Image, updated["image"])

	w = env.do(t, "DELETE", path, env.token(t, stranger), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, "DELETE", path, env.token(t, admin), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, "GET", path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRecipesFilters(t *testing.T) {
	env := setupTestEnv(t)
	author := testhelpers.CreateTestUser(t, env.db)
	other := testhelpers.CreateTestUser(t, env.db)
	breakfast := testhelpers.CreateTestTag(t, env.db)
	dinner := testhelpers.CreateTestTag(t, env.db)
	flour := testhelpers.CreateTestIngredient(t, env.db, "flour", "g")

	first := testhelpers.CreateTestRecipe(t, env.db, author, map[*models.Ingredient]int{flour: 1}, breakfast)
	second := testhelpers.CreateTestRecipe(t, env.db, author, map[*models.Ingredient]int{flour: 1}, breakfast, dinner)
	testhelpers.CreateTestRecipe(t, env.db, other, map[*models.Ingredient]int{flour: 1}, dinner)

	w := env.do(t, "GET", "/api/recipes?limit=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.EqualValues(t, 3, page["count"])

	w = env.do(t, "GET", fmt.Sprintf("/api/recipes?tags=%s&limit=10", breakfast.Slug), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode(t, w)
	assert.EqualValues(t, 2, page["count"])
	results := page["results"].([]interface{})
	assert.EqualValues(t, second.ID, results[0].(map[string]interface{})["id"])
	assert.EqualValues(t, first.ID, results[1].(map[string]interface{})["id"])

	w = env.do(t, "GET", fmt.Sprintf("/api/recipes?tags=%s&tags=%s&limit=10", breakfast.Slug, dinner.Slug), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["count"])

	w = env.do(t, "GET", fmt.Sprintf("/api/recipes?author=%d", other.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = env.do(t, "GET", "/api/recipes?author=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, "GET", "/api/recipes?is_favorited=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["count"])

	token := env.token(t, other)
	require.Equal(t, http.StatusCreated, env.do(t, "POST", fmt.Sprintf("/api/recipes/%d/favorite", first.ID), token, nil).Code)

	w = env.do(t, "GET", "/api/recipes?is_favorited=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode(t, w)
	assert.EqualValues(t, 1, page["count"])
	fav := page["results"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, true, fav["is_favorited"])
	assert.Equal(t, false, fav["is_in_shopping_cart"])
}

func TestFavoriteToggle(t *testing.T) {
	env := setupTestEnv(t)
	author := testhelpers.CreateTestUser(t, env.db)
	reader := testhelpers.CreateTestUser(t, env.db)
	flour := testhelpers.CreateTestIngredient(t, env.db, "flour", "g")
	recipe := testhelpers.CreateTestRecipe(t, env.db, author, map[*models.Ingredient]int{flour: 1})
	token := env.token(t, reader)
	path := fmt.Sprintf("/api/recipes/%d/favorite", recipe.ID)

	w := env.do(t, "POST", path, token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	short := decode(t, w)
	assert.EqualValues(t, recipe.ID, short["id"])
	assert.Equal(t, recipe.Name, short["name"])
	assert.NotContains(t, short, "ingredients")

	w = env.do(t, "POST", path, token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.MsgAlreadyFavorited, decode(t, w)["error"])

	w = env.do(t, "DELETE", path, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, "DELETE", path, token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.MsgNotFavorited, decode(t, w)["error"])

	w = env.do(t, "POST", path, token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, "GET", fmt.Sprintf("/api/recipes/%d", recipe.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["is_favorited"])

	w = env.do(t, "POST", "/api/recipes/999999/favorite", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShoppingCartDownload(t *testing.T) {
	env := setupTestEnv(t)
	author := testhelpers.CreateTestUser(t, env.db)
	buyer := testhelpers.CreateTestUser(t, env.db)
	flour := testhelpers.CreateTestIngredient(t, env.db, "flour", "g")
	milk := testhelpers.CreateTestIngredient(t, env.db, "milk", "ml")
	pancakes := testhelpers.CreateTestRecipe(t, env.db, author, map[*models.Ingredient]int{flour: 200, milk: 300})
	bread := testhelpers.CreateTestRecipe(t, env.db, author, map[*models.Ingredient]int{flour: 500})
	token := env.token(t, buyer)

	w := env.do(t, "GET", "/api/recipes/download_shopping_cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Your shopping cart is empty.")

	for _, recipe := range []*models.Recipe{pancakes, bread} {
		w = env.do(t, "POST", fmt.Sprintf("/api/recipes/%d/shopping_cart", recipe.ID), token, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = env.do(t, "POST", fmt.Sprintf("/api/recipes/%d/shopping_cart", bread.ID), token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.MsgAlreadyInCart, decode(t, w)["error"])

	w = env.do(t, "GET", "/api/recipes/download_shopping_cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="shopping_list.txt"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "Shopping list\n1. flour (g) - 700\n2. milk (ml) - 300\n", w.Body.String())

	w = env.do(t, "DELETE", fmt.Sprintf("/api/recipes/%d/shopping_cart", bread.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, "GET", "/api/recipes/download_shopping_cart", token, nil)
	assert.Contains(t, w.Body.String(), "1. flour (g) - 200")
}
