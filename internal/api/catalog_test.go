package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestTagEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	user := testhelpers.CreateTestUser(t, env.db)
	admin := testhelpers.CreateTestAdmin(t, env.db)
	body := map[string]string{"name": "breakfast", "color": "#e26c2d", "slug": "breakfast"}

	w := env.do(t, "POST", "/api/tags", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, "POST", "/api/tags", env.token(t, user), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, "POST", "/api/tags", env.token(t, admin), body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tag := decode(t, w)
	assert.Equal(t, "#E26C2D", tag["color"])

	w = env.do(t, "POST", "/api/tags", env.token(t, admin), body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "slug", decode(t, w)["field"])

	w = env.do(t, "GET", "/api/tags", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 1)

	w = env.do(t, "GET", fmt.Sprintf("/api/tags/%v", tag["id"]), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "breakfast", decode(t, w)["slug"])

	w = env.do(t, "GET", "/api/tags/999999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIngredientEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	admin := testhelpers.CreateTestAdmin(t, env.db)
	testhelpers.CreateTestIngredient(t, env.db, "Flour", "g")
	testhelpers.CreateTestIngredient(t, env.db, "flaxseed", "g")
	testhelpers.CreateTestIngredient(t, env.db, "milk", "ml")

	w := env.do(t, "GET", "/api/ingredients?name=fl", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeList(t, w)
	require.Len(t, list, 2)
	assert.Equal(t, "Flour", list[0].(map[string]interface{})["name"])
	assert.Equal(t, "flaxseed", list[1].(map[string]interface{})["name"])

	w = env.do(t, "GET", "/api/ingredients?name=%25", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeList(t, w))

	w = env.do(t, "GET", "/api/ingredients", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 3)

	w = env.do(t, "POST", "/api/ingredients", env.token(t, admin), map[string]string{
		"name":             "sugar",
		"measurement_unit": "g",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)

	w = env.do(t, "GET", fmt.Sprintf("/api/ingredients/%v", created["id"]), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "g", decode(t, w)["measurement_unit"])

	w = env.do(t, "POST", "/api/ingredients", env.token(t, admin), map[string]string{"name": "salt"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "measurement_unit", decode(t, w)["field"])
}
