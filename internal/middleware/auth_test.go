package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func whoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user_id": CurrentUserID(c), "role": CurrentRole(c)})
}

func request(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	validator := new(mocks.MockTokenValidator)
	validator.On("ValidateToken", mock.Anything, "good").Return(&types.TokenClaims{UserID: 7, Role: models.RoleUser}, nil)
	validator.On("ValidateToken", mock.Anything, "bad").Return(nil, errors.New("signature is invalid"))

	router := gin.New()
	router.GET("/", AuthMiddleware(validator), whoAmI)

	w := request(router, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7,"role":"user"}`, w.Body.String())

	w = request(router, "Token good")
	assert.Equal(t, http.StatusOK, w.Code)

	for _, header := range []string{"", "Bearer", "Basic good", "Bearer bad", "Bearer good extra"} {
		w = request(router, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestOptionalAuth(t *testing.T) {
	validator := new(mocks.MockTokenValidator)
	validator.On("ValidateToken", mock.Anything, "good").Return(&types.TokenClaims{UserID: 3}, nil)
	validator.On("ValidateToken", mock.Anything, "bad").Return(nil, errors.New("expired"))

	router := gin.New()
	router.GET("/", OptionalAuth(validator), whoAmI)

	w := request(router, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0,"role":""}`, w.Body.String())

	w = request(router, "Token good")
	assert.JSONEq(t, `{"user_id":3,"role":""}`, w.Body.String())

	w = request(router, "Token bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateTestUser(t, db)
	admin := testhelpers.CreateTestAdmin(t, db)

	validator := new(mocks.MockTokenValidator)
	// The token claims a role the user no longer has.
	validator.On("ValidateToken", mock.Anything, "user").Return(&types.TokenClaims{UserID: user.ID, Role: models.RoleAdmin}, nil)
	validator.On("ValidateToken", mock.Anything, "admin").Return(&types.TokenClaims{UserID: admin.ID, Role: models.RoleAdmin}, nil)

	router := gin.New()
	router.GET("/", AuthMiddleware(validator), RequireAdmin(db), whoAmI)

	assert.Equal(t, http.StatusForbidden, request(router, "Token user").Code)
	assert.Equal(t, http.StatusOK, request(router, "Token admin").Code)
}
