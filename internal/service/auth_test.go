package service_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func registerRequest() *types.RegisterRequest {
	return &types.RegisterRequest{
		Email:     "chef@example.com",
		Username:  "chef",
		FirstName: "Julia",
		LastName:  "Child",
		Password:  "s3cret-pass",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour, nil, newValidator())

	user, err := auth.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	token, err := auth.Login(ctx, &types.LoginRequest{Email: "CHEF@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	claims, err := auth.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "chef", claims.Username)
	assert.NotEmpty(t, claims.ID)
}

func TestRegisterRejectsDuplicatesAndReservedName(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour, nil, newValidator())

	_, err := auth.Register(ctx, registerRequest())
	require.NoError(t, err)

	req := registerRequest()
	req.Username = "other"
	_, err = auth.Register(ctx, req)
	requireValidation(t, err, "email", service.MsgEmailTaken)

	req = registerRequest()
	req.Email = "other@example.com"
	_, err = auth.Register(ctx, req)
	requireValidation(t, err, "username", service.MsgUsernameTaken)

	req = registerRequest()
	req.Email = "me@example.com"
	req.Username = "Me"
	_, err = auth.Register(ctx, req)
	requireValidation(t, err, "username", "")
}

func TestRegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour, nil, newValidator())

	req := registerRequest()
	req.Password = strings.Repeat("p", 80)
	_, err := auth.Register(ctx, req)
	requireValidation(t, err, "password", service.MsgPasswordTooLong)

	// 37 two-byte runes fit the character limit but not the byte limit.
	req.Password = strings.Repeat("é", 37)
	_, err = auth.Register(ctx, req)
	requireValidation(t, err, "password", service.MsgPasswordTooLong)

	req.Password = strings.Repeat("p", 72)
	_, err = auth.Register(ctx, req)
	require.NoError(t, err)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour, nil, newValidator())
	user := testhelpers.CreateTestUser(t, db)

	_, err := auth.Login(ctx, &types.LoginRequest{Email: user.Email, Password: "wrong"})
	requireValidation(t, err, "", service.MsgInvalidCredentials)

	_, err = auth.Login(ctx, &types.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	requireValidation(t, err, "", service.MsgInvalidCredentials)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	issuer := service.NewAuthService(db, "issuer-secret", time.Hour, nil, newValidator())
	verifier := service.NewAuthService(db, "other-secret", time.Hour, nil, newValidator())
	user := testhelpers.CreateTestUser(t, db)

	token, err := issuer.GenerateToken(user)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(ctx, token)
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	auth := service.NewAuthService(db, "test-secret", time.Nanosecond, nil, newValidator())
	user := testhelpers.CreateTestUser(t, db)

	token, err := auth.GenerateToken(user)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	_, err = auth.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestLogoutWithoutRedisIsNoop(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour, nil, newValidator())
	user := testhelpers.CreateTestUser(t, db)

	token, err := auth.GenerateToken(user)
	require.NoError(t, err)
	claims, err := auth.ValidateToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, claims))
	_, err = auth.ValidateToken(ctx, token)
	assert.NoError(t, err)
}

func TestLogoutRevokesToken(t *testing.T) {
	rdb := testhelpers.SetupTestRedis(t)
	db := testhelpers.SetupSQLite(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour, rdb, newValidator())
	user := testhelpers.CreateTestUser(t, db)

	token, err := auth.GenerateToken(user)
	require.NoError(t, err)
	claims, err := auth.ValidateToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, claims))

	_, err = auth.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.ErrorIs(t, err, service.ErrTokenRevoked)
}

func TestSetPassword(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour, nil, newValidator())
	user := testhelpers.CreateTestUser(t, db)

	err := auth.SetPassword(ctx, user.ID, &types.SetPasswordRequest{CurrentPassword: "wrong", NewPassword: "brand-new-pass"})
	requireValidation(t, err, "current_password", service.MsgWrongPassword)

	err = auth.SetPassword(ctx, user.ID, &types.SetPasswordRequest{CurrentPassword: testhelpers.TestPassword, NewPassword: "brand-new-pass"})
	require.NoError(t, err)

	_, err = auth.Login(ctx, &types.LoginRequest{Email: user.Email, Password: "brand-new-pass"})
	assert.NoError(t, err)
	_, err = auth.Login(ctx, &types.LoginRequest{Email: user.Email, Password: testhelpers.TestPassword})
	assert.Error(t, err)

	err = auth.SetPassword(ctx, user.ID, &types.SetPasswordRequest{CurrentPassword: "brand-new-pass", NewPassword: strings.Repeat("x", 73)})
	requireValidation(t, err, "new_password", service.MsgPasswordTooLong)
}
