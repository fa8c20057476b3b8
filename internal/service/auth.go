package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

const (
	revokedTokenPrefix = "auth:revoked"

	MsgInvalidCredentials = "unable to log in with provided credentials"
	MsgEmailTaken         = "a user with this email already exists"
	MsgUsernameTaken      = "a user with this username already exists"
	MsgWrongPassword      = "current password is incorrect"
	MsgPasswordTooLong    = "must be at most 72 bytes"

	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

var ErrTokenRevoked = errors.New("token has been revoked")

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	tokenTTL  time.Duration
	redis     *redis.Client
	validator *validation.Validator
}

// NewAuthService creates an AuthService. redisClient may be nil, in which
// case tokens stay valid until they expire.
func NewAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration, redisClient *redis.Client, v *validation.Validator) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		redis:     redisClient,
		validator: v,
	}
}

func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validator.ValidateUser(req); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("LOWER(email) = LOWER(?)", req.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, apperr.Validation("email", MsgEmailTaken)
	}
	if err := db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return nil, apperr.Validation("username", MsgUsernameTaken)
	}

	hashedPassword, err := hashPassword("password", req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, apperr.FromConstraint(err, "", "a user with this email or username already exists")
	}

	logging.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("registered user")
	return user, nil
}

// Login checks the credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, req *types.LoginRequest) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", strings.TrimSpace(req.Email)).First(&user).Error; err != nil {
		if apperr.IsNotFound(err) {
			return "", apperr.Validation("", MsgInvalidCredentials)
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", apperr.Validation("", MsgInvalidCredentials)
	}

	return s.GenerateToken(&user)
}

func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnauthorized, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, fmt.Errorf("%w: invalid token claims", apperr.ErrUnauthorized)
	}

	if s.redis != nil && claims.ID != "" {
		n, err := s.redis.Exists(ctx, revokedKey(claims.ID)).Result()
		if err != nil {
			// Fail open when redis is unreachable.
			logging.Warn().Err(err).Msg("failed to check token denylist")
		} else if n > 0 {
			return nil, fmt.Errorf("%w: %w", apperr.ErrUnauthorized, ErrTokenRevoked)
		}
	}

	return claims, nil
}

// Logout revokes the token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *types.TokenClaims) error {
	if s.redis == nil || claims == nil || claims.ID == "" {
		logging.Debug().Msg("token denylist unavailable, logout is a no-op")
		return nil
	}

	ttl := s.tokenTTL
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, revokedKey(claims.ID), claims.UserID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *AuthService) SetPassword(ctx context.Context, userID uint, req *types.SetPasswordRequest) error {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if apperr.IsNotFound(err) {
			return apperr.NotFound("user")
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return apperr.Validation("current_password", MsgWrongPassword)
	}

	hashedPassword, err := hashPassword("new_password", req.NewPassword)
	if err != nil {
		return err
	}
	if err := db.Model(&user).Update("password_hash", string(hashedPassword)).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func hashPassword(field, password string) ([]byte, error) {
	if len(password) > maxPasswordBytes {
		return nil, apperr.Validation(field, MsgPasswordTooLong)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return hashed, nil
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("%s:%s", revokedTokenPrefix, tokenID)
}
