package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
)

const (
	MsgSelfFollow        = "cannot follow yourself"
	MsgAlreadySubscribed = "already subscribed"
	MsgNotSubscribed     = "not subscribed"
)

// UserService manages the user directory and the follow relation.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("user")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *UserService) ListUsers(ctx context.Context, page Pagination) ([]models.User, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	if err := db.Scopes(page.Scope).Order("id ASC").Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// Subscribe makes userID follow authorID and returns the author.
func (s *UserService) Subscribe(ctx context.Context, userID, authorID uint) (*models.User, error) {
	if userID == authorID {
		return nil, apperr.Validation("", MsgSelfFollow)
	}

	author, err := s.GetUser(ctx, authorID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Follow{}).Where("user_id = ? AND author_id = ?", userID, authorID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check subscription: %w", err)
	}
	if count > 0 {
		return nil, apperr.Validation("", MsgAlreadySubscribed)
	}

	if err := db.Create(&models.Follow{UserID: userID, AuthorID: authorID}).Error; err != nil {
		return nil, apperr.FromConstraint(err, "", MsgAlreadySubscribed)
	}

	logging.Debug().Uint("user_id", userID).Uint("author_id", authorID).Msg("subscribed")
	return author, nil
}

func (s *UserService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	if _, err := s.GetUser(ctx, authorID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return fmt.Errorf("failed to unsubscribe: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.Validation("", MsgNotSubscribed)
	}
	return nil
}

// ListSubscriptions returns the authors userID follows, oldest follow first.
func (s *UserService) ListSubscriptions(ctx context.Context, userID uint, page Pagination) ([]models.User, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Follow{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var authors []models.User
	err := db.Scopes(page.Scope).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", userID).
		Order("follows.id ASC").
		Find(&authors).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return authors, total, nil
}
