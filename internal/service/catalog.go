package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

const defaultTagColor = "#FFFFFF"

// CatalogService serves tags and ingredients.
type CatalogService struct {
	db        *gorm.DB
	validator *validation.Validator
}

func NewCatalogService(db *gorm.DB, v *validation.Validator) *CatalogService {
	return &CatalogService{db: db, validator: v}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("tag")
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &tag, nil
}

func (s *CatalogService) CreateTag(ctx context.Context, req *types.CreateTagRequest) (*models.Tag, error) {
	if req.Color == "" {
		req.Color = defaultTagColor
	}
	if err := s.validator.ValidateTag(req); err != nil {
		return nil, err
	}

	tag := &models.Tag{Name: req.Name, Color: strings.ToUpper(req.Color), Slug: req.Slug}
	if err := s.db.WithContext(ctx).Create(tag).Error; err != nil {
		return nil, apperr.FromConstraint(err, "slug", "a tag with this slug already exists")
	}
	return tag, nil
}

// ListIngredients returns ingredients whose name starts with namePrefix,
// ignoring case. An empty prefix matches everything.
func (s *CatalogService) ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Order("name ASC, id ASC")
	if prefix := strings.TrimSpace(namePrefix); prefix != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(prefix))+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("ingredient")
		}
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	return &ingredient, nil
}

func (s *CatalogService) CreateIngredient(ctx context.Context, req *types.CreateIngredientRequest) (*models.Ingredient, error) {
	name := strings.TrimSpace(req.Name)
	unit := strings.TrimSpace(req.MeasurementUnit)
	if name == "" {
		return nil, apperr.Validation("name", "this field is required")
	}
	if unit == "" {
		return nil, apperr.Validation("measurement_unit", "this field is required")
	}

	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := s.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		return nil, apperr.FromConstraint(err, "", "this ingredient already exists with this measurement unit")
	}
	return ingredient, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
