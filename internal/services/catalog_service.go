package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/foodgram/internal/dto"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/models"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/validation"
	"gorm.io/gorm"
)

// CatalogService serves the admin-curated tags and ingredients.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]dto.TagResponse, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, err
	}
	out := make([]dto.TagResponse, 0, len(tags))
	for i := range tags {
		out = append(out, toTagResponse(&tags[i]))
	}
	return out, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*dto.TagResponse, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	out := toTagResponse(&tag)
	return &out, nil
}

func (s *CatalogService) CreateTag(ctx context.Context, req *dto.CreateTagRequest) (*dto.TagResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var count int64
	s.db.WithContext(ctx).Model(&models.Tag{}).
		Where("name = ? OR LOWER(color) = ? OR slug = ?", req.Name, strings.ToLower(req.Color), req.Slug).
		Count(&count)
	if count > 0 {
		return nil, ErrTagTaken
	}

	tag := models.Tag{Name: req.Name, Color: req.Color, Slug: req.Slug}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTagTaken
		}
		return nil, err
	}
	out := toTagResponse(&tag)
	return &out, nil
}

// ListIngredients returns ingredients whose name starts with prefix,
// ignoring case, ordered by name.
func (s *CatalogService) ListIngredients(ctx context.Context, prefix string) ([]dto.IngredientResponse, error) {
	q := s.db.WithContext(ctx).Order("name, id")
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(prefix))+"%")
	}
	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	out := make([]dto.IngredientResponse, 0, len(ingredients))
	for i := range ingredients {
		out = append(out, toIngredientResponse(&ingredients[i]))
	}
	return out, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*dto.IngredientResponse, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}
	out := toIngredientResponse(&ingredient)
	return &out, nil
}

func (s *CatalogService) CreateIngredient(ctx context.Context, req *dto.CreateIngredientRequest) (*dto.IngredientResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	ingredient := models.Ingredient{Name: req.Name, MeasurementUnit: req.MeasurementUnit}
	if err := s.db.WithContext(ctx).Create(&ingredient).Error; err != nil {
		return nil, err
	}
	out := toIngredientResponse(&ingredient)
	return &out, nil
}

var likeEscaper = strings.NewReplacer(`%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
