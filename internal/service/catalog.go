package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/forkful/backend/internal/model"
	"github.com/pageza/forkful/backend/internal/types"
)

// CatalogService serves the ingredient and tag reference data. The API
// surface is read-only; writes come from the seed command.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListIngredients returns ingredients whose name starts with prefix.
// An empty prefix returns the whole catalog.
func (s *CatalogService) ListIngredients(prefix string) ([]model.Ingredient, error) {
	q := s.db.Order("name")
	if prefix != "" {
		escaped := strings.NewReplacer("%", `\%`, "_", `\_`).Replace(prefix)
		q = q.Where("name LIKE ?", escaped+"%")
	}
	var ingredients []model.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (s *CatalogService) GetIngredient(id uuid.UUID) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	if err := s.db.First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}
	return &ingredient, nil
}

func (s *CatalogService) ListTags() ([]model.Tag, error) {
	var tags []model.Tag
	if err := s.db.Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *CatalogService) GetTag(id uuid.UUID) (*model.Tag, error) {
	var tag model.Tag
	if err := s.db.First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// CreateTag normalizes the color to a CSS name before storing.
func (s *CatalogService) CreateTag(name, color, slug string) (*model.Tag, error) {
	colorName, err := ColorName(color)
	if err != nil {
		return nil, err
	}
	tag := model.Tag{Name: name, Color: colorName, Slug: slug}
	if err := s.db.Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (s *CatalogService) CreateIngredient(name, measurementUnit string) (*model.Ingredient, error) {
	ingredient := model.Ingredient{Name: name, MeasurementUnit: measurementUnit}
	if err := s.db.Create(&ingredient).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// TagView serializes a single tag.
func TagView(t *model.Tag) types.TagView {
	return types.TagView{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

// IngredientView serializes a single ingredient.
func IngredientView(i *model.Ingredient) types.IngredientView {
	return types.IngredientView{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

// TagViews serializes a tag list.
func TagViews(tags []model.Tag) []types.TagView {
	out := make([]types.TagView, 0, len(tags))
	for i := range tags {
		out = append(out, TagView(&tags[i]))
	}
	return out
}

// IngredientViews serializes an ingredient list.
func IngredientViews(ingredients []model.Ingredient) []types.IngredientView {
	out := make([]types.IngredientView, 0, len(ingredients))
	for i := range ingredients {
		out = append(out, IngredientView(&ingredients[i]))
	}
	return out
}
