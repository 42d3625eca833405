package types

import (
	"time"

	"github.com/google/uuid"
)

type TagView struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Slug  string    `json:"slug"`
}

type IngredientView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
}

// IngredientAmountView flattens the amount join row with its ingredient.
type IngredientAmountView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

// RecipeView is the full read representation. The derived booleans are
// computed relative to the requesting user on every read.
type RecipeView struct {
	ID               uuid.UUID              `json:"id"`
	Author           UserView               `json:"author"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
	PublishedAt      time.Time              `json:"publication_date"`
	Tags             []TagView              `json:"tags"`
	Ingredients      []IngredientAmountView `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
}

// ShortRecipeView is the minimal projection used by toggle responses and
// subscription payloads.
type ShortRecipeView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// ShoppingItem is one aggregated line of the shopping-list report.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Amount          int
}
