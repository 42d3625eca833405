package types

import "github.com/google/uuid"

// UserView is the profile representation, with the subscription flag
// computed relative to the caller.
type UserView struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

// AuthorView enriches a profile with the author's recipes for subscription
// responses. Recipes may be truncated by the recipes_limit query parameter;
// RecipesCount is always the full count.
type AuthorView struct {
	UserView
	Recipes      []ShortRecipeView `json:"recipes"`
	RecipesCount int64             `json:"recipes_count"`
}
