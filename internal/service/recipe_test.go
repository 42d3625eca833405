package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/forkful/backend/internal/model"
	"github.com/pageza/forkful/backend/internal/types"
)

const testImage = "data:image/png;base64,aGVsbG8="

func newRecipeService(t *testing.T, db *gorm.DB) *RecipeService {
	t.Helper()
	return NewRecipeService(db, NewLocalImageStore(t.TempDir(), "/media"))
}

func recipeRequest(name string, tags []*model.Tag, ingredients ...types.IngredientAmountRequest) *types.RecipeRequest {
	req := &types.RecipeRequest{
		Name:        name,
		Text:        "Some instructions.",
		CookingTime: 30,
		Image:       testImage,
		Ingredients: ingredients,
	}
	for _, tag := range tags {
		req.Tags = append(req.Tags, tag.ID)
	}
	return req
}

func TestCreateRecipeValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(t, db)
	author := newTestUser(t, db)
	tag := newTestTag(t, db, "Dinner", "dinner")
	flour := newTestIngredient(t, db, "flour", "g")

	t.Run("cooking time below one", func(t *testing.T) {
		req := recipeRequest("Bread", []*model.Tag{tag},
			types.IngredientAmountRequest{ID: flour.ID, Amount: 100})
		req.CookingTime = 0
		_, err := svc.Create(context.Background(), author.ID, req)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("amount below one", func(t *testing.T) {
		req := recipeRequest("Bread", []*model.Tag{tag},
			types.IngredientAmountRequest{ID: flour.ID, Amount: 0})
		_, err := svc.Create(context.Background(), author.ID, req)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("duplicate ingredient", func(t *testing.T) {
		req := recipeRequest("Bread", []*model.Tag{tag},
			types.IngredientAmountRequest{ID: flour.ID, Amount: 100},
			types.IngredientAmountRequest{ID: flour.ID, Amount: 200})
		_, err := svc.Create(context.Background(), author.ID, req)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("unknown tag", func(t *testing.T) {
		req := recipeRequest("Bread", nil,
			types.IngredientAmountRequest{ID: flour.ID, Amount: 100})
		req.Tags = []uuid.UUID{uuid.New()}
		_, err := svc.Create(context.Background(), author.ID, req)
		assert.True(t, errors.Is(err, ErrTagNotFound))
	})

	t.Run("empty ingredient list", func(t *testing.T) {
		req := recipeRequest("Water", []*model.Tag{tag})
		view, err := svc.Create(context.Background(), author.ID, req)
		require.NoError(t, err)
		assert.Empty(t, view.Ingredients)
	})

	t.Run("minimal valid recipe", func(t *testing.T) {
		req := recipeRequest("Bread", []*model.Tag{tag},
			types.IngredientAmountRequest{ID: flour.ID, Amount: 100})
		req.CookingTime = 1
		view, err := svc.Create(context.Background(), author.ID, req)
		require.NoError(t, err)
		assert.Equal(t, "Bread", view.Name)
		assert.Equal(t, 1, view.CookingTime)
		assert.Equal(t, author.ID, view.Author.ID)
		require.Len(t, view.Ingredients, 1)
		assert.Equal(t, 100, view.Ingredients[0].Amount)
	})
}

func TestUpdateRecipeReplacesLists(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(t, db)
	author := newTestUser(t, db)
	dinner := newTestTag(t, db, "Dinner", "dinner")
	lunch := newTestTag(t, db, "Lunch", "lunch")
	flour := newTestIngredient(t, db, "flour", "g")
	sugar := newTestIngredient(t, db, "sugar", "g")

	created, err := svc.Create(context.Background(), author.ID,
		recipeRequest("Bread", []*model.Tag{dinner},
			types.IngredientAmountRequest{ID: flour.ID, Amount: 500}))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, author.ID,
		recipeRequest("Sweet bread", []*model.Tag{lunch},
			types.IngredientAmountRequest{ID: sugar.ID, Amount: 50}))
	require.NoError(t, err)

	assert.Equal(t, "Sweet bread", updated.Name)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "lunch", updated.Tags[0].Slug)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, "sugar", updated.Ingredients[0].Name)

	// The old amount rows are gone, not orphaned.
	var count int64
	db.Model(&model.RecipeIngredient{}).Where("recipe_id = ?", created.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	// Updating to an empty ingredient list clears the remaining rows.
	cleared, err := svc.Update(context.Background(), created.ID, author.ID,
		recipeRequest("Sweet bread", []*model.Tag{lunch}))
	require.NoError(t, err)
	assert.Empty(t, cleared.Ingredients)
	db.Model(&model.RecipeIngredient{}).Where("recipe_id = ?", created.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestRecipeWritePermissions(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(t, db)
	author := newTestUser(t, db)
	stranger := newTestUser(t, db)
	admin := newTestUser(t, db)
	require.NoError(t, db.Model(admin).Update("is_superuser", true).Error)

	tag := newTestTag(t, db, "Dinner", "dinner")
	flour := newTestIngredient(t, db, "flour", "g")
	created, err := svc.Create(context.Background(), author.ID,
		recipeRequest("Bread", []*model.Tag{tag},
			types.IngredientAmountRequest{ID: flour.ID, Amount: 500}))
	require.NoError(t, err)

	req := recipeRequest("Renamed", []*model.Tag{tag},
		types.IngredientAmountRequest{ID: flour.ID, Amount: 500})

	_, err = svc.Update(context.Background(), created.ID, stranger.ID, req)
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	assert.True(t, errors.Is(svc.Delete(created.ID, stranger.ID), ErrPermissionDenied))

	_, err = svc.Update(context.Background(), created.ID, admin.ID, req)
	assert.NoError(t, err)

	assert.NoError(t, svc.Delete(created.ID, author.ID))
	_, err = svc.Get(created.ID, author.ID)
	assert.True(t, errors.Is(err, ErrRecipeNotFound))
}

func TestFavoriteAndCartToggles(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(t, db)
	author := newTestUser(t, db)
	reader := newTestUser(t, db)
	tag := newTestTag(t, db, "Dinner", "dinner")
	flour := newTestIngredient(t, db, "flour", "g")

	created, err := svc.Create(context.Background(), author.ID,
		recipeRequest("Bread", []*model.Tag{tag},
			types.IngredientAmountRequest{ID: flour.ID, Amount: 500}))
	require.NoError(t, err)

	short, err := svc.Favorite(reader.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, short.ID)

	_, err = svc.Favorite(reader.ID, created.ID)
	assert.True(t, errors.Is(err, ErrAlreadyFavorited))

	view, err := svc.Get(created.ID, reader.ID)
	require.NoError(t, err)
	assert.True(t, view.IsFavorited)
	assert.False(t, view.IsInShoppingCart)

	require.NoError(t, svc.Unfavorite(reader.ID, created.ID))
	assert.True(t, errors.Is(svc.Unfavorite(reader.ID, created.ID), ErrNotFavorited))

	_, err = svc.AddToCart(reader.ID, created.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(reader.ID, created.ID)
	assert.True(t, errors.Is(err, ErrAlreadyInCart))

	require.NoError(t, svc.RemoveFromCart(reader.ID, created.ID))
	assert.True(t, errors.Is(svc.RemoveFromCart(reader.ID, created.ID), ErrNotInCart))
}

func TestShoppingListAggregation(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(t, db)
	author := newTestUser(t, db)
	tag := newTestTag(t, db, "Dinner", "dinner")
	flour := newTestIngredient(t, db, "flour", "g")
	sugar := newTestIngredient(t, db, "sugar", "g")

	bread, err := svc.Create(context.Background(), author.ID,
		recipeRequest("Bread", []*model.Tag{tag},
			types.IngredientAmountRequest{ID: flour.ID, Amount: 300}))
	require.NoError(t, err)
	cake, err := svc.Create(context.Background(), author.ID,
		recipeRequest("Cake", []*model.Tag{tag},
			types.IngredientAmountRequest{ID: flour.ID, Amount: 50},
			types.IngredientAmountRequest{ID: sugar.ID, Amount: 50}))
	require.NoError(t, err)

	_, err = svc.AddToCart(author.ID, bread.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(author.ID, cake.ID)
	require.NoError(t, err)

	items, err := svc.ShoppingList(author.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "flour", items[0].Name)
	assert.Equal(t, 350, items[0].Amount)
	assert.Equal(t, "sugar", items[1].Name)
	assert.Equal(t, 50, items[1].Amount)
}

func TestListRecipesFilters(t *testing.T) {
	db := newTestDB(t)
	svc := newRecipeService(t, db)
	alice := newTestUser(t, db)
	bob := newTestUser(t, db)
	dinner := newTestTag(t, db, "Dinner", "dinner")
	lunch := newTestTag(t, db, "Lunch", "lunch")
	flour := newTestIngredient(t, db, "flour", "g")

	breakfastBread, err := svc.Create(context.Background(), alice.ID,
		recipeRequest("Bread", []*model.Tag{dinner},
			types.IngredientAmountRequest{ID: flour.ID, Amount: 100}))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), bob.ID,
		recipeRequest("Soup", []*model.Tag{lunch},
			types.IngredientAmountRequest{ID: flour.ID, Amount: 10}))
	require.NoError(t, err)

	t.Run("tag union", func(t *testing.T) {
		views, count, err := svc.List(RecipeFilter{Tags: []string{"dinner", "lunch"}}, uuid.Nil, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)
		assert.Len(t, views, 2)

		views, count, err = svc.List(RecipeFilter{Tags: []string{"dinner"}}, uuid.Nil, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
		require.Len(t, views, 1)
		assert.Equal(t, "Bread", views[0].Name)
	})

	t.Run("author filter", func(t *testing.T) {
		views, count, err := svc.List(RecipeFilter{Author: bob.ID}, uuid.Nil, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
		require.Len(t, views, 1)
		assert.Equal(t, "Soup", views[0].Name)
	})

	t.Run("favorited filter scoped to caller", func(t *testing.T) {
		_, err := svc.Favorite(bob.ID, breakfastBread.ID)
		require.NoError(t, err)

		views, count, err := svc.List(RecipeFilter{IsFavorited: true}, bob.ID, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
		require.Len(t, views, 1)
		assert.Equal(t, "Bread", views[0].Name)

		// Anonymous callers get the unfiltered listing.
		_, count, err = svc.List(RecipeFilter{IsFavorited: true}, uuid.Nil, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)
	})
}
