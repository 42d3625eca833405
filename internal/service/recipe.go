package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/forkful/backend/internal/model"
	"github.com/pageza/forkful/backend/internal/types"
)

// RecipeFilter narrows a recipe listing. Tag slugs are a match-any union.
// The two boolean filters are scoped to the caller and ignored for
// anonymous requests.
type RecipeFilter struct {
	Tags             []string
	Author           uuid.UUID
	IsFavorited      bool
	IsInShoppingCart bool
}

// RecipeService handles recipe CRUD, the favorite and cart toggles, and the
// shopping-list aggregation.
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
}

func NewRecipeService(db *gorm.DB, images ImageStore) *RecipeService {
	return &RecipeService{db: db, images: images}
}

func (s *RecipeService) preloaded() *gorm.DB {
	return s.db.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient")
}

func (s *RecipeService) find(id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.preloaded().First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// List returns recipes matching the filter, newest first.
func (s *RecipeService) List(filter RecipeFilter, callerID uuid.UUID, page, limit int) ([]types.RecipeView, int64, error) {
	filtered := func(db *gorm.DB) *gorm.DB {
		if len(filter.Tags) > 0 {
			db = db.Where("recipes.id IN (?)", s.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.Tags))
		}
		if filter.Author != uuid.Nil {
			db = db.Where("recipes.author_id = ?", filter.Author)
		}
		if filter.IsFavorited && callerID != uuid.Nil {
			db = db.Where("recipes.id IN (?)", s.db.Model(&model.Favorite{}).
				Select("recipe_id").
				Where("user_id = ?", callerID))
		}
		if filter.IsInShoppingCart && callerID != uuid.Nil {
			db = db.Where("recipes.id IN (?)", s.db.Model(&model.CartItem{}).
				Select("recipe_id").
				Where("user_id = ?", callerID))
		}
		return db
	}

	var count int64
	if err := s.db.Model(&model.Recipe{}).Scopes(filtered).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var recipes []model.Recipe
	err := s.preloaded().
		Scopes(filtered).
		Order("published_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}

	views := make([]types.RecipeView, 0, len(recipes))
	for i := range recipes {
		views = append(views, s.buildView(&recipes[i], callerID))
	}
	return views, count, nil
}

// Get returns a single recipe serialized relative to the caller.
func (s *RecipeService) Get(id, callerID uuid.UUID) (types.RecipeView, error) {
	recipe, err := s.find(id)
	if err != nil {
		return types.RecipeView{}, err
	}
	return s.buildView(recipe, callerID), nil
}

// Create persists a recipe with its ingredient amounts and tags in one
// transaction. The author comes from the token, never from the body.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (types.RecipeView, error) {
	if err := validateRecipeRequest(req); err != nil {
		return types.RecipeView{}, err
	}

	tags, err := s.resolveTags(req.Tags)
	if err != nil {
		return types.RecipeView{}, err
	}
	if err := s.checkIngredientsExist(req.Ingredients); err != nil {
		return types.RecipeView{}, err
	}

	imageURL, err := s.storeImage(ctx, req.Image)
	if err != nil {
		return types.RecipeView{}, err
	}
	if imageURL == "" {
		return types.RecipeView{}, fmt.Errorf("%w: image is required", ErrValidation)
	}

	recipe := model.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Image:       imageURL,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		if err := createIngredientRows(tx, recipe.ID, req.Ingredients); err != nil {
			return err
		}
		return tx.Model(&recipe).Association("Tags").Append(&tags)
	})
	if err != nil {
		return types.RecipeView{}, err
	}

	return s.Get(recipe.ID, authorID)
}

// Update replaces the recipe's fields and its whole ingredient and tag
// lists in a single transaction. Only the author or a superuser may call it.
func (s *RecipeService) Update(ctx context.Context, id, callerID uuid.UUID, req *types.RecipeRequest) (types.RecipeView, error) {
	recipe, err := s.find(id)
	if err != nil {
		return types.RecipeView{}, err
	}
	if err := s.authorizeWrite(recipe, callerID); err != nil {
		return types.RecipeView{}, err
	}
	if err := validateRecipeRequest(req); err != nil {
		return types.RecipeView{}, err
	}

	tags, err := s.resolveTags(req.Tags)
	if err != nil {
		return types.RecipeView{}, err
	}
	if err := s.checkIngredientsExist(req.Ingredients); err != nil {
		return types.RecipeView{}, err
	}

	imageURL := recipe.Image
	if req.Image != "" {
		if imageURL, err = s.storeImage(ctx, req.Image); err != nil {
			return types.RecipeView{}, err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         req.Name,
			"text":         req.Text,
			"cooking_time": req.CookingTime,
			"image":        imageURL,
		}
		if err := tx.Model(&model.Recipe{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&model.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := createIngredientRows(tx, id, req.Ingredients); err != nil {
			return err
		}
		return tx.Model(recipe).Association("Tags").Replace(&tags)
	})
	if err != nil {
		return types.RecipeView{}, err
	}

	return s.Get(id, callerID)
}

// Delete removes a recipe; the amount rows cascade.
func (s *RecipeService) Delete(id, callerID uuid.UUID) error {
	recipe, err := s.find(id)
	if err != nil {
		return err
	}
	if err := s.authorizeWrite(recipe, callerID); err != nil {
		return err
	}
	return s.db.Select(clause.Associations).Delete(recipe).Error
}

// authorizeWrite implements the author-or-superuser rule for recipe
// mutation. Reads are never gated.
func (s *RecipeService) authorizeWrite(recipe *model.Recipe, callerID uuid.UUID) error {
	if recipe.AuthorID == callerID {
		return nil
	}
	var caller model.User
	if err := s.db.First(&caller, "id = ?", callerID).Error; err != nil {
		return ErrPermissionDenied
	}
	if caller.IsSuperuser {
		return nil
	}
	return ErrPermissionDenied
}

// Favorite marks the recipe for the caller. The unique constraint is the
// backstop for concurrent duplicate attempts.
func (s *RecipeService) Favorite(callerID, recipeID uuid.UUID) (types.ShortRecipeView, error) {
	recipe, err := s.find(recipeID)
	if err != nil {
		return types.ShortRecipeView{}, err
	}
	fav := model.Favorite{UserID: callerID, RecipeID: recipeID}
	if err := s.db.Create(&fav).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return types.ShortRecipeView{}, ErrAlreadyFavorited
		}
		return types.ShortRecipeView{}, err
	}
	return shortRecipeView(recipe), nil
}

func (s *RecipeService) Unfavorite(callerID, recipeID uuid.UUID) error {
	if _, err := s.find(recipeID); err != nil {
		return err
	}
	res := s.db.Where("user_id = ? AND recipe_id = ?", callerID, recipeID).
		Delete(&model.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFavorited
	}
	return nil
}

// AddToCart puts the recipe into the caller's shopping cart.
func (s *RecipeService) AddToCart(callerID, recipeID uuid.UUID) (types.ShortRecipeView, error) {
	recipe, err := s.find(recipeID)
	if err != nil {
		return types.ShortRecipeView{}, err
	}
	item := model.CartItem{UserID: callerID, RecipeID: recipeID}
	if err := s.db.Create(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return types.ShortRecipeView{}, ErrAlreadyInCart
		}
		return types.ShortRecipeView{}, err
	}
	return shortRecipeView(recipe), nil
}

func (s *RecipeService) RemoveFromCart(callerID, recipeID uuid.UUID) error {
	if _, err := s.find(recipeID); err != nil {
		return err
	}
	res := s.db.Where("user_id = ? AND recipe_id = ?", callerID, recipeID).
		Delete(&model.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotInCart
	}
	return nil
}

// ShoppingList aggregates every ingredient amount across the caller's cart,
// summing duplicates. The output keeps the order in which each ingredient
// was first encountered.
func (s *RecipeService) ShoppingList(userID uuid.UUID) ([]types.ShoppingItem, error) {
	var rows []struct {
		Name            string
		MeasurementUnit string
		Amount          int
	}
	err := s.db.Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, recipe_ingredients.amount AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN cart_items ON cart_items.recipe_id = recipe_ingredients.recipe_id").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.created_at, recipe_ingredients.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(rows))
	items := make([]types.ShoppingItem, 0, len(rows))
	for _, row := range rows {
		key := row.Name + "\x00" + row.MeasurementUnit
		if i, ok := index[key]; ok {
			items[i].Amount += row.Amount
			continue
		}
		index[key] = len(items)
		items = append(items, types.ShoppingItem{
			Name:            row.Name,
			MeasurementUnit: row.MeasurementUnit,
			Amount:          row.Amount,
		})
	}
	return items, nil
}

func (s *RecipeService) buildView(r *model.Recipe, callerID uuid.UUID) types.RecipeView {
	view := types.RecipeView{
		ID: r.ID,
		Author: types.UserView{
			ID:           r.Author.ID,
			Email:        r.Author.Email,
			Username:     r.Author.Username,
			FirstName:    r.Author.FirstName,
			LastName:     r.Author.LastName,
			IsSubscribed: isSubscribed(s.db, callerID, r.AuthorID),
		},
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		PublishedAt:      r.PublishedAt,
		Tags:             TagViews(r.Tags),
		Ingredients:      make([]types.IngredientAmountView, 0, len(r.Ingredients)),
		IsFavorited:      isFavorited(s.db, callerID, r.ID),
		IsInShoppingCart: isInShoppingCart(s.db, callerID, r.ID),
	}
	for i := range r.Ingredients {
		ri := &r.Ingredients[i]
		view.Ingredients = append(view.Ingredients, types.IngredientAmountView{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}
	return view
}

func shortRecipeView(r *model.Recipe) types.ShortRecipeView {
	return types.ShortRecipeView{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

func validateRecipeRequest(req *types.RecipeRequest) error {
	if req.CookingTime < 1 {
		return fmt.Errorf("%w: cooking_time must be at least 1 minute", ErrValidation)
	}
	seen := make(map[uuid.UUID]bool, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		if ing.Amount < 1 {
			return fmt.Errorf("%w: ingredient amount must be at least 1", ErrValidation)
		}
		if seen[ing.ID] {
			return fmt.Errorf("%w: duplicate ingredient %s", ErrValidation, ing.ID)
		}
		seen[ing.ID] = true
	}
	return nil
}

func (s *RecipeService) resolveTags(ids []uuid.UUID) ([]model.Tag, error) {
	var tags []model.Tag
	if err := s.db.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, ErrTagNotFound
	}
	return tags, nil
}

func (s *RecipeService) checkIngredientsExist(ingredients []types.IngredientAmountRequest) error {
	ids := make([]uuid.UUID, 0, len(ingredients))
	for _, ing := range ingredients {
		ids = append(ids, ing.ID)
	}
	var count int64
	if err := s.db.Model(&model.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return ErrIngredientNotFound
	}
	return nil
}

func createIngredientRows(tx *gorm.DB, recipeID uuid.UUID, ingredients []types.IngredientAmountRequest) error {
	if len(ingredients) == 0 {
		return nil
	}
	rows := make([]model.RecipeIngredient, 0, len(ingredients))
	for _, ing := range ingredients {
		rows = append(rows, model.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: ing.ID,
			Amount:       ing.Amount,
		})
	}
	return tx.Create(&rows).Error
}

// storeImage decodes an inline payload and persists it, or passes a URL
// reference through untouched.
func (s *RecipeService) storeImage(ctx context.Context, payload string) (string, error) {
	if payload == "" {
		return "", nil
	}
	data, contentType, url, err := DecodeImagePayload(payload)
	if err != nil {
		return "", err
	}
	if url != "" {
		return url, nil
	}
	return s.images.Store(ctx, data, contentType)
}
