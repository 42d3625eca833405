package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/forkful/backend/internal/model"
	"github.com/pageza/forkful/backend/internal/types"
)

// UserService handles profiles and author subscriptions.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Get(id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) List(page, limit int) ([]model.User, int64, error) {
	var (
		users []model.User
		count int64
	)
	if err := s.db.Model(&model.User{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}
	err := s.db.Order("username").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

// BuildUserView serializes a user relative to the caller.
func (s *UserService) BuildUserView(user *model.User, callerID uuid.UUID) types.UserView {
	return types.UserView{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: isSubscribed(s.db, callerID, user.ID),
	}
}

// BuildAuthorView enriches a profile with the author's recipes.
// recipesLimit <= 0 means no truncation.
func (s *UserService) BuildAuthorView(user *model.User, callerID uuid.UUID, recipesLimit int) (types.AuthorView, error) {
	view := types.AuthorView{
		UserView: s.BuildUserView(user, callerID),
		Recipes:  []types.ShortRecipeView{},
	}

	q := s.db.Where("author_id = ?", user.ID).Order("published_at DESC")
	if recipesLimit > 0 {
		q = q.Limit(recipesLimit)
	}
	var recipes []model.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return view, err
	}
	for i := range recipes {
		view.Recipes = append(view.Recipes, shortRecipeView(&recipes[i]))
	}

	if err := s.db.Model(&model.Recipe{}).
		Where("author_id = ?", user.ID).
		Count(&view.RecipesCount).Error; err != nil {
		return view, err
	}
	return view, nil
}

// Subscribe creates a follow from caller to author. Self-follows are a
// business rule here, not a schema constraint.
func (s *UserService) Subscribe(callerID, authorID uuid.UUID, recipesLimit int) (types.AuthorView, error) {
	if callerID == authorID {
		return types.AuthorView{}, ErrSelfFollow
	}

	author, err := s.Get(authorID)
	if err != nil {
		return types.AuthorView{}, err
	}

	follow := model.Follow{UserID: callerID, AuthorID: authorID}
	if err := s.db.Create(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return types.AuthorView{}, ErrAlreadyFollowing
		}
		return types.AuthorView{}, err
	}

	return s.BuildAuthorView(author, callerID, recipesLimit)
}

// Unsubscribe removes the follow row; a missing row is a not-found error.
func (s *UserService) Unsubscribe(callerID, authorID uuid.UUID) error {
	if _, err := s.Get(authorID); err != nil {
		return err
	}

	res := s.db.Where("user_id = ? AND author_id = ?", callerID, authorID).
		Delete(&model.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFollowing
	}
	return nil
}

// Subscriptions lists the authors the caller follows, enriched with their
// recipes, paginated.
func (s *UserService) Subscriptions(callerID uuid.UUID, page, limit, recipesLimit int) ([]types.AuthorView, int64, error) {
	var count int64
	if err := s.db.Model(&model.Follow{}).
		Where("user_id = ?", callerID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var authors []model.User
	err := s.db.
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", callerID).
		Order("follows.created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&authors).Error
	if err != nil {
		return nil, 0, err
	}

	views := make([]types.AuthorView, 0, len(authors))
	for i := range authors {
		view, err := s.BuildAuthorView(&authors[i], callerID, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, view)
	}
	return views, count, nil
}
