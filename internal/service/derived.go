package service

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/forkful/backend/internal/model"
)

// The derived booleans are pure functions of (entity id, caller id, store),
// recomputed on every request. An anonymous caller (uuid.Nil) always gets
// false.

func isSubscribed(db *gorm.DB, callerID, authorID uuid.UUID) bool {
	if callerID == uuid.Nil {
		return false
	}
	var n int64
	db.Model(&model.Follow{}).
		Where("user_id = ? AND author_id = ?", callerID, authorID).
		Count(&n)
	return n > 0
}

func isFavorited(db *gorm.DB, callerID, recipeID uuid.UUID) bool {
	if callerID == uuid.Nil {
		return false
	}
	var n int64
	db.Model(&model.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", callerID, recipeID).
		Count(&n)
	return n > 0
}

func isInShoppingCart(db *gorm.DB, callerID, recipeID uuid.UUID) bool {
	if callerID == uuid.Nil {
		return false
	}
	var n int64
	db.Model(&model.CartItem{}).
		Where("user_id = ? AND recipe_id = ?", callerID, recipeID).
		Count(&n)
	return n > 0
}
