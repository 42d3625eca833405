package database

import (
	"gorm.io/gorm"

	"github.com/pageza/forkful/backend/internal/model"
)

// Migrate brings the schema up to date. The composite unique indexes on the
// relation tables are part of the model definitions and are required for the
// duplicate-insert guarantees, so AutoMigrate is authoritative here.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Follow{},
		&model.Ingredient{},
		&model.Tag{},
		&model.Recipe{},
		&model.RecipeIngredient{},
		&model.Favorite{},
		&model.CartItem{},
	)
}
