package migration

import (
	"github.com/damoang/emoji-backend/internal/domain"
	"gorm.io/gorm"
)

// Run applies the schema for the emoji tables
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Emoji{},
		&domain.EmojiGroup{},
		&domain.EmojiGroupItem{},
	)
}
