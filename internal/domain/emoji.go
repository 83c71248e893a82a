package domain

import "time"

// Emoji status values
const (
	EmojiStatusNormal  = 0
	EmojiStatusDeleted = 1
)

// Emoji represents an uploaded emoji image, deduplicated by URL
type Emoji struct {
	ID         string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	URL        string    `gorm:"column:url;size:512;uniqueIndex;not null" json:"url"`
	UploaderID string    `gorm:"column:uploader_id;size:36;index" json:"uploader_id"`
	Status     int       `gorm:"column:status;default:0" json:"status"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Emoji) TableName() string {
	return "emojis"
}

// EmojiResponse represents an emoji within a group in API responses,
// merged with the group-local name and sort of its membership row
type EmojiResponse struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Name      string `json:"name"`
	Sort      int    `json:"sort"`
	CreatedAt string `json:"created_at"`
}
