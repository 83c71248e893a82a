package repository

import (
	"time"

	"github.com/damoang/emoji-backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmojiRepository emoji data access interface
type EmojiRepository interface {
	WithTx(tx *gorm.DB) EmojiRepository
	Create(emoji *domain.Emoji) error
	GetByID(id string) (*domain.Emoji, error)
	GetByURL(url string) (*domain.Emoji, error)
	GetByIDs(ids []string) ([]*domain.Emoji, error)
}

type emojiRepository struct {
	db *gorm.DB
}

// NewEmojiRepository creates a new EmojiRepository
func NewEmojiRepository(db *gorm.DB) EmojiRepository {
	return &emojiRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *emojiRepository) WithTx(tx *gorm.DB) EmojiRepository {
	return &emojiRepository{db: tx}
}

// Create inserts an emoji, assigning an id if none is set
func (r *emojiRepository) Create(emoji *domain.Emoji) error {
	if emoji.ID == "" {
		emoji.ID = uuid.New().String()
	}
	if emoji.CreatedAt.IsZero() {
		emoji.CreatedAt = time.Now()
	}
	return r.db.Create(emoji).Error
}

// GetByID returns an emoji by id
func (r *emojiRepository) GetByID(id string) (*domain.Emoji, error) {
	var emoji domain.Emoji
	if err := r.db.Where("id = ?", id).First(&emoji).Error; err != nil {
		return nil, err
	}
	return &emoji, nil
}

// GetByURL returns an emoji by its exact URL (the dedup key)
func (r *emojiRepository) GetByURL(url string) (*domain.Emoji, error) {
	var emoji domain.Emoji
	if err := r.db.Where("url = ?", url).First(&emoji).Error; err != nil {
		return nil, err
	}
	return &emoji, nil
}

// GetByIDs returns emojis aligned to the input id order. Ids without a
// matching record are omitted, so the result may be shorter than the input.
func (r *emojiRepository) GetByIDs(ids []string) ([]*domain.Emoji, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var emojis []*domain.Emoji
	if err := r.db.Where("id IN ?", ids).Find(&emojis).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Emoji, len(emojis))
	for _, e := range emojis {
		byID[e.ID] = e
	}

	ordered := make([]*domain.Emoji, 0, len(emojis))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			ordered = append(ordered, e)
		}
	}
	return ordered, nil
}
