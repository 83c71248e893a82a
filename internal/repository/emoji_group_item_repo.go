package repository

import (
	"time"

	"github.com/damoang/emoji-backend/internal/domain"
	"gorm.io/gorm"
)

// EmojiGroupItemRepository membership data access interface
type EmojiGroupItemRepository interface {
	WithTx(tx *gorm.DB) EmojiGroupItemRepository
	Create(item *domain.EmojiGroupItem) error
	GetByGroupAndEmoji(groupID, emojiID string) (*domain.EmojiGroupItem, error)
	FindByGroup(groupID string) ([]*domain.EmojiGroupItem, error)
	UpdateName(groupID, emojiID, name string) error
	UpdateSort(groupID, emojiID string, sort int) error
	DeleteByGroup(groupID string) error
	DeleteByGroupAndEmoji(groupID, emojiID string) error
	DeleteByGroupsAndEmoji(groupIDs []string, emojiID string) error
}

type emojiGroupItemRepository struct {
	db *gorm.DB
}

// NewEmojiGroupItemRepository creates a new EmojiGroupItemRepository
func NewEmojiGroupItemRepository(db *gorm.DB) EmojiGroupItemRepository {
	return &emojiGroupItemRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *emojiGroupItemRepository) WithTx(tx *gorm.DB) EmojiGroupItemRepository {
	return &emojiGroupItemRepository{db: tx}
}

// Create inserts a membership row
func (r *emojiGroupItemRepository) Create(item *domain.EmojiGroupItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	return r.db.Create(item).Error
}

// GetByGroupAndEmoji returns the membership row for a (group, emoji) pair
func (r *emojiGroupItemRepository) GetByGroupAndEmoji(groupID, emojiID string) (*domain.EmojiGroupItem, error) {
	var item domain.EmojiGroupItem
	err := r.db.Where("group_id = ? AND emoji_id = ?", groupID, emojiID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByGroup returns a group's membership rows ordered by sort
func (r *emojiGroupItemRepository) FindByGroup(groupID string) ([]*domain.EmojiGroupItem, error) {
	var items []*domain.EmojiGroupItem
	err := r.db.Where("group_id = ?", groupID).
		Order("sort ASC, id ASC").
		Find(&items).Error
	return items, err
}

// UpdateName sets the group-local display name of a membership row
func (r *emojiGroupItemRepository) UpdateName(groupID, emojiID, name string) error {
	return r.db.Model(&domain.EmojiGroupItem{}).
		Where("group_id = ? AND emoji_id = ?", groupID, emojiID).
		Update("name", name).Error
}

// UpdateSort sets the group-local sort of a membership row
func (r *emojiGroupItemRepository) UpdateSort(groupID, emojiID string, sort int) error {
	return r.db.Model(&domain.EmojiGroupItem{}).
		Where("group_id = ? AND emoji_id = ?", groupID, emojiID).
		Update("sort", sort).Error
}

// DeleteByGroup removes every membership row of a group
func (r *emojiGroupItemRepository) DeleteByGroup(groupID string) error {
	return r.db.Where("group_id = ?", groupID).
		Delete(&domain.EmojiGroupItem{}).Error
}

// DeleteByGroupAndEmoji removes a single membership row
func (r *emojiGroupItemRepository) DeleteByGroupAndEmoji(groupID, emojiID string) error {
	return r.db.Where("group_id = ? AND emoji_id = ?", groupID, emojiID).
		Delete(&domain.EmojiGroupItem{}).Error
}

// DeleteByGroupsAndEmoji removes an emoji's membership from every listed group
func (r *emojiGroupItemRepository) DeleteByGroupsAndEmoji(groupIDs []string, emojiID string) error {
	if len(groupIDs) == 0 {
		return nil
	}
	return r.db.Where("group_id IN ? AND emoji_id = ?", groupIDs, emojiID).
		Delete(&domain.EmojiGroupItem{}).Error
}
