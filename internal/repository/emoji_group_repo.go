package repository

import (
	"time"

	"github.com/damoang/emoji-backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmojiGroupRepository emoji group data access interface. Plain persistence
// only; the "all" group rules are enforced by the service layer.
type EmojiGroupRepository interface {
	WithTx(tx *gorm.DB) EmojiGroupRepository
	Create(group *domain.EmojiGroup) error
	GetByID(id string) (*domain.EmojiGroup, error)
	FindByUser(userID string) ([]*domain.EmojiGroup, error)
	GetAllGroup(userID string) (*domain.EmojiGroup, error)
	GetByUserAndName(userID, name string) (*domain.EmojiGroup, error)
	UpdateName(id, name string) error
	UpdateSort(id string, sort int) error
	Delete(id string) error
}

type emojiGroupRepository struct {
	db *gorm.DB
}

// NewEmojiGroupRepository creates a new EmojiGroupRepository
func NewEmojiGroupRepository(db *gorm.DB) EmojiGroupRepository {
	return &emojiGroupRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *emojiGroupRepository) WithTx(tx *gorm.DB) EmojiGroupRepository {
	return &emojiGroupRepository{db: tx}
}

// Create inserts a group, assigning an id if none is set
func (r *emojiGroupRepository) Create(group *domain.EmojiGroup) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	now := time.Now()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	group.UpdatedAt = now
	return r.db.Create(group).Error
}

// GetByID returns a group by id
func (r *emojiGroupRepository) GetByID(id string) (*domain.EmojiGroup, error) {
	var group domain.EmojiGroup
	if err := r.db.Where("id = ?", id).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// FindByUser returns all of a user's groups ordered by sort
func (r *emojiGroupRepository) FindByUser(userID string) ([]*domain.EmojiGroup, error) {
	var groups []*domain.EmojiGroup
	err := r.db.Where("user_id = ?", userID).
		Order("sort ASC, created_at ASC").
		Find(&groups).Error
	return groups, err
}

// GetAllGroup returns the user's "all" group
func (r *emojiGroupRepository) GetAllGroup(userID string) (*domain.EmojiGroup, error) {
	var group domain.EmojiGroup
	err := r.db.Where("user_id = ? AND type = ?", userID, domain.GroupTypeAll).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GetByUserAndName returns the user's group with the given name
func (r *emojiGroupRepository) GetByUserAndName(userID, name string) (*domain.EmojiGroup, error) {
	var group domain.EmojiGroup
	err := r.db.Where("user_id = ? AND name = ?", userID, name).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// UpdateName sets a group's name
func (r *emojiGroupRepository) UpdateName(id, name string) error {
	return r.db.Model(&domain.EmojiGroup{}).Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "updated_at": time.Now()}).Error
}

// UpdateSort sets a group's sort order
func (r *emojiGroupRepository) UpdateSort(id string, sort int) error {
	return r.db.Model(&domain.EmojiGroup{}).Where("id = ?", id).
		Updates(map[string]interface{}{"sort": sort, "updated_at": time.Now()}).Error
}

// Delete removes a group row. Membership cleanup is the caller's job.
func (r *emojiGroupRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&domain.EmojiGroup{}).Error
}
