package domain

import "time"

// Emoji group types. Every user owns exactly one "all" group; it is the
// permanent archive of everything they ever added and cannot be renamed,
// reordered or deleted. Custom groups are user-defined subsets of it.
const (
	GroupTypeCustom = 0
	GroupTypeAll    = 1
)

// AllGroupName is the reserved name of the "all" group. Custom groups may
// not take it.
const AllGroupName = "all"

// EmojiGroup represents a named, ordered emoji container owned by a user
type EmojiGroup struct {
	ID        string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"column:user_id;size:36;index:idx_emoji_groups_user" json:"user_id"`
	Name      string    `gorm:"column:name;size:100;not null" json:"name"`
	Sort      int       `gorm:"column:sort;default:0" json:"sort"`
	Type      int       `gorm:"column:type;default:0" json:"type"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (EmojiGroup) TableName() string {
	return "emoji_groups"
}

// IsAll reports whether the group is the user's "all" group
func (g *EmojiGroup) IsAll() bool {
	return g.Type == GroupTypeAll
}

// EmojiGroupItem represents an emoji's membership in a group. Name and sort
// are group-local: the same emoji can carry a different display name and
// position in every group it belongs to.
type EmojiGroupItem struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	GroupID   string    `gorm:"column:group_id;size:36;uniqueIndex:uq_group_emoji;not null" json:"group_id"`
	EmojiID   string    `gorm:"column:emoji_id;size:36;uniqueIndex:uq_group_emoji;not null" json:"emoji_id"`
	Name      string    `gorm:"column:name;size:100" json:"name"`
	Sort      int       `gorm:"column:sort;default:0" json:"sort"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (EmojiGroupItem) TableName() string {
	return "emoji_group_items"
}

// EmojiGroupResponse represents a group in API responses
type EmojiGroupResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Sort      int    `json:"sort"`
	Type      int    `json:"type"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ToResponse converts a group to its API representation
func (g *EmojiGroup) ToResponse() *EmojiGroupResponse {
	return &EmojiGroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		Sort:      g.Sort,
		Type:      g.Type,
		CreatedAt: g.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: g.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
