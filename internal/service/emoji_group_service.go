package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/damoang/emoji-backend/internal/common"
	"github.com/damoang/emoji-backend/internal/domain"
	"github.com/damoang/emoji-backend/internal/repository"
	"github.com/damoang/emoji-backend/pkg/cache"
	"github.com/damoang/emoji-backend/pkg/logger"
	"gorm.io/gorm"
)

// EmojiGroupService keeps a user's "all" group and custom groups mutually
// consistent. The "all" group is the source of truth for which emojis a user
// owns; custom groups are subsets of it. Adds to a custom group mirror into
// the "all" group, removals from the "all" group cascade into every group,
// and removals from a custom group touch nothing else.
//
// Every operation takes an explicit userID; a group that exists but belongs
// to someone else is reported as not found.
type EmojiGroupService interface {
	EnsureAllGroup(ctx context.Context, userID string) (*domain.EmojiGroup, error)
	ListGroups(ctx context.Context, userID string) ([]*domain.EmojiGroupResponse, error)
	ListGroupEmojis(ctx context.Context, userID, groupID string) ([]*domain.EmojiResponse, error)
	CreateGroup(ctx context.Context, userID, name string, sort int) (*domain.EmojiGroupResponse, error)
	RenameGroup(ctx context.Context, userID, groupID, newName string) error
	UpdateGroupSort(ctx context.Context, userID, groupID string, sort int) error
	BatchUpdateGroupSort(ctx context.Context, userID string, groupIDs []string, sorts []int) error
	DeleteGroup(ctx context.Context, userID, groupID string) error
	AddEmojiToGroup(ctx context.Context, userID, groupID, emojiID string, sort int, name string) error
	AddEmojiByURL(ctx context.Context, userID, groupID, url string, sort int, name string) (*domain.Emoji, error)
	RemoveEmojiFromGroup(ctx context.Context, userID, groupID, emojiID string) error
	RenameEmojiInGroup(ctx context.Context, userID, groupID, emojiID, newName string) error
	UpdateEmojiSort(ctx context.Context, userID, groupID, emojiID string, sort int) error
	BatchUpdateEmojiSort(ctx context.Context, userID, groupID string, emojiIDs []string, sorts []int) error
}

type emojiGroupService struct {
	db        *gorm.DB
	groupRepo repository.EmojiGroupRepository
	itemRepo  repository.EmojiGroupItemRepository
	emojiSvc  EmojiService
	cache     cache.Service
}

// NewEmojiGroupService creates a new EmojiGroupService
func NewEmojiGroupService(
	db *gorm.DB,
	groupRepo repository.EmojiGroupRepository,
	itemRepo repository.EmojiGroupItemRepository,
	emojiSvc EmojiService,
	cacheSvc cache.Service,
) EmojiGroupService {
	return &emojiGroupService{
		db:        db,
		groupRepo: groupRepo,
		itemRepo:  itemRepo,
		emojiSvc:  emojiSvc,
		cache:     cacheSvc,
	}
}

// ownedGroup loads a group and verifies it belongs to userID. Groups owned
// by other users are indistinguishable from missing ones.
func (s *emojiGroupService) ownedGroup(userID, groupID string) (*domain.EmojiGroup, error) {
	if groupID == "" {
		return nil, common.ErrInvalidInput
	}
	group, err := s.groupRepo.GetByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrGroupNotFound
		}
		return nil, err
	}
	if group.UserID != userID {
		return nil, common.ErrGroupNotFound
	}
	return group, nil
}

// EnsureAllGroup returns the user's "all" group, creating it on first
// access. Concurrent callers may both attempt the insert; the loser deletes
// its row and resolves to the winner's group, so exactly one survives.
func (s *emojiGroupService) EnsureAllGroup(ctx context.Context, userID string) (*domain.EmojiGroup, error) {
	if userID == "" {
		return nil, common.ErrInvalidInput
	}

	group, err := s.groupRepo.GetAllGroup(userID)
	if err == nil {
		return group, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &domain.EmojiGroup{
		UserID: userID,
		Name:   domain.AllGroupName,
		Sort:   0,
		Type:   domain.GroupTypeAll,
	}
	if err := s.groupRepo.Create(created); err != nil {
		if existing, readErr := s.groupRepo.GetAllGroup(userID); readErr == nil {
			return existing, nil
		}
		return nil, err
	}

	// Re-read so racing creators converge on the same logical group
	winner, err := s.groupRepo.GetAllGroup(userID)
	if err != nil {
		return nil, err
	}
	if winner.ID != created.ID {
		// Lost the race; our empty duplicate is dropped
		_ = s.groupRepo.Delete(created.ID)
	}
	return winner, nil
}

// ListGroups returns the user's groups ordered by sort, ensuring the "all"
// group exists first
func (s *emojiGroupService) ListGroups(ctx context.Context, userID string) ([]*domain.EmojiGroupResponse, error) {
	if _, err := s.EnsureAllGroup(ctx, userID); err != nil {
		return nil, err
	}

	var cached []*domain.EmojiGroupResponse
	if err := s.cache.GetGroups(ctx, userID, &cached); err == nil {
		return cached, nil
	}

	groups, err := s.groupRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.EmojiGroupResponse, len(groups))
	for i, g := range groups {
		responses[i] = g.ToResponse()
	}

	if err := s.cache.SetGroups(ctx, userID, responses); err != nil {
		logger.GetLogger().Warn().Err(err).Str("user_id", userID).Msg("cache group list failed")
	}
	return responses, nil
}

// ListGroupEmojis returns a group's emojis in membership sort order, each
// carrying its group-local name and sort
func (s *emojiGroupService) ListGroupEmojis(ctx context.Context, userID, groupID string) ([]*domain.EmojiResponse, error) {
	group, err := s.ownedGroup(userID, groupID)
	if err != nil {
		return nil, err
	}

	var cached []*domain.EmojiResponse
	if err := s.cache.GetGroupEmojis(ctx, group.ID, &cached); err == nil {
		return cached, nil
	}

	items, err := s.itemRepo.FindByGroup(group.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []*domain.EmojiResponse{}, nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.EmojiID
	}
	emojis, err := s.emojiSvc.GetActiveByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Emoji, len(emojis))
	for _, e := range emojis {
		byID[e.ID] = e
	}

	responses := make([]*domain.EmojiResponse, 0, len(items))
	for _, item := range items {
		emoji, ok := byID[item.EmojiID]
		if !ok {
			continue // emoji record missing or soft-deleted
		}
		responses = append(responses, &domain.EmojiResponse{
			ID:        emoji.ID,
			URL:       emoji.URL,
			Name:      item.Name,
			Sort:      item.Sort,
			CreatedAt: emoji.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	if err := s.cache.SetGroupEmojis(ctx, group.ID, responses); err != nil {
		logger.GetLogger().Warn().Err(err).Str("group_id", group.ID).Msg("cache group emojis failed")
	}
	return responses, nil
}

// CreateGroup creates a custom group. The name must be non-empty and unique
// among the user's groups; the reserved "all" name is never available.
func (s *emojiGroupService) CreateGroup(ctx context.Context, userID, name string, sort int) (*domain.EmojiGroupResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ErrInvalidInput
	}
	if name == domain.AllGroupName {
		return nil, common.ErrGroupNameExists
	}

	if _, err := s.groupRepo.GetByUserAndName(userID, name); err == nil {
		return nil, common.ErrGroupNameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	group := &domain.EmojiGroup{
		UserID: userID,
		Name:   name,
		Sort:   sort,
		Type:   domain.GroupTypeCustom,
	}
	if err := s.groupRepo.Create(group); err != nil {
		return nil, err
	}

	_ = s.cache.InvalidateGroups(ctx, userID)
	return group.ToResponse(), nil
}

// RenameGroup renames a custom group. The "all" group is immutable.
func (s *emojiGroupService) RenameGroup(ctx context.Context, userID, groupID, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return common.ErrInvalidInput
	}

	group, err := s.ownedGroup(userID, groupID)
	if err != nil {
		return err
	}
	if group.IsAll() {
		return common.ErrImmutableGroup
	}
	if newName == domain.AllGroupName {
		return common.ErrGroupNameExists
	}

	if existing, err := s.groupRepo.GetByUserAndName(userID, newName); err == nil {
		if existing.ID != group.ID {
			return common.ErrGroupNameExists
		}
		return nil // renaming to the current name is a no-op
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := s.groupRepo.UpdateName(group.ID, newName); err != nil {
		return err
	}
	_ = s.cache.InvalidateGroups(ctx, userID)
	return nil
}

// UpdateGroupSort changes a custom group's position. The "all" group is
// immutable.
func (s *emojiGroupService) UpdateGroupSort(ctx context.Context, userID, groupID string, sort int) error {
	group, err := s.ownedGroup(userID, groupID)
	if err != nil {
		return err
	}
	if group.IsAll() {
		return common.ErrImmutableGroup
	}

	if err := s.groupRepo.UpdateSort(group.ID, sort); err != nil {
		return err
	}
	_ = s.cache.InvalidateGroups(ctx, userID)
	return nil
}

// BatchUpdateGroupSort reorders several groups at once. Every entry is
// validated for ownership and mutability before anything is written, and the
// writes land in one transaction.
func (s *emojiGroupService) BatchUpdateGroupSort(ctx context.Context, userID string, groupIDs []string, sorts []int) error {
	if len(groupIDs) == 0 || len(groupIDs) != len(sorts) {
		return common.ErrInvalidInput
	}

	for _, groupID := range groupIDs {
		group, err := s.ownedGroup(userID, groupID)
		if err != nil {
			return err
		}
		if group.IsAll() {
			return common.ErrImmutableGroup
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		groups := s.groupRepo.WithTx(tx)
		for i, groupID := range groupIDs {
			if err := groups.UpdateSort(groupID, sorts[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransactionFailed, err)
	}

	_ = s.cache.InvalidateGroups(ctx, userID)
	return nil
}

// DeleteGroup deletes a custom group and its membership rows. The emojis
// themselves and their "all" group memberships stay behind; "all" is the
// permanent archive and is itself undeletable.
func (s *emojiGroupService) DeleteGroup(ctx context.Context, userID, groupID string) error {
	group, err := s.ownedGroup(userID, groupID)
	if err != nil {
		return err
	}
	if group.IsAll() {
		return common.ErrImmutableGroup
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.itemRepo.WithTx(tx).DeleteByGroup(group.ID); err != nil {
			return err
		}
		return s.groupRepo.WithTx(tx).Delete(group.ID)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransactionFailed, err)
	}

	_ = s.cache.InvalidateGroups(ctx, userID)
	_ = s.cache.InvalidateGroupEmojis(ctx, group.ID)
	return nil
}

// ensureMembership inserts a (group, emoji) membership row unless the pair
// already exists. A duplicate add is a no-op, never an error, so retried
// requests cannot corrupt membership.
func ensureMembership(items repository.EmojiGroupItemRepository, groupID, emojiID string, sort int, name string) error {
	if _, err := items.GetByGroupAndEmoji(groupID, emojiID); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return items.Create(&domain.EmojiGroupItem{
		GroupID: groupID,
		EmojiID: emojiID,
		Sort:    sort,
		Name:    name,
	})
}

// AddEmojiToGroup adds an emoji to a group. Adding to a custom group also
// ensures the emoji is in the user's "all" group with the same name and
// sort; an existing "all" membership is left untouched. Adding to "all"
// itself mirrors nowhere.
func (s *emojiGroupService) AddEmojiToGroup(ctx context.Context, userID, groupID, emojiID string, sort int, name string) error {
	if emojiID == "" {
		return common.ErrInvalidInput
	}
	group, err := s.ownedGroup(userID, groupID)
	if err != nil {
		return err
	}
	if _, err := s.emojiSvc.GetActiveByID(emojiID); err != nil {
		return err
	}

	var allGroup *domain.EmojiGroup
	if !group.IsAll() {
		allGroup, err = s.EnsureAllGroup(ctx, userID)
		if err != nil {
			return err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		items := s.itemRepo.WithTx(tx)
		if err := ensureMembership(items, group.ID, emojiID, sort, name); err != nil {
			return err
		}
		if allGroup != nil {
			return ensureMembership(items, allGroup.ID, emojiID, sort, name)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransactionFailed, err)
	}

	invalidated := []string{group.ID}
	if allGroup != nil {
		invalidated = append(invalidated, allGroup.ID)
	}
	_ = s.cache.InvalidateGroupEmojis(ctx, invalidated...)
	return nil
}

// AddEmojiByURL resolves the URL to an emoji (reusing an existing record
// with the same URL) and adds it to the group
func (s *emojiGroupService) AddEmojiByURL(ctx context.Context, userID, groupID, url string, sort int, name string) (*domain.Emoji, error) {
	if _, err := s.ownedGroup(userID, groupID); err != nil {
		return nil, err
	}

	emoji, err := s.emojiSvc.ResolveOrCreateByURL(url, userID)
	if err != nil {
		return nil, err
	}
	if err := s.AddEmojiToGroup(ctx, userID, groupID, emoji.ID, sort, name); err != nil {
		return nil, err
	}
	return emoji, nil
}

// RemoveEmojiFromGroup removes an emoji from a group. Removal is asymmetric
// by group type: removing from the "all" group removes the emoji from every
// group the user owns, while removing from a custom group leaves all other
// groups — including "all" — untouched.
func (s *emojiGroupService) RemoveEmojiFromGroup(ctx context.Context, userID, groupID, emojiID string) error {
	if emojiID == "" {
		return common.ErrInvalidInput
	}
	group, err := s.ownedGroup(userID, groupID)
	if err != nil {
		return err
	}

	if !group.IsAll() {
		if err := s.itemRepo.DeleteByGroupAndEmoji(group.ID, emojiID); err != nil {
			return err
		}
		_ = s.cache.InvalidateGroupEmojis(ctx, group.ID)
		return nil
	}

	groups, err := s.groupRepo.FindByUser(userID)
	if err != nil {
		return err
	}
	groupIDs := make([]string, len(groups))
	for i, g := range groups {
		groupIDs[i] = g.ID
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.itemRepo.WithTx(tx).DeleteByGroupsAndEmoji(groupIDs, emojiID)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransactionFailed, err)
	}

	_ = s.cache.InvalidateGroupEmojis(ctx, groupIDs...)
	return nil
}

// RenameEmojiInGroup sets the emoji's display name within one group only
func (s *emojiGroupService) RenameEmojiInGroup(ctx context.Context, userID, groupID, emojiID, newName string) error {
	newName = strings.TrimSpace(newName)
	if emojiID == "" || newName == "" {
		return common.ErrInvalidInput
	}
	group, err := s.ownedGroup(userID, groupID)
	if err != nil {
		return err
	}
	if err := s.requireMembership(group.ID, emojiID); err != nil {
		return err
	}

	if err := s.itemRepo.UpdateName(group.ID, emojiID, newName); err != nil {
		return err
	}
	_ = s.cache.InvalidateGroupEmojis(ctx, group.ID)
	return nil
}

// UpdateEmojiSort sets the emoji's position within one group only
func (s *emojiGroupService) UpdateEmojiSort(ctx context.Context, userID, groupID, emojiID string, sort int) error {
	if emojiID == "" {
		return common.ErrInvalidInput
	}
	group, err := s.ownedGroup(userID, groupID)
	if err != nil {
		return err
	}
	if err := s.requireMembership(group.ID, emojiID); err != nil {
		return err
	}

	if err := s.itemRepo.UpdateSort(group.ID, emojiID, sort); err != nil {
		return err
	}
	_ = s.cache.InvalidateGroupEmojis(ctx, group.ID)
	return nil
}

// BatchUpdateEmojiSort reorders several emojis within a group at once.
// Every membership is verified before anything is written; the writes land
// in one transaction.
func (s *emojiGroupService) BatchUpdateEmojiSort(ctx context.Context, userID, groupID string, emojiIDs []string, sorts []int) error {
	if len(emojiIDs) == 0 || len(emojiIDs) != len(sorts) {
		return common.ErrInvalidInput
	}
	group, err := s.ownedGroup(userID, groupID)
	if err != nil {
		return err
	}
	for _, emojiID := range emojiIDs {
		if err := s.requireMembership(group.ID, emojiID); err != nil {
			return err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		items := s.itemRepo.WithTx(tx)
		for i, emojiID := range emojiIDs {
			if err := items.UpdateSort(group.ID, emojiID, sorts[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransactionFailed, err)
	}

	_ = s.cache.InvalidateGroupEmojis(ctx, group.ID)
	return nil
}

// requireMembership fails with ErrEmojiNotInGroup unless the pair exists
func (s *emojiGroupService) requireMembership(groupID, emojiID string) error {
	if _, err := s.itemRepo.GetByGroupAndEmoji(groupID, emojiID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrEmojiNotInGroup
		}
		return err
	}
	return nil
}
