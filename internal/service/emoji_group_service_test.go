package service

import (
	"context"
	"testing"

	"github.com/damoang/emoji-backend/internal/common"
	"github.com/damoang/emoji-backend/internal/domain"
	"github.com/damoang/emoji-backend/internal/repository"
	"github.com/damoang/emoji-backend/pkg/cache"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Emoji{}, &domain.EmojiGroup{}, &domain.EmojiGroupItem{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func setupGroupService(t *testing.T) (EmojiGroupService, EmojiService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)

	emojiRepo := repository.NewEmojiRepository(db)
	groupRepo := repository.NewEmojiGroupRepository(db)
	itemRepo := repository.NewEmojiGroupItemRepository(db)

	emojiSvc := NewEmojiService(emojiRepo)
	groupSvc := NewEmojiGroupService(db, groupRepo, itemRepo, emojiSvc, cache.NewService(nil))
	return groupSvc, emojiSvc, db
}

func mustCreateEmoji(t *testing.T, svc EmojiService, url string) *domain.Emoji {
	t.Helper()
	emoji, err := svc.ResolveOrCreateByURL(url, "uploader1")
	if err != nil {
		t.Fatalf("failed to create emoji: %v", err)
	}
	return emoji
}

func emojiIDs(emojis []*domain.EmojiResponse) []string {
	ids := make([]string, len(emojis))
	for i, e := range emojis {
		ids[i] = e.ID
	}
	return ids
}

func TestEnsureAllGroup(t *testing.T) {
	svc, _, _ := setupGroupService(t)
	ctx := context.Background()

	first, err := svc.EnsureAllGroup(ctx, "user1")
	assert.NoError(t, err)
	assert.Equal(t, domain.AllGroupName, first.Name)
	assert.Equal(t, domain.GroupTypeAll, first.Type)
	assert.True(t, first.IsAll())

	second, err := svc.EnsureAllGroup(ctx, "user1")
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	other, err := svc.EnsureAllGroup(ctx, "user2")
	assert.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestListGroupsCreatesAllGroup(t *testing.T) {
	svc, _, _ := setupGroupService(t)
	ctx := context.Background()

	groups, err := svc.ListGroups(ctx, "user1")
	assert.NoError(t, err)
	assert.Len(t, groups, 1)
	assert.Equal(t, domain.AllGroupName, groups[0].Name)
	assert.Equal(t, domain.GroupTypeAll, groups[0].Type)
}

func TestCreateGroup(t *testing.T) {
	svc, _, _ := setupGroupService(t)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "user1", "  favorites  ", 1)
	assert.NoError(t, err)
	assert.Equal(t, "favorites", group.Name)
	assert.Equal(t, domain.GroupTypeCustom, group.Type)

	_, err = svc.CreateGroup(ctx, "user1", "favorites", 2)
	assert.ErrorIs(t, err, common.ErrGroupNameExists)

	_, err = svc.CreateGroup(ctx, "user1", "", 0)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = svc.CreateGroup(ctx, "user1", domain.AllGroupName, 0)
	assert.ErrorIs(t, err, common.ErrGroupNameExists)

	// name uniqueness is per user
	_, err = svc.CreateGroup(ctx, "user2", "favorites", 0)
	assert.NoError(t, err)
}

func TestRenameGroup(t *testing.T) {
	svc, _, _ := setupGroupService(t)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "user1", "memes", 0)
	assert.NoError(t, err)
	other, err := svc.CreateGroup(ctx, "user1", "cats", 1)
	assert.NoError(t, err)

	assert.NoError(t, svc.RenameGroup(ctx, "user1", group.ID, "reactions"))

	groups, err := svc.ListGroups(ctx, "user1")
	assert.NoError(t, err)
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	assert.Contains(t, names, "reactions")
	assert.NotContains(t, names, "memes")

	// renaming to another group's name is rejected
	err = svc.RenameGroup(ctx, "user1", group.ID, "cats")
	assert.ErrorIs(t, err, common.ErrGroupNameExists)

	// renaming to its current name is a no-op
	assert.NoError(t, svc.RenameGroup(ctx, "user1", other.ID, "cats"))

	// the reserved name is never available
	err = svc.RenameGroup(ctx, "user1", group.ID, domain.AllGroupName)
	assert.ErrorIs(t, err, common.ErrGroupNameExists)
}

func TestAllGroupIsImmutable(t *testing.T) {
	svc, _, _ := setupGroupService(t)
	ctx := context.Background()

	all, err := svc.EnsureAllGroup(ctx, "user1")
	assert.NoError(t, err)

	err = svc.RenameGroup(ctx, "user1", all.ID, "archive")
	assert.ErrorIs(t, err, common.ErrImmutableGroup)

	err = svc.UpdateGroupSort(ctx, "user1", all.ID, 5)
	assert.ErrorIs(t, err, common.ErrImmutableGroup)

	err = svc.DeleteGroup(ctx, "user1", all.ID)
	assert.ErrorIs(t, err, common.ErrImmutableGroup)

	err = svc.BatchUpdateGroupSort(ctx, "user1", []string{all.ID}, []int{3})
	assert.ErrorIs(t, err, common.ErrImmutableGroup)
}

func TestOwnershipHidesForeignGroups(t *testing.T) {
	svc, emojiSvc, _ := setupGroupService(t)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "user1", "private", 0)
	assert.NoError(t, err)
	emoji := mustCreateEmoji(t, emojiSvc, "https://cdn.example.com/a.png")

	// another user sees someone else's group as missing, not forbidden
	_, err = svc.ListGroupEmojis(ctx, "user2", group.ID)
	assert.ErrorIs(t, err, common.ErrGroupNotFound)

	err = svc.RenameGroup(ctx, "user2", group.ID, "stolen")
	assert.ErrorIs(t, err, common.ErrGroupNotFound)

	err = svc.AddEmojiToGroup(ctx, "user2", group.ID, emoji.ID, 0, "")
	assert.ErrorIs(t, err, common.ErrGroupNotFound)

	err = svc.DeleteGroup(ctx, "user2", group.ID)
	assert.ErrorIs(t, err, common.ErrGroupNotFound)
}

func TestBatchUpdateGroupSort(t *testing.T) {
	svc, _, _ := setupGroupService(t)
	ctx := context.Background()

	g1, _ := svc.CreateGroup(ctx, "user1", "one", 0)
	g2, _ := svc.CreateGroup(ctx, "user1", "two", 1)

	err := svc.BatchUpdateGroupSort(ctx, "user1", []string{g1.ID, g2.ID}, []int{10, 5})
	assert.NoError(t, err)

	groups, err := svc.ListGroups(ctx, "user1")
	assert.NoError(t, err)
	sorts := map[string]int{}
	for _, g := range groups {
		sorts[g.ID] = g.Sort
	}
	assert.Equal(t, 10, sorts[g1.ID])
	assert.Equal(t, 5, sorts[g2.ID])

	err = svc.BatchUpdateGroupSort(ctx, "user1", []string{g1.ID}, []int{1, 2})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	err = svc.BatchUpdateGroupSort(ctx, "user1", nil, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestBatchUpdateGroupSortAllOrNothing(t *testing.T) {
	svc, _, _ := setupGroupService(t)
	ctx := context.Background()

	g1, _ := svc.CreateGroup(ctx, "user1", "one", 1)
	g2, _ := svc.CreateGroup(ctx, "user1", "two", 2)

	// one unknown id rejects the whole batch, leaving every sort untouched
	err := svc.BatchUpdateGroupSort(ctx, "user1", []string{g1.ID, "missing", g2.ID}, []int{9, 9, 9})
	assert.ErrorIs(t, err, common.ErrGroupNotFound)

	groups, err := svc.ListGroups(ctx, "user1")
	assert.NoError(t, err)
	for _, g := range groups {
		if g.ID == g1.ID {
			assert.Equal(t, 1, g.Sort)
		}
		if g.ID == g2.ID {
			assert.Equal(t, 2, g.Sort)
		}
	}
}

func TestAddEmojiMirrorsIntoAllGroup(t *testing.T) {
	svc, emojiSvc, _ := setupGroupService(t)
	ctx := context.Background()

	custom, _ := svc.CreateGroup(ctx, "user1", "reactions", 0)
	all, _ := svc.EnsureAllGroup(ctx, "user1")
	emoji := mustCreateEmoji(t, emojiSvc, "https://cdn.example.com/wave.png")

	err := svc.AddEmojiToGroup(ctx, "user1", custom.ID, emoji.ID, 3, "wave")
	assert.NoError(t, err)

	inCustom, err := svc.ListGroupEmojis(ctx, "user1", custom.ID)
	assert.NoError(t, err)
	assert.Len(t, inCustom, 1)
	assert.Equal(t, "wave", inCustom[0].Name)
	assert.Equal(t, 3, inCustom[0].Sort)

	inAll, err := svc.ListGroupEmojis(ctx, "user1", all.ID)
	assert.NoError(t, err)
	assert.Len(t, inAll, 1)
	assert.Equal(t, emoji.ID, inAll[0].ID)
}

func TestAddEmojiToAllGroupDoesNotMirror(t *testing.T) {
	svc, emojiSvc, _ := setupGroupService(t)
	ctx := context.Background()

	custom, _ := svc.CreateGroup(ctx, "user1", "reactions", 0)
	all, _ := svc.EnsureAllGroup(ctx, "user1")
	emoji := mustCreateEmoji(t, emojiSvc, "https://cdn.example.com/fire.png")

	err := svc.AddEmojiToGroup(ctx, "user1", all.ID, emoji.ID, 0, "")
	assert.NoError(t, err)

	inAll, _ := svc.ListGroupEmojis(ctx, "user1", all.ID)
	assert.Len(t, inAll, 1)

	inCustom, _ := svc.ListGroupEmojis(ctx, "user1", custom.ID)
	assert.Empty(t, inCustom)
}

func TestAddEmojiIsIdempotent(t *testing.T) {
	svc, emojiSvc, _ := setupGroupService(t)
	ctx := context.Background()

	custom, _ := svc.CreateGroup(ctx, "user1", "reactions", 0)
	all, _ := svc.EnsureAllGroup(ctx, "user1")
	emoji := mustCreateEmoji(t, emojiSvc, "https://cdn.example.com/ok.png")

	assert.NoError(t, svc.AddEmojiToGroup(ctx, "user1", custom.ID, emoji.ID, 1, "ok"))
	assert.NoError(t, svc.AddEmojiToGroup(ctx, "user1", custom.ID, emoji.ID, 7, "renamed"))

	inCustom, _ := svc.ListGroupEmojis(ctx, "user1", custom.ID)
	assert.Len(t, inCustom, 1)
	// the existing membership keeps its original name and sort
	assert.Equal(t, "ok", inCustom[0].Name)
	assert.Equal(t, 1, inCustom[0].Sort)

	inAll, _ := svc.ListGroupEmojis(ctx, "user1", all.ID)
	assert.Len(t, inAll, 1)
}

func TestAddEmojiKeepsExistingAllMembership(t *testing.T) {
	svc, emojiSvc, _ := setupGroupService(t)
	ctx := context.Background()

	all, _ := svc.EnsureAllGroup(ctx, "user1")
	custom, _ := svc.CreateGroup(ctx, "user1", "reactions", 0)
	emoji := mustCreateEmoji(t, emojiSvc, "https://cdn.example.com/star.png")

	assert.NoError(t, svc.AddEmojiToGroup(ctx, "user1", all.ID, emoji.ID, 2, "archived"))
	assert.NoError(t, svc.AddEmojiToGroup(ctx, "user1", custom.ID, emoji.ID, 5, "starred"))

	inAll, _ := svc.ListGroupEmojis(ctx, "user1", all.ID)
	assert.Len(t, inAll, 1)
	assert.Equal(t, "archived", inAll[0].Name)
	assert.Equal(t, 2, inAll[0].Sort)

	inCustom, _ := svc.ListGroupEmojis(ctx, "user1", custom.ID)
	assert.Len(t, inCustom, 1)
	assert.Equal(t, "starred", inCustom[0].Name)
}

func TestAddUnknownEmoji(t *testing.T) {
	svc, _, _ := setupGroupService(t)
	ctx := context.Background()

	custom, _ := svc.CreateGroup(ctx, "user1", "reactions", 0)
	err := svc.AddEmojiToGroup(ctx, "user1", custom.ID, "no-such-emoji", 0, "")
	assert.ErrorIs(t, err, common.ErrEmojiNotFound)
}

func TestAddEmojiByURLDeduplicates(t *testing.T) {
	svc, _, _ := setupGroupService(t)
	ctx := context.Background()

	g1, _ := svc.CreateGroup(ctx, "user1", "one", 0)
	g2, _ := svc.CreateGroup(ctx, "user1", "two", 1)

	const url = "https://cdn.example.com/shared.png"
	first, err := svc.AddEmojiByURL(ctx, "user1", g1.ID, url, 0, "")
	assert.NoError(t, err)

	second, err := svc.AddEmojiByURL(ctx, "user1", g2.ID, url, 0, "")
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, _ := svc.EnsureAllGroup(ctx, "user1")
	inAll, _ := svc.ListGroupEmojis(ctx, "user1", all.ID)
	assert.Len(t, inAll, 1)
}

func TestRemoveFromCustomGroupLeavesOthers(t *testing.T) {
	svc, emojiSvc, _ := setupGroupService(t)
	ctx := context.Background()

	custom, _ := svc.CreateGroup(ctx, "user1", "reactions", 0)
	other, _ := svc.CreateGroup(ctx, "user1", "cats", 1)
	all, _ := svc.EnsureAllGroup(ctx, "user1")
	emoji := mustCreateEmoji(t, emojiSvc, "https://cdn.example.com/cat.png")

	assert.NoError(t, svc.AddEmojiToGroup(ctx, "user1", custom.ID, emoji.ID, 0, ""))
	assert.NoError(t, svc.AddEmojiToGroup(ctx, "user1", other.ID, emoji.ID, 0, ""))

	assert.NoError(t, svc.RemoveEmojiFromGroup(ctx, "user1", custom.ID, emoji.ID))

	inCustom, _ := svc.ListGroupEmojis(ctx, "user1", custom.ID)
	assert.Empty(t, inCustom)

	inOther, _ := svc.ListGroupEmojis(ctx, "user1", other.ID)
	assert.Len(t, inOther, 1)

	inAll, _ := svc.ListGroupEmojis(ctx, "user1", all.ID)
	assert.Len(t, inAll, 1)
}

func TestRemoveFromAllGroupCascades(t *testing.T) {
	svc, emojiSvc, _ := setupGroupService(t)
	ctx := context.Background()

	custom, _ := svc.CreateGroup(ctx, "user1", "reactions", 0)
	other, _ := svc.CreateGroup(ctx, "user1", "cats", 1)
	all, _ := svc.EnsureAllGroup(ctx, "user1")
	emoji := mustCreateEmoji(t, emojiSvc, "https://cdn.example.com/gone.png")

	assert.NoError(t, svc.AddEmojiToGroup(ctx, "user1", custom.ID, emoji.ID, 0, ""))
	assert.NoError(t, svc.AddEmojiToGroup(ctx, "user1", other.ID, emoji.ID, 0, ""))

	assert.NoError(t, svc.RemoveEmojiFromGroup(ctx, "user1", all.ID, emoji.ID))

	for _, groupID := range []string{custom.ID, other.ID, all.ID} {
		emojis, err := svc.ListGroupEmojis(ctx, "user1", groupID)
		assert.NoError(t, err)
		assert.Empty(t, emojis)
	}
}

func TestRemoveMissingMembershipIsNoop(t *testing.T) {
	svc, emojiSvc, _ := setupGroupService(t)
	ctx := context.Background()

	custom, _ := svc.CreateGroup(ctx, "user1", "reactions", 0)
	emoji := mustCreateEmoji(t, emojiSvc, "https://cdn.example.com/never-added.png")

	assert.NoError(t, svc.RemoveEmojiFromGroup(ctx, "user1", custom.ID, emoji.ID))
}

func TestDeleteGroupKeepsArchive(t *testing.T) {
	svc, emojiSvc, _ := setupGroupService(t)
	ctx := context.Background()

	custom, _ := svc.CreateGroup(ctx, "user1", "doomed", 0)
	all, _ := svc.EnsureAllGroup(ctx, "user1")
	emoji := mustCreateEmoji(t, emojiSvc, "https://cdn.example.com/keep.png")

	assert.NoError(t, svc.AddEmojiToGroup(ctx, "user1", custom.ID, emoji.ID, 0, ""))
	assert.NoError(t, svc.DeleteGroup(ctx, "user1", custom.ID))

	_, err := svc.ListGroupEmojis(ctx, "user1", custom.ID)
	assert.ErrorIs(t, err, common.ErrGroupNotFound)

	inAll, err := svc.ListGroupEmojis(ctx, "user1", all.ID)
	assert.NoError(t, err)
	assert.Len(t, inAll, 1)

	// the freed name is available again
	_, err = svc.CreateGroup(ctx, "user1", "doomed", 0)
	assert.NoError(t, err)
}

func TestRenameEmojiInGroupIsGroupLocal(t *testing.T) {
	svc, emojiSvc, _ := setupGroupService(t)
	ctx := context.Background()

	custom, _ := svc.CreateGroup(ctx, "user1", "reactions", 0)
	all, _ := svc.EnsureAllGroup(ctx, "user1")
	emoji := mustCreateEmoji(t, emojiSvc, "https://cdn.example.com/local.png")

	assert.NoError(t, svc.AddEmojiToGroup(ctx, "user1", custom.ID, emoji.ID, 0, "original"))
	assert.NoError(t, svc.RenameEmojiInGroup(ctx, "user1", custom.ID, emoji.ID, "local-name"))

	inCustom, _ := svc.ListGroupEmojis(ctx, "user1", custom.ID)
	assert.Equal(t, "local-name", inCustom[0].Name)

	inAll, _ := svc.ListGroupEmojis(ctx, "user1", all.ID)
	assert.Equal(t, "original", inAll[0].Name)
}

func TestEmojiOperationsRequireMembership(t *testing.T) {
	svc, emojiSvc, _ := setupGroupService(t)
	ctx := context.Background()

	custom, _ := svc.CreateGroup(ctx, "user1", "reactions", 0)
	emoji := mustCreateEmoji(t, emojiSvc, "https://cdn.example.com/outside.png")

	err := svc.RenameEmojiInGroup(ctx, "user1", custom.ID, emoji.ID, "nope")
	assert.ErrorIs(t, err, common.ErrEmojiNotInGroup)

	err = svc.UpdateEmojiSort(ctx, "user1", custom.ID, emoji.ID, 3)
	assert.ErrorIs(t, err, common.ErrEmojiNotInGroup)
}

func TestBatchUpdateEmojiSort(t *testing.T) {
	svc, emojiSvc, _ := setupGroupService(t)
	ctx := context.Background()

	custom, _ := svc.CreateGroup(ctx, "user1", "reactions", 0)
	e1 := mustCreateEmoji(t, emojiSvc, "https://cdn.example.com/1.png")
	e2 := mustCreateEmoji(t, emojiSvc, "https://cdn.example.com/2.png")
	assert.NoError(t, svc.AddEmojiToGroup(ctx, "user1", custom.ID, e1.ID, 1, ""))
	assert.NoError(t, svc.AddEmojiToGroup(ctx, "user1", custom.ID, e2.ID, 2, ""))

	err := svc.BatchUpdateEmojiSort(ctx, "user1", custom.ID, []string{e1.ID, e2.ID}, []int{20, 10})
	assert.NoError(t, err)

	emojis, _ := svc.ListGroupEmojis(ctx, "user1", custom.ID)
	assert.Equal(t, []string{e2.ID, e1.ID}, emojiIDs(emojis))
}

func TestBatchUpdateEmojiSortAllOrNothing(t *testing.T) {
	svc, emojiSvc, _ := setupGroupService(t)
	ctx := context.Background()

	custom, _ := svc.CreateGroup(ctx, "user1", "reactions", 0)
	e1 := mustCreateEmoji(t, emojiSvc, "https://cdn.example.com/a.png")
	assert.NoError(t, svc.AddEmojiToGroup(ctx, "user1", custom.ID, e1.ID, 1, ""))

	err := svc.BatchUpdateEmojiSort(ctx, "user1", custom.ID, []string{e1.ID, "not-a-member"}, []int{5, 6})
	assert.ErrorIs(t, err, common.ErrEmojiNotInGroup)

	emojis, _ := svc.ListGroupEmojis(ctx, "user1", custom.ID)
	assert.Equal(t, 1, emojis[0].Sort)

	err = svc.BatchUpdateEmojiSort(ctx, "user1", custom.ID, []string{e1.ID}, []int{1, 2})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

// Walks a full session: archive a shared emoji, curate it into a custom
// group, then drop it from the archive and watch it disappear everywhere.
func TestArchiveLifecycle(t *testing.T) {
	svc, _, _ := setupGroupService(t)
	ctx := context.Background()

	all, err := svc.EnsureAllGroup(ctx, "user1")
	assert.NoError(t, err)
	custom, err := svc.CreateGroup(ctx, "user1", "work", 0)
	assert.NoError(t, err)

	emoji, err := svc.AddEmojiByURL(ctx, "user1", custom.ID, "https://cdn.example.com/life.png", 0, "lgtm")
	assert.NoError(t, err)

	inAll, _ := svc.ListGroupEmojis(ctx, "user1", all.ID)
	assert.Equal(t, []string{emoji.ID}, emojiIDs(inAll))

	// curating it out of the custom group keeps the archive copy
	assert.NoError(t, svc.RemoveEmojiFromGroup(ctx, "user1", custom.ID, emoji.ID))
	inAll, _ = svc.ListGroupEmojis(ctx, "user1", all.ID)
	assert.Len(t, inAll, 1)

	// re-adding from the archive and purging via "all" clears everything
	assert.NoError(t, svc.AddEmojiToGroup(ctx, "user1", custom.ID, emoji.ID, 0, ""))
	assert.NoError(t, svc.RemoveEmojiFromGroup(ctx, "user1", all.ID, emoji.ID))

	inAll, _ = svc.ListGroupEmojis(ctx, "user1", all.ID)
	assert.Empty(t, inAll)
	inCustom, _ := svc.ListGroupEmojis(ctx, "user1", custom.ID)
	assert.Empty(t, inCustom)
}
