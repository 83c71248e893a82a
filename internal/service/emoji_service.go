package service

import (
	"errors"
	"strings"

	"github.com/damoang/emoji-backend/internal/common"
	"github.com/damoang/emoji-backend/internal/domain"
	"github.com/damoang/emoji-backend/internal/repository"
	"gorm.io/gorm"
)

// EmojiService identity and de-duplication of emoji image references.
// Emojis are content-addressed by URL: the same URL always resolves to the
// same record, no matter who adds it or how often.
type EmojiService interface {
	ResolveOrCreateByURL(url, uploaderID string) (*domain.Emoji, error)
	GetActiveByID(id string) (*domain.Emoji, error)
	GetActiveByIDs(ids []string) ([]*domain.Emoji, error)
}

type emojiService struct {
	repo repository.EmojiRepository
}

// NewEmojiService creates a new EmojiService
func NewEmojiService(repo repository.EmojiRepository) EmojiService {
	return &emojiService{repo: repo}
}

// ResolveOrCreateByURL returns the emoji with the given URL, creating it if
// it does not exist yet. First writer wins: an existing record keeps its
// original uploader. Safe under concurrent calls for the same URL — if the
// insert loses a race on the unique URL index, the winner's row is re-read.
func (s *emojiService) ResolveOrCreateByURL(url, uploaderID string) (*domain.Emoji, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, common.ErrInvalidInput
	}

	emoji, err := s.repo.GetByURL(url)
	if err == nil {
		return emoji, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	emoji = &domain.Emoji{
		URL:        url,
		UploaderID: uploaderID,
		Status:     domain.EmojiStatusNormal,
	}
	if createErr := s.repo.Create(emoji); createErr != nil {
		// Most likely a lost race on the unique URL index
		if existing, readErr := s.repo.GetByURL(url); readErr == nil {
			return existing, nil
		}
		return nil, createErr
	}
	return emoji, nil
}

// GetActiveByID returns an emoji by id. Soft-deleted emojis are reported as
// not found.
func (s *emojiService) GetActiveByID(id string) (*domain.Emoji, error) {
	emoji, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrEmojiNotFound
		}
		return nil, err
	}
	if emoji.Status == domain.EmojiStatusDeleted {
		return nil, common.ErrEmojiNotFound
	}
	return emoji, nil
}

// GetActiveByIDs returns emojis aligned to the input order, omitting ids
// that are missing or soft-deleted. Callers must not assume length equality
// with the input.
func (s *emojiService) GetActiveByIDs(ids []string) ([]*domain.Emoji, error) {
	emojis, err := s.repo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	active := emojis[:0]
	for _, e := range emojis {
		if e.Status != domain.EmojiStatusDeleted {
			active = append(active, e)
		}
	}
	return active, nil
}
