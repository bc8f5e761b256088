package services

import (
	"context"
	"errors"
	"math/rand"

	"catfish/models"

	"gorm.io/gorm"
)

// PromptSource is what the round builder consumes. The gorm-backed
// PromptService implements it; tests swap in an in-memory fake.
type PromptSource interface {
	FetchShuffled(ctx context.Context, pool string) ([]models.PromptCard, error)
}

type PromptService struct {
	db *gorm.DB
}

func NewPromptService(db *gorm.DB) *PromptService {
	return &PromptService{db: db}
}

// FetchShuffled loads every active prompt in a pool and returns them in
// random order.
func (s *PromptService) FetchShuffled(ctx context.Context, pool string) ([]models.PromptCard, error) {
	var prompts []models.Prompt
	if err := s.db.WithContext(ctx).
		Where("pool = ? AND is_active = ?", pool, true).
		Find(&prompts).Error; err != nil {
		return nil, err
	}

	cards := make([]models.PromptCard, len(prompts))
	for i, p := range prompts {
		cards[i] = models.PromptCard{ID: p.ID, Text: p.Text}
	}
	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return cards, nil
}

// Pool administration, used by the authenticated prompt endpoints.

type CreatePromptRequest struct {
	Pool string `json:"pool" binding:"required"`
	Text string `json:"text" binding:"required"`
}

type UpdatePromptRequest struct {
	Text     *string `json:"text"`
	IsActive *bool   `json:"is_active"`
}

func validPool(pool string) bool {
	switch pool {
	case models.PoolText, models.PoolImage, models.PoolVoting, models.PoolDecoyInstruction:
		return true
	}
	return false
}

var errUnknownPool = errors.New("unknown prompt pool")

func (s *PromptService) CreatePrompt(req *CreatePromptRequest) (*models.Prompt, error) {
	if !validPool(req.Pool) {
		return nil, errUnknownPool
	}

	prompt := models.Prompt{
		Pool:     req.Pool,
		Text:     req.Text,
		IsActive: true,
	}
	if err := s.db.Create(&prompt).Error; err != nil {
		return nil, err
	}
	return &prompt, nil
}

func (s *PromptService) ListPrompts(pool string) ([]models.Prompt, error) {
	if pool != "" && !validPool(pool) {
		return nil, errUnknownPool
	}

	query := s.db.Order("created_at DESC")
	if pool != "" {
		query = query.Where("pool = ?", pool)
	}

	var prompts []models.Prompt
	err := query.Find(&prompts).Error
	return prompts, err
}

func (s *PromptService) UpdatePrompt(id uint, req *UpdatePromptRequest) (*models.Prompt, error) {
	var prompt models.Prompt
	if err := s.db.First(&prompt, id).Error; err != nil {
		return nil, err
	}

	if req.Text != nil {
		prompt.Text = *req.Text
	}
	if req.IsActive != nil {
		prompt.IsActive = *req.IsActive
	}

	if err := s.db.Save(&prompt).Error; err != nil {
		return nil, err
	}
	return &prompt, nil
}

func (s *PromptService) DeletePrompt(id uint) error {
	var prompt models.Prompt
	if err := s.db.First(&prompt, id).Error; err != nil {
		return err
	}
	return s.db.Delete(&prompt).Error
}
