package repository

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/Amo12312/accordai/models"
)

// ChatRepository is the append-only exchange log. Exchanges are recorded
// for history and analytics only; the trial gate never reads them.
type ChatRepository interface {
	SaveExchange(exchange *models.ChatExchange) error
	GetExchangesByUserID(userID string, limit int) ([]models.ChatExchange, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new GORM-backed ChatRepository.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) SaveExchange(exchange *models.ChatExchange) error {
	if exchange.UserID == "" {
		return errors.New("exchange UserID cannot be empty")
	}
	if err := r.db.Create(exchange).Error; err != nil {
		log.Printf("ERROR: [ChatRepository] Failed to save exchange for user %s: %v", exchange.UserID, err)
		return fmt.Errorf("failed to save exchange for user %s: %w", exchange.UserID, err)
	}
	return nil
}

// GetExchangesByUserID returns the user's exchanges, newest first.
// A non-positive limit falls back to 50.
func (r *chatRepository) GetExchangesByUserID(userID string, limit int) ([]models.ChatExchange, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	if limit <= 0 {
		limit = 50
	}
	var exchanges []models.ChatExchange
	err := r.db.Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&exchanges).Error
	if err != nil {
		log.Printf("ERROR: [ChatRepository] Failed to fetch exchanges for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to fetch exchanges for user %s: %w", userID, err)
	}
	return exchanges, nil
}
