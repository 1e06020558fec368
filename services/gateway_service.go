package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Amo12312/accordai/models"
	"github.com/Amo12312/accordai/repository"
)

// ErrEmptyMessage is returned for a blank or missing message. No ledger
// interaction happens for such requests.
var ErrEmptyMessage = errors.New("message is required")

// ErrAllServicesUnavailable is returned when the provider exhausted its
// retries (or failed terminally) and the backup responder also failed.
// The ledger is untouched: no credit is taken for a failed send.
var ErrAllServicesUnavailable = errors.New("all AI services are temporarily unavailable")

// DeniedError carries the ledger's denial decision across the gateway
// boundary so handlers can build an accurate client payload.
type DeniedError struct {
	Decision Decision
}

func (e *DeniedError) Error() string {
	return "trial period expired or message limit reached"
}

// GatewayResult is a successful gateway response.
type GatewayResult struct {
	Response          string    `json:"response"`
	Source            string    `json:"source"` // "gemini" or "backup"
	Timestamp         time.Time `json:"timestamp"`
	MessageCount      int       `json:"messageCount"`
	RemainingMessages int       `json:"remainingMessages"`
}

// GatewayService is the single entry point for a chat send: validate,
// gate, call the provider, fall back, commit, respond. Every failure is
// recovered into a typed error; nothing here is fatal to the process.
type GatewayService interface {
	HandleMessage(ctx context.Context, user *models.User, message string) (*GatewayResult, error)
}

type gatewayService struct {
	ledger   LedgerService
	provider Provider // retry-wrapped primary client
	backup   BackupService
	chatRepo repository.ChatRepository
	now      func() time.Time
}

// NewGatewayService wires the gateway. provider is expected to be a
// *RetryingClient around the configured primary provider.
func NewGatewayService(ledger LedgerService, provider Provider, backup BackupService, chatRepo repository.ChatRepository) GatewayService {
	return &gatewayService{
		ledger:   ledger,
		provider: provider,
		backup:   backup,
		chatRepo: chatRepo,
		now:      time.Now,
	}
}

func (s *gatewayService) HandleMessage(ctx context.Context, user *models.User, message string) (*GatewayResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	decision, err := s.ledger.CheckAndReserve(user)
	if err != nil {
		return nil, fmt.Errorf("ledger check failed: %w", err)
	}
	if !decision.Allowed {
		return nil, &DeniedError{Decision: decision}
	}

	text, source := "", models.SourceGemini
	text, err = s.provider.Generate(ctx, message)
	if err != nil {
		log.Printf("WARN: [Gateway] Primary provider failed for user %s, trying backup: %v", user.ID, err)
		backupText, backupErr := s.backup.Respond(ctx, message)
		if backupErr != nil {
			log.Printf("ERROR: [Gateway] Backup responder also failed for user %s: %v", user.ID, backupErr)
			return nil, ErrAllServicesUnavailable
		}
		text = "🔄 " + backupText
		source = models.SourceBackup
	}

	if err := s.ledger.Commit(user); err != nil {
		// The answer exists but the send could not be counted. There is
		// no rollback; surface it rather than hand out uncounted sends.
		return nil, fmt.Errorf("ledger commit failed: %w", err)
	}

	now := s.now()
	exchange := &models.ChatExchange{
		UserID:       user.ID,
		Message:      message,
		Response:     text,
		Source:       source,
		MessageCount: user.MessageCount,
		Timestamp:    now,
	}
	// History is a side effect, not a gate input; a failed write is
	// logged and the response still goes out.
	if s.chatRepo != nil {
		if err := s.chatRepo.SaveExchange(exchange); err != nil {
			log.Printf("ERROR: [Gateway] Failed to record exchange for user %s: %v", user.ID, err)
		}
	}

	remaining := 0
	if !user.IsPremium {
		remaining = decision.MaxMessages - user.MessageCount
		if remaining < 0 {
			remaining = 0
		}
	}

	return &GatewayResult{
		Response:          text,
		Source:            source,
		Timestamp:         now,
		MessageCount:      user.MessageCount,
		RemainingMessages: remaining,
	}, nil
}
