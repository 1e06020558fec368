package services

import (
	"fmt"
	"log"
	"time"

	"github.com/Amo12312/accordai/models"
	"github.com/Amo12312/accordai/repository"
)

// UsagePolicy is the process-wide trial policy. Read-only after startup.
type UsagePolicy struct {
	MaxTrialMessages     int
	TrialDurationMinutes int
}

// Decision is the ledger's answer to "may this identity send now?".
// On a denial both reason flags are computed independently; they can be
// true at the same time. MessageCount and MaxMessages always reflect the
// ledger state at the moment of the decision.
type Decision struct {
	Allowed             bool       `json:"allowed"`
	TrialExpired        bool       `json:"trialExpired"`
	MessageLimitReached bool       `json:"messageLimitReached"`
	MessageCount        int        `json:"messageCount"`
	MaxMessages         int        `json:"maxMessages"`
	TrialEndTime        *time.Time `json:"trialEndTime,omitempty"`
}

// LedgerService answers "is this identity allowed to send now?" and
// records accepted sends. The check and the commit are two separate
// operations with no transaction between them; concurrent requests for
// the same identity can overshoot the limit by the number of in-flight
// requests minus one. Accepted: the gate is a soft usage nudge, not a
// billing boundary.
type LedgerService interface {
	CheckAndReserve(user *models.User) (Decision, error)
	Commit(user *models.User) error
	Snapshot(user *models.User) Decision
}

type ledgerService struct {
	userRepo repository.UserRepository
	policy   UsagePolicy
	now      func() time.Time
}

// NewLedgerService creates a LedgerService with the given policy.
func NewLedgerService(userRepo repository.UserRepository, policy UsagePolicy) LedgerService {
	return &ledgerService{
		userRepo: userRepo,
		policy:   policy,
		now:      time.Now,
	}
}

// NewLedgerServiceWithClock is NewLedgerService with an injected clock,
// so tests never wait on real time.
func NewLedgerServiceWithClock(userRepo repository.UserRepository, policy UsagePolicy, now func() time.Time) LedgerService {
	return &ledgerService{userRepo: userRepo, policy: policy, now: now}
}

func (s *ledgerService) CheckAndReserve(user *models.User) (Decision, error) {
	if user.IsPremium {
		return Decision{Allowed: true, MessageCount: user.MessageCount, MaxMessages: s.policy.MaxTrialMessages}, nil
	}

	now := s.now()

	// Trial fields are populated lazily on first contact.
	if user.TrialStartTime == nil {
		start := now
		end := now.Add(time.Duration(s.policy.TrialDurationMinutes) * time.Minute)
		user.TrialStartTime = &start
		user.TrialEndTime = &end
		if err := s.userRepo.Update(user); err != nil {
			return Decision{}, fmt.Errorf("failed to start trial for user %s: %w", user.ID, err)
		}
		log.Printf("INFO: [Ledger] Trial started for user %s, ends at %s.", user.ID, end.Format(time.RFC3339))
	}

	// Boundary is strictly "now > trialEnd": a send exactly at the trial
	// end is still allowed.
	expired := user.TrialEndTime != nil && now.After(*user.TrialEndTime)
	limitReached := user.MessageCount >= s.policy.MaxTrialMessages

	decision := Decision{
		Allowed:             !expired && !limitReached,
		TrialExpired:        expired,
		MessageLimitReached: limitReached,
		MessageCount:        user.MessageCount,
		MaxMessages:         s.policy.MaxTrialMessages,
		TrialEndTime:        user.TrialEndTime,
	}
	if !decision.Allowed {
		log.Printf("INFO: [Ledger] Denied send for user %s (expired=%v, limitReached=%v, count=%d/%d).",
			user.ID, expired, limitReached, user.MessageCount, s.policy.MaxTrialMessages)
	}
	return decision, nil
}

// Commit records one accepted send. Must be called only after the
// provider (or the backup responder) produced an answer; denied or failed
// requests never reach here.
func (s *ledgerService) Commit(user *models.User) error {
	now := s.now()
	user.MessageCount++
	user.LastActiveTime = &now
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to commit send for user %s: %w", user.ID, err)
	}
	return nil
}

// Snapshot reports the current ledger state without starting a trial or
// mutating anything. Used by the trial-status endpoint.
func (s *ledgerService) Snapshot(user *models.User) Decision {
	if user.IsPremium {
		return Decision{Allowed: true, MessageCount: user.MessageCount, MaxMessages: s.policy.MaxTrialMessages}
	}
	now := s.now()
	expired := user.TrialEndTime != nil && now.After(*user.TrialEndTime)
	limitReached := user.MessageCount >= s.policy.MaxTrialMessages
	return Decision{
		Allowed:             !expired && !limitReached,
		TrialExpired:        expired,
		MessageLimitReached: limitReached,
		MessageCount:        user.MessageCount,
		MaxMessages:         s.policy.MaxTrialMessages,
		TrialEndTime:        user.TrialEndTime,
	}
}
