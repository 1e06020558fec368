package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Amo12312/accordai/models"
	"github.com/Amo12312/accordai/repository"
)

func newTestLedger(t *testing.T, policy UsagePolicy) (LedgerService, repository.UserRepository, *time.Time) {
	t.Helper()
	repo := repository.NewMemoryUserRepository()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	ledger := NewLedgerServiceWithClock(repo, policy, func() time.Time { return *clock })
	return ledger, repo, clock
}

func TestLedgerService_CheckAndReserve(t *testing.T) {
	policy := UsagePolicy{MaxTrialMessages: 10, TrialDurationMinutes: 30}

	t.Run("premium users are always allowed", func(t *testing.T) {
		ledger, repo, clock := newTestLedger(t, policy)
		past := clock.Add(-2 * time.Hour)
		user := &models.User{ID: "premium1", IsPremium: true, MessageCount: 9999, TrialEndTime: &past}
		assert.NoError(t, repo.Create(user))

		decision, err := ledger.CheckAndReserve(user)
		assert.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.False(t, decision.TrialExpired)
		assert.False(t, decision.MessageLimitReached)
	})

	t.Run("first contact starts the trial lazily", func(t *testing.T) {
		ledger, repo, clock := newTestLedger(t, policy)
		user := &models.User{ID: "guest1", IsGuest: true}
		assert.NoError(t, repo.Create(user))

		decision, err := ledger.CheckAndReserve(user)
		assert.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.NotNil(t, user.TrialStartTime)
		assert.NotNil(t, user.TrialEndTime)
		assert.Equal(t, *clock, *user.TrialStartTime)
		assert.Equal(t, clock.Add(30*time.Minute), *user.TrialEndTime)

		// The trial start persisted.
		stored, err := repo.FindByID("guest1")
		assert.NoError(t, err)
		assert.NotNil(t, stored.TrialStartTime)
	})

	t.Run("message limit denies regardless of time remaining", func(t *testing.T) {
		ledger, repo, _ := newTestLedger(t, policy)
		user := &models.User{ID: "guest2", IsGuest: true}
		assert.NoError(t, repo.Create(user))
		user.MessageCount = 10

		decision, err := ledger.CheckAndReserve(user)
		assert.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.True(t, decision.MessageLimitReached)
		assert.False(t, decision.TrialExpired)
		assert.Equal(t, 10, decision.MessageCount)
		assert.Equal(t, 10, decision.MaxMessages)
	})

	t.Run("expired trial denies regardless of message count", func(t *testing.T) {
		ledger, repo, clock := newTestLedger(t, policy)
		user := &models.User{ID: "guest3", IsGuest: true}
		assert.NoError(t, repo.Create(user))

		_, err := ledger.CheckAndReserve(user) // starts the trial
		assert.NoError(t, err)

		*clock = clock.Add(31 * time.Minute)
		decision, err := ledger.CheckAndReserve(user)
		assert.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.True(t, decision.TrialExpired)
		assert.False(t, decision.MessageLimitReached)
	})

	t.Run("a send exactly at trial end is still allowed", func(t *testing.T) {
		ledger, repo, clock := newTestLedger(t, policy)
		user := &models.User{ID: "guest4", IsGuest: true}
		assert.NoError(t, repo.Create(user))

		_, err := ledger.CheckAndReserve(user)
		assert.NoError(t, err)

		*clock = *user.TrialEndTime // now == trialEnd, not past it
		decision, err := ledger.CheckAndReserve(user)
		assert.NoError(t, err)
		assert.True(t, decision.Allowed)

		*clock = clock.Add(time.Nanosecond)
		decision, err = ledger.CheckAndReserve(user)
		assert.NoError(t, err)
		assert.True(t, decision.TrialExpired)
	})

	t.Run("both denial reasons can hold at once", func(t *testing.T) {
		ledger, repo, clock := newTestLedger(t, policy)
		user := &models.User{ID: "guest5", IsGuest: true}
		assert.NoError(t, repo.Create(user))

		_, err := ledger.CheckAndReserve(user)
		assert.NoError(t, err)

		user.MessageCount = 10
		*clock = clock.Add(time.Hour)
		decision, err := ledger.CheckAndReserve(user)
		assert.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.True(t, decision.TrialExpired)
		assert.True(t, decision.MessageLimitReached)
	})
}

func TestLedgerService_Commit(t *testing.T) {
	policy := UsagePolicy{MaxTrialMessages: 10, TrialDurationMinutes: 30}

	t.Run("count after N accepted sends equals N", func(t *testing.T) {
		ledger, repo, _ := newTestLedger(t, policy)
		user := &models.User{ID: "guest6", IsGuest: true}
		assert.NoError(t, repo.Create(user))

		for i := 0; i < 5; i++ {
			decision, err := ledger.CheckAndReserve(user)
			assert.NoError(t, err)
			assert.True(t, decision.Allowed)
			assert.NoError(t, ledger.Commit(user))
		}

		assert.Equal(t, 5, user.MessageCount)
		stored, err := repo.FindByID("guest6")
		assert.NoError(t, err)
		assert.Equal(t, 5, stored.MessageCount)
		assert.NotNil(t, stored.LastActiveTime)
	})

	t.Run("eleventh send is denied under a limit of ten", func(t *testing.T) {
		ledger, repo, _ := newTestLedger(t, policy)
		user := &models.User{ID: "guest7", IsGuest: true}
		assert.NoError(t, repo.Create(user))

		for i := 0; i < 10; i++ {
			decision, err := ledger.CheckAndReserve(user)
			assert.NoError(t, err)
			assert.True(t, decision.Allowed)
			assert.NoError(t, ledger.Commit(user))
		}

		decision, err := ledger.CheckAndReserve(user)
		assert.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.True(t, decision.MessageLimitReached)
		assert.False(t, decision.TrialExpired)
		assert.Equal(t, 10, decision.MessageCount)
	})
}

func TestLedgerService_Snapshot(t *testing.T) {
	policy := UsagePolicy{MaxTrialMessages: 10, TrialDurationMinutes: 30}

	t.Run("snapshot does not start a trial", func(t *testing.T) {
		ledger, repo, _ := newTestLedger(t, policy)
		user := &models.User{ID: "guest8", IsGuest: true}
		assert.NoError(t, repo.Create(user))

		snapshot := ledger.Snapshot(user)
		assert.True(t, snapshot.Allowed)
		assert.Nil(t, user.TrialStartTime)
	})
}
