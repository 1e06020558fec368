package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Amo12312/accordai/models"
)

// MockLedgerService is a mock type for the LedgerService interface.
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) CheckAndReserve(user *models.User) (Decision, error) {
	args := m.Called(user)
	return args.Get(0).(Decision), args.Error(1)
}

func (m *MockLedgerService) Commit(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockLedgerService) Snapshot(user *models.User) Decision {
	args := m.Called(user)
	return args.Get(0).(Decision)
}

// MockProvider is a mock type for the Provider interface.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockBackupService is a mock type for the BackupService interface.
type MockBackupService struct {
	mock.Mock
}

func (m *MockBackupService) Respond(ctx context.Context, userText string) (string, error) {
	args := m.Called(ctx, userText)
	return args.String(0), args.Error(1)
}

// MockChatRepository is a mock type for the ChatRepository interface.
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) SaveExchange(exchange *models.ChatExchange) error {
	args := m.Called(exchange)
	return args.Error(0)
}

func (m *MockChatRepository) GetExchangesByUserID(userID string, limit int) ([]models.ChatExchange, error) {
	args := m.Called(userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatExchange), args.Error(1)
}

func allowDecision(count, max int) Decision {
	return Decision{Allowed: true, MessageCount: count, MaxMessages: max}
}

func TestGatewayService_HandleMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("empty message fails validation without touching the ledger", func(t *testing.T) {
		ledger := new(MockLedgerService)
		provider := new(MockProvider)
		backup := new(MockBackupService)
		chatRepo := new(MockChatRepository)
		gateway := NewGatewayService(ledger, provider, backup, chatRepo)

		user := &models.User{ID: "u1"}
		_, err := gateway.HandleMessage(ctx, user, "   ")
		assert.ErrorIs(t, err, ErrEmptyMessage)
		ledger.AssertNotCalled(t, "CheckAndReserve", mock.Anything)
		ledger.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("denied request never increments the count", func(t *testing.T) {
		ledger := new(MockLedgerService)
		provider := new(MockProvider)
		backup := new(MockBackupService)
		chatRepo := new(MockChatRepository)
		gateway := NewGatewayService(ledger, provider, backup, chatRepo)

		user := &models.User{ID: "u2", MessageCount: 10}
		ledger.On("CheckAndReserve", user).Return(Decision{
			Allowed:             false,
			MessageLimitReached: true,
			MessageCount:        10,
			MaxMessages:         10,
		}, nil)

		_, err := gateway.HandleMessage(ctx, user, "hello")
		var denied *DeniedError
		assert.ErrorAs(t, err, &denied)
		assert.True(t, denied.Decision.MessageLimitReached)
		assert.False(t, denied.Decision.TrialExpired)
		assert.Equal(t, 10, denied.Decision.MessageCount)
		ledger.AssertNotCalled(t, "Commit", mock.Anything)
		provider.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("primary success commits and records the exchange", func(t *testing.T) {
		ledger := new(MockLedgerService)
		provider := new(MockProvider)
		backup := new(MockBackupService)
		chatRepo := new(MockChatRepository)
		gateway := NewGatewayService(ledger, provider, backup, chatRepo)

		user := &models.User{ID: "u3", MessageCount: 2}
		ledger.On("CheckAndReserve", user).Return(allowDecision(2, 10), nil)
		provider.On("Generate", mock.Anything, "hello").Return("hi!", nil)
		ledger.On("Commit", user).Run(func(args mock.Arguments) {
			args.Get(0).(*models.User).MessageCount++
		}).Return(nil)
		chatRepo.On("SaveExchange", mock.MatchedBy(func(e *models.ChatExchange) bool {
			return e.UserID == "u3" && e.Response == "hi!" && e.Source == models.SourceGemini && e.MessageCount == 3
		})).Return(nil)

		result, err := gateway.HandleMessage(ctx, user, "hello")
		assert.NoError(t, err)
		assert.Equal(t, "hi!", result.Response)
		assert.Equal(t, models.SourceGemini, result.Source)
		assert.Equal(t, 3, result.MessageCount)
		assert.Equal(t, 7, result.RemainingMessages)
		ledger.AssertExpectations(t)
		chatRepo.AssertExpectations(t)
		backup.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything)
	})

	t.Run("provider failure falls back to the backup responder", func(t *testing.T) {
		ledger := new(MockLedgerService)
		provider := new(MockProvider)
		backup := new(MockBackupService)
		chatRepo := new(MockChatRepository)
		gateway := NewGatewayService(ledger, provider, backup, chatRepo)

		user := &models.User{ID: "u4"}
		ledger.On("CheckAndReserve", user).Return(allowDecision(0, 10), nil)
		provider.On("Generate", mock.Anything, "hello").Return("", &ProviderError{StatusCode: 503})
		backup.On("Respond", mock.Anything, "hello").Return("canned answer", nil)
		ledger.On("Commit", user).Run(func(args mock.Arguments) {
			args.Get(0).(*models.User).MessageCount++
		}).Return(nil)
		chatRepo.On("SaveExchange", mock.Anything).Return(nil)

		result, err := gateway.HandleMessage(ctx, user, "hello")
		assert.NoError(t, err)
		assert.Equal(t, "🔄 canned answer", result.Response)
		assert.Equal(t, models.SourceBackup, result.Source)
		ledger.AssertExpectations(t)
	})

	t.Run("both paths failing leaves the ledger untouched", func(t *testing.T) {
		ledger := new(MockLedgerService)
		provider := new(MockProvider)
		backup := new(MockBackupService)
		chatRepo := new(MockChatRepository)
		gateway := NewGatewayService(ledger, provider, backup, chatRepo)

		user := &models.User{ID: "u5"}
		ledger.On("CheckAndReserve", user).Return(allowDecision(0, 10), nil)
		provider.On("Generate", mock.Anything, "hello").Return("", &ProviderError{StatusCode: 404})
		backup.On("Respond", mock.Anything, "hello").Return("", errors.New("data source down"))

		_, err := gateway.HandleMessage(ctx, user, "hello")
		assert.ErrorIs(t, err, ErrAllServicesUnavailable)
		ledger.AssertNotCalled(t, "Commit", mock.Anything)
		chatRepo.AssertNotCalled(t, "SaveExchange", mock.Anything)
	})

	t.Run("history write failure does not fail the response", func(t *testing.T) {
		ledger := new(MockLedgerService)
		provider := new(MockProvider)
		backup := new(MockBackupService)
		chatRepo := new(MockChatRepository)
		gateway := NewGatewayService(ledger, provider, backup, chatRepo)

		user := &models.User{ID: "u6"}
		ledger.On("CheckAndReserve", user).Return(allowDecision(0, 10), nil)
		provider.On("Generate", mock.Anything, "hello").Return("hi!", nil)
		ledger.On("Commit", user).Return(nil)
		chatRepo.On("SaveExchange", mock.Anything).Return(errors.New("disk full"))

		result, err := gateway.HandleMessage(ctx, user, "hello")
		assert.NoError(t, err)
		assert.Equal(t, "hi!", result.Response)
	})

	t.Run("premium users get no remaining-message counter", func(t *testing.T) {
		ledger := new(MockLedgerService)
		provider := new(MockProvider)
		backup := new(MockBackupService)
		chatRepo := new(MockChatRepository)
		gateway := NewGatewayService(ledger, provider, backup, chatRepo)

		user := &models.User{ID: "u7", IsPremium: true, MessageCount: 100}
		ledger.On("CheckAndReserve", user).Return(allowDecision(100, 10), nil)
		provider.On("Generate", mock.Anything, "hello").Return("hi!", nil)
		ledger.On("Commit", user).Return(nil)
		chatRepo.On("SaveExchange", mock.Anything).Return(nil)

		result, err := gateway.HandleMessage(ctx, user, "hello")
		assert.NoError(t, err)
		assert.Equal(t, 0, result.RemainingMessages)
	})
}
