package api

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Amo12312/accordai/config"
	"github.com/Amo12312/accordai/models"
	"github.com/Amo12312/accordai/repository"
	"github.com/Amo12312/accordai/services"
	"github.com/Amo12312/accordai/utils"
)

// APIHandler holds all dependencies for API handlers, such as repositories and services.
type APIHandler struct {
	userRepo       repository.UserRepository
	chatRepo       repository.ChatRepository
	ledger         services.LedgerService
	gateway        services.GatewayService
	authService    services.AuthService
	paymentService services.PaymentService
	extractService services.ExtractService
}

// NewAPIHandler creates a new APIHandler with necessary dependencies.
func NewAPIHandler(
	userRepo repository.UserRepository,
	chatRepo repository.ChatRepository,
	ledger services.LedgerService,
	gateway services.GatewayService,
	authService services.AuthService,
	paymentService services.PaymentService,
	extractService services.ExtractService,
) *APIHandler {
	return &APIHandler{
		userRepo:       userRepo,
		chatRepo:       chatRepo,
		ledger:         ledger,
		gateway:        gateway,
		authService:    authService,
		paymentService: paymentService,
		extractService: extractService,
	}
}

// HealthHandler is the liveness endpoint.
func (h *APIHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Accord AI backend is running!",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": config.AppConfig.Server.Environment,
	})
}

// InitHandler issues (or echoes) a guest identity and reports its quota
// snapshot, so a fresh browser session can start chatting immediately.
func (h *APIHandler) InitHandler(c *gin.Context) {
	userID := c.Query("userID")

	if userID == "" {
		userID = utils.GenerateGuestID()
		log.Printf("INFO: [Init] No userID provided, generated new guest ID: %s", userID)
	}

	if !strings.HasPrefix(userID, "guest_") {
		// Registered IDs carry no quota information without a token.
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"userType": "registered",
			"userId":   userID,
		})
		return
	}

	snapshot := services.Decision{MaxMessages: config.AppConfig.Trial.MaxMessages, Allowed: true}
	if user, err := h.userRepo.FindByID(userID); err == nil {
		snapshot = h.ledger.Snapshot(user)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"userType":      "guest",
		"userId":        userID,
		"messageCount":  snapshot.MessageCount,
		"maxMessages":   snapshot.MaxMessages,
		"isTrialActive": snapshot.Allowed,
		"trialEndTime":  snapshot.TrialEndTime,
	})
}

// getOrCreateGuest resolves an anonymous identity, creating the record
// lazily on first contact. Trial fields stay unset until the ledger's
// first gate check.
func (h *APIHandler) getOrCreateGuest(guestUserID string) (*models.User, error) {
	if guestUserID == "" {
		guestUserID = utils.GenerateGuestID()
	}
	user, err := h.userRepo.FindByID(guestUserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	user = &models.User{
		ID:      guestUserID,
		IsGuest: true,
	}
	if err := h.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}
