package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Amo12312/accordai/middleware"
	"github.com/Amo12312/accordai/models"
	"github.com/Amo12312/accordai/services"
	"github.com/Amo12312/accordai/utils"
)

// ChatRequest is the body of both chat endpoints. GuestUserID is only
// read on the anonymous variant.
type ChatRequest struct {
	Message     string `json:"message"`
	GuestUserID string `json:"guest_user_id,omitempty"`
}

// ChatAnonymousHandler serves trial chat for anonymous visitors. The
// guest identity is created lazily on first contact.
func (h *APIHandler) ChatAnonymousHandler(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.getOrCreateGuest(req.GuestUserID)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}

	result, err := h.gateway.HandleMessage(c.Request.Context(), user, req.Message)
	if err != nil {
		respondGatewayError(c, err)
		return
	}
	respondGatewaySuccess(c, user, result)
}

// ChatHandler serves chat for authenticated accounts.
func (h *APIHandler) ChatHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.SendJSONError(c, http.StatusUnauthorized, "Token is not valid", nil)
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.gateway.HandleMessage(c.Request.Context(), user, req.Message)
	if err != nil {
		respondGatewayError(c, err)
		return
	}
	respondGatewaySuccess(c, user, result)
}

// TrialStatusHandler reports the live ledger snapshot for the caller,
// either an authenticated account or a guest identified by query param.
func (h *APIHandler) TrialStatusHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		guestID := c.Query("guest_user_id")
		if guestID == "" {
			utils.SendJSONError(c, http.StatusBadRequest, "guest_user_id is required for anonymous status", nil)
			return
		}
		var err error
		user, err = h.getOrCreateGuest(guestID)
		if err != nil {
			utils.SendJSONError(c, http.StatusInternalServerError, "", err)
			return
		}
	}

	snapshot := h.ledger.Snapshot(user)
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"isTrialActive": snapshot.Allowed,
		"isPremium":     user.IsPremium,
		"messageCount":  snapshot.MessageCount,
		"maxMessages":   snapshot.MaxMessages,
		"trialEndTime":  snapshot.TrialEndTime,
	})
}

// HistoryHandler returns the caller's exchanges, newest first.
func (h *APIHandler) HistoryHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.SendJSONError(c, http.StatusUnauthorized, "Token is not valid", nil)
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	exchanges, err := h.chatRepo.GetExchangesByUserID(user.ID, limit)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"chatHistory": exchanges,
	})
}

// AnalyticsHandler reports user totals for admin use.
func (h *APIHandler) AnalyticsHandler(c *gin.Context) {
	if _, ok := middleware.CurrentUser(c); !ok {
		utils.SendJSONError(c, http.StatusUnauthorized, "Token is not valid", nil)
		return
	}

	total, premium, err := h.userRepo.CountUsers()
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"analytics": gin.H{
			"totalUsers":   total,
			"premiumUsers": premium,
			"trialUsers":   total - premium,
		},
	})
}

func respondGatewaySuccess(c *gin.Context, user *models.User, result *services.GatewayResult) {
	response := gin.H{
		"success":      true,
		"response":     result.Response,
		"source":       result.Source,
		"timestamp":    result.Timestamp.UTC().Format(time.RFC3339),
		"messageCount": result.MessageCount,
	}
	if user.IsGuest {
		response["guestUserId"] = user.ID
	}
	if !user.IsPremium {
		response["remainingMessages"] = result.RemainingMessages
	}
	c.JSON(http.StatusOK, response)
}

// respondGatewayError maps the gateway's typed errors onto HTTP. Denials
// carry machine-readable reason flags so the client can pick the right
// UI treatment.
func respondGatewayError(c *gin.Context, err error) {
	var denied *services.DeniedError
	switch {
	case errors.Is(err, services.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Message is required",
		})
	case errors.As(err, &denied):
		c.JSON(http.StatusForbidden, gin.H{
			"success":             false,
			"message":             "Trial period expired or message limit reached",
			"requiresAuth":        true,
			"trialExpired":        denied.Decision.TrialExpired,
			"messageLimitReached": denied.Decision.MessageLimitReached,
			"messageCount":        denied.Decision.MessageCount,
			"maxMessages":         denied.Decision.MaxMessages,
		})
	case errors.Is(err, services.ErrAllServicesUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success":   false,
			"message":   "All AI services are temporarily unavailable. Please try again later.",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	default:
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
	}
}
