package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Amo12312/accordai/middleware"
	"github.com/Amo12312/accordai/repository"
	"github.com/Amo12312/accordai/services"
	"github.com/Amo12312/accordai/utils"
)

// CreateOrderRequest is the body of POST /api/payment/create-order.
type CreateOrderRequest struct {
	PlanID string `json:"planId"`
}

// VerifyPaymentRequest is the body of POST /api/payment/verify.
type VerifyPaymentRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

// CreateOrderHandler opens a checkout session for the premium plan.
func (h *APIHandler) CreateOrderHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.SendJSONError(c, http.StatusUnauthorized, "Token is not valid", nil)
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PlanID == "" {
		req.PlanID = "premium"
	}

	record, checkoutURL, err := h.paymentService.CreateOrder(user, req.PlanID)
	if err != nil {
		if errors.Is(err, services.ErrPaymentsDisabled) {
			utils.SendJSONError(c, http.StatusServiceUnavailable, "Payments are currently unavailable", nil)
			return
		}
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order": gin.H{
			"id":       record.OrderID,
			"receipt":  record.Receipt,
			"planId":   record.PlanID,
			"amount":   record.Amount,
			"currency": record.Currency,
		},
		"checkoutUrl": checkoutURL,
	})
}

// VerifyPaymentHandler confirms a checkout session and grants premium
// access when it is paid.
func (h *APIHandler) VerifyPaymentHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.SendJSONError(c, http.StatusUnauthorized, "Token is not valid", nil)
		return
	}

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error(), err)
		return
	}

	record, err := h.paymentService.VerifyPayment(user, req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentsDisabled):
			utils.SendJSONError(c, http.StatusServiceUnavailable, "Payments are currently unavailable", nil)
		case errors.Is(err, repository.ErrPaymentNotFound):
			utils.SendJSONError(c, http.StatusNotFound, "Order not found", nil)
		default:
			utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"payment":   record,
		"isPremium": user.IsPremium,
	})
}

// PaymentHistoryHandler lists the caller's payment records.
func (h *APIHandler) PaymentHistoryHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.SendJSONError(c, http.StatusUnauthorized, "Token is not valid", nil)
		return
	}

	records, err := h.paymentService.GetHistory(user)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"payments": records,
	})
}
