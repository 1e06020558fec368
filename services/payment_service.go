package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"

	"github.com/Amo12312/accordai/models"
	"github.com/Amo12312/accordai/repository"
	"github.com/Amo12312/accordai/utils"
)

// ErrPaymentsDisabled is returned when no Stripe key is configured.
var ErrPaymentsDisabled = errors.New("payments are not configured")

// PaymentService orchestrates premium checkout. Stripe itself is an
// opaque collaborator; this service only creates sessions, verifies
// their outcome and flips the premium flag.
type PaymentService interface {
	CreateOrder(user *models.User, planID string) (*models.PaymentRecord, string, error)
	VerifyPayment(user *models.User, orderID string) (*models.PaymentRecord, error)
	GetHistory(user *models.User) ([]models.PaymentRecord, error)
}

type stripeService struct {
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	priceID     string
	successURL  string
	cancelURL   string
	enabled     bool
}

// NewStripeService creates the Stripe-backed PaymentService. secretKey
// empty means payments are disabled and every call returns
// ErrPaymentsDisabled.
func NewStripeService(paymentRepo repository.PaymentRepository, userRepo repository.UserRepository, secretKey, priceID, successURL, cancelURL string) PaymentService {
	if secretKey != "" {
		stripe.Key = secretKey
	}
	return &stripeService{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		priceID:     priceID,
		successURL:  successURL,
		cancelURL:   cancelURL,
		enabled:     secretKey != "",
	}
}

// CreateOrder opens a checkout session for the premium plan and records
// it. Returns the record and the hosted checkout URL.
func (s *stripeService) CreateOrder(user *models.User, planID string) (*models.PaymentRecord, string, error) {
	if !s.enabled {
		return nil, "", ErrPaymentsDisabled
	}
	if s.priceID == "" {
		return nil, "", fmt.Errorf("no price configured for plan %s", planID)
	}

	receipt := utils.GenerateReceiptID()
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(s.successURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"user_id": user.ID,
			"plan":    planID,
			"receipt": receipt,
		},
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	record := &models.PaymentRecord{
		UserID:   user.ID,
		OrderID:  sess.ID,
		Receipt:  receipt,
		PlanID:   planID,
		Amount:   sess.AmountTotal,
		Currency: string(sess.Currency),
		Status:   models.PaymentStatusCreated,
	}
	if err := s.paymentRepo.Create(record); err != nil {
		return nil, "", err
	}

	log.Printf("INFO: [Payment] Created checkout session %s for user %s (plan %s).", sess.ID, user.ID, planID)
	return record, sess.URL, nil
}

// VerifyPayment retrieves the session from Stripe and, when paid, marks
// the record and grants the user premium access.
func (s *stripeService) VerifyPayment(user *models.User, orderID string) (*models.PaymentRecord, error) {
	if !s.enabled {
		return nil, ErrPaymentsDisabled
	}

	record, err := s.paymentRepo.FindByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if record.UserID != user.ID {
		return nil, errors.New("order does not belong to this user")
	}

	sess, err := session.Get(orderID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session %s: %w", orderID, err)
	}

	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		log.Printf("INFO: [Payment] Session %s not paid yet (status %s).", orderID, sess.PaymentStatus)
		return record, nil
	}

	record.Status = models.PaymentStatusPaid
	record.Amount = sess.AmountTotal
	record.Currency = string(sess.Currency)
	if err := s.paymentRepo.Update(record); err != nil {
		return nil, err
	}

	if !user.IsPremium {
		user.IsPremium = true
		if err := s.userRepo.Update(user); err != nil {
			return nil, fmt.Errorf("payment verified but failed to grant premium: %w", err)
		}
		log.Printf("INFO: [Payment] User %s upgraded to premium (order %s).", user.ID, orderID)
	}
	return record, nil
}

func (s *stripeService) GetHistory(user *models.User) ([]models.PaymentRecord, error) {
	return s.paymentRepo.GetByUserID(user.ID)
}
