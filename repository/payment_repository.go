package repository

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/Amo12312/accordai/models"
)

// ErrPaymentNotFound is returned when no payment record matches the lookup.
var ErrPaymentNotFound = errors.New("payment record not found")

// PaymentRepository persists checkout attempts and their outcomes.
type PaymentRepository interface {
	Create(record *models.PaymentRecord) error
	FindByOrderID(orderID string) (*models.PaymentRecord, error)
	Update(record *models.PaymentRecord) error
	GetByUserID(userID string) ([]models.PaymentRecord, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new GORM-backed PaymentRepository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(record *models.PaymentRecord) error {
	if record.UserID == "" || record.OrderID == "" {
		return errors.New("payment record requires UserID and OrderID")
	}
	if err := r.db.Create(record).Error; err != nil {
		log.Printf("ERROR: [PaymentRepository] Failed to create payment record for order %s: %v", record.OrderID, err)
		return fmt.Errorf("failed to create payment record: %w", err)
	}
	return nil
}

func (r *paymentRepository) FindByOrderID(orderID string) (*models.PaymentRecord, error) {
	if orderID == "" {
		return nil, errors.New("order ID cannot be empty")
	}
	var record models.PaymentRecord
	err := r.db.First(&record, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment record for order %s: %w", orderID, err)
	}
	return &record, nil
}

func (r *paymentRepository) Update(record *models.PaymentRecord) error {
	if err := r.db.Save(record).Error; err != nil {
		log.Printf("ERROR: [PaymentRepository] Failed to update payment record %d: %v", record.ID, err)
		return fmt.Errorf("failed to update payment record: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByUserID(userID string) ([]models.PaymentRecord, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	var records []models.PaymentRecord
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment records for user %s: %w", userID, err)
	}
	return records, nil
}
