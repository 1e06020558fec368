package models

import "time"

// Payment statuses as stored on PaymentRecord.
const (
	PaymentStatusCreated  = "created"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
)

// PaymentRecord tracks one checkout attempt against the payment provider.
// OrderID is the provider-side session/order identifier.
type PaymentRecord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index"`
	OrderID   string    `json:"order_id" gorm:"uniqueIndex"`
	Receipt   string    `json:"receipt"`
	PlanID    string    `json:"plan_id"`
	Amount    int64     `json:"amount"`   // smallest currency unit
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the PaymentRecord model.
func (PaymentRecord) TableName() string {
	return "payment_records"
}
