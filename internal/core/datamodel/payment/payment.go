package payment

import (
	"encoding/json"
	"time"
)

// Payment status constants. ONLINE payments start PENDING and are finalized
// by the gateway callback; every other method is COMPLETED at creation.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// Payment method constants.
const (
	MethodCash   = "CASH"
	MethodCard   = "CARD"
	MethodPOS    = "POS"
	MethodOnline = "ONLINE"
	MethodCredit = "CREDIT"
)

type Payment struct {
	ID              int64           `gorm:"primaryKey" json:"id"`
	ReservationID   int64           `gorm:"column:reservation_id;not null;index" json:"reservation_id"`
	TransactionID   string          `gorm:"column:transaction_id;not null;uniqueIndex" json:"transaction_id"`
	ReceiptNumber   *string         `gorm:"column:receipt_number" json:"receipt_number,omitempty"`
	Amount          int64           `gorm:"column:amount;not null" json:"amount"`
	PaymentMethod   string          `gorm:"column:payment_method;not null" json:"payment_method"`
	Status          string          `gorm:"column:status;default:PENDING" json:"status"`
	Description     string          `gorm:"column:description" json:"description,omitempty"`
	GatewayResponse json.RawMessage `gorm:"column:gateway_response;type:jsonb" json:"gateway_response,omitempty"`
	FailureReason   *string         `gorm:"column:failure_reason" json:"failure_reason,omitempty"`
	ProcessedAt     *time.Time      `gorm:"column:processed_at" json:"processed_at,omitempty"`
	CreatedAt       time.Time       `gorm:"column:created_at;default:now()" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;default:now()" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// ValidMethod reports whether m is one of the five accepted payment methods.
func ValidMethod(m string) bool {
	switch m {
	case MethodCash, MethodCard, MethodPOS, MethodOnline, MethodCredit:
		return true
	}
	return false
}
