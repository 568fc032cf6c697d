package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentCompleted   = "payment.completed"
	EventTypePaymentFailed      = "payment.failed"
	EventTypeReservationSettled = "reservation.settled"
)

type PaymentCompletedEvent struct {
	BaseEvent
	PaymentID     int64  `json:"payment_id"`
	ReservationID int64  `json:"reservation_id"`
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
}

func NewPaymentCompletedEvent(paymentID, reservationID int64, transactionID string, amount int64, method string) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":     paymentID,
				"reservation_id": reservationID,
				"transaction_id": transactionID,
				"amount":         amount,
				"payment_method": method,
			},
		},
		PaymentID:     paymentID,
		ReservationID: reservationID,
		TransactionID: transactionID,
		Amount:        amount,
		PaymentMethod: method,
	}
}

type PaymentFailedEvent struct {
	BaseEvent
	PaymentID     int64  `json:"payment_id"`
	ReservationID int64  `json:"reservation_id"`
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	FailureReason string `json:"failure_reason"`
}

func NewPaymentFailedEvent(paymentID, reservationID int64, transactionID string, amount int64, failureReason string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":     paymentID,
				"reservation_id": reservationID,
				"transaction_id": transactionID,
				"amount":         amount,
				"failure_reason": failureReason,
			},
		},
		PaymentID:     paymentID,
		ReservationID: reservationID,
		TransactionID: transactionID,
		Amount:        amount,
		FailureReason: failureReason,
	}
}

// ReservationSettledEvent fires when a payment brings paidAmount up to
// totalAmount and the reservation flips to CONFIRMED.
type ReservationSettledEvent struct {
	BaseEvent
	ReservationID   int64  `json:"reservation_id"`
	ReservationCode string `json:"reservation_code"`
	TotalAmount     int64  `json:"total_amount"`
	SpotID          *int64 `json:"spot_id,omitempty"`
}

func NewReservationSettledEvent(reservationID int64, reservationCode string, totalAmount int64, spotID *int64) *ReservationSettledEvent {
	data := map[string]interface{}{
		"reservation_id":   reservationID,
		"reservation_code": reservationCode,
		"total_amount":     totalAmount,
	}
	if spotID != nil {
		data["spot_id"] = *spotID
	}
	return &ReservationSettledEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeReservationSettled,
			Timestamp: time.Now(),
			Data:      data,
		},
		ReservationID:   reservationID,
		ReservationCode: reservationCode,
		TotalAmount:     totalAmount,
		SpotID:          spotID,
	}
}
