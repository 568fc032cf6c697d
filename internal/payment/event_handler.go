package payment

import (
	"context"
	"log/slog"

	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/events"
)

// EventHandler writes an audit trail for settlement events. It runs on the
// in-process bus so a slow log sink never blocks the request path.
type EventHandler struct {
	logger *slog.Logger
}

func NewEventHandler(logger *slog.Logger) *EventHandler {
	return &EventHandler{logger: logger}
}

func (h *EventHandler) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypePaymentCompleted, h.onPaymentCompleted)
	bus.Subscribe(events.EventTypePaymentFailed, h.onPaymentFailed)
	bus.Subscribe(events.EventTypeReservationSettled, h.onReservationSettled)
}

func (h *EventHandler) onPaymentCompleted(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.PaymentCompletedEvent)
	if !ok {
		return nil
	}
	h.logger.Info("audit: payment completed",
		"payment_id", e.PaymentID,
		"reservation_id", e.ReservationID,
		"transaction_id", e.TransactionID,
		"amount", e.Amount,
		"payment_method", e.PaymentMethod)
	return nil
}

func (h *EventHandler) onPaymentFailed(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.PaymentFailedEvent)
	if !ok {
		return nil
	}
	h.logger.Warn("audit: payment failed",
		"payment_id", e.PaymentID,
		"reservation_id", e.ReservationID,
		"transaction_id", e.TransactionID,
		"failure_reason", e.FailureReason)
	return nil
}

func (h *EventHandler) onReservationSettled(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.ReservationSettledEvent)
	if !ok {
		return nil
	}
	h.logger.Info("audit: reservation settled",
		"reservation_id", e.ReservationID,
		"reservation_code", e.ReservationCode,
		"total_amount", e.TotalAmount)
	return nil
}
