package payment

import (
	"context"
	"log/slog"

	internal "github.com/mostafaSataki/LprParkingWeb-sub000/internal"
	paymentDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/payment"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/events"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/paymentgateway"
)

type Repository interface {
	GetByID(id int64) (*paymentDatamodel.Payment, error)
	GetByTransactionID(transactionID string) (*paymentDatamodel.Payment, error)
	ListByReservation(reservationID int64) ([]*paymentDatamodel.Payment, error)
}

// GatewayAPI is the slice of the gateway client the callback path needs.
type GatewayAPI interface {
	VerifyPayment(ctx context.Context, authority string, amount int64) (*paymentgateway.VerifyResult, error)
}

// SettlementAPI finalizes a verified (or failed) online payment against its
// reservation. It is implemented by the reservation service so the balance
// bookkeeping lives in one place.
type SettlementAPI interface {
	CompleteOnlinePayment(ctx context.Context, transactionID string, gatewayRefID string) (*paymentDatamodel.Payment, error)
	FailOnlinePayment(ctx context.Context, transactionID string, reason string) (*paymentDatamodel.Payment, error)
}

type Service struct {
	repo       Repository
	gateway    GatewayAPI
	settlement SettlementAPI
	eventBus   *events.EventBus
	logger     *slog.Logger
}

func NewService(repo Repository, gateway GatewayAPI, settlement SettlementAPI, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		gateway:    gateway,
		settlement: settlement,
		eventBus:   eventBus,
		logger:     logger,
	}
}

func (s *Service) GetByTransactionID(ctx context.Context, transactionID string) (*paymentDatamodel.Payment, error) {
	p, err := s.repo.GetByTransactionID(transactionID)
	if err != nil {
		s.logger.Warn("payment not found", "transaction_id", transactionID, "error", err)
		return nil, internal.ErrPaymentNotFound
	}
	return p, nil
}

func (s *Service) ListByReservation(ctx context.Context, reservationID int64) ([]*paymentDatamodel.Payment, error) {
	payments, err := s.repo.ListByReservation(reservationID)
	if err != nil {
		s.logger.Error("failed to list payments", "reservation_id", reservationID, "error", err)
		return nil, internal.NewInternalError("failed to list payments", err)
	}
	return payments, nil
}

// HandleGatewayCallback processes an asynchronous gateway notification for an
// online payment. Callbacks for payments that already reached a terminal
// state are acknowledged without side effects so gateway retries stay safe.
func (s *Service) HandleGatewayCallback(ctx context.Context, dto GatewayCallbackDTO) error {
	p, err := s.repo.GetByTransactionID(dto.TransactionID)
	if err != nil {
		s.logger.Warn("callback for unknown payment",
			"transaction_id", dto.TransactionID,
			"authority", dto.Authority)
		return internal.ErrPaymentNotFound
	}

	if p.Status != paymentDatamodel.StatusPending {
		s.logger.Info("callback for already finalized payment, ignoring",
			"transaction_id", p.TransactionID,
			"status", p.Status)
		return nil
	}

	gw, err := ParseGatewayResponse(p.GatewayResponse)
	if err != nil || gw.Authority != dto.Authority {
		s.logger.Warn("callback authority mismatch",
			"transaction_id", p.TransactionID,
			"authority", dto.Authority)
		return internal.NewValidationError("callback authority does not match payment", internal.ErrCodeGatewayVerifyFailed)
	}

	if !dto.Succeeded() {
		return s.failPayment(ctx, p, "payment was not completed by customer")
	}

	verify, err := s.gateway.VerifyPayment(ctx, dto.Authority, p.Amount)
	if err != nil {
		s.logger.Warn("gateway verification failed",
			"transaction_id", p.TransactionID,
			"authority", dto.Authority,
			"error", err)
		return s.failPayment(ctx, p, "gateway verification failed")
	}

	completed, err := s.settlement.CompleteOnlinePayment(ctx, p.TransactionID, verify.RefID)
	if err != nil {
		s.logger.Error("failed to finalize online payment",
			"transaction_id", p.TransactionID,
			"error", err)
		return err
	}

	s.eventBus.Publish(ctx, events.NewPaymentCompletedEvent(
		completed.ID,
		completed.ReservationID,
		completed.TransactionID,
		completed.Amount,
		completed.PaymentMethod,
	))
	s.logger.Info("online payment completed",
		"transaction_id", completed.TransactionID,
		"reservation_id", completed.ReservationID,
		"amount", completed.Amount)
	return nil
}

func (s *Service) failPayment(ctx context.Context, p *paymentDatamodel.Payment, reason string) error {
	failed, err := s.settlement.FailOnlinePayment(ctx, p.TransactionID, reason)
	if err != nil {
		s.logger.Error("failed to mark payment as failed",
			"transaction_id", p.TransactionID,
			"error", err)
		return err
	}

	s.eventBus.Publish(ctx, events.NewPaymentFailedEvent(
		failed.ID,
		failed.ReservationID,
		failed.TransactionID,
		failed.Amount,
		reason,
	))
	s.logger.Info("online payment failed",
		"transaction_id", failed.TransactionID,
		"reason", reason)
	return nil
}
