package reservation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	internal "github.com/mostafaSataki/LprParkingWeb-sub000/internal"
	paymentDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/payment"
	reservationDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/reservation"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/events"
	paymentDomain "github.com/mostafaSataki/LprParkingWeb-sub000/internal/payment"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/paymentgateway"
)

type Repository interface {
	GetByID(id int64) (*reservationDatamodel.Reservation, error)
	GetByCode(code string) (*reservationDatamodel.Reservation, error)
	List(limit, offset int) ([]*reservationDatamodel.Reservation, int64, error)
	Create(r *reservationDatamodel.Reservation) error
	UpdateStatus(id int64, status string) error
	CreatePayment(p *paymentDatamodel.Payment) error
	// SettleOffline runs the check-then-write settlement in one transaction
	// and returns the reservation as persisted afterwards.
	SettleOffline(reservationID int64, p *paymentDatamodel.Payment) (*reservationDatamodel.Reservation, error)
	// FinalizeOnline resolves a PENDING online payment and, on success,
	// applies the balance update to its reservation in the same transaction.
	FinalizeOnline(transactionID string, succeeded bool, failureReason *string, refID string) (*paymentDatamodel.Payment, *reservationDatamodel.Reservation, error)
}

// GatewayAPI is the slice of the gateway client the settlement flow uses.
type GatewayAPI interface {
	RequestPayment(ctx context.Context, req *paymentgateway.PaymentRequest) (*paymentgateway.PaymentRequestResult, error)
}

// TariffAPI quotes the projected stay cost when a reservation is created
// without an explicit total.
type TariffAPI interface {
	QuoteStay(tariffID int64, entry time.Time) (int64, error)
}

type Service struct {
	repo        Repository
	gateway     GatewayAPI
	tariffs     TariffAPI
	eventBus    *events.EventBus
	callbackURL string
	logger      *slog.Logger
}

func NewService(repo Repository, gateway GatewayAPI, tariffs TariffAPI, eventBus *events.EventBus, callbackURL string, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		gateway:     gateway,
		tariffs:     tariffs,
		eventBus:    eventBus,
		callbackURL: callbackURL,
		logger:      logger,
	}
}

// GetPaymentInfo returns the reservation with its payment history and the
// derived balance figures.
func (s *Service) GetPaymentInfo(ctx context.Context, reservationID int64) (*PaymentInfoResponse, error) {
	res, err := s.repo.GetByID(reservationID)
	if err != nil {
		s.logger.Warn("reservation not found", "reservation_id", reservationID, "error", err)
		return nil, internal.ErrReservationNotFound
	}

	return &PaymentInfoResponse{
		Reservation:     ToReservationResponse(res),
		TotalPaid:       TotalPaid(res),
		RemainingAmount: RemainingAmount(res),
		IsFullyPaid:     IsFullyPaid(res),
	}, nil
}

// SubmitPayment records a payment against a reservation. Preconditions are
// checked in a fixed order and the first failure short-circuits: amount,
// method, existence, payable status, outstanding balance, amount bound.
// ONLINE payments only reserve a gateway slot here; everything else settles
// synchronously.
func (s *Service) SubmitPayment(ctx context.Context, reservationID int64, dto SubmitPaymentDTO) (*SubmitPaymentResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	res, err := s.repo.GetByID(reservationID)
	if err != nil {
		s.logger.Warn("payment submitted for unknown reservation",
			"reservation_id", reservationID, "error", err)
		return nil, internal.ErrReservationNotFound
	}

	if !CanAcceptPayment(res) {
		s.logger.Warn("payment rejected, reservation not payable",
			"reservation_id", res.ID, "status", res.Status)
		return nil, internal.ErrReservationNotPayable
	}

	remaining := RemainingAmount(res)
	if remaining <= 0 {
		return nil, internal.ErrAlreadySettled
	}
	if dto.Amount > remaining {
		return nil, internal.NewAmountExceedsBalanceError(remaining)
	}

	if dto.PaymentMethod == paymentDatamodel.MethodOnline {
		return s.startOnlinePayment(ctx, res, dto)
	}
	return s.settleOffline(ctx, res, dto)
}

func (s *Service) startOnlinePayment(ctx context.Context, res *reservationDatamodel.Reservation, dto SubmitPaymentDTO) (*SubmitPaymentResponse, error) {
	transactionID := paymentDomain.NewTransactionID()

	description := dto.Description
	if description == "" {
		description = fmt.Sprintf("parking payment for reservation %s", res.ReservationCode)
	}

	result, err := s.gateway.RequestPayment(ctx, &paymentgateway.PaymentRequest{
		Amount:      dto.Amount,
		OrderID:     res.ReservationCode,
		Description: description,
		Mobile:      res.CustomerPhone,
		Email:       res.CustomerEmail,
		CallbackURL: fmt.Sprintf("%s?reservation_id=%d", s.callbackURL, res.ID),
	})
	if err != nil {
		s.logger.Error("gateway payment request failed",
			"reservation_id", res.ID, "amount", dto.Amount, "error", err)
		return nil, internal.NewExternalError("failed to initiate online payment", internal.ErrCodeGatewayError).WithCause(err)
	}

	gatewayData := paymentDomain.GatewayResponseData{
		Authority:  result.Authority,
		PaymentURL: result.PaymentURL,
	}
	raw, err := gatewayData.Marshal()
	if err != nil {
		return nil, internal.NewInternalError("failed to serialize gateway response", err)
	}

	p := &paymentDatamodel.Payment{
		ReservationID:   res.ID,
		TransactionID:   transactionID,
		Amount:          dto.Amount,
		PaymentMethod:   paymentDatamodel.MethodOnline,
		Status:          paymentDatamodel.StatusPending,
		Description:     description,
		GatewayResponse: raw,
	}
	if err := s.repo.CreatePayment(p); err != nil {
		s.logger.Error("failed to persist pending payment",
			"reservation_id", res.ID, "transaction_id", transactionID, "error", err)
		return nil, internal.NewInternalError("failed to create payment", err)
	}

	s.logger.Info("online payment initiated",
		"reservation_id", res.ID,
		"transaction_id", transactionID,
		"authority", result.Authority,
		"amount", dto.Amount)

	return &SubmitPaymentResponse{
		Payment:    paymentDomain.ToPaymentResponse(p),
		PaymentURL: gatewayData.PaymentURL,
		Authority:  gatewayData.Authority,
		Message:    "online payment initiated, redirect the customer to the payment URL",
	}, nil
}

func (s *Service) settleOffline(ctx context.Context, res *reservationDatamodel.Reservation, dto SubmitPaymentDTO) (*SubmitPaymentResponse, error) {
	now := time.Now()
	receipt := paymentDomain.NewReceiptNumber()
	p := &paymentDatamodel.Payment{
		ReservationID: res.ID,
		TransactionID: paymentDomain.NewTransactionID(),
		ReceiptNumber: &receipt,
		Amount:        dto.Amount,
		PaymentMethod: dto.PaymentMethod,
		Status:        paymentDatamodel.StatusCompleted,
		Description:   dto.Description,
		ProcessedAt:   &now,
	}

	updated, err := s.repo.SettleOffline(res.ID, p)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("offline settlement failed",
			"reservation_id", res.ID, "amount", dto.Amount, "error", err)
		return nil, internal.NewInternalError("failed to record payment", err)
	}

	s.eventBus.Publish(ctx, events.NewPaymentCompletedEvent(
		p.ID, p.ReservationID, p.TransactionID, p.Amount, p.PaymentMethod))
	if updated.IsPaid {
		s.eventBus.Publish(ctx, events.NewReservationSettledEvent(
			updated.ID, updated.ReservationCode, updated.TotalAmount, updated.SpotID))
	}

	s.logger.Info("offline payment recorded",
		"reservation_id", updated.ID,
		"transaction_id", p.TransactionID,
		"receipt_number", receipt,
		"amount", p.Amount,
		"fully_paid", updated.IsPaid)

	return &SubmitPaymentResponse{
		Payment: paymentDomain.ToPaymentResponse(p),
		Message: "payment recorded successfully",
	}, nil
}

// CompleteOnlinePayment finalizes a verified online payment. Called from the
// gateway callback path after verification.
func (s *Service) CompleteOnlinePayment(ctx context.Context, transactionID string, refID string) (*paymentDatamodel.Payment, error) {
	p, updated, err := s.repo.FinalizeOnline(transactionID, true, nil, refID)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		return nil, internal.NewInternalError("failed to finalize payment", err)
	}

	if updated != nil && updated.IsPaid {
		s.eventBus.Publish(ctx, events.NewReservationSettledEvent(
			updated.ID, updated.ReservationCode, updated.TotalAmount, updated.SpotID))
	}
	return p, nil
}

// FailOnlinePayment marks a PENDING online payment as FAILED. The
// reservation is left untouched.
func (s *Service) FailOnlinePayment(ctx context.Context, transactionID string, reason string) (*paymentDatamodel.Payment, error) {
	p, _, err := s.repo.FinalizeOnline(transactionID, false, &reason, "")
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		return nil, internal.NewInternalError("failed to finalize payment", err)
	}
	return p, nil
}

func (s *Service) ListReservations(ctx context.Context, page, perPage int) ([]*ReservationResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	reservations, total, err := s.repo.List(perPage, (page-1)*perPage)
	if err != nil {
		s.logger.Error("failed to list reservations", "error", err)
		return nil, 0, internal.NewInternalError("failed to list reservations", err)
	}
	return ToReservationResponses(reservations), total, nil
}

func (s *Service) GetReservation(ctx context.Context, id int64) (*ReservationResponse, error) {
	res, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrReservationNotFound
	}
	return ToReservationResponse(res), nil
}

// CreateReservation registers a new reservation with a generated code. When
// the total is omitted and a tariff is set, the projected stay cost is
// quoted from the tariff.
func (s *Service) CreateReservation(ctx context.Context, dto CreateReservationDTO) (*ReservationResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	total := dto.TotalAmount
	if total == 0 && dto.TariffID != nil {
		quoted, err := s.tariffs.QuoteStay(*dto.TariffID, dto.EntryTime)
		if err != nil {
			return nil, internal.ErrTariffNotFound
		}
		total = quoted
	}

	res := &reservationDatamodel.Reservation{
		ReservationCode: NewReservationCode(),
		CustomerName:    dto.CustomerName,
		CustomerPhone:   dto.CustomerPhone,
		CustomerEmail:   dto.CustomerEmail,
		LicensePlate:    dto.LicensePlate,
		EntryTime:       dto.EntryTime,
		ExitTime:        dto.ExitTime,
		TotalAmount:     total,
		Status:          reservationDatamodel.StatusPending,
		SpotID:          dto.SpotID,
		TariffID:        dto.TariffID,
	}
	if err := s.repo.Create(res); err != nil {
		s.logger.Error("failed to create reservation", "error", err)
		return nil, internal.NewInternalError("failed to create reservation", err)
	}

	s.logger.Info("reservation created",
		"reservation_id", res.ID,
		"reservation_code", res.ReservationCode,
		"total_amount", res.TotalAmount)
	return ToReservationResponse(res), nil
}

// CancelReservation moves a reservation to CANCELLED. The state is absorbing:
// completed and already cancelled reservations cannot be cancelled.
func (s *Service) CancelReservation(ctx context.Context, id int64) (*ReservationResponse, error) {
	res, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrReservationNotFound
	}

	if res.Status == reservationDatamodel.StatusCancelled ||
		res.Status == reservationDatamodel.StatusCompleted {
		return nil, internal.NewValidationError("reservation cannot be cancelled in its current state", internal.ErrCodeReservationNotActive)
	}

	if err := s.repo.UpdateStatus(id, reservationDatamodel.StatusCancelled); err != nil {
		s.logger.Error("failed to cancel reservation", "reservation_id", id, "error", err)
		return nil, internal.NewInternalError("failed to cancel reservation", err)
	}

	res.Status = reservationDatamodel.StatusCancelled
	s.logger.Info("reservation cancelled", "reservation_id", id)
	return ToReservationResponse(res), nil
}
