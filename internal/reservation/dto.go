package reservation

import (
	"time"

	errors "github.com/mostafaSataki/LprParkingWeb-sub000/internal"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/common/validation"
	reservationDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/reservation"
	paymentDomain "github.com/mostafaSataki/LprParkingWeb-sub000/internal/payment"
)

// SubmitPaymentDTO is the request body for recording a payment against a
// reservation.
type SubmitPaymentDTO struct {
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"paymentMethod"`
	Description   string `json:"description,omitempty"`
}

// Validate enforces the request level preconditions in order: amount first,
// then the payment method. The first failure wins so callers get one precise
// error rather than a grab bag.
func (d SubmitPaymentDTO) Validate() *errors.AppError {
	if err := validation.ValidatePaymentAmount(d.Amount); err != nil {
		return err
	}
	if err := validation.ValidatePaymentMethod(d.PaymentMethod); err != nil {
		return err
	}
	return nil
}

type CreateReservationDTO struct {
	CustomerName  string     `json:"customerName"`
	CustomerPhone string     `json:"customerPhone,omitempty"`
	CustomerEmail string     `json:"customerEmail,omitempty"`
	LicensePlate  string     `json:"licensePlate"`
	EntryTime     time.Time  `json:"entryTime"`
	ExitTime      *time.Time `json:"exitTime,omitempty"`
	TotalAmount   int64      `json:"totalAmount"`
	SpotID        *int64     `json:"spotId,omitempty"`
	TariffID      *int64     `json:"tariffId,omitempty"`
}

func (d CreateReservationDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("customer_name", d.CustomerName).Required().MaxLength(255)
	validator.Field("license_plate", d.LicensePlate).Required().MaxLength(32)
	if err := validator.Validate(); err != nil {
		return err
	}
	if d.TotalAmount < 0 {
		return errors.NewValidationFieldError("total_amount", "total_amount must not be negative", errors.ErrCodeInvalidReservationData)
	}
	if d.TotalAmount == 0 && d.TariffID == nil {
		return errors.NewValidationFieldError("total_amount", "either total_amount or tariff_id is required", errors.ErrCodeInvalidReservationData)
	}
	if d.EntryTime.IsZero() {
		return errors.NewValidationFieldError("entry_time", "entry_time is required", errors.ErrCodeInvalidReservationData)
	}
	if d.ExitTime != nil && !d.ExitTime.After(d.EntryTime) {
		return errors.NewValidationFieldError("exit_time", "exit_time must be after entry_time", errors.ErrCodeInvalidReservationData)
	}
	return nil
}

// ReservationResponse is the API read model. Amounts are integer minor units.
type ReservationResponse struct {
	ID              int64                           `json:"id"`
	ReservationCode string                          `json:"reservationCode"`
	CustomerName    string                          `json:"customerName"`
	CustomerPhone   string                          `json:"customerPhone,omitempty"`
	CustomerEmail   string                          `json:"customerEmail,omitempty"`
	LicensePlate    string                          `json:"licensePlate"`
	EntryTime       time.Time                       `json:"entryTime"`
	ExitTime        *time.Time                      `json:"exitTime,omitempty"`
	TotalAmount     int64                           `json:"totalAmount"`
	PaidAmount      int64                           `json:"paidAmount"`
	IsPaid          bool                            `json:"isPaid"`
	Status          string                          `json:"status"`
	SpotID          *int64                          `json:"spotId,omitempty"`
	TariffID        *int64                          `json:"tariffId,omitempty"`
	Payments        []*paymentDomain.PaymentResponse `json:"payments,omitempty"`
	CreatedAt       time.Time                       `json:"createdAt"`
}

func ToReservationResponse(r *reservationDatamodel.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:              r.ID,
		ReservationCode: r.ReservationCode,
		CustomerName:    r.CustomerName,
		CustomerPhone:   r.CustomerPhone,
		CustomerEmail:   r.CustomerEmail,
		LicensePlate:    r.LicensePlate,
		EntryTime:       r.EntryTime,
		ExitTime:        r.ExitTime,
		TotalAmount:     r.TotalAmount,
		PaidAmount:      r.PaidAmount,
		IsPaid:          r.IsPaid,
		Status:          r.Status,
		SpotID:          r.SpotID,
		TariffID:        r.TariffID,
		Payments:        paymentDomain.ToPaymentResponses(r.Payments),
		CreatedAt:       r.CreatedAt,
	}
}

func ToReservationResponses(reservations []*reservationDatamodel.Reservation) []*ReservationResponse {
	out := make([]*ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, ToReservationResponse(r))
	}
	return out
}

// PaymentInfoResponse is returned by the payment info endpoint: the
// reservation plus its derived balance figures.
type PaymentInfoResponse struct {
	Reservation     *ReservationResponse `json:"reservation"`
	TotalPaid       int64                `json:"totalPaid"`
	RemainingAmount int64                `json:"remainingAmount"`
	IsFullyPaid     bool                 `json:"isFullyPaid"`
}

// SubmitPaymentResponse is returned after a payment is recorded. Online
// payments carry the redirect URL and authority token for the client-side
// redirect; offline payments carry only the settled payment.
type SubmitPaymentResponse struct {
	Payment    *paymentDomain.PaymentResponse `json:"payment"`
	PaymentURL string                         `json:"paymentUrl,omitempty"`
	Authority  string                         `json:"authority,omitempty"`
	Message    string                         `json:"message"`
}
