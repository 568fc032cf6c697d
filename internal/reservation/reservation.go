package reservation

import (
	"crypto/rand"
	"fmt"
	"time"

	reservationDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/reservation"
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewReservationCode generates a human-quotable reservation code of the form
// RSV-<epoch-millis>-<4 char base36>.
func NewReservationCode() string {
	suffix := make([]byte, 4)
	raw := make([]byte, 4)
	if _, err := rand.Read(raw); err != nil {
		for i := range raw {
			raw[i] = byte(time.Now().UnixNano() >> uint(i*7))
		}
	}
	for i, b := range raw {
		suffix[i] = codeAlphabet[int(b)%36]
	}
	return fmt.Sprintf("RSV-%d-%s", time.Now().UnixMilli(), string(suffix))
}

// TotalPaid sums every recorded payment regardless of status. Pending online
// payments therefore count toward the displayed balance until their callback
// resolves them, which matches how the admin screens present it.
func TotalPaid(r *reservationDatamodel.Reservation) int64 {
	var total int64
	for _, p := range r.Payments {
		total += p.Amount
	}
	return total
}

// RemainingAmount is the outstanding balance, clamped at zero so an
// over-recorded payment never produces a negative remainder.
func RemainingAmount(r *reservationDatamodel.Reservation) int64 {
	remaining := r.TotalAmount - TotalPaid(r)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func IsFullyPaid(r *reservationDatamodel.Reservation) bool {
	return TotalPaid(r) >= r.TotalAmount
}

// CanAcceptPayment reports whether the reservation is in a state that allows
// new payments. CANCELLED and COMPLETED are terminal for payment purposes.
func CanAcceptPayment(r *reservationDatamodel.Reservation) bool {
	return r.Status != reservationDatamodel.StatusCancelled &&
		r.Status != reservationDatamodel.StatusCompleted
}
