package reservation

import (
	"time"

	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/payment"
)

// Reservation status constants. CANCELLED and COMPLETED are absorbing: no
// further payments are accepted once a reservation reaches either of them.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

type Reservation struct {
	ID              int64      `gorm:"primaryKey" json:"id"`
	ReservationCode string     `gorm:"column:reservation_code;not null;uniqueIndex" json:"reservation_code"`
	CustomerName    string     `gorm:"column:customer_name" json:"customer_name"`
	CustomerPhone   string     `gorm:"column:customer_phone" json:"customer_phone"`
	CustomerEmail   string     `gorm:"column:customer_email" json:"customer_email"`
	LicensePlate    string     `gorm:"column:license_plate" json:"license_plate"`
	EntryTime       time.Time  `gorm:"column:entry_time" json:"entry_time"`
	ExitTime        *time.Time `gorm:"column:exit_time" json:"exit_time,omitempty"`
	TotalAmount     int64      `gorm:"column:total_amount;not null" json:"total_amount"`
	PaidAmount      int64      `gorm:"column:paid_amount;default:0" json:"paid_amount"`
	IsPaid          bool       `gorm:"column:is_paid;default:false" json:"is_paid"`
	Status          string     `gorm:"column:status;default:PENDING" json:"status"`
	SpotID          *int64     `gorm:"column:spot_id" json:"spot_id,omitempty"`
	TariffID        *int64     `gorm:"column:tariff_id" json:"tariff_id,omitempty"`

	// Ordered most recent first by the repository.
	Payments []*payment.Payment `gorm:"foreignKey:ReservationID" json:"payments,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()" json:"updated_at"`
}

func (Reservation) TableName() string {
	return "reservations"
}
