package postgres

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	internal "github.com/mostafaSataki/LprParkingWeb-sub000/internal"
	paymentDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/payment"
	reservationDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/reservation"
	spotDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/spot"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) GetByID(id int64) (*reservationDatamodel.Reservation, error) {
	var res reservationDatamodel.Reservation
	err := r.db.
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&res, id).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepository) GetByCode(code string) (*reservationDatamodel.Reservation, error) {
	var res reservationDatamodel.Reservation
	err := r.db.
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("reservation_code = ?", code).
		First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepository) List(limit, offset int) ([]*reservationDatamodel.Reservation, int64, error) {
	var total int64
	if err := r.db.Model(&reservationDatamodel.Reservation{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reservations []*reservationDatamodel.Reservation
	err := r.db.
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reservations).Error
	if err != nil {
		return nil, 0, err
	}
	return reservations, total, nil
}

func (r *ReservationRepository) Create(res *reservationDatamodel.Reservation) error {
	return r.db.Create(res).Error
}

func (r *ReservationRepository) UpdateStatus(id int64, status string) error {
	return r.db.Model(&reservationDatamodel.Reservation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *ReservationRepository) CreatePayment(p *paymentDatamodel.Payment) error {
	return r.db.Create(p).Error
}

// SettleOffline creates a COMPLETED payment and applies the balance update in
// one transaction. The reservation row is locked first so the check against
// the remaining balance and the write both see the same state.
func (r *ReservationRepository) SettleOffline(reservationID int64, p *paymentDatamodel.Payment) (*reservationDatamodel.Reservation, error) {
	var updated *reservationDatamodel.Reservation
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var res reservationDatamodel.Reservation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&res, reservationID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrReservationNotFound
			}
			return err
		}

		if res.Status == reservationDatamodel.StatusCancelled ||
			res.Status == reservationDatamodel.StatusCompleted {
			return internal.ErrReservationNotPayable
		}

		paidSoFar, err := sumPayments(tx, res.ID)
		if err != nil {
			return err
		}
		remaining := res.TotalAmount - paidSoFar
		if remaining <= 0 {
			return internal.ErrAlreadySettled
		}
		if p.Amount > remaining {
			return internal.NewAmountExceedsBalanceError(remaining)
		}

		if err := tx.Create(p).Error; err != nil {
			return err
		}
		if err := applyBalance(tx, &res); err != nil {
			return err
		}
		updated = &res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// FinalizeOnline resolves a PENDING online payment. A successful outcome
// applies the balance update to the reservation in the same transaction; a
// failed one records the reason and leaves the reservation alone. Payments
// already in a terminal state are returned unchanged so retried callbacks
// stay idempotent.
func (r *ReservationRepository) FinalizeOnline(transactionID string, succeeded bool, failureReason *string, refID string) (*paymentDatamodel.Payment, *reservationDatamodel.Reservation, error) {
	var p paymentDatamodel.Payment
	var updated *reservationDatamodel.Reservation

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("transaction_id = ?", transactionID).
			First(&p).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrPaymentNotFound
			}
			return err
		}

		if p.Status != paymentDatamodel.StatusPending {
			return nil
		}

		now := time.Now()
		p.ProcessedAt = &now
		if !succeeded {
			p.Status = paymentDatamodel.StatusFailed
			p.FailureReason = failureReason
			return tx.Save(&p).Error
		}

		p.Status = paymentDatamodel.StatusCompleted
		if refID != "" {
			p.GatewayResponse = withRefID(p.GatewayResponse, refID)
		}
		if err := tx.Save(&p).Error; err != nil {
			return err
		}

		var res reservationDatamodel.Reservation
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&res, p.ReservationID).Error
		if err != nil {
			return err
		}
		if err := applyBalance(tx, &res); err != nil {
			return err
		}
		updated = &res
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &p, updated, nil
}

// sumPayments totals every payment row for the reservation regardless of
// status. Pending online payments count toward the balance until their
// callback resolves them.
func sumPayments(tx *gorm.DB, reservationID int64) (int64, error) {
	var total int64
	err := tx.Model(&paymentDatamodel.Payment{}).
		Where("reservation_id = ?", reservationID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// applyBalance recomputes paidAmount from the payment rows, flips isPaid and
// status when the reservation is fully covered, and marks the held spot
// RESERVED. Must run inside the caller's transaction with the reservation
// row locked.
func applyBalance(tx *gorm.DB, res *reservationDatamodel.Reservation) error {
	paid, err := sumPayments(tx, res.ID)
	if err != nil {
		return err
	}

	res.PaidAmount = paid
	res.IsPaid = paid >= res.TotalAmount
	if res.IsPaid &&
		(res.Status == reservationDatamodel.StatusPending ||
			res.Status == reservationDatamodel.StatusActive) {
		res.Status = reservationDatamodel.StatusConfirmed
	}
	res.UpdatedAt = time.Now()

	err = tx.Model(res).
		Select("paid_amount", "is_paid", "status", "updated_at").
		Updates(res).Error
	if err != nil {
		return err
	}

	if res.IsPaid && res.SpotID != nil {
		err = tx.Model(&spotDatamodel.ParkingSpot{}).
			Where("id = ?", *res.SpotID).
			Updates(map[string]interface{}{
				"status":     spotDatamodel.StatusReserved,
				"updated_at": time.Now(),
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func withRefID(raw json.RawMessage, refID string) json.RawMessage {
	data := map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			data = map[string]interface{}{}
		}
	}
	data["ref_id"] = refID
	merged, err := json.Marshal(data)
	if err != nil {
		return raw
	}
	return merged
}
