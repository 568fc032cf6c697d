package postgres

import (
	"gorm.io/gorm"

	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/payment"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetByID(id int64) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByTransactionID(transactionID string) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.Where("transaction_id = ?", transactionID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) ListByReservation(reservationID int64) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	err := r.db.
		Where("reservation_id = ?", reservationID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
