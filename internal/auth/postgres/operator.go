package postgres

import (
	"gorm.io/gorm"

	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/operator"
)

type OperatorRepository struct {
	db *gorm.DB
}

func NewOperatorRepository(db *gorm.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

func (r *OperatorRepository) GetByEmail(email string) (*operator.Operator, error) {
	var op operator.Operator
	if err := r.db.Where("email = ?", email).First(&op).Error; err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *OperatorRepository) GetByID(id int64) (*operator.Operator, error) {
	var op operator.Operator
	if err := r.db.First(&op, id).Error; err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *OperatorRepository) Create(op *operator.Operator) error {
	return r.db.Create(op).Error
}
