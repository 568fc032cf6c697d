package postgres

import (
	tariffDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/tariff"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/tariff"
	"gorm.io/gorm"
)

type TariffRepository struct {
	db *gorm.DB
}

func NewTariffRepository(db *gorm.DB) tariff.Repository {
	return &TariffRepository{db: db}
}

func (r *TariffRepository) GetByID(id int64) (*tariffDatamodel.Tariff, error) {
	var t tariffDatamodel.Tariff
	err := r.db.First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TariffRepository) GetActive() ([]*tariffDatamodel.Tariff, error) {
	var tariffs []*tariffDatamodel.Tariff
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&tariffs).Error
	return tariffs, err
}
