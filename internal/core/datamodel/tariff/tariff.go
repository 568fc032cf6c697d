package tariff

import "time"

type Tariff struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	VehicleType string    `gorm:"column:vehicle_type" json:"vehicle_type"`
	EntranceFee int64     `gorm:"column:entrance_fee;not null" json:"entrance_fee"`
	HourlyRate  int64     `gorm:"column:hourly_rate;not null" json:"hourly_rate"`
	DailyCap    int64     `gorm:"column:daily_cap;default:0" json:"daily_cap"`
	FreeMinutes int       `gorm:"column:free_minutes;default:0" json:"free_minutes"`
	IsActive    bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;default:now()" json:"updated_at"`
}

func (Tariff) TableName() string {
	return "tariffs"
}
