package spot

import "time"

const (
	StatusAvailable    = "AVAILABLE"
	StatusReserved     = "RESERVED"
	StatusOccupied     = "OCCUPIED"
	StatusOutOfService = "OUT_OF_SERVICE"
)

type ParkingSpot struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Level     string    `gorm:"column:level" json:"level"`
	Zone      string    `gorm:"column:zone" json:"zone"`
	Status    string    `gorm:"column:status;default:AVAILABLE" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()" json:"updated_at"`
}

func (ParkingSpot) TableName() string {
	return "parking_spots"
}
