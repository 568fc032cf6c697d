package operator

import "time"

// Operator is a dashboard user allowed to record payments and manage
// reservations.
type Operator struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Name         string    `gorm:"column:name" json:"name"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	IsActive     bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;default:now()" json:"updated_at"`
}

func (Operator) TableName() string {
	return "operators"
}
