package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense records operating spend per location.
type Expense struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	LocationID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Category    string          `gorm:"not null"`
	Description string
	Amount      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	IncurredOn  time.Time       `gorm:"not null"`
	CreatedBy   uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
}

func (e *Expense) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
