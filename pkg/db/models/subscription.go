package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/evolvespaces/evolve-backend/pkg/enums"
)

// Subscription is a time-bounded occupancy grant of a seat by a member.
// Duration keeps the raw requested string ("2 months", "30 days") for display;
// EndDate is derived from it at creation time.
type Subscription struct {
	ID          uuid.UUID                `gorm:"type:uuid;primaryKey"`
	MemberID    uuid.UUID                `gorm:"type:uuid;not null;index"`
	LocationID  uuid.UUID                `gorm:"type:uuid;not null;index"`
	SeatID      uuid.UUID                `gorm:"type:uuid;not null"`
	StartDate   time.Time                `gorm:"not null"`
	EndDate     time.Time                `gorm:"not null;index"`
	Duration    string                   `gorm:"not null"`
	TotalAmount decimal.Decimal          `gorm:"type:numeric(10,2);not null"`
	Status      enums.SubscriptionStatus `gorm:"type:subscription_status;not null;default:'active';index"`
	Payments    []Payment                `gorm:"foreignKey:SubscriptionID"`
	Member      *Member                  `gorm:"foreignKey:MemberID"`
	Seat        *Seat                    `gorm:"foreignKey:SeatID"`
	CreatedAt   time.Time                `gorm:"autoCreateTime"`
	UpdatedAt   time.Time                `gorm:"autoUpdateTime"`
}

func (s *Subscription) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
