package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/evolvespaces/evolve-backend/pkg/enums"
)

// WaitingListEntry queues an unfulfilled seat request for a location. It keeps
// the original request terms so staff can promote the member once a seat
// frees up. Entries are not tied to a specific seat.
type WaitingListEntry struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey"`
	MemberID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	LocationID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	StartDate     time.Time           `gorm:"not null"`
	Duration      string              `gorm:"not null"`
	Amount        decimal.Decimal     `gorm:"type:numeric(10,2);not null"`
	PaymentMethod enums.PaymentMethod `gorm:"type:payment_method;not null"`
	Member        *Member             `gorm:"foreignKey:MemberID"`
	RequestedAt   time.Time           `gorm:"autoCreateTime"`
}

func (w *WaitingListEntry) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
