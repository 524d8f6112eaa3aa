package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/evolvespaces/evolve-backend/pkg/enums"
)

// Payment records money received against a subscription. Rows are immutable
// once created. UniqueCode carries the EVOLVE<year><month><sequence> receipt
// code; the sequence is a single global counter (see payments.NextUniqueCode).
type Payment struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey"`
	SubscriptionID uuid.UUID           `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal     `gorm:"type:numeric(10,2);not null"`
	Method         enums.PaymentMethod `gorm:"type:payment_method;not null"`
	UPICode        *string
	PaidAt         time.Time `gorm:"not null"`
	UniqueCode     string    `gorm:"not null;uniqueIndex"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
