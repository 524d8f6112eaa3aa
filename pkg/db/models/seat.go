package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evolvespaces/evolve-backend/pkg/enums"
)

// Seat is a bookable unit at a location. Seat numbers repeat across
// locations, so uniqueness lives on the (location_id, seat_number) pair.
// Invariant: status is occupied exactly when MemberID and SubscriptionID are
// set and the linked subscription is still active.
type Seat struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey"`
	LocationID     uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_seats_location_number"`
	SeatNumber     int              `gorm:"not null;uniqueIndex:idx_seats_location_number"`
	Status         enums.SeatStatus `gorm:"type:seat_status;not null;default:'vacant'"`
	MemberID       *uuid.UUID       `gorm:"type:uuid"`
	SubscriptionID *uuid.UUID       `gorm:"type:uuid"`
	CreatedAt      time.Time        `gorm:"autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime"`
}

func (s *Seat) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
