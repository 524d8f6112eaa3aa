package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Member is the identity record for a person using the reading rooms. The
// MemberCode is the human-readable code printed on receipts and ID cards.
type Member struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	MemberCode string     `gorm:"not null;uniqueIndex"`
	Name       string     `gorm:"not null"`
	Email      string     `gorm:"not null"`
	Phone      string     `gorm:"not null"`
	Address    string
	ExamPrep   string
	UserID     *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime"`
}

func (m *Member) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
