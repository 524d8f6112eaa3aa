package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evolvespaces/evolve-backend/pkg/enums"
)

// Grievance is a member-reported issue handled by staff.
type Grievance struct {
	ID          uuid.UUID               `gorm:"type:uuid;primaryKey"`
	MemberID    uuid.UUID               `gorm:"type:uuid;not null;index"`
	LocationID  *uuid.UUID              `gorm:"type:uuid"`
	Subject     string                  `gorm:"not null"`
	Description string                  `gorm:"not null"`
	Status      enums.GrievanceStatus   `gorm:"type:grievance_status;not null;default:'pending';index"`
	Priority    enums.GrievancePriority `gorm:"type:grievance_priority;not null;default:'medium'"`
	ResolvedAt  *time.Time
	Member      *Member   `gorm:"foreignKey:MemberID"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (g *Grievance) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
