package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evolvespaces/evolve-backend/pkg/enums"
)

// InventoryItem tracks equipment kept at a location (chairs, lamps, routers).
type InventoryItem struct {
	ID         uuid.UUID             `gorm:"type:uuid;primaryKey"`
	LocationID uuid.UUID             `gorm:"type:uuid;not null;index"`
	Name       string                `gorm:"not null"`
	Quantity   int                   `gorm:"not null;default:0"`
	Status     enums.InventoryStatus `gorm:"type:inventory_status;not null;default:'working';index"`
	Notes      string
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (i *InventoryItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
