package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog is an append-only trail of state-changing actions.
type AuditLog struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ActorID   *uuid.UUID      `gorm:"type:uuid"`
	Action    string          `gorm:"not null;index"`
	Entity    string          `gorm:"not null"`
	EntityID  uuid.UUID       `gorm:"type:uuid;not null"`
	Details   json.RawMessage `gorm:"type:jsonb"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
