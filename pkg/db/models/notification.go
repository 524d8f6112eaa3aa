package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evolvespaces/evolve-backend/pkg/enums"
)

// Notification stores in-app notification payloads. A row targets either a
// single user (UserID set) or every holder of a role (IsForRole + TargetRole).
// CorrelationKey identifies the fact the row was generated for and backs the
// generator's deduplication query; Data carries free-form correlation ids for
// the UI. Rows are only ever mutated to stamp ReadAt.
type Notification struct {
	ID             uuid.UUID                  `gorm:"type:uuid;primaryKey"`
	UserID         *uuid.UUID                 `gorm:"type:uuid;index:idx_notifications_dedup,priority:1"`
	Type           enums.NotificationType     `gorm:"type:notification_type;not null;index:idx_notifications_dedup,priority:2"`
	Title          string                     `gorm:"not null"`
	Message        string                     `gorm:"not null"`
	Data           json.RawMessage            `gorm:"type:jsonb"`
	Priority       enums.NotificationPriority `gorm:"type:notification_priority;not null;default:'medium'"`
	Category       enums.NotificationCategory `gorm:"type:notification_category;not null"`
	IsForRole      bool                       `gorm:"not null;default:false"`
	TargetRole     *enums.UserRole            `gorm:"type:user_role"`
	CorrelationKey string                     `gorm:"not null;default:'';index:idx_notifications_dedup,priority:3"`
	ReadAt         *time.Time
	CreatedAt      time.Time `gorm:"autoCreateTime;index:idx_notifications_dedup,priority:4"`
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// Read reports whether the notification has been read.
func (n *Notification) Read() bool {
	return n.ReadAt != nil
}
