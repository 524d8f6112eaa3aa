package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/evolvespaces/evolve-backend/pkg/db/types"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
)

// User is a portal login account. Members optionally link to one; admins and
// managers always have one. Managers are scoped to LocationIDs.
type User struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Email        string            `gorm:"not null;uniqueIndex"`
	PasswordHash string            `gorm:"not null"`
	Name         string            `gorm:"not null"`
	Role         enums.UserRole    `gorm:"type:user_role;not null;default:'member'"`
	LocationIDs  dbtypes.UUIDArray `gorm:"type:uuid[]"`
	IsActive     bool              `gorm:"not null;default:true"`
	CreatedAt    time.Time         `gorm:"autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
