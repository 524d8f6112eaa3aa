package audit

import (
	"context"
	"encoding/json"

	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recorder appends immutable audit rows for state-changing operations.
type Recorder interface {
	WithTx(tx *gorm.DB) Recorder
	Record(ctx context.Context, entry Entry) error
}

// Entry describes one audited action.
type Entry struct {
	ActorID  *uuid.UUID
	Action   string
	Entity   string
	EntityID uuid.UUID
	Details  map[string]any
}

type recorderImpl struct {
	db *gorm.DB
}

// NewRecorder binds the recorder to the provided database.
func NewRecorder(db *gorm.DB) Recorder {
	return &recorderImpl{db: db}
}

func (r *recorderImpl) WithTx(tx *gorm.DB) Recorder {
	if tx == nil {
		return r
	}
	return &recorderImpl{db: tx}
}

func (r *recorderImpl) Record(ctx context.Context, entry Entry) error {
	var details json.RawMessage
	if entry.Details != nil {
		encoded, err := json.Marshal(entry.Details)
		if err != nil {
			return err
		}
		details = encoded
	}
	row := &models.AuditLog{
		ActorID:  entry.ActorID,
		Action:   entry.Action,
		Entity:   entry.Entity,
		EntityID: entry.EntityID,
		Details:  details,
	}
	return r.db.WithContext(ctx).Create(row).Error
}
