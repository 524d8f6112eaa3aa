package waitinglist

import (
	"context"

	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes waiting list persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.WaitingListEntry) error
	List(ctx context.Context) ([]models.WaitingListEntry, error)
	ListByLocation(ctx context.Context, locationID uuid.UUID) ([]models.WaitingListEntry, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a waiting list repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, entry *models.WaitingListEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repositoryImpl) List(ctx context.Context) ([]models.WaitingListEntry, error) {
	var entries []models.WaitingListEntry
	err := r.db.WithContext(ctx).
		Preload("Member").
		Order("requested_at").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repositoryImpl) ListByLocation(ctx context.Context, locationID uuid.UUID) ([]models.WaitingListEntry, error) {
	var entries []models.WaitingListEntry
	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("location_id = ?", locationID).
		Order("requested_at").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.WaitingListEntry{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
