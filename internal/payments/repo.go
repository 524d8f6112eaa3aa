package payments

import (
	"context"

	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes payment persistence operations. Payment rows are
// immutable once created.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) error
	LastCreated(ctx context.Context) (*models.Payment, error)
	ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]models.Payment, error)
	CountAll(ctx context.Context) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a payments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// LastCreated returns the single most recently created payment across the
// whole system, or nil when no payments exist.
func (r *repositoryImpl) LastCreated(ctx context.Context) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		First(&payment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repositoryImpl) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).Count(&count).Error
	return count, err
}
