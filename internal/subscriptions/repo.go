package subscriptions

import (
	"context"
	"time"

	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
	"github.com/evolvespaces/evolve-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes subscription persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, subscription *models.Subscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
	List(ctx context.Context, params ListQuery) ([]models.Subscription, error)
	ListActiveExpired(ctx context.Context, now time.Time) ([]models.Subscription, error)
	ListActiveExpiringBetween(ctx context.Context, from, to time.Time) ([]models.Subscription, error)
	ListExpired(ctx context.Context) ([]models.Subscription, error)
	ListExpiredWithoutPayments(ctx context.Context) ([]models.Subscription, error)
	MarkExpired(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// ListQuery filters subscription listings.
type ListQuery struct {
	LocationID *uuid.UUID
	Status     *enums.SubscriptionStatus
	Pagination pagination.Params
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a subscriptions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, subscription *models.Subscription) error {
	return r.db.WithContext(ctx).Create(subscription).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	var subscription models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Seat").
		Preload("Payments").
		First(&subscription, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

func (r *repositoryImpl) List(ctx context.Context, params ListQuery) ([]models.Subscription, error) {
	page := pagination.Normalize(params.Pagination)
	query := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Seat").
		Preload("Payments")
	if params.LocationID != nil && *params.LocationID != uuid.Nil {
		query = query.Where("location_id = ?", *params.LocationID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var rows []models.Subscription
	err := query.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Skip).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) ListActiveExpired(ctx context.Context, now time.Time) ([]models.Subscription, error) {
	var rows []models.Subscription
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date < ?", enums.SubscriptionStatusActive, now).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) ListActiveExpiringBetween(ctx context.Context, from, to time.Time) ([]models.Subscription, error) {
	var rows []models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("status = ? AND end_date >= ? AND end_date < ?", enums.SubscriptionStatusActive, from, to).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) ListExpired(ctx context.Context) ([]models.Subscription, error) {
	var rows []models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("status = ?", enums.SubscriptionStatusExpired).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListExpiredWithoutPayments returns expired subscriptions that never
// received a payment. Feed for the overdue-payment notifications.
func (r *repositoryImpl) ListExpiredWithoutPayments(ctx context.Context) ([]models.Subscription, error) {
	var rows []models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("status = ?", enums.SubscriptionStatusExpired).
		Where("NOT EXISTS (SELECT 1 FROM payments WHERE payments.subscription_id = subscriptions.id)").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkExpired flips the listed subscriptions to expired. The status filter
// keeps the write idempotent.
func (r *repositoryImpl) MarkExpired(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id IN ? AND status = ?", ids, enums.SubscriptionStatusActive).
		Updates(map[string]any{
			"status":     enums.SubscriptionStatusExpired,
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}
