package expenses

import (
	"context"
	"time"

	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	"github.com/evolvespaces/evolve-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository exposes expense persistence operations. Expense rows are
// immutable once created.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, expense *models.Expense) error
	List(ctx context.Context, params ListQuery) ([]models.Expense, error)
	SumByLocation(ctx context.Context, locationID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// ListQuery filters expense listings.
type ListQuery struct {
	LocationID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Pagination pagination.Params
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an expenses repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *repositoryImpl) List(ctx context.Context, params ListQuery) ([]models.Expense, error) {
	page := pagination.Normalize(params.Pagination)
	query := r.db.WithContext(ctx)
	if params.LocationID != nil && *params.LocationID != uuid.Nil {
		query = query.Where("location_id = ?", *params.LocationID)
	}
	if params.From != nil {
		query = query.Where("incurred_on >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("incurred_on < ?", *params.To)
	}

	var rows []models.Expense
	err := query.
		Order("incurred_on DESC").
		Limit(page.Limit).
		Offset(page.Skip).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) SumByLocation(ctx context.Context, locationID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("SUM(amount)").
		Where("location_id = ? AND incurred_on >= ? AND incurred_on < ?", locationID, from, to).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Expense{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
