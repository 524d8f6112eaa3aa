package inventory

import (
	"context"

	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
	"github.com/evolvespaces/evolve-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes inventory persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.InventoryItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	List(ctx context.Context, params ListQuery) ([]models.InventoryItem, error)
	ListBroken(ctx context.Context) ([]models.InventoryItem, error)
	ListLowStock(ctx context.Context, threshold int) ([]models.InventoryItem, error)
	Update(ctx context.Context, item *models.InventoryItem) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// ListQuery filters inventory listings.
type ListQuery struct {
	LocationID *uuid.UUID
	Status     *enums.InventoryStatus
	Pagination pagination.Params
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repositoryImpl) List(ctx context.Context, params ListQuery) ([]models.InventoryItem, error) {
	page := pagination.Normalize(params.Pagination)
	query := r.db.WithContext(ctx)
	if params.LocationID != nil && *params.LocationID != uuid.Nil {
		query = query.Where("location_id = ?", *params.LocationID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var rows []models.InventoryItem
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

func (r *repositoryImpl) ListBroken(ctx context.Context) ([]models.InventoryItem, error) {
	var rows []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.InventoryStatusBroken).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListLowStock returns non-retired items at or below the threshold quantity.
func (r *repositoryImpl) ListLowStock(ctx context.Context, threshold int) ([]models.InventoryItem, error) {
	var rows []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("quantity <= ? AND status <> ?", threshold, enums.InventoryStatusRetired).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) Update(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.InventoryItem{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
