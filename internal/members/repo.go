package members

import (
	"context"

	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	"github.com/evolvespaces/evolve-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes member persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	GetByCode(ctx context.Context, code string) (*models.Member, error)
	List(ctx context.Context, params pagination.Params) ([]models.Member, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, member *models.Member) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a members repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repositoryImpl) GetByCode(ctx context.Context, code string) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, "member_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repositoryImpl) List(ctx context.Context, params pagination.Params) ([]models.Member, error) {
	params = pagination.Normalize(params)
	var members []models.Member
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Skip).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Member{}).Count(&count).Error
	return count, err
}

func (r *repositoryImpl) Update(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Member{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
