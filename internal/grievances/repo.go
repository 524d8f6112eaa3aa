package grievances

import (
	"context"
	"time"

	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
	"github.com/evolvespaces/evolve-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes grievance persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, grievance *models.Grievance) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Grievance, error)
	List(ctx context.Context, params ListQuery) ([]models.Grievance, error)
	ListPendingCreatedSince(ctx context.Context, since time.Time) ([]models.Grievance, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.Grievance, error)
	Update(ctx context.Context, grievance *models.Grievance) error
}

// ListQuery filters grievance listings.
type ListQuery struct {
	MemberID   *uuid.UUID
	Status     *enums.GrievanceStatus
	Pagination pagination.Params
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a grievances repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, grievance *models.Grievance) error {
	return r.db.WithContext(ctx).Create(grievance).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Grievance, error) {
	var grievance models.Grievance
	if err := r.db.WithContext(ctx).Preload("Member").First(&grievance, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &grievance, nil
}

func (r *repositoryImpl) List(ctx context.Context, params ListQuery) ([]models.Grievance, error) {
	page := pagination.Normalize(params.Pagination)
	query := r.db.WithContext(ctx).Preload("Member")
	if params.MemberID != nil && *params.MemberID != uuid.Nil {
		query = query.Where("member_id = ?", *params.MemberID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var rows []models.Grievance
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

func (r *repositoryImpl) ListPendingCreatedSince(ctx context.Context, since time.Time) ([]models.Grievance, error) {
	var rows []models.Grievance
	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("status = ? AND created_at >= ?", enums.GrievanceStatusPending, since).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.Grievance, error) {
	var rows []models.Grievance
	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("status = ? AND created_at < ?", enums.GrievanceStatusPending, cutoff).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) Update(ctx context.Context, grievance *models.Grievance) error {
	return r.db.WithContext(ctx).Save(grievance).Error
}
