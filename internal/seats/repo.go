package seats

import (
	"context"
	"time"

	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes seat persistence operations. Occupancy writes are
// conditional updates so two concurrent claims of the same seat cannot both
// succeed.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreatePool(ctx context.Context, locationID uuid.UUID, fromNumber, toNumber int) error
	GetByLocationAndNumber(ctx context.Context, locationID uuid.UUID, seatNumber int) (*models.Seat, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Seat, error)
	ListByLocation(ctx context.Context, locationID uuid.UUID) ([]models.Seat, error)
	ListVacant(ctx context.Context) ([]models.Seat, error)
	CountByLocation(ctx context.Context, locationID uuid.UUID) (total int64, occupied int64, err error)
	ClaimVacant(ctx context.Context, seatID, memberID, subscriptionID uuid.UUID) (bool, error)
	Vacate(ctx context.Context, seatID uuid.UUID) error
	VacateBySubscriptions(ctx context.Context, subscriptionIDs []uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a seats repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// CreatePool inserts seats numbered [fromNumber, toNumber] for the location.
func (r *repositoryImpl) CreatePool(ctx context.Context, locationID uuid.UUID, fromNumber, toNumber int) error {
	if toNumber < fromNumber {
		return nil
	}
	seats := make([]models.Seat, 0, toNumber-fromNumber+1)
	for number := fromNumber; number <= toNumber; number++ {
		seats = append(seats, models.Seat{
			LocationID: locationID,
			SeatNumber: number,
			Status:     enums.SeatStatusVacant,
		})
	}
	return r.db.WithContext(ctx).Create(&seats).Error
}

func (r *repositoryImpl) GetByLocationAndNumber(ctx context.Context, locationID uuid.UUID, seatNumber int) (*models.Seat, error) {
	var seat models.Seat
	err := r.db.WithContext(ctx).
		First(&seat, "location_id = ? AND seat_number = ?", locationID, seatNumber).Error
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Seat, error) {
	var seat models.Seat
	if err := r.db.WithContext(ctx).First(&seat, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *repositoryImpl) ListByLocation(ctx context.Context, locationID uuid.UUID) ([]models.Seat, error) {
	var seats []models.Seat
	err := r.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Order("seat_number").
		Find(&seats).Error
	if err != nil {
		return nil, err
	}
	return seats, nil
}

func (r *repositoryImpl) ListVacant(ctx context.Context) ([]models.Seat, error) {
	var seats []models.Seat
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.SeatStatusVacant).
		Order("location_id, seat_number").
		Find(&seats).Error
	if err != nil {
		return nil, err
	}
	return seats, nil
}

func (r *repositoryImpl) CountByLocation(ctx context.Context, locationID uuid.UUID) (int64, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Seat{}).
		Where("location_id = ?", locationID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}

	var occupied int64
	err = r.db.WithContext(ctx).
		Model(&models.Seat{}).
		Where("location_id = ? AND status = ?", locationID, enums.SeatStatusOccupied).
		Count(&occupied).Error
	if err != nil {
		return 0, 0, err
	}
	return total, occupied, nil
}

// ClaimVacant flips the seat to occupied only if it is still vacant. Returns
// false when another writer got there first.
func (r *repositoryImpl) ClaimVacant(ctx context.Context, seatID, memberID, subscriptionID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Seat{}).
		Where("id = ? AND status = ?", seatID, enums.SeatStatusVacant).
		Updates(map[string]any{
			"status":          enums.SeatStatusOccupied,
			"member_id":       memberID,
			"subscription_id": subscriptionID,
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) Vacate(ctx context.Context, seatID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Seat{}).
		Where("id = ?", seatID).
		Updates(map[string]any{
			"status":          enums.SeatStatusVacant,
			"member_id":       nil,
			"subscription_id": nil,
			"updated_at":      time.Now().UTC(),
		}).Error
}

// VacateBySubscriptions frees every seat still pointing at one of the given
// subscriptions. Used by the expiry sweep.
func (r *repositoryImpl) VacateBySubscriptions(ctx context.Context, subscriptionIDs []uuid.UUID) (int64, error) {
	if len(subscriptionIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Seat{}).
		Where("subscription_id IN ? AND status = ?", subscriptionIDs, enums.SeatStatusOccupied).
		Updates(map[string]any{
			"status":          enums.SeatStatusVacant,
			"member_id":       nil,
			"subscription_id": nil,
			"updated_at":      time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}
