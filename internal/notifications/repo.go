package notifications

import (
	"context"
	"time"

	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
	"github.com/evolvespaces/evolve-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	Exists(ctx context.Context, query ExistsQuery) (bool, error)
	List(ctx context.Context, params ListQuery) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (markResult, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// ExistsQuery is the deduplication probe: has an equivalent notification
// already been created, optionally within a rolling window.
type ExistsQuery struct {
	UserID         *uuid.UUID
	TargetRole     *enums.UserRole
	Type           enums.NotificationType
	CorrelationKey string
	Since          *time.Time
}

// ListQuery scopes a notification listing to one caller.
type ListQuery struct {
	UserID     uuid.UUID
	Role       enums.UserRole
	UnreadOnly bool
	Category   *enums.NotificationCategory
	Pagination pagination.Params
}

type markResult struct {
	Updated bool
	Found   bool
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repositoryImpl) Exists(ctx context.Context, query ExistsQuery) (bool, error) {
	probe := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("type = ? AND correlation_key = ?", query.Type, query.CorrelationKey)
	if query.UserID != nil {
		probe = probe.Where("user_id = ?", *query.UserID)
	} else {
		probe = probe.Where("user_id IS NULL")
	}
	if query.TargetRole != nil {
		probe = probe.Where("is_for_role = ? AND target_role = ?", true, *query.TargetRole)
	}
	if query.Since != nil {
		probe = probe.Where("created_at >= ?", *query.Since)
	}

	var count int64
	if err := probe.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repositoryImpl) List(ctx context.Context, params ListQuery) ([]models.Notification, error) {
	page := pagination.Normalize(params.Pagination)
	query := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? OR (is_for_role = ? AND target_role = ?)", params.UserID, true, params.Role)
	if params.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if params.Category != nil {
		query = query.Where("category = ?", *params.Category)
	}

	var notifications []models.Notification
	err := query.
		Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Skip).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *repositoryImpl) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (markResult, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		UpdateColumn("read_at", now)
	if result.Error != nil {
		return markResult{}, result.Error
	}

	mark := markResult{Updated: result.RowsAffected > 0}
	if result.RowsAffected > 0 {
		mark.Found = true
		return mark, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Count(&count).Error; err != nil {
		return markResult{}, err
	}
	mark.Found = count > 0
	return mark, nil
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		UpdateColumn("read_at", now)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repositoryImpl) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	result := conn.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
