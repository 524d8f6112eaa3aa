package notifications

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
	pkgerrors "github.com/evolvespaces/evolve-backend/pkg/errors"
	"github.com/evolvespaces/evolve-backend/pkg/logger"
	"github.com/google/uuid"
)

// Service defines notification operations exposed to the API and cron
// layers. Generation itself lives on Generator; the service covers the
// read/mark/ad-hoc surface.
type Service interface {
	List(ctx context.Context, query ListQuery) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Create(ctx context.Context, params CreateParams) (*models.Notification, error)
	Generate(ctx context.Context) (GenerateResult, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CreateParams carries an ad-hoc notification, e.g. a staff announcement.
// Exactly one of UserID and TargetRole must be set.
type CreateParams struct {
	UserID     *uuid.UUID
	TargetRole *enums.UserRole
	Type       enums.NotificationType
	Title      string
	Message    string
	Data       map[string]any
	Priority   enums.NotificationPriority
	Category   enums.NotificationCategory
}

// ServiceParams configure the notification service.
type ServiceParams struct {
	Repo      Repository
	Generator *Generator
	Logger    *logger.Logger
	Now       func() time.Time
}

type service struct {
	repo      Repository
	generator *Generator
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires notification dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if params.Generator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification generator required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:      params.Repo,
		generator: params.Generator,
		logg:      params.Logger,
		now:       now,
	}, nil
}

func (s *service) List(ctx context.Context, query ListQuery) ([]models.Notification, error) {
	if query.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return rows, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil || notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and notification id required")
	}
	mark, err := s.repo.MarkRead(ctx, userID, notificationID, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !mark.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	updated, err := s.repo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all notifications read")
	}
	return updated, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Notification, error) {
	if (params.UserID == nil) == (params.TargetRole == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of user id and target role required")
	}
	if params.TargetRole != nil && !params.TargetRole.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target role")
	}
	if !params.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type")
	}
	if !params.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification category")
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	priority := params.Priority
	if priority == "" {
		priority = enums.NotificationPriorityMedium
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification priority")
	}

	var data json.RawMessage
	if len(params.Data) > 0 {
		encoded, err := json.Marshal(params.Data)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode notification data")
		}
		data = encoded
	}

	notification := &models.Notification{
		UserID:     params.UserID,
		Type:       params.Type,
		Title:      strings.TrimSpace(params.Title),
		Message:    strings.TrimSpace(params.Message),
		Data:       data,
		Priority:   priority,
		Category:   params.Category,
		IsForRole:  params.TargetRole != nil,
		TargetRole: params.TargetRole,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return notification, nil
}

func (s *service) Generate(ctx context.Context) (GenerateResult, error) {
	return s.generator.GenerateAll(ctx)
}

func (s *service) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	deleted, err := s.repo.DeleteOlderThan(ctx, nil, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge notifications")
	}
	logCtx := s.logg.WithField(ctx, "deleted", deleted)
	s.logg.Info(logCtx, "purged old notifications")
	return deleted, nil
}
