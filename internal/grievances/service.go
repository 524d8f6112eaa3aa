package grievances

import (
	"context"
	"strings"
	"time"

	"github.com/evolvespaces/evolve-backend/pkg/db"
	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
	pkgerrors "github.com/evolvespaces/evolve-backend/pkg/errors"
	"github.com/google/uuid"
)

// Service defines grievance handling operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Grievance, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Grievance, error)
	List(ctx context.Context, query ListQuery) ([]models.Grievance, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next enums.GrievanceStatus) (*models.Grievance, error)
}

// CreateParams carries a new grievance report.
type CreateParams struct {
	MemberID    uuid.UUID
	LocationID  *uuid.UUID
	Subject     string
	Description string
	Priority    enums.GrievancePriority
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires grievance dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "grievances repository required")
	}
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Grievance, error) {
	if params.MemberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	if strings.TrimSpace(params.Subject) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject required")
	}
	priority := params.Priority
	if priority == "" {
		priority = enums.GrievancePriorityMedium
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid grievance priority")
	}

	grievance := &models.Grievance{
		MemberID:    params.MemberID,
		LocationID:  params.LocationID,
		Subject:     strings.TrimSpace(params.Subject),
		Description: strings.TrimSpace(params.Description),
		Status:      enums.GrievanceStatusPending,
		Priority:    priority,
	}
	if err := s.repo.Create(ctx, grievance); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create grievance")
	}
	return grievance, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Grievance, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "grievance id required")
	}
	grievance, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "grievance not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get grievance")
	}
	return grievance, nil
}

func (s *service) List(ctx context.Context, query ListQuery) ([]models.Grievance, error) {
	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list grievances")
	}
	return rows, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, next enums.GrievanceStatus) (*models.Grievance, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid grievance status")
	}
	grievance, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !grievance.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "grievance status transition disallowed").
			WithDetails(map[string]string{"from": grievance.Status.String(), "to": next.String()})
	}

	grievance.Status = next
	if next == enums.GrievanceStatusResolved || next == enums.GrievanceStatusRejected {
		resolvedAt := s.now()
		grievance.ResolvedAt = &resolvedAt
	}
	if err := s.repo.Update(ctx, grievance); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update grievance")
	}
	return grievance, nil
}
