package waitinglist

import (
	"context"

	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	pkgerrors "github.com/evolvespaces/evolve-backend/pkg/errors"
	"github.com/google/uuid"
)

// Service defines waiting list read/remove operations. Entries are created by
// the seat assignment workflow, never directly through this service.
type Service interface {
	List(ctx context.Context, locationID *uuid.UUID) ([]models.WaitingListEntry, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService wires waiting list dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "waiting list repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, locationID *uuid.UUID) ([]models.WaitingListEntry, error) {
	var (
		entries []models.WaitingListEntry
		err     error
	)
	if locationID != nil && *locationID != uuid.Nil {
		entries, err = s.repo.ListByLocation(ctx, *locationID)
	} else {
		entries, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list waiting list")
	}
	return entries, nil
}

func (s *service) Remove(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "waiting list entry id required")
	}
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove waiting list entry")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "waiting list entry not found")
	}
	return nil
}
