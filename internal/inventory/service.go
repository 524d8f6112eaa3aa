package inventory

import (
	"context"
	"strings"

	"github.com/evolvespaces/evolve-backend/pkg/db"
	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
	pkgerrors "github.com/evolvespaces/evolve-backend/pkg/errors"
	"github.com/google/uuid"
)

// Service defines inventory management operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.InventoryItem, error)
	Get(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	List(ctx context.Context, query ListQuery) ([]models.InventoryItem, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*models.InventoryItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateParams carries a new inventory item.
type CreateParams struct {
	LocationID uuid.UUID
	Name       string
	Quantity   int
	Notes      string
}

// UpdateParams carries mutable item fields; nil pointers are left untouched.
// Status changes go through the transition table.
type UpdateParams struct {
	Name     *string
	Quantity *int
	Status   *enums.InventoryStatus
	Notes    *string
}

type service struct {
	repo Repository
}

// NewService wires inventory dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.InventoryItem, error) {
	if params.LocationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name required")
	}
	if params.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	item := &models.InventoryItem{
		LocationID: params.LocationID,
		Name:       strings.TrimSpace(params.Name),
		Quantity:   params.Quantity,
		Status:     enums.InventoryStatusWorking,
		Notes:      strings.TrimSpace(params.Notes),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory item")
	}
	return item, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get inventory item")
	}
	return item, nil
}

func (s *service) List(ctx context.Context, query ListQuery) ([]models.InventoryItem, error) {
	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory")
	}
	return rows, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*models.InventoryItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		if strings.TrimSpace(*params.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name cannot be empty")
		}
		item.Name = strings.TrimSpace(*params.Name)
	}
	if params.Quantity != nil {
		if *params.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		item.Quantity = *params.Quantity
	}
	if params.Notes != nil {
		item.Notes = strings.TrimSpace(*params.Notes)
	}
	if params.Status != nil && *params.Status != item.Status {
		if !item.Status.CanTransitionTo(*params.Status) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "inventory status transition disallowed").
				WithDetails(map[string]string{"from": item.Status.String(), "to": params.Status.String()})
		}
		item.Status = *params.Status
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inventory item")
	}
	return item, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete inventory item")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
	}
	return nil
}
