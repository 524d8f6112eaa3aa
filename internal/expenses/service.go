package expenses

import (
	"context"
	"strings"
	"time"

	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	pkgerrors "github.com/evolvespaces/evolve-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service defines expense tracking operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Expense, error)
	List(ctx context.Context, query ListQuery) ([]models.Expense, error)
	MonthlyTotal(ctx context.Context, locationID uuid.UUID, month time.Time) (decimal.Decimal, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateParams carries a new expense record.
type CreateParams struct {
	LocationID  uuid.UUID
	Category    string
	Description string
	Amount      decimal.Decimal
	IncurredOn  time.Time
	CreatedBy   uuid.UUID
}

type service struct {
	repo Repository
}

// NewService wires expense dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "expenses repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Expense, error) {
	if params.LocationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	if strings.TrimSpace(params.Category) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category required")
	}
	if params.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}
	if params.IncurredOn.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "incurred date required")
	}
	if params.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator id required")
	}

	expense := &models.Expense{
		LocationID:  params.LocationID,
		Category:    strings.TrimSpace(params.Category),
		Description: strings.TrimSpace(params.Description),
		Amount:      params.Amount,
		IncurredOn:  params.IncurredOn,
		CreatedBy:   params.CreatedBy,
	}
	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create expense")
	}
	return expense, nil
}

func (s *service) List(ctx context.Context, query ListQuery) ([]models.Expense, error) {
	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}
	return rows, nil
}

func (s *service) MonthlyTotal(ctx context.Context, locationID uuid.UUID, month time.Time) (decimal.Decimal, error) {
	if locationID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	total, err := s.repo.SumByLocation(ctx, locationID, from, to)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum expenses")
	}
	return total, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "expense id required")
	}
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete expense")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
	}
	return nil
}
