package locations

import (
	"context"
	"strings"

	"github.com/evolvespaces/evolve-backend/internal/seats"
	"github.com/evolvespaces/evolve-backend/pkg/db"
	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	pkgerrors "github.com/evolvespaces/evolve-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service defines location management operations. Creating or growing a
// location also maintains its seat pool.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Location, error)
	Get(ctx context.Context, id uuid.UUID) (*Occupancy, error)
	List(ctx context.Context) ([]Occupancy, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*models.Location, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateParams carries the fields for a new location.
type CreateParams struct {
	Name       string
	Address    string
	TotalSeats int
}

// UpdateParams carries mutable location fields. TotalSeats may only grow;
// shrinking a seat pool with live subscriptions is not supported.
type UpdateParams struct {
	Name       *string
	Address    *string
	TotalSeats *int
}

// Occupancy is a location joined with its live seat counts.
type Occupancy struct {
	Location models.Location `json:"location"`
	Total    int64           `json:"total_seats"`
	Occupied int64           `json:"occupied_seats"`
	Vacant   int64           `json:"vacant_seats"`
}

type service struct {
	repo  Repository
	seats seats.Repository
	tx    db.TxRunner
}

// NewService wires location dependencies.
func NewService(repo Repository, seatRepo seats.Repository, tx db.TxRunner) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "locations repository required")
	}
	if seatRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "seats repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tx runner required")
	}
	return &service{repo: repo, seats: seatRepo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Location, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location name required")
	}
	if params.TotalSeats < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total seats cannot be negative")
	}

	location := &models.Location{
		Name:       strings.TrimSpace(params.Name),
		Address:    strings.TrimSpace(params.Address),
		TotalSeats: params.TotalSeats,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, location); err != nil {
			return err
		}
		if params.TotalSeats > 0 {
			return s.seats.WithTx(tx).CreatePool(ctx, location.ID, 1, params.TotalSeats)
		}
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "location name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create location")
	}
	return location, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Occupancy, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	location, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get location")
	}
	occupancy, err := s.occupancyFor(ctx, *location)
	if err != nil {
		return nil, err
	}
	return &occupancy, nil
}

func (s *service) List(ctx context.Context) ([]Occupancy, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list locations")
	}
	result := make([]Occupancy, 0, len(rows))
	for _, location := range rows {
		occupancy, err := s.occupancyFor(ctx, location)
		if err != nil {
			return nil, err
		}
		result = append(result, occupancy)
	}
	return result, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*models.Location, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	location, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get location")
	}

	if params.Name != nil {
		if strings.TrimSpace(*params.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "location name cannot be empty")
		}
		location.Name = strings.TrimSpace(*params.Name)
	}
	if params.Address != nil {
		location.Address = strings.TrimSpace(*params.Address)
	}

	grow := 0
	if params.TotalSeats != nil {
		if *params.TotalSeats < location.TotalSeats {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "seat pool cannot shrink")
		}
		grow = *params.TotalSeats - location.TotalSeats
		location.TotalSeats = *params.TotalSeats
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, location); err != nil {
			return err
		}
		if grow > 0 {
			from := location.TotalSeats - grow + 1
			return s.seats.WithTx(tx).CreatePool(ctx, location.ID, from, location.TotalSeats)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update location")
	}
	return location, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	_, occupied, err := s.seats.CountByLocation(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count seats")
	}
	if occupied > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "location still has occupied seats")
	}
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete location")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
	}
	return nil
}

func (s *service) occupancyFor(ctx context.Context, location models.Location) (Occupancy, error) {
	total, occupied, err := s.seats.CountByLocation(ctx, location.ID)
	if err != nil {
		return Occupancy{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count seats")
	}
	return Occupancy{
		Location: location,
		Total:    total,
		Occupied: occupied,
		Vacant:   total - occupied,
	}, nil
}
