package members

import (
	"context"
	"fmt"
	"strings"

	"github.com/evolvespaces/evolve-backend/pkg/db"
	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	pkgerrors "github.com/evolvespaces/evolve-backend/pkg/errors"
	"github.com/evolvespaces/evolve-backend/pkg/pagination"
	"github.com/google/uuid"
)

// Service defines member management operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Member, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Member, error)
	List(ctx context.Context, params pagination.Params) ([]models.Member, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*models.Member, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateParams carries the fields for a new member record. MemberCode is
// generated when left empty.
type CreateParams struct {
	MemberCode string
	Name       string
	Email      string
	Phone      string
	Address    string
	ExamPrep   string
	UserID     *uuid.UUID
}

// UpdateParams carries mutable member fields; nil pointers are left untouched.
type UpdateParams struct {
	Name     *string
	Email    *string
	Phone    *string
	Address  *string
	ExamPrep *string
}

type service struct {
	repo Repository
}

// NewService wires member dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "members repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Member, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member name required")
	}

	code := strings.TrimSpace(params.MemberCode)
	if code == "" {
		count, err := s.repo.Count(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count members")
		}
		code = fmt.Sprintf("EVM%04d", count+1)
	}

	member := &models.Member{
		MemberCode: code,
		Name:       strings.TrimSpace(params.Name),
		Email:      strings.TrimSpace(params.Email),
		Phone:      strings.TrimSpace(params.Phone),
		Address:    strings.TrimSpace(params.Address),
		ExamPrep:   strings.TrimSpace(params.ExamPrep),
		UserID:     params.UserID,
	}
	if err := s.repo.Create(ctx, member); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "member code already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create member")
	}
	return member, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get member")
	}
	return member, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]models.Member, error) {
	members, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	return members, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*models.Member, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		if strings.TrimSpace(*params.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "member name cannot be empty")
		}
		member.Name = strings.TrimSpace(*params.Name)
	}
	if params.Email != nil {
		member.Email = strings.TrimSpace(*params.Email)
	}
	if params.Phone != nil {
		member.Phone = strings.TrimSpace(*params.Phone)
	}
	if params.Address != nil {
		member.Address = strings.TrimSpace(*params.Address)
	}
	if params.ExamPrep != nil {
		member.ExamPrep = strings.TrimSpace(*params.ExamPrep)
	}

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update member")
	}
	return member, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete member")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
	}
	return nil
}
