package subscriptions

import (
	"context"
	"time"

	"github.com/evolvespaces/evolve-backend/internal/audit"
	"github.com/evolvespaces/evolve-backend/internal/members"
	"github.com/evolvespaces/evolve-backend/internal/payments"
	"github.com/evolvespaces/evolve-backend/internal/seats"
	"github.com/evolvespaces/evolve-backend/internal/waitinglist"
	"github.com/evolvespaces/evolve-backend/pkg/db"
	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
	pkgerrors "github.com/evolvespaces/evolve-backend/pkg/errors"
	"github.com/evolvespaces/evolve-backend/pkg/logger"
	"github.com/evolvespaces/evolve-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WaitingListMessage is returned verbatim when an assignment is queued.
const WaitingListMessage = "Seat occupied, added to waiting list"

// Service owns the subscription lifecycle: expiry sweeping, seat
// assignment, and listing. Every entry point that depends on current seat
// truth sweeps first; other components only read subscription status.
type Service interface {
	SweepExpired(ctx context.Context, now time.Time) (SweepResult, error)
	Assign(ctx context.Context, params AssignParams) (*AssignResult, error)
	List(ctx context.Context, query ListQuery) ([]models.Subscription, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
}

// SweepResult reports what one sweep pass changed.
type SweepResult struct {
	Expired    int64 `json:"expired"`
	SeatsFreed int64 `json:"seats_freed"`
}

// AssignParams carries one seat assignment request.
type AssignParams struct {
	MemberID      uuid.UUID
	LocationID    uuid.UUID
	SeatNumber    int
	StartDate     time.Time
	Duration      string
	Amount        decimal.Decimal
	PaymentMethod enums.PaymentMethod
	UPICode       *string
	PaidAt        time.Time
	ActorID       *uuid.UUID
}

// AssignResult is either a created subscription or a queued waiting list
// entry, never both.
type AssignResult struct {
	Queued       bool
	Message      string
	Subscription *models.Subscription
	WaitingEntry *models.WaitingListEntry
}

// ServiceParams configure the subscriptions service.
type ServiceParams struct {
	Repo        Repository
	Seats       seats.Repository
	Payments    payments.Repository
	WaitingList waitinglist.Repository
	Members     members.Repository
	Audit       audit.Recorder
	Tx          db.TxRunner
	Logger      *logger.Logger
	Metrics     *metrics.PortalMetrics
	Now         func() time.Time
}

type service struct {
	repo        Repository
	seats       seats.Repository
	payments    payments.Repository
	waitingList waitinglist.Repository
	members     members.Repository
	audit       audit.Recorder
	tx          db.TxRunner
	logg        *logger.Logger
	metrics     *metrics.PortalMetrics
	now         func() time.Time
}

// NewService wires subscription dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscriptions repository required")
	}
	if params.Seats == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "seats repository required")
	}
	if params.Payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payments repository required")
	}
	if params.WaitingList == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "waiting list repository required")
	}
	if params.Members == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "members repository required")
	}
	if params.Audit == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "audit recorder required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tx runner required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:        params.Repo,
		seats:       params.Seats,
		payments:    params.Payments,
		waitingList: params.WaitingList,
		members:     params.Members,
		audit:       params.Audit,
		tx:          params.Tx,
		logg:        params.Logger,
		metrics:     params.Metrics,
		now:         now,
	}, nil
}

// SweepExpired marks every active subscription past its end date expired and
// frees the seats still pointing at them. Re-running on an already swept
// dataset changes nothing because both writes filter on current state.
func (s *service) SweepExpired(ctx context.Context, now time.Time) (SweepResult, error) {
	var result SweepResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		stale, err := s.repo.WithTx(tx).ListActiveExpired(ctx, now)
		if err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, 0, len(stale))
		for _, subscription := range stale {
			ids = append(ids, subscription.ID)
		}
		expired, err := s.repo.WithTx(tx).MarkExpired(ctx, ids)
		if err != nil {
			return err
		}
		freed, err := s.seats.WithTx(tx).VacateBySubscriptions(ctx, ids)
		if err != nil {
			return err
		}
		result = SweepResult{Expired: expired, SeatsFreed: freed}
		return nil
	})
	if err != nil {
		return SweepResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sweep expired subscriptions")
	}

	if result.Expired > 0 {
		s.metrics.AddSubscriptionsExpired(int(result.Expired))
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"expired":     result.Expired,
			"seats_freed": result.SeatsFreed,
		})
		s.logg.Info(logCtx, "expiry sweep flipped subscriptions")
	}
	return result, nil
}

func (s *service) Assign(ctx context.Context, params AssignParams) (*AssignResult, error) {
	if err := validateAssign(params); err != nil {
		return nil, err
	}
	now := s.now()

	if _, err := s.SweepExpired(ctx, now); err != nil {
		return nil, err
	}

	member, err := s.members.GetByID(ctx, params.MemberID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}

	seat, err := s.seats.GetByLocationAndNumber(ctx, params.LocationID, params.SeatNumber)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seat not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seat")
	}

	if seat.Status == enums.SeatStatusOccupied {
		takeover, err := s.resolveOccupied(ctx, seat, now)
		if err != nil {
			return nil, err
		}
		if !takeover {
			return s.queueWaitingList(ctx, member, params)
		}
	}

	return s.createSubscription(ctx, member, seat, params, now)
}

// resolveOccupied decides whether an occupied seat can be taken over. True
// means the stale occupant was expired and the seat vacated.
func (s *service) resolveOccupied(ctx context.Context, seat *models.Seat, now time.Time) (bool, error) {
	if seat.SubscriptionID == nil {
		// occupied seat without a subscription violates the seat invariant;
		// reclaim it
		if err := s.seats.Vacate(ctx, seat.ID); err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "vacate orphaned seat")
		}
		return true, nil
	}

	current, err := s.repo.GetByID(ctx, *seat.SubscriptionID)
	if err != nil {
		if db.IsNotFound(err) {
			if err := s.seats.Vacate(ctx, seat.ID); err != nil {
				return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "vacate orphaned seat")
			}
			return true, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load current subscription")
	}

	if current.Status == enums.SubscriptionStatusActive && !current.EndDate.Before(now) {
		return false, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).MarkExpired(ctx, []uuid.UUID{current.ID}); err != nil {
			return err
		}
		return s.seats.WithTx(tx).Vacate(ctx, seat.ID)
	})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "take over stale seat")
	}
	return true, nil
}

func (s *service) queueWaitingList(ctx context.Context, member *models.Member, params AssignParams) (*AssignResult, error) {
	entry := &models.WaitingListEntry{
		MemberID:      member.ID,
		LocationID:    params.LocationID,
		StartDate:     params.StartDate,
		Duration:      params.Duration,
		Amount:        params.Amount,
		PaymentMethod: params.PaymentMethod,
	}
	if err := s.waitingList.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue waiting list entry")
	}
	s.metrics.IncWaitingListAddition()

	logCtx := s.logg.WithMemberID(ctx, member.ID.String())
	s.logg.Info(logCtx, "seat occupied by live subscription, request queued")
	return &AssignResult{
		Queued:       true,
		Message:      WaitingListMessage,
		WaitingEntry: entry,
	}, nil
}

func (s *service) createSubscription(ctx context.Context, member *models.Member, seat *models.Seat, params AssignParams, now time.Time) (*AssignResult, error) {
	endDate := AddDuration(params.StartDate, params.Duration)
	paidAt := params.PaidAt
	if paidAt.IsZero() {
		paidAt = now
	}

	subscription := &models.Subscription{
		MemberID:    member.ID,
		LocationID:  params.LocationID,
		SeatID:      seat.ID,
		StartDate:   params.StartDate,
		EndDate:     endDate,
		Duration:    params.Duration,
		TotalAmount: params.Amount,
		Status:      enums.SubscriptionStatusActive,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, subscription); err != nil {
			return err
		}

		last, err := s.payments.WithTx(tx).LastCreated(ctx)
		if err != nil {
			return err
		}
		payment := &models.Payment{
			SubscriptionID: subscription.ID,
			Amount:         params.Amount,
			Method:         params.PaymentMethod,
			UPICode:        params.UPICode,
			PaidAt:         paidAt,
			UniqueCode:     payments.NextUniqueCode(last, now),
		}
		if err := s.payments.WithTx(tx).Create(ctx, payment); err != nil {
			return err
		}
		subscription.Payments = []models.Payment{*payment}

		claimed, err := s.seats.WithTx(tx).ClaimVacant(ctx, seat.ID, member.ID, subscription.ID)
		if err != nil {
			return err
		}
		if !claimed {
			return pkgerrors.New(pkgerrors.CodeConflict, "seat claimed by a concurrent request")
		}

		return s.audit.WithTx(tx).Record(ctx, audit.Entry{
			ActorID:  params.ActorID,
			Action:   "subscription.assign",
			Entity:   "subscription",
			EntityID: subscription.ID,
			Details: map[string]any{
				"member_id":   member.ID.String(),
				"location_id": params.LocationID.String(),
				"seat_number": params.SeatNumber,
				"end_date":    endDate,
			},
		})
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription")
	}

	s.metrics.IncSeatAssignment()
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"member_id":       member.ID.String(),
		"subscription_id": subscription.ID.String(),
		"seat_number":     params.SeatNumber,
	})
	s.logg.Info(logCtx, "seat assigned")

	return &AssignResult{Subscription: subscription}, nil
}

func (s *service) List(ctx context.Context, query ListQuery) ([]models.Subscription, error) {
	if _, err := s.SweepExpired(ctx, s.now()); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subscriptions")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription id required")
	}
	subscription, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get subscription")
	}
	return subscription, nil
}

func validateAssign(params AssignParams) error {
	if params.MemberID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	if params.LocationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	if params.SeatNumber <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "seat number must be positive")
	}
	if params.StartDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start date required")
	}
	if params.Duration == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "duration required")
	}
	if params.Amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}
	if !params.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if params.PaymentMethod == enums.PaymentMethodUPI && (params.UPICode == nil || *params.UPICode == "") {
		return pkgerrors.New(pkgerrors.CodeValidation, "upi code required for upi payments")
	}
	return nil
}
