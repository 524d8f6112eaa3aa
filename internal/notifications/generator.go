package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/evolvespaces/evolve-backend/internal/subscriptions"
	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
	pkgerrors "github.com/evolvespaces/evolve-backend/pkg/errors"
	"github.com/evolvespaces/evolve-backend/pkg/logger"
	"github.com/evolvespaces/evolve-backend/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

const (
	lowStockThreshold      = 2
	highOccupancyRatio     = 0.90
	pendingSummaryWindow   = 24 * time.Hour
	seatsAvailableWindow   = 24 * time.Hour
	highOccupancyWindow    = 24 * time.Hour
	waitingMemberWindow    = 7 * 24 * time.Hour
	grievanceOverdueCutoff = 3 * 24 * time.Hour
	grievanceNewWindow     = 24 * time.Hour
)

// Readers consumed by the generator. It never mutates subscription or seat
// state; the expiry sweep runs once at the top of a pass and is the only
// write path for expiry.
type subscriptionsReader interface {
	ListActiveExpiringBetween(ctx context.Context, from, to time.Time) ([]models.Subscription, error)
	ListExpired(ctx context.Context) ([]models.Subscription, error)
	ListExpiredWithoutPayments(ctx context.Context) ([]models.Subscription, error)
}

type expirySweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (subscriptions.SweepResult, error)
}

type paymentsReader interface {
	CountAll(ctx context.Context) (int64, error)
}

type seatsReader interface {
	ListVacant(ctx context.Context) ([]models.Seat, error)
	CountByLocation(ctx context.Context, locationID uuid.UUID) (total int64, occupied int64, err error)
}

type locationsReader interface {
	List(ctx context.Context) ([]models.Location, error)
}

type waitingListReader interface {
	List(ctx context.Context) ([]models.WaitingListEntry, error)
}

type grievancesReader interface {
	ListPendingCreatedSince(ctx context.Context, since time.Time) ([]models.Grievance, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.Grievance, error)
}

type inventoryReader interface {
	ListBroken(ctx context.Context) ([]models.InventoryItem, error)
	ListLowStock(ctx context.Context, threshold int) ([]models.InventoryItem, error)
}

type staffReader interface {
	ListByRoles(ctx context.Context, roles ...enums.UserRole) ([]models.User, error)
}

// GeneratorParams configure the notification generator.
type GeneratorParams struct {
	Repo          Repository
	Sweeper       expirySweeper
	Subscriptions subscriptionsReader
	Payments      paymentsReader
	Seats         seatsReader
	Locations     locationsReader
	WaitingList   waitingListReader
	Grievances    grievancesReader
	Inventory     inventoryReader
	Users         staffReader
	Logger        *logger.Logger
	Metrics       *metrics.PortalMetrics
	Now           func() time.Time
}

// GenerateResult summarizes one generation pass.
type GenerateResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Generator runs the batch notification pass: six isolated sub-generators,
// each scanning candidate facts and inserting deduplicated notification
// rows. A failing sub-generator never aborts the others.
type Generator struct {
	repo          Repository
	sweeper       expirySweeper
	subscriptions subscriptionsReader
	payments      paymentsReader
	seats         seatsReader
	locations     locationsReader
	waitingList   waitingListReader
	grievances    grievancesReader
	inventory     inventoryReader
	users         staffReader
	logg          *logger.Logger
	metrics       *metrics.PortalMetrics
	now           func() time.Time
}

// NewGenerator wires generator dependencies.
func NewGenerator(params GeneratorParams) (*Generator, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if params.Sweeper == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "expiry sweeper required")
	}
	if params.Subscriptions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscriptions reader required")
	}
	if params.Payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payments reader required")
	}
	if params.Seats == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "seats reader required")
	}
	if params.Locations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "locations reader required")
	}
	if params.WaitingList == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "waiting list reader required")
	}
	if params.Grievances == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "grievances reader required")
	}
	if params.Inventory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory reader required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users reader required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Generator{
		repo:          params.Repo,
		sweeper:       params.Sweeper,
		subscriptions: params.Subscriptions,
		payments:      params.Payments,
		seats:         params.Seats,
		locations:     params.Locations,
		waitingList:   params.WaitingList,
		grievances:    params.Grievances,
		inventory:     params.Inventory,
		users:         params.Users,
		logg:          params.Logger,
		metrics:       params.Metrics,
		now:           now,
	}, nil
}

// GenerateAll runs every sub-generator. Errors are aggregated and returned
// for observability; a non-nil error does not mean the pass produced
// nothing.
func (g *Generator) GenerateAll(ctx context.Context) (GenerateResult, error) {
	now := g.now()
	result := GenerateResult{}
	var errs error

	// Single expiry-marking path: everything after this only reads
	// subscription and seat state.
	if _, err := g.sweeper.SweepExpired(ctx, now); err != nil {
		g.logg.Error(ctx, "pre-generation sweep failed", err)
		errs = multierr.Append(errs, fmt.Errorf("sweep: %w", err))
	}

	staff, err := g.users.ListByRoles(ctx, enums.UserRoleAdmin, enums.UserRoleManager)
	if err != nil {
		g.logg.Error(ctx, "loading staff recipients failed", err)
		return result, multierr.Append(errs, fmt.Errorf("list staff: %w", err))
	}

	runs := []struct {
		name string
		fn   func(context.Context, time.Time, []models.User, *GenerateResult) error
	}{
		{"subscription", g.generateSubscriptionNotifications},
		{"payment", g.generatePaymentNotifications},
		{"seat", g.generateSeatNotifications},
		{"grievance", g.generateGrievanceNotifications},
		{"inventory", g.generateInventoryNotifications},
		{"member", g.generateMemberNotifications},
	}
	for _, run := range runs {
		if err := run.fn(ctx, now, staff, &result); err != nil {
			logCtx := g.logg.WithField(ctx, "sub_generator", run.name)
			g.logg.Error(logCtx, "sub-generator failed", err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", run.name, err))
		}
	}

	logCtx := g.logg.WithFields(ctx, map[string]any{
		"created": result.Created,
		"skipped": result.Skipped,
	})
	g.logg.Info(logCtx, "notification generation pass complete")
	return result, errs
}

func (g *Generator) generateSubscriptionNotifications(ctx context.Context, now time.Time, staff []models.User, result *GenerateResult) error {
	threeDays := now.Add(3 * 24 * time.Hour)
	sevenDays := now.Add(7 * 24 * time.Hour)

	critical, err := g.subscriptions.ListActiveExpiringBetween(ctx, now, threeDays)
	if err != nil {
		return fmt.Errorf("list 3-day expiring: %w", err)
	}
	for _, subscription := range critical {
		if err := g.emitSubscriptionAlert(ctx, subscription, staff, enums.NotificationTypeSubscriptionExpiry3Days,
			enums.NotificationPriorityCritical, "Subscription expires in under 3 days", result); err != nil {
			return err
		}
	}

	upcoming, err := g.subscriptions.ListActiveExpiringBetween(ctx, threeDays, sevenDays)
	if err != nil {
		return fmt.Errorf("list 7-day expiring: %w", err)
	}
	for _, subscription := range upcoming {
		if err := g.emitSubscriptionAlert(ctx, subscription, staff, enums.NotificationTypeSubscriptionExpiry7Days,
			enums.NotificationPriorityHigh, "Subscription expires within 7 days", result); err != nil {
			return err
		}
	}

	expired, err := g.subscriptions.ListExpired(ctx)
	if err != nil {
		return fmt.Errorf("list expired: %w", err)
	}
	for _, subscription := range expired {
		if err := g.emitSubscriptionAlert(ctx, subscription, staff, enums.NotificationTypeSubscriptionExpired,
			enums.NotificationPriorityCritical, "Subscription has expired", result); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) emitSubscriptionAlert(ctx context.Context, subscription models.Subscription, staff []models.User, notificationType enums.NotificationType, priority enums.NotificationPriority, title string, result *GenerateResult) error {
	correlation := subscription.ID.String()
	message := fmt.Sprintf("%s (ends %s)", memberName(subscription.Member), subscription.EndDate.Format("2006-01-02"))
	data := mustData(map[string]any{"subscription_id": correlation})

	for _, recipient := range recipientsWithMember(staff, subscription.Member) {
		userID := recipient
		created, err := g.emit(ctx, models.Notification{
			UserID:         &userID,
			Type:           notificationType,
			Title:          title,
			Message:        message,
			Data:           data,
			Priority:       priority,
			Category:       enums.NotificationCategorySubscription,
			CorrelationKey: correlation,
		}, 0)
		if err != nil {
			return err
		}
		result.add(created)
	}
	return nil
}

func (g *Generator) generatePaymentNotifications(ctx context.Context, now time.Time, staff []models.User, result *GenerateResult) error {
	overdue, err := g.subscriptions.ListExpiredWithoutPayments(ctx)
	if err != nil {
		return fmt.Errorf("list overdue: %w", err)
	}
	for _, subscription := range overdue {
		correlation := subscription.ID.String()
		data := mustData(map[string]any{"subscription_id": correlation})
		for _, user := range staff {
			userID := user.ID
			created, err := g.emit(ctx, models.Notification{
				UserID:         &userID,
				Type:           enums.NotificationTypePaymentOverdue,
				Title:          "Payment overdue",
				Message:        fmt.Sprintf("No payment recorded for %s's expired subscription", memberName(subscription.Member)),
				Data:           data,
				Priority:       enums.NotificationPriorityHigh,
				Category:       enums.NotificationCategoryPayment,
				CorrelationKey: correlation,
			}, 0)
			if err != nil {
				return err
			}
			result.add(created)
		}
	}

	total, err := g.payments.CountAll(ctx)
	if err != nil {
		return fmt.Errorf("count payments: %w", err)
	}
	data := mustData(map[string]any{"payment_count": total})
	for _, user := range staff {
		userID := user.ID
		created, err := g.emit(ctx, models.Notification{
			UserID:         &userID,
			Type:           enums.NotificationTypePendingPayments,
			Title:          "Daily payments summary",
			Message:        fmt.Sprintf("%d payments recorded to date", total),
			Data:           data,
			Priority:       enums.NotificationPriorityMedium,
			Category:       enums.NotificationCategoryPayment,
			CorrelationKey: "payments-summary",
		}, pendingSummaryWindow)
		if err != nil {
			return err
		}
		result.add(created)
	}
	return nil
}

func (g *Generator) generateSeatNotifications(ctx context.Context, now time.Time, staff []models.User, result *GenerateResult) error {
	vacant, err := g.seats.ListVacant(ctx)
	if err != nil {
		return fmt.Errorf("list vacant seats: %w", err)
	}

	if len(vacant) > 0 {
		data := mustData(map[string]any{"vacant_count": len(vacant)})
		for _, user := range staff {
			userID := user.ID
			created, err := g.emit(ctx, models.Notification{
				UserID:         &userID,
				Type:           enums.NotificationTypeSeatsAvailable,
				Title:          "Seats available",
				Message:        fmt.Sprintf("%d seats are currently vacant", len(vacant)),
				Data:           data,
				Priority:       enums.NotificationPriorityMedium,
				Category:       enums.NotificationCategorySeat,
				CorrelationKey: "seats-available",
			}, seatsAvailableWindow)
			if err != nil {
				return err
			}
			result.add(created)
		}
	}

	vacantByLocation := map[uuid.UUID]int{}
	for _, seat := range vacant {
		vacantByLocation[seat.LocationID]++
	}

	waiting, err := g.waitingList.List(ctx)
	if err != nil {
		return fmt.Errorf("list waiting members: %w", err)
	}
	for _, entry := range waiting {
		if vacantByLocation[entry.LocationID] == 0 {
			continue
		}
		if entry.Member == nil || entry.Member.UserID == nil {
			continue
		}
		userID := *entry.Member.UserID
		correlation := entry.LocationID.String()
		created, err := g.emit(ctx, models.Notification{
			UserID:         &userID,
			Type:           enums.NotificationTypeSeatBecameVacant,
			Title:          "A seat opened up",
			Message:        "A seat you were waiting for is now vacant",
			Data:           mustData(map[string]any{"location_id": correlation}),
			Priority:       enums.NotificationPriorityHigh,
			Category:       enums.NotificationCategorySeat,
			CorrelationKey: correlation,
		}, waitingMemberWindow)
		if err != nil {
			return err
		}
		result.add(created)
	}

	locations, err := g.locations.List(ctx)
	if err != nil {
		return fmt.Errorf("list locations: %w", err)
	}
	for _, location := range locations {
		total, occupied, err := g.seats.CountByLocation(ctx, location.ID)
		if err != nil {
			return fmt.Errorf("count seats: %w", err)
		}
		if total == 0 || float64(occupied)/float64(total) < highOccupancyRatio {
			continue
		}
		correlation := location.ID.String()
		data := mustData(map[string]any{
			"location_id": correlation,
			"occupied":    occupied,
			"total":       total,
		})
		for _, user := range staff {
			userID := user.ID
			created, err := g.emit(ctx, models.Notification{
				UserID:         &userID,
				Type:           enums.NotificationTypeHighOccupancy,
				Title:          "High occupancy",
				Message:        fmt.Sprintf("%s is at %d/%d seats", location.Name, occupied, total),
				Data:           data,
				Priority:       enums.NotificationPriorityHigh,
				Category:       enums.NotificationCategorySeat,
				CorrelationKey: correlation,
			}, highOccupancyWindow)
			if err != nil {
				return err
			}
			result.add(created)
		}
	}
	return nil
}

func (g *Generator) generateGrievanceNotifications(ctx context.Context, now time.Time, staff []models.User, result *GenerateResult) error {
	fresh, err := g.grievances.ListPendingCreatedSince(ctx, now.Add(-grievanceNewWindow))
	if err != nil {
		return fmt.Errorf("list new grievances: %w", err)
	}
	for _, grievance := range fresh {
		correlation := grievance.ID.String()
		data := mustData(map[string]any{"grievance_id": correlation})
		priority := enums.NotificationPriorityMedium
		if grievance.Priority == enums.GrievancePriorityHigh {
			priority = enums.NotificationPriorityHigh
		}
		for _, recipient := range recipientsWithMember(staff, grievance.Member) {
			userID := recipient
			created, err := g.emit(ctx, models.Notification{
				UserID:         &userID,
				Type:           enums.NotificationTypeGrievanceNew,
				Title:          "New grievance",
				Message:        grievance.Subject,
				Data:           data,
				Priority:       priority,
				Category:       enums.NotificationCategoryGrievance,
				CorrelationKey: correlation,
			}, 0)
			if err != nil {
				return err
			}
			result.add(created)
		}
	}

	overdue, err := g.grievances.ListPendingOlderThan(ctx, now.Add(-grievanceOverdueCutoff))
	if err != nil {
		return fmt.Errorf("list overdue grievances: %w", err)
	}
	for _, grievance := range overdue {
		correlation := grievance.ID.String()
		data := mustData(map[string]any{"grievance_id": correlation})
		for _, user := range staff {
			userID := user.ID
			created, err := g.emit(ctx, models.Notification{
				UserID:         &userID,
				Type:           enums.NotificationTypeGrievanceOverdue,
				Title:          "Grievance pending over 3 days",
				Message:        grievance.Subject,
				Data:           data,
				Priority:       enums.NotificationPriorityHigh,
				Category:       enums.NotificationCategoryGrievance,
				CorrelationKey: correlation,
			}, 0)
			if err != nil {
				return err
			}
			result.add(created)
		}
	}
	return nil
}

func (g *Generator) generateInventoryNotifications(ctx context.Context, now time.Time, staff []models.User, result *GenerateResult) error {
	broken, err := g.inventory.ListBroken(ctx)
	if err != nil {
		return fmt.Errorf("list broken items: %w", err)
	}
	for _, item := range broken {
		correlation := item.ID.String()
		data := mustData(map[string]any{"inventory_id": correlation})
		for _, user := range staff {
			userID := user.ID
			created, err := g.emit(ctx, models.Notification{
				UserID:         &userID,
				Type:           enums.NotificationTypeInventoryBroken,
				Title:          "Inventory item broken",
				Message:        item.Name,
				Data:           data,
				Priority:       enums.NotificationPriorityHigh,
				Category:       enums.NotificationCategoryInventory,
				CorrelationKey: correlation,
			}, 0)
			if err != nil {
				return err
			}
			result.add(created)
		}
	}

	lowStock, err := g.inventory.ListLowStock(ctx, lowStockThreshold)
	if err != nil {
		return fmt.Errorf("list low stock items: %w", err)
	}
	for _, item := range lowStock {
		correlation := item.ID.String()
		data := mustData(map[string]any{"inventory_id": correlation, "quantity": item.Quantity})
		for _, user := range staff {
			userID := user.ID
			created, err := g.emit(ctx, models.Notification{
				UserID:         &userID,
				Type:           enums.NotificationTypeInventoryLowStock,
				Title:          "Inventory low stock",
				Message:        fmt.Sprintf("%s is down to %d", item.Name, item.Quantity),
				Data:           data,
				Priority:       enums.NotificationPriorityMedium,
				Category:       enums.NotificationCategoryInventory,
				CorrelationKey: correlation,
			}, 0)
			if err != nil {
				return err
			}
			result.add(created)
		}
	}
	return nil
}

func (g *Generator) generateMemberNotifications(ctx context.Context, now time.Time, staff []models.User, result *GenerateResult) error {
	// TODO: define the member-scan facts (birthdays? inactivity?) before
	// implementing this sub-generator.
	return nil
}

// emit inserts the candidate unless an equivalent notification already
// exists. window == 0 means dedup forever; a positive window only blocks
// re-emission inside the rolling window.
func (g *Generator) emit(ctx context.Context, candidate models.Notification, window time.Duration) (bool, error) {
	query := ExistsQuery{
		UserID:         candidate.UserID,
		TargetRole:     candidate.TargetRole,
		Type:           candidate.Type,
		CorrelationKey: candidate.CorrelationKey,
	}
	if window > 0 {
		since := g.now().Add(-window)
		query.Since = &since
	}

	exists, err := g.repo.Exists(ctx, query)
	if err != nil {
		return false, err
	}
	if exists {
		g.metrics.IncNotificationDeduped(string(candidate.Type))
		return false, nil
	}
	if err := g.repo.Create(ctx, &candidate); err != nil {
		return false, err
	}
	g.metrics.IncNotificationEmitted(string(candidate.Type))
	return true, nil
}

func (r *GenerateResult) add(created bool) {
	if created {
		r.Created++
	} else {
		r.Skipped++
	}
}

// recipientsWithMember returns the staff user ids plus the member's linked
// login account when present.
func recipientsWithMember(staff []models.User, member *models.Member) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(staff)+1)
	for _, user := range staff {
		ids = append(ids, user.ID)
	}
	if member != nil && member.UserID != nil {
		ids = append(ids, *member.UserID)
	}
	return ids
}

func memberName(member *models.Member) string {
	if member == nil {
		return "a member"
	}
	return member.Name
}

func mustData(fields map[string]any) json.RawMessage {
	encoded, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	return encoded
}
