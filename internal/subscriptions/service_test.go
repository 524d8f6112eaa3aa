package subscriptions

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/evolvespaces/evolve-backend/internal/audit"
	"github.com/evolvespaces/evolve-backend/internal/members"
	"github.com/evolvespaces/evolve-backend/internal/payments"
	"github.com/evolvespaces/evolve-backend/internal/seats"
	"github.com/evolvespaces/evolve-backend/internal/waitinglist"
	pkgdb "github.com/evolvespaces/evolve-backend/pkg/db"
	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
	pkgerrors "github.com/evolvespaces/evolve-backend/pkg/errors"
	"github.com/evolvespaces/evolve-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = conn.AutoMigrate(
		&models.User{},
		&models.Member{},
		&models.Location{},
		&models.Seat{},
		&models.Subscription{},
		&models.Payment{},
		&models.WaitingListEntry{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(ServiceParams{
		Repo:        NewRepository(conn),
		Seats:       seats.NewRepository(conn),
		Payments:    payments.NewRepository(conn),
		WaitingList: waitinglist.NewRepository(conn),
		Members:     members.NewRepository(conn),
		Audit:       audit.NewRecorder(conn),
		Tx:          pkgdb.NewFromConn(conn),
		Logger:      logg,
		Now:         func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedLocationWithSeats(t *testing.T, conn *gorm.DB, totalSeats int) *models.Location {
	t.Helper()
	location := &models.Location{Name: "Location " + uuid.NewString(), Address: "12 Main Rd", TotalSeats: totalSeats}
	if err := conn.Create(location).Error; err != nil {
		t.Fatalf("create location: %v", err)
	}
	if err := seats.NewRepository(conn).CreatePool(context.Background(), location.ID, 1, totalSeats); err != nil {
		t.Fatalf("create seat pool: %v", err)
	}
	return location
}

func seedMember(t *testing.T, conn *gorm.DB) *models.Member {
	t.Helper()
	member := &models.Member{
		MemberCode: "EVM" + uuid.NewString()[:8],
		Name:       "Asha",
		Email:      "asha@example.com",
		Phone:      "9999999999",
	}
	if err := conn.Create(member).Error; err != nil {
		t.Fatalf("create member: %v", err)
	}
	return member
}

func assignParams(member *models.Member, location *models.Location, seatNumber int) AssignParams {
	return AssignParams{
		MemberID:      member.ID,
		LocationID:    location.ID,
		SeatNumber:    seatNumber,
		StartDate:     fixedNow,
		Duration:      "1 month",
		Amount:        decimal.NewFromInt(1500),
		PaymentMethod: enums.PaymentMethodCash,
	}
}

func seatByNumber(t *testing.T, conn *gorm.DB, locationID uuid.UUID, number int) *models.Seat {
	t.Helper()
	seat, err := seats.NewRepository(conn).GetByLocationAndNumber(context.Background(), locationID, number)
	if err != nil {
		t.Fatalf("load seat: %v", err)
	}
	return seat
}

func TestAssignVacantSeatCreatesSubscriptionAndPayment(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	location := seedLocationWithSeats(t, conn, 5)
	member := seedMember(t, conn)

	result, err := svc.Assign(context.Background(), assignParams(member, location, 3))
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if result.Queued {
		t.Fatal("expected direct assignment, got queued")
	}
	if result.Subscription == nil {
		t.Fatal("expected subscription in result")
	}
	if result.Subscription.Status != enums.SubscriptionStatusActive {
		t.Fatalf("expected active subscription, got %s", result.Subscription.Status)
	}
	wantEnd := fixedNow.AddDate(0, 1, 0)
	if !result.Subscription.EndDate.Equal(wantEnd) {
		t.Fatalf("expected end date %s, got %s", wantEnd, result.Subscription.EndDate)
	}

	seat := seatByNumber(t, conn, location.ID, 3)
	if seat.Status != enums.SeatStatusOccupied {
		t.Fatalf("expected occupied seat, got %s", seat.Status)
	}
	if seat.MemberID == nil || *seat.MemberID != member.ID {
		t.Fatal("seat should point at the member")
	}
	if seat.SubscriptionID == nil || *seat.SubscriptionID != result.Subscription.ID {
		t.Fatal("seat should point at the new subscription")
	}

	var payment models.Payment
	if err := conn.First(&payment, "subscription_id = ?", result.Subscription.ID).Error; err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if payment.UniqueCode != "EVOLVE202401001" {
		t.Fatalf("expected first receipt code EVOLVE202401001, got %q", payment.UniqueCode)
	}

	var auditCount int64
	if err := conn.Model(&models.AuditLog{}).Count(&auditCount).Error; err != nil {
		t.Fatalf("count audit rows: %v", err)
	}
	if auditCount != 1 {
		t.Fatalf("expected one audit row, got %d", auditCount)
	}
}

func TestAssignOccupiedLiveSubscriptionQueuesWaitingList(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	location := seedLocationWithSeats(t, conn, 5)
	first := seedMember(t, conn)
	second := seedMember(t, conn)

	if _, err := svc.Assign(context.Background(), assignParams(first, location, 5)); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	before := seatByNumber(t, conn, location.ID, 5)

	result, err := svc.Assign(context.Background(), assignParams(second, location, 5))
	if err != nil {
		t.Fatalf("second assign: %v", err)
	}
	if !result.Queued {
		t.Fatal("expected queued result")
	}
	if result.Message != WaitingListMessage {
		t.Fatalf("expected waiting list message, got %q", result.Message)
	}

	after := seatByNumber(t, conn, location.ID, 5)
	if after.Status != enums.SeatStatusOccupied {
		t.Fatalf("seat status must stay occupied, got %s", after.Status)
	}
	if *after.SubscriptionID != *before.SubscriptionID {
		t.Fatal("seat must keep its original subscription")
	}

	var entries []models.WaitingListEntry
	if err := conn.Find(&entries).Error; err != nil {
		t.Fatalf("load waiting list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one waiting list row, got %d", len(entries))
	}
	if entries[0].MemberID != second.ID {
		t.Fatal("waiting list entry should belong to the second member")
	}
}

func TestAssignTakesOverStaleOccupancy(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	location := seedLocationWithSeats(t, conn, 5)
	oldMember := seedMember(t, conn)
	newMember := seedMember(t, conn)

	// Old subscription expired years before "now" but still marked active
	// with the seat occupied.
	seat := seatByNumber(t, conn, location.ID, 5)
	oldSub := &models.Subscription{
		MemberID:    oldMember.ID,
		LocationID:  location.ID,
		SeatID:      seat.ID,
		StartDate:   time.Date(2019, time.December, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		Duration:    "1 month",
		TotalAmount: decimal.NewFromInt(1000),
		Status:      enums.SubscriptionStatusActive,
	}
	if err := conn.Create(oldSub).Error; err != nil {
		t.Fatalf("create old subscription: %v", err)
	}
	err := conn.Model(&models.Seat{}).Where("id = ?", seat.ID).Updates(map[string]any{
		"status":          enums.SeatStatusOccupied,
		"member_id":       oldMember.ID,
		"subscription_id": oldSub.ID,
	}).Error
	if err != nil {
		t.Fatalf("occupy seat: %v", err)
	}

	result, err := svc.Assign(context.Background(), assignParams(newMember, location, 5))
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if result.Queued {
		t.Fatal("stale occupancy must be taken over, not queued")
	}

	var reloaded models.Subscription
	if err := conn.First(&reloaded, "id = ?", oldSub.ID).Error; err != nil {
		t.Fatalf("reload old subscription: %v", err)
	}
	if reloaded.Status != enums.SubscriptionStatusExpired {
		t.Fatalf("old subscription should be expired, got %s", reloaded.Status)
	}

	after := seatByNumber(t, conn, location.ID, 5)
	if after.Status != enums.SeatStatusOccupied {
		t.Fatalf("seat should end occupied, got %s", after.Status)
	}
	if after.SubscriptionID == nil || *after.SubscriptionID != result.Subscription.ID {
		t.Fatal("seat should point at the new subscription")
	}
}

func TestSweepExpiredIsIdempotent(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	location := seedLocationWithSeats(t, conn, 3)
	member := seedMember(t, conn)

	seat := seatByNumber(t, conn, location.ID, 1)
	sub := &models.Subscription{
		MemberID:    member.ID,
		LocationID:  location.ID,
		SeatID:      seat.ID,
		StartDate:   fixedNow.AddDate(0, -2, 0),
		EndDate:     fixedNow.AddDate(0, -1, 0),
		Duration:    "1 month",
		TotalAmount: decimal.NewFromInt(1000),
		Status:      enums.SubscriptionStatusActive,
	}
	if err := conn.Create(sub).Error; err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	err := conn.Model(&models.Seat{}).Where("id = ?", seat.ID).Updates(map[string]any{
		"status":          enums.SeatStatusOccupied,
		"member_id":       member.ID,
		"subscription_id": sub.ID,
	}).Error
	if err != nil {
		t.Fatalf("occupy seat: %v", err)
	}

	first, err := svc.SweepExpired(context.Background(), fixedNow)
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if first.Expired != 1 || first.SeatsFreed != 1 {
		t.Fatalf("expected 1 expired / 1 freed, got %+v", first)
	}

	second, err := svc.SweepExpired(context.Background(), fixedNow)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if second.Expired != 0 || second.SeatsFreed != 0 {
		t.Fatalf("second sweep must be a no-op, got %+v", second)
	}

	after := seatByNumber(t, conn, location.ID, 1)
	if after.Status != enums.SeatStatusVacant {
		t.Fatalf("seat should be vacant after sweep, got %s", after.Status)
	}
	if after.MemberID != nil || after.SubscriptionID != nil {
		t.Fatal("sweep must clear seat references")
	}
}

func TestListSweepsBeforeReturning(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	location := seedLocationWithSeats(t, conn, 3)
	member := seedMember(t, conn)

	seat := seatByNumber(t, conn, location.ID, 2)
	sub := &models.Subscription{
		MemberID:    member.ID,
		LocationID:  location.ID,
		SeatID:      seat.ID,
		StartDate:   fixedNow.AddDate(0, -2, 0),
		EndDate:     fixedNow.AddDate(0, 0, -1),
		Duration:    "2 months",
		TotalAmount: decimal.NewFromInt(2000),
		Status:      enums.SubscriptionStatusActive,
	}
	if err := conn.Create(sub).Error; err != nil {
		t.Fatalf("create subscription: %v", err)
	}

	rows, err := svc.List(context.Background(), ListQuery{LocationID: &location.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one subscription, got %d", len(rows))
	}
	if rows[0].Status != enums.SubscriptionStatusExpired {
		t.Fatalf("listing must sweep first, got status %s", rows[0].Status)
	}
}

func TestSuccessivePaymentsGetDistinctCodes(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	location := seedLocationWithSeats(t, conn, 5)
	first := seedMember(t, conn)
	second := seedMember(t, conn)

	r1, err := svc.Assign(context.Background(), assignParams(first, location, 1))
	if err != nil {
		t.Fatalf("assign 1: %v", err)
	}
	r2, err := svc.Assign(context.Background(), assignParams(second, location, 2))
	if err != nil {
		t.Fatalf("assign 2: %v", err)
	}

	code1 := r1.Subscription.Payments[0].UniqueCode
	code2 := r2.Subscription.Payments[0].UniqueCode
	if code1 == code2 {
		t.Fatalf("payment codes must be distinct, both %q", code1)
	}
	if code2 != "EVOLVE202401002" {
		t.Fatalf("expected sequence to advance to EVOLVE202401002, got %q", code2)
	}
}

func TestAssignUnknownSeatFailsNotFound(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	location := seedLocationWithSeats(t, conn, 2)
	member := seedMember(t, conn)

	_, err := svc.Assign(context.Background(), assignParams(member, location, 99))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestAssignValidation(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	location := seedLocationWithSeats(t, conn, 2)
	member := seedMember(t, conn)

	params := assignParams(member, location, 1)
	params.PaymentMethod = enums.PaymentMethodUPI
	params.UPICode = nil
	_, err := svc.Assign(context.Background(), params)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for missing upi code, got %v", err)
	}
}
