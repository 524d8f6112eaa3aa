package notifications_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/evolvespaces/evolve-backend/internal/audit"
	"github.com/evolvespaces/evolve-backend/internal/grievances"
	"github.com/evolvespaces/evolve-backend/internal/inventory"
	"github.com/evolvespaces/evolve-backend/internal/locations"
	"github.com/evolvespaces/evolve-backend/internal/members"
	"github.com/evolvespaces/evolve-backend/internal/notifications"
	"github.com/evolvespaces/evolve-backend/internal/payments"
	"github.com/evolvespaces/evolve-backend/internal/seats"
	"github.com/evolvespaces/evolve-backend/internal/subscriptions"
	"github.com/evolvespaces/evolve-backend/internal/users"
	"github.com/evolvespaces/evolve-backend/internal/waitinglist"
	pkgdb "github.com/evolvespaces/evolve-backend/pkg/db"
	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
	"github.com/evolvespaces/evolve-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, conn.AutoMigrate(
		&models.User{},
		&models.Member{},
		&models.Location{},
		&models.Seat{},
		&models.Subscription{},
		&models.Payment{},
		&models.WaitingListEntry{},
		&models.Grievance{},
		&models.InventoryItem{},
		&models.Notification{},
		&models.AuditLog{},
	))
	return conn
}

func newTestGenerator(t *testing.T, conn *gorm.DB) *notifications.Generator {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	subscriptionRepo := subscriptions.NewRepository(conn)
	sweeper, err := subscriptions.NewService(subscriptions.ServiceParams{
		Repo:        subscriptionRepo,
		Seats:       seats.NewRepository(conn),
		Payments:    payments.NewRepository(conn),
		WaitingList: waitinglist.NewRepository(conn),
		Members:     members.NewRepository(conn),
		Audit:       audit.NewRecorder(conn),
		Tx:          pkgdb.NewFromConn(conn),
		Logger:      logg,
		Now:         func() time.Time { return fixedNow },
	})
	require.NoError(t, err)

	generator, err := notifications.NewGenerator(notifications.GeneratorParams{
		Repo:          notifications.NewRepository(conn),
		Sweeper:       sweeper,
		Subscriptions: subscriptionRepo,
		Payments:      payments.NewRepository(conn),
		Seats:         seats.NewRepository(conn),
		Locations:     locations.NewRepository(conn),
		WaitingList:   waitinglist.NewRepository(conn),
		Grievances:    grievances.NewRepository(conn),
		Inventory:     inventory.NewRepository(conn),
		Users:         users.NewRepository(conn),
		Logger:        logg,
		Now:           func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return generator
}

func seedStaff(t *testing.T, conn *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Email:        fmt.Sprintf("%s@evolve.test", uuid.NewString()),
		PasswordHash: "x",
		Name:         "Admin",
		Role:         enums.UserRoleAdmin,
		IsActive:     true,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func seedMemberWithUser(t *testing.T, conn *gorm.DB) *models.Member {
	t.Helper()
	login := &models.User{
		Email:        fmt.Sprintf("%s@evolve.test", uuid.NewString()),
		PasswordHash: "x",
		Name:         "Member",
		Role:         enums.UserRoleMember,
		IsActive:     true,
	}
	require.NoError(t, conn.Create(login).Error)
	member := &models.Member{
		MemberCode: fmt.Sprintf("EVM%s", uuid.NewString()[:8]),
		Name:       "Asha",
		Email:      login.Email,
		Phone:      "9999999999",
		UserID:     &login.ID,
	}
	require.NoError(t, conn.Create(member).Error)
	return member
}

func seedLocation(t *testing.T, conn *gorm.DB, seatCount int) (*models.Location, []models.Seat) {
	t.Helper()
	location := &models.Location{Name: "Main Hall", Address: "12 Mill Road", TotalSeats: seatCount}
	require.NoError(t, conn.Create(location).Error)
	seatRows := make([]models.Seat, 0, seatCount)
	for i := 1; i <= seatCount; i++ {
		seat := models.Seat{LocationID: location.ID, SeatNumber: i, Status: enums.SeatStatusVacant}
		require.NoError(t, conn.Create(&seat).Error)
		seatRows = append(seatRows, seat)
	}
	return location, seatRows
}

func seedActiveSubscription(t *testing.T, conn *gorm.DB, member *models.Member, location *models.Location, seat *models.Seat, endDate time.Time) *models.Subscription {
	t.Helper()
	subscription := &models.Subscription{
		MemberID:    member.ID,
		LocationID:  location.ID,
		SeatID:      seat.ID,
		StartDate:   endDate.AddDate(0, -1, 0),
		EndDate:     endDate,
		Duration:    "1 month",
		TotalAmount: decimal.NewFromInt(1500),
		Status:      enums.SubscriptionStatusActive,
	}
	require.NoError(t, conn.Create(subscription).Error)
	require.NoError(t, conn.Model(seat).Updates(map[string]any{
		"status":          enums.SeatStatusOccupied,
		"member_id":       member.ID,
		"subscription_id": subscription.ID,
	}).Error)
	return subscription
}

func countNotifications(t *testing.T, conn *gorm.DB, notificationType enums.NotificationType, userID uuid.UUID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, conn.Model(&models.Notification{}).
		Where("type = ? AND user_id = ?", notificationType, userID).
		Count(&count).Error)
	return count
}

func TestGenerateAllSecondRunCreatesNothing(t *testing.T) {
	conn := newTestDB(t)
	generator := newTestGenerator(t, conn)
	ctx := context.Background()

	seedStaff(t, conn)
	member := seedMemberWithUser(t, conn)
	location, seatRows := seedLocation(t, conn, 4)
	seedActiveSubscription(t, conn, member, location, &seatRows[0], fixedNow.Add(48*time.Hour))

	grievance := &models.Grievance{
		MemberID:    member.ID,
		Subject:     "AC not working",
		Description: "Room 2 is too warm",
		Status:      enums.GrievanceStatusPending,
		Priority:    enums.GrievancePriorityHigh,
	}
	require.NoError(t, conn.Create(grievance).Error)
	require.NoError(t, conn.Create(&models.InventoryItem{
		LocationID: location.ID,
		Name:       "Projector",
		Quantity:   1,
		Status:     enums.InventoryStatusBroken,
	}).Error)

	first, err := generator.GenerateAll(ctx)
	require.NoError(t, err)
	require.Greater(t, first.Created, 0)

	second, err := generator.GenerateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Greater(t, second.Skipped, 0)
}

func TestGenerateAllThreeDayAlertExactlyOncePerMember(t *testing.T) {
	conn := newTestDB(t)
	generator := newTestGenerator(t, conn)
	ctx := context.Background()

	staff := seedStaff(t, conn)
	member := seedMemberWithUser(t, conn)
	location, seatRows := seedLocation(t, conn, 2)
	seedActiveSubscription(t, conn, member, location, &seatRows[0], fixedNow.Add(48*time.Hour))

	for i := 0; i < 3; i++ {
		_, err := generator.GenerateAll(ctx)
		require.NoError(t, err)
	}

	assert.EqualValues(t, 1, countNotifications(t, conn, enums.NotificationTypeSubscriptionExpiry3Days, *member.UserID))
	assert.EqualValues(t, 1, countNotifications(t, conn, enums.NotificationTypeSubscriptionExpiry3Days, staff.ID))
	assert.EqualValues(t, 0, countNotifications(t, conn, enums.NotificationTypeSubscriptionExpiry7Days, *member.UserID))
}

func TestGenerateAllSweepsBeforeScanning(t *testing.T) {
	conn := newTestDB(t)
	generator := newTestGenerator(t, conn)
	ctx := context.Background()

	staff := seedStaff(t, conn)
	member := seedMemberWithUser(t, conn)
	location, seatRows := seedLocation(t, conn, 2)
	subscription := seedActiveSubscription(t, conn, member, location, &seatRows[0], fixedNow.Add(-24*time.Hour))

	_, err := generator.GenerateAll(ctx)
	require.NoError(t, err)

	var reloaded models.Subscription
	require.NoError(t, conn.First(&reloaded, "id = ?", subscription.ID).Error)
	assert.Equal(t, enums.SubscriptionStatusExpired, reloaded.Status)

	var seat models.Seat
	require.NoError(t, conn.First(&seat, "id = ?", seatRows[0].ID).Error)
	assert.Equal(t, enums.SeatStatusVacant, seat.Status)
	assert.Nil(t, seat.MemberID)

	assert.EqualValues(t, 1, countNotifications(t, conn, enums.NotificationTypeSubscriptionExpired, staff.ID))
	// No payment was ever recorded against the expired subscription.
	assert.EqualValues(t, 1, countNotifications(t, conn, enums.NotificationTypePaymentOverdue, staff.ID))
}

func TestGenerateAllNotifiesWaitingMembersOnVacancy(t *testing.T) {
	conn := newTestDB(t)
	generator := newTestGenerator(t, conn)
	ctx := context.Background()

	seedStaff(t, conn)
	member := seedMemberWithUser(t, conn)
	location, _ := seedLocation(t, conn, 2)

	require.NoError(t, conn.Create(&models.WaitingListEntry{
		MemberID:      member.ID,
		LocationID:    location.ID,
		StartDate:     fixedNow,
		Duration:      "1 month",
		Amount:        decimal.NewFromInt(1500),
		PaymentMethod: enums.PaymentMethodCash,
	}).Error)

	_, err := generator.GenerateAll(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 1, countNotifications(t, conn, enums.NotificationTypeSeatBecameVacant, *member.UserID))

	// Still inside the 7-day window, so a second pass stays quiet.
	_, err = generator.GenerateAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, countNotifications(t, conn, enums.NotificationTypeSeatBecameVacant, *member.UserID))
}

func TestGenerateAllGrievanceOverdue(t *testing.T) {
	conn := newTestDB(t)
	generator := newTestGenerator(t, conn)
	ctx := context.Background()

	staff := seedStaff(t, conn)
	member := seedMemberWithUser(t, conn)

	grievance := &models.Grievance{
		MemberID:    member.ID,
		Subject:     "Broken chair",
		Description: "Seat 4 chair wobbles",
		Status:      enums.GrievanceStatusPending,
		Priority:    enums.GrievancePriorityMedium,
		CreatedAt:   fixedNow.Add(-4 * 24 * time.Hour),
	}
	require.NoError(t, conn.Create(grievance).Error)

	for i := 0; i < 2; i++ {
		_, err := generator.GenerateAll(ctx)
		require.NoError(t, err)
	}

	assert.EqualValues(t, 1, countNotifications(t, conn, enums.NotificationTypeGrievanceOverdue, staff.ID))
	assert.EqualValues(t, 0, countNotifications(t, conn, enums.NotificationTypeGrievanceNew, staff.ID))
}

func TestGenerateAllInventoryAlerts(t *testing.T) {
	conn := newTestDB(t)
	generator := newTestGenerator(t, conn)
	ctx := context.Background()

	staff := seedStaff(t, conn)
	location, _ := seedLocation(t, conn, 2)

	require.NoError(t, conn.Create(&models.InventoryItem{
		LocationID: location.ID,
		Name:       "Router",
		Quantity:   1,
		Status:     enums.InventoryStatusBroken,
	}).Error)
	require.NoError(t, conn.Create(&models.InventoryItem{
		LocationID: location.ID,
		Name:       "Whiteboard markers",
		Quantity:   2,
		Status:     enums.InventoryStatusWorking,
	}).Error)

	_, err := generator.GenerateAll(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 1, countNotifications(t, conn, enums.NotificationTypeInventoryBroken, staff.ID))
	assert.EqualValues(t, 1, countNotifications(t, conn, enums.NotificationTypeInventoryLowStock, staff.ID))
}

func TestGenerateAllHighOccupancy(t *testing.T) {
	conn := newTestDB(t)
	generator := newTestGenerator(t, conn)
	ctx := context.Background()

	staff := seedStaff(t, conn)
	location, seatRows := seedLocation(t, conn, 10)
	for i := 0; i < 9; i++ {
		member := seedMemberWithUser(t, conn)
		seedActiveSubscription(t, conn, member, location, &seatRows[i], fixedNow.AddDate(0, 2, 0))
	}

	_, err := generator.GenerateAll(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 1, countNotifications(t, conn, enums.NotificationTypeHighOccupancy, staff.ID))
}
