package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/evolvespaces/evolve-backend/internal/auth"
	"github.com/evolvespaces/evolve-backend/internal/expenses"
	"github.com/evolvespaces/evolve-backend/internal/grievances"
	"github.com/evolvespaces/evolve-backend/internal/inventory"
	"github.com/evolvespaces/evolve-backend/internal/locations"
	"github.com/evolvespaces/evolve-backend/internal/members"
	"github.com/evolvespaces/evolve-backend/internal/notifications"
	"github.com/evolvespaces/evolve-backend/internal/subscriptions"
	"github.com/evolvespaces/evolve-backend/internal/users"
	pkgauth "github.com/evolvespaces/evolve-backend/pkg/auth"
	"github.com/evolvespaces/evolve-backend/pkg/auth/session"
	"github.com/evolvespaces/evolve-backend/pkg/config"
	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	dbtypes "github.com/evolvespaces/evolve-backend/pkg/db/types"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
	"github.com/evolvespaces/evolve-backend/pkg/logger"
	"github.com/evolvespaces/evolve-backend/pkg/pagination"
	"github.com/evolvespaces/evolve-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

type stubMembersService struct{}

func (stubMembersService) Create(ctx context.Context, params members.CreateParams) (*models.Member, error) {
	return &models.Member{}, nil
}

func (stubMembersService) Get(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	return &models.Member{}, nil
}

func (stubMembersService) List(ctx context.Context, params pagination.Params) ([]models.Member, error) {
	return nil, nil
}

func (stubMembersService) Update(ctx context.Context, id uuid.UUID, params members.UpdateParams) (*models.Member, error) {
	return &models.Member{}, nil
}

func (stubMembersService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubLocationsService struct{}

func (stubLocationsService) Create(ctx context.Context, params locations.CreateParams) (*models.Location, error) {
	return &models.Location{}, nil
}

func (stubLocationsService) Get(ctx context.Context, id uuid.UUID) (*locations.Occupancy, error) {
	return &locations.Occupancy{}, nil
}

func (stubLocationsService) List(ctx context.Context) ([]locations.Occupancy, error) {
	return nil, nil
}

func (stubLocationsService) Update(ctx context.Context, id uuid.UUID, params locations.UpdateParams) (*models.Location, error) {
	return &models.Location{}, nil
}

func (stubLocationsService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubSubscriptionsService struct {
	assignFn func(ctx context.Context, params subscriptions.AssignParams) (*subscriptions.AssignResult, error)
}

func (s stubSubscriptionsService) SweepExpired(ctx context.Context, now time.Time) (subscriptions.SweepResult, error) {
	return subscriptions.SweepResult{}, nil
}

func (s stubSubscriptionsService) Assign(ctx context.Context, params subscriptions.AssignParams) (*subscriptions.AssignResult, error) {
	if s.assignFn != nil {
		return s.assignFn(ctx, params)
	}
	return &subscriptions.AssignResult{Subscription: &models.Subscription{}}, nil
}

func (s stubSubscriptionsService) List(ctx context.Context, query subscriptions.ListQuery) ([]models.Subscription, error) {
	return nil, nil
}

func (s stubSubscriptionsService) Get(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	return &models.Subscription{}, nil
}

type stubWaitingListService struct{}

func (stubWaitingListService) List(ctx context.Context, locationID *uuid.UUID) ([]models.WaitingListEntry, error) {
	return nil, nil
}

func (stubWaitingListService) Remove(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(ctx context.Context, query notifications.ListQuery) ([]models.Notification, error) {
	return nil, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) Create(ctx context.Context, params notifications.CreateParams) (*models.Notification, error) {
	return &models.Notification{}, nil
}

func (stubNotificationsService) Generate(ctx context.Context) (notifications.GenerateResult, error) {
	return notifications.GenerateResult{}, nil
}

func (stubNotificationsService) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubGrievancesService struct{}

func (stubGrievancesService) Create(ctx context.Context, params grievances.CreateParams) (*models.Grievance, error) {
	return &models.Grievance{}, nil
}

func (stubGrievancesService) Get(ctx context.Context, id uuid.UUID) (*models.Grievance, error) {
	return &models.Grievance{}, nil
}

func (stubGrievancesService) List(ctx context.Context, query grievances.ListQuery) ([]models.Grievance, error) {
	return nil, nil
}

func (stubGrievancesService) UpdateStatus(ctx context.Context, id uuid.UUID, next enums.GrievanceStatus) (*models.Grievance, error) {
	return &models.Grievance{}, nil
}

type stubInventoryService struct{}

func (stubInventoryService) Create(ctx context.Context, params inventory.CreateParams) (*models.InventoryItem, error) {
	return &models.InventoryItem{}, nil
}

func (stubInventoryService) Get(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	return &models.InventoryItem{}, nil
}

func (stubInventoryService) List(ctx context.Context, query inventory.ListQuery) ([]models.InventoryItem, error) {
	return nil, nil
}

func (stubInventoryService) Update(ctx context.Context, id uuid.UUID, params inventory.UpdateParams) (*models.InventoryItem, error) {
	return &models.InventoryItem{}, nil
}

func (stubInventoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubExpensesService struct{}

func (stubExpensesService) Create(ctx context.Context, params expenses.CreateParams) (*models.Expense, error) {
	return &models.Expense{}, nil
}

func (stubExpensesService) List(ctx context.Context, query expenses.ListQuery) ([]models.Expense, error) {
	return nil, nil
}

func (stubExpensesService) MonthlyTotal(ctx context.Context, locationID uuid.UUID, month time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (stubExpensesService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func testServices(subs subscriptions.Service) Services {
	return Services{
		Auth:          stubAuthService{},
		Register:      stubRegisterService{},
		Members:       stubMembersService{},
		Locations:     stubLocationsService{},
		Subscriptions: subs,
		WaitingList:   stubWaitingListService{},
		Notifications: stubNotificationsService{},
		Grievances:    stubGrievancesService{},
		Inventory:     stubInventoryService{},
		Expenses:      stubExpensesService{},
	}
}

func newTestRouter(cfg *config.Config, subs subscriptions.Service) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(cfg, logg, stubPinger{}, (*redis.Client)(nil), stubSessionManager{}, testServices(subs))
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole, locationIDs ...uuid.UUID) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:      uuid.New(),
		Role:        role,
		LocationIDs: dbtypes.UUIDArray(locationIDs),
		JTI:         session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), stubSubscriptionsService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, stubSubscriptionsService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for private ping got %d", resp.Code)
	}
}

func TestStaffGroupRejectsMembers(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, stubSubscriptionsService{})

	member := httptest.NewRequest(http.MethodGet, "/api/v1/members/", nil)
	member.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, member)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for member role got %d", resp.Code)
	}

	manager := httptest.NewRequest(http.MethodGet, "/api/v1/members/", nil)
	manager.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleManager))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, manager)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for manager got %d", resp.Code)
	}
}

func TestRegisterRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, stubSubscriptionsService{})
	body := `{"name":"Desk Admin","email":"desk@evolve.test","password":"longenough1","role":"admin"}`

	manager := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	manager.Header.Set("Content-Type", "application/json")
	manager.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleManager))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, manager)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for manager register got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	admin.Header.Set("Content-Type", "application/json")
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin register got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestLocationScopeBlocksForeignManager(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, stubSubscriptionsService{})
	assigned := uuid.New()
	foreign := uuid.New()

	blocked := httptest.NewRequest(http.MethodGet, "/api/v1/locations/"+foreign.String(), nil)
	blocked.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleManager, assigned))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, blocked)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign location got %d", resp.Code)
	}

	allowed := httptest.NewRequest(http.MethodGet, "/api/v1/locations/"+assigned.String(), nil)
	allowed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleManager, assigned))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, allowed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for assigned location got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/locations/"+foreign.String(), nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestSubscriptionAssignQueuedReturns200(t *testing.T) {
	cfg := testConfig()
	queued := stubSubscriptionsService{
		assignFn: func(ctx context.Context, params subscriptions.AssignParams) (*subscriptions.AssignResult, error) {
			return &subscriptions.AssignResult{
				Queued:       true,
				Message:      subscriptions.WaitingListMessage,
				WaitingEntry: &models.WaitingListEntry{},
			}, nil
		},
	}
	router := newTestRouter(cfg, queued)

	body := `{"member_id":"` + uuid.NewString() + `","location_id":"` + uuid.NewString() + `","seat_number":4,` +
		`"start_date":"2024-01-01T00:00:00Z","duration":"monthly","amount":"1500","payment_method":"upi"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for queued assignment got %d: %s", resp.Code, resp.Body.String())
	}
	var payload struct {
		Data struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.Message != subscriptions.WaitingListMessage {
		t.Fatalf("expected waiting list message got %q", payload.Data.Message)
	}
}

func TestSubscriptionAssignCreatedReturns201(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, stubSubscriptionsService{})

	body := `{"member_id":"` + uuid.NewString() + `","location_id":"` + uuid.NewString() + `","seat_number":4,` +
		`"start_date":"2024-01-01T00:00:00Z","duration":"monthly","amount":"1500","payment_method":"cash"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for fresh assignment got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestNotificationFeedOpenToMembers(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, stubSubscriptionsService{})

	feed := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/", nil)
	feed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, feed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for member feed got %d", resp.Code)
	}

	generate := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/generate", nil)
	generate.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleMember))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, generate)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for member generate got %d", resp.Code)
	}
}

func TestNotificationPurgeRequiresAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, stubSubscriptionsService{})

	manager := httptest.NewRequest(http.MethodDelete, "/api/v1/notifications/", nil)
	manager.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleManager))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, manager)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for manager purge got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodDelete, "/api/v1/notifications/", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin purge got %d", resp.Code)
	}
}
