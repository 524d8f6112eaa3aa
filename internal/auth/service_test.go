package auth

import (
	"context"
	"testing"

	pkgauth "github.com/evolvespaces/evolve-backend/pkg/auth"
	"github.com/evolvespaces/evolve-backend/pkg/config"
	"github.com/evolvespaces/evolve-backend/pkg/db/models"
	"github.com/evolvespaces/evolve-backend/pkg/enums"
	pkgerrors "github.com/evolvespaces/evolve-backend/pkg/errors"
	"github.com/evolvespaces/evolve-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	user *models.User
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.user != nil && f.user.Email == email {
		return f.user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeSessionManager struct {
	generated []string
}

func (f *fakeSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	f.generated = append(f.generated, accessID)
	return "refresh-" + accessID, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "evolve",
		ExpirationMinutes: 30,
	}
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hashed
}

func TestLoginMintsTokenWithRoleAndLocations(t *testing.T) {
	password := "manager-secret"
	locationID := uuid.New()
	user := &models.User{
		ID:           uuid.New(),
		Email:        "manager@evolve.test",
		PasswordHash: mustHashPassword(t, password),
		Name:         "Manager",
		Role:         enums.UserRoleManager,
		LocationIDs:  []uuid.UUID{locationID},
		IsActive:     true,
	}
	cfg := testJWTConfig()
	sessions := &fakeSessionManager{}
	svc, err := NewService(ServiceParams{
		UserRepo:       &fakeUserRepo{user: user},
		SessionManager: sessions,
		JWTConfig:      cfg,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "Manager@Evolve.Test ", Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.RefreshToken == "" || resp.AccessToken == "" {
		t.Fatal("expected both tokens")
	}
	if resp.User == nil || resp.User.ID != user.ID {
		t.Fatal("expected user in response")
	}

	claims, err := pkgauth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != enums.UserRoleManager {
		t.Fatalf("unexpected role %q", claims.Role)
	}
	if len(claims.LocationIDs) != 1 || claims.LocationIDs[0] != locationID {
		t.Fatal("expected scoped location in claims")
	}
	if len(sessions.generated) != 1 || claims.ID != sessions.generated[0] {
		t.Fatal("expected session keyed by the token jti")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "admin@evolve.test",
		PasswordHash: mustHashPassword(t, "right-password"),
		Name:         "Admin",
		Role:         enums.UserRoleAdmin,
		IsActive:     true,
	}
	svc, err := NewService(ServiceParams{
		UserRepo:       &fakeUserRepo{user: user},
		SessionManager: &fakeSessionManager{},
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	cases := []LoginRequest{
		{Email: "admin@evolve.test", Password: "wrong-password"},
		{Email: "missing@evolve.test", Password: "right-password"},
		{Email: "", Password: "right-password"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized for %q, got %v", req.Email, err)
		}
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	password := "member-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "member@evolve.test",
		PasswordHash: mustHashPassword(t, password),
		Name:         "Member",
		Role:         enums.UserRoleMember,
		IsActive:     false,
	}
	svc, err := NewService(ServiceParams{
		UserRepo:       &fakeUserRepo{user: user},
		SessionManager: &fakeSessionManager{},
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
