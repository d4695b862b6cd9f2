package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/armeriaops/armimport-backend/pkg/auth"
	"github.com/armeriaops/armimport-backend/pkg/config"
	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
	"github.com/armeriaops/armimport-backend/pkg/security"
)

func TestServiceLoginMintsTokenAndOpensSession(t *testing.T) {
	password := "vendor-secret-123"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "vendor@armimport.ec",
		PasswordHash: mustHashPassword(t, password),
		FullName:     "Vendor One",
		Role:         enums.UserRoleVendor,
		Active:       true,
	}
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "armimport",
		ExpirationMinutes: 30,
	}

	sessions := &stubSessionManager{}
	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{user: user},
		SessionManager: sessions,
		JWTConfig:      cfg,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "  Vendor@armimport.ec ",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id %s in claims, got %s", user.ID, claims.UserID)
	}
	if claims.Role != enums.UserRoleVendor {
		t.Fatalf("expected vendor role claim, got %s", claims.Role)
	}
	if sessions.opened != claims.ID {
		t.Fatalf("expected session opened for jti %s, got %s", claims.ID, sessions.opened)
	}
	if resp.User == nil || resp.User.LastLoginAt == nil {
		t.Fatalf("expected last login recorded on response user")
	}
}

func TestServiceLoginRejectsWrongPassword(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "ops@armimport.ec",
		PasswordHash: mustHashPassword(t, "correct-password"),
		Role:         enums.UserRoleOperations,
		Active:       true,
	}

	svc := mustBuildService(t, &stubUserRepo{user: user})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "wrong-password",
	})
	assertUnauthorized(t, err)
}

func TestServiceLoginRejectsInactiveUser(t *testing.T) {
	password := "still-valid-pass"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "gone@armimport.ec",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleVendor,
		Active:       false,
	}

	svc := mustBuildService(t, &stubUserRepo{user: user})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	assertUnauthorized(t, err)
}

func TestServiceLoginUnknownEmail(t *testing.T) {
	svc := mustBuildService(t, &stubUserRepo{err: gorm.ErrRecordNotFound})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@armimport.ec",
		Password: "whatever",
	})
	assertUnauthorized(t, err)
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	sessions := &stubSessionManager{}
	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{},
		SessionManager: sessions,
		JWTConfig:      config.JWTConfig{Secret: "s", Issuer: "i", ExpirationMinutes: 5},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	if err := svc.Logout(context.Background(), "jti-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if sessions.revoked != "jti-1" {
		t.Fatalf("expected session jti-1 revoked, got %q", sessions.revoked)
	}

	if err := svc.Logout(context.Background(), "  "); err == nil {
		t.Fatalf("expected logout without session to fail")
	}
}

func mustBuildService(t *testing.T, repo *stubUserRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: &stubSessionManager{},
		JWTConfig: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "armimport",
			ExpirationMinutes: 30,
		},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected unauthorized error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if typed.Message() != invalidCredentialsMessage {
		t.Fatalf("expected uniform credential message, got %q", typed.Message())
	}
}

type stubUserRepo struct {
	user *models.User
	err  error
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

type stubSessionManager struct {
	opened  string
	revoked string
}

func (s *stubSessionManager) Open(ctx context.Context, accessID string, userID uuid.UUID) error {
	s.opened = accessID
	return nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = accessID
	return nil
}
