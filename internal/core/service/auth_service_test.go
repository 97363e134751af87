package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/pvmanagement/auth-system/internal/core/domain"
)

func newAuthFixture(t *testing.T) (*AuthService, *stubUserRepo, *stubRefreshRepo) {
	t.Helper()
	users := newStubUserRepo()
	refreshRepo := newStubRefreshRepo()
	tokens := NewTokenService("secret", "demo-secret", time.Hour)
	refresh := NewRefreshTokenService(refreshRepo, 24*time.Hour, zerolog.Nop())
	return NewAuthService(users, tokens, refresh, zerolog.Nop()), users, refreshRepo
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, users, _ := newAuthFixture(t)

	result, err := svc.Register(context.Background(), "User@Example.com", "password123", "Test User")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if result.Response.Token == "" {
		t.Fatalf("expected access token")
	}
	if result.Response.Email != "user@example.com" {
		t.Fatalf("unexpected email: %s", result.Response.Email)
	}
	if len(result.Response.Roles) != 1 || result.Response.Roles[0] != domain.RoleUser {
		t.Fatalf("unexpected roles: %v", result.Response.Roles)
	}
	if result.RefreshToken == nil || result.RefreshToken.Token == "" {
		t.Fatalf("expected refresh token")
	}

	stored, err := users.FindByEmail(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("stored user missing: %v", err)
	}
	if stored.PasswordHash == "password123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	if _, err := svc.Register(context.Background(), "bob@example.com", "password123", "Bob"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob@example.com", "different9", "Bob"); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_RolesMatchPersistedSet(t *testing.T) {
	svc, users, _ := newAuthFixture(t)

	if _, err := svc.Register(context.Background(), "carol@example.com", "s3cret-pass", "Carol"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Grant an extra role after registration; login must reflect the
	// persisted set at issuance time.
	stored, _ := users.FindByEmail(context.Background(), "carol@example.com")
	stored.Roles = append(stored.Roles, domain.RoleAdmin)
	_ = users.Save(context.Background(), stored)

	result, err := svc.Login(context.Background(), "carol@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	tokens := NewTokenService("secret", "demo-secret", time.Hour)
	decoded, err := tokens.Verify(result.Response.Token)
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if len(decoded.Roles) != 2 || decoded.Roles[0] != domain.RoleUser || decoded.Roles[1] != domain.RoleAdmin {
		t.Fatalf("embedded roles %v do not match persisted set", decoded.Roles)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, _ = svc.Register(context.Background(), "dave@example.com", "goodpass1", "Dave")
	if _, err := svc.Login(context.Background(), "dave@example.com", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	if _, err := svc.Login(context.Background(), "ghost@example.com", "password1"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_RefreshChain(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	login, err := svc.Register(context.Background(), "eve@example.com", "password123", "Eve")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	first, err := svc.Refresh(context.Background(), login.RefreshToken.Token)
	if err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}
	second, err := svc.Refresh(context.Background(), first.RefreshToken.Token)
	if err != nil {
		t.Fatalf("second refresh failed: %v", err)
	}

	access := map[string]bool{
		login.Response.Token:  true,
		first.Response.Token:  true,
		second.Response.Token: true,
	}
	if len(access) != 3 {
		t.Fatalf("expected three distinct access tokens")
	}
	refreshValues := map[string]bool{
		login.RefreshToken.Token:  true,
		first.RefreshToken.Token:  true,
		second.RefreshToken.Token: true,
	}
	if len(refreshValues) != 3 {
		t.Fatalf("expected three distinct refresh token values")
	}

	// Replaying any rotated token fails.
	if _, err := svc.Refresh(context.Background(), login.RefreshToken.Token); err != domain.ErrInvalidRefreshToken {
		t.Fatalf("expected rotated-token replay to fail, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), first.RefreshToken.Token); err != domain.ErrInvalidRefreshToken {
		t.Fatalf("expected rotated-token replay to fail, got %v", err)
	}
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	svc, _, refreshRepo := newAuthFixture(t)

	login, err := svc.Register(context.Background(), "frank@example.com", "password123", "Frank")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.Logout(context.Background(), login.RefreshToken.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	row, err := refreshRepo.FindByToken(context.Background(), login.RefreshToken.Token)
	if err != nil {
		t.Fatalf("expected token row to remain: %v", err)
	}
	if !row.Revoked {
		t.Fatalf("expected token to be revoked")
	}

	// Logging out with an unknown token still succeeds.
	if err := svc.Logout(context.Background(), "unknown"); err != nil {
		t.Fatalf("logout of unknown token failed: %v", err)
	}
}

func TestAuthService_Profile(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	if _, err := svc.Register(context.Background(), "grace@example.com", "password123", "Grace"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	profile, err := svc.Profile(context.Background(), "grace@example.com")
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	if profile.Email != "grace@example.com" || profile.DisplayName != "Grace" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}
