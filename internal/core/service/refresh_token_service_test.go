package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pvmanagement/auth-system/internal/core/domain"
)

func testUser(email string) *domain.UserAccount {
	return &domain.UserAccount{
		Email:       email,
		DisplayName: "Test User",
		Roles:       []string{domain.RoleUser},
	}
}

func TestRefreshTokenService_CreateForUser_SetsExpiry(t *testing.T) {
	repo := newStubRefreshRepo()
	svc := NewRefreshTokenService(repo, time.Hour, zerolog.Nop())

	before := time.Now().UTC()
	token, err := svc.CreateForUser(context.Background(), testUser("user@example.com"))
	after := time.Now().UTC()
	if err != nil {
		t.Fatalf("CreateForUser returned error: %v", err)
	}

	if token.Token == "" {
		t.Fatalf("expected non-empty token value")
	}
	if token.Revoked {
		t.Fatalf("fresh token must not be revoked")
	}
	if token.UserEmail != "user@example.com" {
		t.Fatalf("unexpected owner: %s", token.UserEmail)
	}
	if token.ExpiresAt.Before(before.Add(time.Hour)) || token.ExpiresAt.After(after.Add(time.Hour)) {
		t.Fatalf("expiry out of bounds: %v", token.ExpiresAt)
	}
}

func TestRefreshTokenService_CreateForUser_ReplacesExistingTokens(t *testing.T) {
	repo := newStubRefreshRepo()
	svc := NewRefreshTokenService(repo, time.Hour, zerolog.Nop())
	user := testUser("user@example.com")

	first, err := svc.CreateForUser(context.Background(), user)
	if err != nil {
		t.Fatalf("first CreateForUser: %v", err)
	}
	second, err := svc.CreateForUser(context.Background(), user)
	if err != nil {
		t.Fatalf("second CreateForUser: %v", err)
	}

	if first.Token == second.Token {
		t.Fatalf("expected distinct token values")
	}
	if n := repo.count(); n != 1 {
		t.Fatalf("expected exactly one token row, got %d", n)
	}
	if _, err := repo.FindByToken(context.Background(), first.Token); err != domain.ErrRefreshTokenNotFound {
		t.Fatalf("expected first token to be deleted, got %v", err)
	}
}

func TestRefreshTokenService_Rotate_Missing(t *testing.T) {
	repo := newStubRefreshRepo()
	svc := NewRefreshTokenService(repo, time.Hour, zerolog.Nop())

	if _, err := svc.Rotate(context.Background(), "missing"); err != domain.ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRefreshTokenService_Rotate_RevokedDeletesRow(t *testing.T) {
	repo := newStubRefreshRepo()
	svc := NewRefreshTokenService(repo, time.Hour, zerolog.Nop())

	_ = repo.Save(context.Background(), &domain.RefreshToken{
		Token:     "revoked-token",
		UserEmail: "user@example.com",
		ExpiresAt: time.Now().Add(time.Minute),
		Revoked:   true,
	})

	if _, err := svc.Rotate(context.Background(), "revoked-token"); err != domain.ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
	if n := repo.count(); n != 0 {
		t.Fatalf("expected stale row to be deleted, %d rows remain", n)
	}
}

func TestRefreshTokenService_Rotate_ExpiredDeletesRow(t *testing.T) {
	repo := newStubRefreshRepo()
	svc := NewRefreshTokenService(repo, time.Hour, zerolog.Nop())

	_ = repo.Save(context.Background(), &domain.RefreshToken{
		Token:     "expired-token",
		UserEmail: "user@example.com",
		ExpiresAt: time.Now().Add(-5 * time.Second),
	})

	if _, err := svc.Rotate(context.Background(), "expired-token"); err != domain.ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
	if n := repo.count(); n != 0 {
		t.Fatalf("expected stale row to be deleted, %d rows remain", n)
	}
}

func TestRefreshTokenService_Rotate_RevokesOldAndIssuesReplacement(t *testing.T) {
	repo := newStubRefreshRepo()
	svc := NewRefreshTokenService(repo, 30*time.Minute, zerolog.Nop())

	_ = repo.Save(context.Background(), &domain.RefreshToken{
		Token:     "existing-token",
		UserEmail: "user@example.com",
		ExpiresAt: time.Now().Add(2 * time.Minute),
	})

	before := time.Now().UTC()
	replacement, err := svc.Rotate(context.Background(), "existing-token")
	after := time.Now().UTC()
	if err != nil {
		t.Fatalf("Rotate returned error: %v", err)
	}

	if replacement.Token == "existing-token" {
		t.Fatalf("expected a structurally new token value")
	}
	if replacement.UserEmail != "user@example.com" {
		t.Fatalf("unexpected owner: %s", replacement.UserEmail)
	}
	if replacement.Revoked {
		t.Fatalf("replacement must not be revoked")
	}
	if replacement.ExpiresAt.Before(before.Add(30*time.Minute)) || replacement.ExpiresAt.After(after.Add(30*time.Minute)) {
		t.Fatalf("replacement expiry out of bounds: %v", replacement.ExpiresAt)
	}

	// The rotated row stays behind, revoked, as an audit trail.
	old, err := repo.FindByToken(context.Background(), "existing-token")
	if err != nil {
		t.Fatalf("expected rotated row to remain: %v", err)
	}
	if !old.Revoked {
		t.Fatalf("expected rotated row to be marked revoked")
	}
}

func TestRefreshTokenService_Rotate_ReplayOfRotatedTokenFails(t *testing.T) {
	repo := newStubRefreshRepo()
	svc := NewRefreshTokenService(repo, time.Hour, zerolog.Nop())

	_ = repo.Save(context.Background(), &domain.RefreshToken{
		Token:     "token-1",
		UserEmail: "user@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	})

	if _, err := svc.Rotate(context.Background(), "token-1"); err != nil {
		t.Fatalf("first rotation failed: %v", err)
	}
	if _, err := svc.Rotate(context.Background(), "token-1"); err != domain.ErrInvalidRefreshToken {
		t.Fatalf("expected replay to fail with ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRefreshTokenService_Revoke_MarksRowRevoked(t *testing.T) {
	repo := newStubRefreshRepo()
	svc := NewRefreshTokenService(repo, time.Hour, zerolog.Nop())

	_ = repo.Save(context.Background(), &domain.RefreshToken{
		Token:     "value",
		UserEmail: "user@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	})

	if err := svc.Revoke(context.Background(), "value"); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	row, err := repo.FindByToken(context.Background(), "value")
	if err != nil {
		t.Fatalf("expected row to remain: %v", err)
	}
	if !row.Revoked {
		t.Fatalf("expected row to be revoked")
	}

	// Revoking again is harmless.
	if err := svc.Revoke(context.Background(), "value"); err != nil {
		t.Fatalf("second Revoke returned error: %v", err)
	}
}

func TestRefreshTokenService_Revoke_MissingIsNoop(t *testing.T) {
	repo := newStubRefreshRepo()
	svc := NewRefreshTokenService(repo, time.Hour, zerolog.Nop())

	if err := svc.Revoke(context.Background(), "missing"); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
