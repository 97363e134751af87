package handler

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/pvmanagement/auth-system/internal/core/domain"
)

func TestBuildRefreshCookie_Attributes(t *testing.T) {
	cookies := NewCookieService(true)
	cookie := cookies.BuildRefreshCookie(&domain.RefreshToken{
		Token:     "refresh-value",
		ExpiresAt: time.Now().Add(time.Hour),
	})

	if cookie.Name != RefreshCookieName {
		t.Fatalf("unexpected name %q", cookie.Name)
	}
	if cookie.Value != "refresh-value" {
		t.Fatalf("unexpected value %q", cookie.Value)
	}
	if cookie.Path != "/api/auth" {
		t.Fatalf("unexpected path %q", cookie.Path)
	}
	if !cookie.HttpOnly || !cookie.Secure {
		t.Fatalf("cookie must be HttpOnly and Secure")
	}
	if cookie.SameSite != http.SameSiteNoneMode {
		t.Fatalf("unexpected SameSite %v", cookie.SameSite)
	}
	if cookie.MaxAge <= 0 || cookie.MaxAge > 3600 {
		t.Fatalf("Max-Age should be the remaining lifetime in seconds, got %d", cookie.MaxAge)
	}
}

func TestBuildRefreshCookie_ExpiredTokenSerializesMaxAgeZero(t *testing.T) {
	cookies := NewCookieService(true)
	cookie := cookies.BuildRefreshCookie(&domain.RefreshToken{
		Token:     "refresh-value",
		ExpiresAt: time.Now().Add(-time.Hour),
	})

	if !strings.Contains(cookie.String(), "Max-Age=0") {
		t.Fatalf("expired token must serialize with Max-Age=0, got %q", cookie.String())
	}
}

func TestClearRefreshCookie(t *testing.T) {
	cookies := NewCookieService(false)
	cookie := cookies.ClearRefreshCookie()

	if cookie.Value != "" {
		t.Fatalf("cleared cookie must carry no value, got %q", cookie.Value)
	}
	if cookie.Secure {
		t.Fatalf("secure flag must follow configuration")
	}
	if !strings.Contains(cookie.String(), "Max-Age=0") {
		t.Fatalf("cleared cookie must serialize with Max-Age=0, got %q", cookie.String())
	}
}
