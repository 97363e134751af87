package handler

import (
	"net/http"
	"time"

	"github.com/pvmanagement/auth-system/internal/core/domain"
)

const (
	// RefreshCookieName is the fixed name of the refresh-token cookie.
	RefreshCookieName = "pv_refresh_token"

	refreshCookiePath = "/api/auth"
)

// CookieService converts a refresh token into transport-cookie attributes.
// Pure function of configuration and token.
type CookieService struct {
	secure bool
}

func NewCookieService(secure bool) *CookieService {
	return &CookieService{secure: secure}
}

// BuildRefreshCookie binds the refresh token to an HttpOnly cookie scoped to
// the auth endpoint namespace. Max-Age is the whole seconds until expiry,
// clamped at zero for an already-expired token.
func (s *CookieService) BuildRefreshCookie(token *domain.RefreshToken) *http.Cookie {
	maxAge := int(time.Until(token.ExpiresAt).Seconds())
	if maxAge <= 0 {
		// net/http serializes negative MaxAge as Max-Age=0; an expired
		// token must clear the cookie, not become a session cookie.
		maxAge = -1
	}
	return s.cookie(token.Token, maxAge)
}

// ClearRefreshCookie returns the same cookie with an empty value and
// Max-Age=0, used on logout and on refresh failure.
func (s *CookieService) ClearRefreshCookie() *http.Cookie {
	return s.cookie("", -1)
}

func (s *CookieService) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     refreshCookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteNoneMode,
	}
}
