package handler

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pvmanagement/auth-system/internal/api/metrics"
	"github.com/pvmanagement/auth-system/internal/api/middleware"
	"github.com/pvmanagement/auth-system/internal/core/domain"
	"github.com/pvmanagement/auth-system/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	demoService ports.DemoAccessService
	rateLimiter ports.DemoRateLimiter
	tokens      ports.TokenService
	cookies     *CookieService
	demoScope   string
}

func NewAuthHandler(
	authService ports.AuthService,
	demoService ports.DemoAccessService,
	rateLimiter ports.DemoRateLimiter,
	tokens ports.TokenService,
	cookies *CookieService,
	demoScope string,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		demoService: demoService,
		rateLimiter: rateLimiter,
		tokens:      tokens,
		cookies:     cookies,
		demoScope:   demoScope,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"required"`
}

// Login authenticates a user and returns an access token plus refresh cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  domain.AuthResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	c.SetCookie(h.cookies.BuildRefreshCookie(result.RefreshToken))
	return c.JSON(http.StatusOK, result.Response)
}

// Register creates a new account and logs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  domain.AuthResponse
// @Failure      409  {object}  map[string]string
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		outcome := "failure"
		if errors.Is(err, domain.ErrUserExists) {
			outcome = "conflict"
		}
		metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()

	c.SetCookie(h.cookies.BuildRefreshCookie(result.RefreshToken))
	return c.JSON(http.StatusOK, result.Response)
}

// Refresh rotates the refresh token named by the cookie. Any failure clears
// the cookie alongside the 401.
//
// @Summary      Rotate the refresh token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.AuthResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		metrics.RefreshRotationsTotal.WithLabelValues("rejected").Inc()
		c.SetCookie(h.cookies.ClearRefreshCookie())
		return domain.ErrInvalidRefreshToken
	}

	result, err := h.authService.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRefreshToken) {
			metrics.RefreshRotationsTotal.WithLabelValues("rejected").Inc()
			c.SetCookie(h.cookies.ClearRefreshCookie())
		}
		return err
	}
	metrics.RefreshRotationsTotal.WithLabelValues("success").Inc()

	c.SetCookie(h.cookies.BuildRefreshCookie(result.RefreshToken))
	return c.JSON(http.StatusOK, result.Response)
}

// Logout revokes the refresh token named by the cookie (if any) and always
// clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(RefreshCookieName); err == nil && cookie.Value != "" {
		if err := h.authService.Logout(c.Request().Context(), cookie.Value); err != nil {
			return err
		}
	}

	c.SetCookie(h.cookies.ClearRefreshCookie())
	return c.NoContent(http.StatusNoContent)
}

// DemoLogin resolves a demo slug to key metadata, applies the per-IP rate
// limiter and redeems a freshly minted demo token.
//
// @Summary      Demo login
// @Tags         auth
// @Produce      json
// @Param        slug  path  string  true  "Demo key id"
// @Success      200  {object}  domain.AuthResponse
// @Failure      400  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Router       /api/auth/demo-login/{slug} [get]
func (h *AuthHandler) DemoLogin(c echo.Context) error {
	key, err := h.demoService.FindTokenDetails(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}

	ip := clientIP(c)
	if !h.rateLimiter.TryConsume(c.Request().Context(), ip) {
		metrics.RateLimitRejectionsTotal.Inc()
		return domain.ErrRateLimited
	}

	demoToken, err := h.tokens.GenerateDemoToken(key.Org, key.KeyID, h.demoScope)
	if err != nil {
		return err
	}

	result, err := h.demoService.Redeem(c.Request().Context(), demoToken, ip, c.Request().UserAgent())
	if err != nil {
		metrics.DemoRedemptionsTotal.WithLabelValues("rejected").Inc()
		return err
	}
	metrics.DemoRedemptionsTotal.WithLabelValues("success").Inc()

	c.SetCookie(h.cookies.BuildRefreshCookie(result.RefreshToken))
	return c.JSON(http.StatusOK, result.Response)
}

// Profile returns the authenticated principal's profile.
//
// @Summary      Current user profile
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.UserProfile
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	user := middleware.Principal(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	profile, err := h.authService.Profile(c.Request().Context(), user.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// clientIP prefers the left-most entry of X-Forwarded-For and falls back to
// the direct remote address.
func clientIP(c echo.Context) string {
	if fwd := c.Request().Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.Index(fwd, ","); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	if ip, _, err := net.SplitHostPort(c.Request().RemoteAddr); err == nil {
		return ip
	}
	return c.Request().RemoteAddr
}
