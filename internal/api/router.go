package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pvmanagement/auth-system/internal/api/handler"
	"github.com/pvmanagement/auth-system/internal/api/middleware"
	"github.com/pvmanagement/auth-system/internal/core/domain"
	"github.com/pvmanagement/auth-system/internal/core/ports"
	"github.com/pvmanagement/auth-system/internal/core/service"
	"github.com/pvmanagement/auth-system/internal/infrastructure/config"
	mongodb "github.com/pvmanagement/auth-system/internal/infrastructure/db/mongo"
	redisdb "github.com/pvmanagement/auth-system/internal/infrastructure/db/redis"
	"github.com/pvmanagement/auth-system/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("pvauth"))

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	refreshRepo := mongodb.NewRefreshTokenRepository(db)
	demoKeyRepo := mongodb.NewDemoKeyRepository(db)
	redemptionRepo := mongodb.NewDemoRedemptionRepository(db)

	// --- Services ---
	tokenService := service.NewTokenService(cfg.JWT.Secret, cfg.Demo.Secret, cfg.JWT.AccessTTL)
	refreshService := service.NewRefreshTokenService(refreshRepo, cfg.JWT.RefreshTTL, log)
	authService := service.NewAuthService(userRepo, tokenService, refreshService, log)
	demoService := service.NewDemoAccessService(tokenService, demoKeyRepo, redemptionRepo, userRepo, authService,
		service.DemoAccessConfig{
			Scope:                 cfg.Demo.Scope,
			DefaultMaxActivations: cfg.Demo.MaxActivations,
			KeyValidity:           cfg.Demo.KeyValidity(),
		}, log)

	var rateLimiter ports.DemoRateLimiter
	if cfg.Demo.RateBackend == "redis" {
		rateLimiter = redisdb.NewRateLimiter(rdb, cfg.Demo.RateLimit, cfg.Demo.RateWindow, log)
	} else {
		rateLimiter = service.NewMemoryRateLimiter(cfg.Demo.RateLimit, cfg.Demo.RateWindow)
	}

	// --- Handlers & middleware ---
	cookies := handler.NewCookieService(cfg.JWT.RefreshCookieSecure)
	authHandler := handler.NewAuthHandler(authService, demoService, rateLimiter, tokenService, cookies, cfg.Demo.Scope)
	authenticate := middleware.Authentication(tokenService, userRepo)

	e.Use(authenticate)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/demo-login/:slug", authHandler.DemoLogin)
	auth.GET("/profile", authHandler.Profile,
		middleware.RequireRole(domain.RoleUser, domain.RoleAdmin, domain.RoleDemo))

	// --- Health probes & metrics (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
