package routes

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/prem22k/c3-backend/applications/auth"
	"github.com/prem22k/c3-backend/applications/email"
	"github.com/prem22k/c3-backend/applications/recruitment"
	"github.com/prem22k/c3-backend/applications/registration"
	"github.com/prem22k/c3-backend/config"
	"github.com/prem22k/c3-backend/controllers"
	"github.com/prem22k/c3-backend/db"
)

// Deps are the long-lived collaborators built once in main.
type Deps struct {
	Log    *slog.Logger
	Config config.Config
	Store  db.Store
	Sender email.Sender
	Cards  registration.CardRenderer
}

// New builds the echo instance with middleware and every route mounted.
func New(d Deps) *echo.Echo {
	cfg := d.Config
	log := d.Log

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, auth.APIKeyHeader},
	}))

	// --- Use cases ---
	allowlist := recruitment.NewDomainAllowlist(cfg.RecruitmentDomains)
	registerUC := registration.NewRegisterMemberUC(log, d.Store, d.Sender, d.Cards, cfg.EmailStrict)
	unlockUC := recruitment.NewUnlockCandidateUC(log, d.Store, allowlist)

	health := controllers.NewHealthController(log, d.Store)
	reg := controllers.NewRegistrationController(log, registerUC, d.Sender)
	rec := controllers.NewRecruitmentController(log, unlockUC, allowlist)

	// --- 1. PUBLIC ROUTES ---
	e.GET("/health", health.Health)
	e.GET("/ready", health.Ready)
	e.POST("/test", health.Echo)

	// --- 2. API ROUTES (rate limited) ---
	api := e.Group("/api")
	api.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(cfg.RateLimitRPS),
			Burst: cfg.RateLimitBurst,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			log.Warn(fmt.Sprintf("[router] Rate limit exceeded for %s", identifier))
			return c.JSON(http.StatusTooManyRequests, controllers.ErrorResponse{Message: "error", Error: "Too many requests, please try again later."})
		},
	}))

	requireKey := auth.RequireAPIKey(cfg.APIKey)

	api.GET("/register", reg.Info)
	api.POST("/register", reg.Register)
	api.POST("/register/unlock", rec.Unlock, requireKey)
	api.GET("/register/test-email", reg.TestEmail, requireKey)

	api.GET("/recruitment", rec.Info)
	api.POST("/recruitment/unlock", rec.Unlock, requireKey)
	log.Info("[router] Public registration and recruitment routes configured.")

	// --- 3. ADMIN GROUP (JWT + admin role) ---
	if cfg.JWTSecret == "" {
		log.Warn("[router] JWT_SECRET not set; admin routes disabled.")
		return e
	}

	secret := []byte(cfg.JWTSecret)
	admin := controllers.NewAdminController(log,
		auth.NewLoginAdminUC(log, cfg.AdminEmail, cfg.AdminPasswordHash, secret),
		registration.NewListMembersUC(log, d.Store),
		registration.NewRenderMemberCardUC(log, d.Store, d.Cards),
		recruitment.NewListCandidatesUC(log, d.Store),
	)

	api.POST("/admin/login", admin.Login)

	protected := api.Group("/admin", auth.JWTAuthMiddleware(secret), auth.AdminOnlyMiddleware)
	protected.GET("/registrations", admin.ListRegistrations)
	protected.GET("/registrations/:email/card", admin.DownloadCard)
	protected.GET("/recruitment", admin.ListCandidates)
	log.Info("[router] Admin routes configured.")

	return e
}
