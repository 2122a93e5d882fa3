package handler

import (
	"github.com/arturoeanton/codehub/internal/middleware"
	"github.com/arturoeanton/codehub/internal/service"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles what the handlers depend on.
type Services struct {
	Repos    *service.RepoService
	Projects *service.ProjectService
	Auth     *service.AuthService
}

// MountConfig controls route registration.
type MountConfig struct {
	Session      middleware.SessionConfig
	SignInURL    string
	SecureCookie bool

	// Metrics enables request metrics and the /metrics endpoint when set.
	Metrics *middleware.Metrics
	// Health serves /api/v1/health when set.
	Health fiber.Handler
}

// Mount installs the auth gate and every route. Registration order matters:
// the gate runs before any handler, and the repository page catch-all goes
// last.
func Mount(app *fiber.App, svc Services, cfg MountConfig) {
	if cfg.Metrics != nil {
		app.Use(middleware.MetricsMiddleware(cfg.Metrics))
	}
	app.Use(middleware.Gate(middleware.GateConfig{
		Session:   cfg.Session,
		SignInURL: cfg.SignInURL,
	}))

	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}
	if cfg.Health != nil {
		app.Get("/api/v1/health", cfg.Health)
	}

	requireSession := middleware.RequireSession(cfg.Session)

	NewAuthHandler(svc.Auth, cfg.Session, cfg.SecureCookie).Register(app)
	NewRepoHandler(svc.Repos).Register(app, requireSession)
	NewVecHandler(svc.Repos).Register(app)
	NewProjectHandler(svc.Projects).Register(app)
	NewPageHandler(svc.Repos, svc.Projects).Register(app)
}
