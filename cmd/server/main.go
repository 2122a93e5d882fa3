package main

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/arturoeanton/codehub/internal/adapter/auth"
	"github.com/arturoeanton/codehub/internal/adapter/store"
	"github.com/arturoeanton/codehub/internal/adapter/vcs"
	"github.com/arturoeanton/codehub/internal/handler"
	"github.com/arturoeanton/codehub/internal/middleware"
	"github.com/arturoeanton/codehub/internal/port"
	"github.com/arturoeanton/codehub/internal/service"
	"github.com/arturoeanton/codehub/pkg/config"
	"github.com/arturoeanton/codehub/pkg/logger"
	"github.com/gofiber/fiber/v3"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()
	logger.Setup(cfg)

	slog.Info("starting codehub",
		"port", cfg.Port,
		"tree_max_entries", cfg.TreeMaxEntries,
		"metrics_enabled", cfg.MetricsEnabled,
	)

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	if cfg.DBAutoMigrate {
		if err := pgStore.Migrate(); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	// ── Adapters ─────────────────────────────────────────────────────────
	providers := port.AuthProviderRegistry{}
	if cfg.GitHubClientID != "" {
		providers["github"] = auth.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubRedirectURL)
	} else {
		slog.Warn("GITHUB_CLIENT_ID not set, sign-in disabled")
	}

	gitVCS := vcs.NewGitProvider()

	session := middleware.SessionConfig{
		Secret:    cfg.SessionSecret,
		Issuer:    cfg.SessionIssuer,
		Cookie:    cfg.SessionCookie,
		ExpiresIn: cfg.SessionTTL(),
	}

	// ── Services ─────────────────────────────────────────────────────────
	services := handler.Services{
		Repos:    service.NewRepoService(pgStore, gitVCS, cfg.TreeMaxEntries),
		Projects: service.NewProjectService(pgStore),
		Auth:     service.NewAuthService(providers, pgStore, session),
	}

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	var metrics *middleware.Metrics
	if cfg.MetricsEnabled {
		metrics = middleware.NewMetrics()
	}

	// ── Routes ───────────────────────────────────────────────────────────
	handler.Mount(app, services, handler.MountConfig{
		Session:      session,
		SignInURL:    cfg.SignInURL,
		SecureCookie: strings.HasPrefix(cfg.GitHubRedirectURL, "https://"),
		Metrics:      metrics,
		Health: func(c fiber.Ctx) error {
			status := "healthy"
			if err := pgStore.Ping(c.Context()); err != nil {
				slog.Warn("health check: database unreachable", "error", err)
				status = "degraded"
			}
			return c.JSON(fiber.Map{
				"status":  status,
				"app":     cfg.AppName,
				"version": "1.0.0",
			})
		},
	})

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
