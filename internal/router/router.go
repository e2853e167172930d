package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/eduportal-api/internal/config"
	"github.com/noah-isme/eduportal-api/internal/handler"
	"github.com/noah-isme/eduportal-api/internal/middleware"
	"github.com/noah-isme/eduportal-api/internal/models"
	"github.com/noah-isme/eduportal-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	NavigationHandler *handler.NavigationHandler
	CatalogHandler    *handler.CatalogHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	ArtifactHandler   *handler.ArtifactHandler
	DashboardHandler  *handler.DashboardHandler
	JWTMiddleware     fiber.Handler
	LoginLimiter      fiber.Handler
	FilesDir          string
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())
	if deps.FilesDir != "" {
		app.Static(cfg.StoragePublicURL, deps.FilesDir)
	}

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	loginLimiter := deps.LoginLimiter
	if loginLimiter == nil {
		loginLimiter = middleware.RateLimit("login", cfg.LoginRateLimit, time.Minute)
	}
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterPublic(api.Group("/auth"), loginLimiter)
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Public routes above are matched first; everything registered below requires a session.
	secured := api.Group("", jwtMiddleware)
	staff := middleware.RequireStaff()
	studentOnly := middleware.RequireRole(models.RoleStudent)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(secured)
	}
	if deps.NavigationHandler != nil {
		deps.NavigationHandler.Register(secured)
	}
	if deps.CatalogHandler != nil {
		deps.CatalogHandler.Register(secured, staff)
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(secured, adminOnly)
	}
	if deps.ArtifactHandler != nil {
		deps.ArtifactHandler.Register(secured.Group("/artifacts"))
	}
	if deps.AssignmentHandler != nil {
		assignments := secured.Group("/assignments")
		deps.AssignmentHandler.Register(assignments, staff)

		if deps.SubmissionHandler != nil {
			deps.SubmissionHandler.Register(assignments, studentOnly, staff)
		}
	}
}
