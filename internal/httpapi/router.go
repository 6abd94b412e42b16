// Package httpapi is the fiber adapter over the services: request parsing,
// route wiring and error mapping. It holds no domain rules.
package httpapi

import (
	"drystore-backend/internal/access"
	"drystore-backend/internal/audit"
	"drystore-backend/internal/auth"
	"drystore-backend/internal/entries"
	"drystore-backend/internal/hierarchy"
	"drystore-backend/internal/metrics"
	"drystore-backend/internal/report"
	"drystore-backend/internal/session"
	"drystore-backend/internal/users"
	"drystore-backend/internal/workspace"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Deps struct {
	JWTSecret string

	Hierarchy *hierarchy.Service
	Entries   *entries.Service
	Users     *users.Service
	Audit     *audit.Service
	Workspace *workspace.Workspace
	Renderer  *report.Renderer
	Sessions  session.Registry
	Policy    access.Policy
	Metrics   *metrics.Metrics
	Log       *zap.Logger
}

func Register(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", d.Metrics.Handler())

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", RegisterAdminHandler(d.Users))
	api.Post("/auth/login", LoginHandler(d.Users, d.Sessions, d.JWTSecret))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(d.JWTSecret, d.Users, d.Sessions, d.Log))

	protected.Get("/auth/me", MeHandler(d.Hierarchy))
	protected.Post("/auth/logout", LogoutHandler(d.Sessions, d.Workspace))

	// Hierarchy, readable by every role
	protected.Get("/floors", ListFloorsHandler(d.Hierarchy))
	protected.Get("/floors/:id/counters", ListCountersHandler(d.Hierarchy))

	// Admin
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.Require(d.Policy.CheckAdmin))

	adminRoutes.Post("/floors", CreateFloorHandler(d.Hierarchy, d.Audit))
	adminRoutes.Delete("/floors/:id", DeleteFloorHandler(d.Hierarchy, d.Audit))
	adminRoutes.Post("/floors/:id/counters", CreateCounterHandler(d.Hierarchy, d.Audit))
	adminRoutes.Delete("/counters/:id", DeleteCounterHandler(d.Hierarchy, d.Audit))
	adminRoutes.Post("/users", CreateUserHandler(d.Users, d.Audit))
	adminRoutes.Get("/users", ListUsersHandler(d.Users))
	adminRoutes.Get("/audit-logs", ListAuditLogsHandler(d.Audit))

	// Entries
	protected.Post("/entries", CreateEntryHandler(d.Entries, d.Audit))
	protected.Get("/entries/mine", MyEntriesHandler(d.Entries))
	protected.Get("/entries/selection", SelectionHandler(d.Workspace))
	protected.Get("/entries", ListEntriesHandler(d.Workspace, d.Hierarchy))
	protected.Get("/entries/:id", GetEntryHandler(d.Entries))
	protected.Get("/entries/:id/pdf", EntryPDFHandler(d.Entries, d.Renderer))

	// Reports
	protected.Get("/reports/:format", ExportHandler(d.Workspace, d.Hierarchy))
}
