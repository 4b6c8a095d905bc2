package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-service/internal/api/http/handlers"
	"github.com/spec-kit/repair-service/internal/auth"
	"github.com/spec-kit/repair-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Jobs           *handlers.JobsHandler
	Assignments    *handlers.AssignmentsHandler
	Customers      *handlers.CustomersHandler
	Stores         *handlers.StoresHandler
	Tracking       *handlers.TrackingHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	// Public customer-facing status page; no auth on purpose.
	app.Get("/track/:id", cfg.Tracking.Track)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())

	jobs := protected.Group("/jobs")
	jobs.Post("", cfg.Jobs.CreateJob)
	jobs.Get("", cfg.Jobs.ListJobs)
	jobs.Get("/:id", cfg.Jobs.GetJob)
	jobs.Post("/:id/transition", cfg.Jobs.Transition)
	jobs.Post("/:id/reopen", cfg.Jobs.Reopen)
	jobs.Post("/:id/payment", cfg.Jobs.RecordPayment)
	jobs.Post("/:id/notes", cfg.Jobs.AddNote)
	jobs.Get("/:id/notes", cfg.Jobs.ListNotes)
	jobs.Get("/:id/assignment", cfg.Assignments.GetActive)

	protected.Post("/assignments", cfg.Assignments.Assign)

	protected.Get("/customers/lookup", cfg.Customers.Lookup)

	stores := protected.Group("/stores")
	stores.Get("", cfg.Stores.ListStores)
	stores.Get("/:id", cfg.Stores.GetStore)
	stores.Patch("/:id/contact", auth.RequireRole(domain.RoleAdmin), cfg.Stores.UpdateContact)
	stores.Get("/:id/technicians", cfg.Stores.ListTechnicians)
	stores.Post("/:id/technicians", auth.RequireRole(domain.RoleAdmin), cfg.Stores.LinkTechnician)
	stores.Delete("/:id/technicians/:technicianID", auth.RequireRole(domain.RoleAdmin), cfg.Stores.UnlinkTechnician)
}
