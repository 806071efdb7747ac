package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/it-helpdesk/internal/auth"
	"github.com/spec-kit/it-helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketHandler
	Technician     *handlers.TechnicianHandler
	Admin          *handlers.AdminHandler
	Reporting      *handlers.ReportingHandler
	Notifications  *handlers.NotificationHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. The health and login endpoints are
// registered before the authentication middleware so they stay public.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	requireEmployee := auth.RequireRole(domain.RoleEmployee)
	requireChief := auth.RequireRole(domain.RoleChief)

	authed := app.Group("", cfg.AuthMiddleware.Handle)

	// per-ticket reads and the comment/attachment thread are shared across
	// roles; the services enforce the per-ticket policy
	authed.Get("/tickets/:id/comments", cfg.Tickets.ListComments)
	authed.Post("/tickets/:id/comments", cfg.Tickets.AddComment)
	authed.Get("/tickets/:id/attachments", cfg.Tickets.ListAttachments)
	authed.Post("/tickets/:id/attachments", cfg.Tickets.AddAttachment)
	authed.Get("/tickets/:id", cfg.Tickets.Get)

	authed.Get("/notifications", cfg.Notifications.List)
	authed.Patch("/notifications", cfg.Notifications.MarkRead)

	authed.Get("/employees/subordinates", cfg.Tickets.ListSubordinates)

	authed.Post("/tickets", requireEmployee, cfg.Tickets.Create)
	authed.Get("/tickets", requireEmployee, cfg.Tickets.ListOwn)
	authed.Post("/tickets/:id/close", requireEmployee, cfg.Tickets.Close)

	technician := authed.Group("/technician", auth.RequireRole(domain.RoleTechnician))
	technician.Get("/tickets", cfg.Technician.ListAssigned)
	technician.Patch("/tickets/:id", cfg.Technician.Update)

	authed.Get("/reporting", requireChief, cfg.Reporting.Get)
	authed.Get("/technicians/recommendation", requireChief, cfg.Admin.Recommend)

	admin := authed.Group("/admin", auth.RequireRole(domain.RoleChief))
	admin.Get("/tickets", cfg.Admin.ListTickets)
	admin.Patch("/tickets/:id", cfg.Admin.PatchTicket)
	admin.Post("/users", cfg.Admin.CreateUser)
	admin.Get("/technicians", cfg.Admin.ListTechnicians)
	admin.Post("/departments", cfg.Admin.CreateDepartment)
	admin.Get("/departments", cfg.Admin.ListDepartments)
	admin.Post("/applications", cfg.Admin.CreateApplication)
	admin.Get("/applications", cfg.Admin.ListApplications)
	admin.Post("/materiels", cfg.Admin.CreateMateriel)
	admin.Get("/materiels", cfg.Admin.ListMateriels)
}
