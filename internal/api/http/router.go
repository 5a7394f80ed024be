package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Users          *handlers.UsersHandler
	Employees      *handlers.EmployeesHandler
	AuditLogs      *handlers.AuditLogsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	authn := cfg.AuthMiddleware.Handle
	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", authn, cfg.Auth.Logout)

	tickets := api.Group("/tickets", authn)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/assigned", cfg.Tickets.ListAssigned)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Put("/:id", cfg.Tickets.Update)
	tickets.Post("/:id/assign", cfg.Tickets.Assign)
	tickets.Post("/:id/reassign", cfg.Tickets.Reassign)
	tickets.Get("/:id/remarks", cfg.Tickets.ListRemarks)
	tickets.Post("/:id/remarks", cfg.Tickets.AddRemark)

	users := api.Group("/users")
	users.Post("/create-account", cfg.Users.CreateAccount)
	users.Get("/employees", cfg.Employees.Directory)
	users.Get("/", authn, cfg.Users.List)
	users.Post("/", authn, auth.RequireAdmin(), cfg.Users.Create)
	users.Get("/department/:departmentId", authn, cfg.Users.ListByDepartment)
	users.Get("/:id", authn, cfg.Users.Get)
	users.Put("/:id", authn, cfg.Users.UpdateProfile)
	users.Post("/:id/password", authn, cfg.Users.ChangePassword)

	departments := api.Group("/departments", authn)
	departments.Get("/", cfg.Users.ListDepartments)
	departments.Get("/:id", cfg.Users.GetDepartment)
	departments.Post("/", auth.RequireAdmin(), cfg.Users.CreateDepartment)

	employees := api.Group("/employees", authn)
	employees.Get("/", cfg.Employees.List)
	employees.Get("/:id", cfg.Employees.Get)
	employees.Post("/", cfg.Employees.Create)

	audit := api.Group("/auditlogs", authn)
	audit.Post("/", cfg.AuditLogs.Create)
	audit.Get("/", cfg.AuditLogs.List)
	audit.Get("/filter", auth.RequireAdmin(), cfg.AuditLogs.Filter)
	audit.Get("/recent", auth.RequireAdmin(), cfg.AuditLogs.Recent)
	audit.Get("/user/:userId", auth.RequireAdmin(), cfg.AuditLogs.ByUser)
	audit.Get("/:id", cfg.AuditLogs.Get)
}
