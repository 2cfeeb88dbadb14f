package main

import (
	"log"
	"strings"

	"profitdash-backend/internal/audit"
	"profitdash-backend/internal/auth"
	"profitdash-backend/internal/config"
	"profitdash-backend/internal/dashboard"
	"profitdash-backend/internal/database"
	"profitdash-backend/internal/ingest"
	"profitdash-backend/internal/master"
	"profitdash-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// User management
	adminRoutes.Post("/users", auth.CreateUserHandler())

	// Master data
	adminRoutes.Post("/departments", master.CreateDepartmentHandler())
	adminRoutes.Delete("/departments/:id", master.DeleteDepartmentHandler())

	adminRoutes.Post("/clients", master.CreateClientHandler())
	adminRoutes.Put("/clients/:id", master.UpdateClientHandler())
	adminRoutes.Delete("/clients/:id", master.DeleteClientHandler())

	adminRoutes.Post("/projects", master.CreateProjectHandler())
	adminRoutes.Put("/projects/:id", master.UpdateProjectHandler())
	adminRoutes.Delete("/projects/:id", master.DeleteProjectHandler())

	adminRoutes.Put("/employees/:id", master.UpdateEmployeeHandler())
	adminRoutes.Delete("/employees/:id", master.DeleteEmployeeHandler())

	// Cost assumptions
	adminRoutes.Get("/system-config", master.GetSystemConfigHandler())
	adminRoutes.Put("/system-config", master.UpsertSystemConfigHandler())

	// Spreadsheet uploads (admin and finance)
	uploads := protected.Group("/uploads")
	uploads.Use(auth.RequireRole(models.RoleAdmin, models.RoleFinance))

	uploads.Post("/employee-master", ingest.UploadEmployeeMasterHandler(cfg))
	uploads.Post("/timesheets", ingest.UploadTimesheetsHandler(cfg))
	uploads.Post("/revenue", ingest.UploadRevenueHandler(cfg))
	uploads.Get("", ingest.ListUploadLogsHandler())
	uploads.Get("/:id", ingest.GetUploadLogHandler())

	// Master data reads (any authenticated role)
	protected.Get("/departments", master.ListDepartmentsHandler())
	protected.Get("/clients", master.ListClientsHandler())
	protected.Get("/projects", master.ListProjectsHandler())
	protected.Get("/projects/:id", master.GetProjectHandler())
	protected.Get("/employees", master.ListEmployeesHandler())
	protected.Get("/employees/:id", master.GetEmployeeHandler())

	// Dashboards (row scope applied per role inside the handlers)
	protected.Get("/dashboard/projects", dashboard.ProjectDashboardHandler())
	protected.Get("/dashboard/employees", dashboard.EmployeeDashboardHandler())
	protected.Get("/dashboard/departments", dashboard.DepartmentDashboardHandler())
	protected.Get("/dashboard/clients", dashboard.ClientDashboardHandler())

	companyRoutes := protected.Group("/dashboard/company")
	companyRoutes.Use(auth.RequireRole(models.RoleAdmin, models.RoleFinance))
	companyRoutes.Get("", dashboard.CompanyDashboardHandler())

	// Audit logs
	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
