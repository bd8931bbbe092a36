package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reckonix-api/internal/application/auth"
	"github.com/jhoicas/Reckonix-api/internal/application/migration"
	"github.com/jhoicas/Reckonix-api/internal/application/records"
	"github.com/jhoicas/Reckonix-api/internal/application/tenancy"
	"github.com/jhoicas/Reckonix-api/internal/application/usecase"
	"github.com/jhoicas/Reckonix-api/internal/domain/access"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	CompanyUC *usecase.CompanyUseCase
	UserUC    *usecase.UserUseCase
	Records   *records.Service
	Migration *migration.Service
	Resolver  *tenancy.Resolver
	Engine    *access.Engine
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.CompanyUC)
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas: Bearer Token + contexto de tenant resuelto por petición
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), TenantMiddleware(deps.Resolver))

	userHandler := NewUserHandler(deps.UserUC)
	protected.Get("/me", userHandler.Me)

	users := protected.Group("/users")
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Put("/:id/permissions", userHandler.UpdatePermissions)
	users.Delete("/:id", userHandler.Deactivate)

	// Colecciones de negocio
	recordHandler := NewRecordHandler(deps.Records)
	recs := protected.Group("/records")
	recs.Get("/:collection", recordHandler.List)
	recs.Post("/:collection", recordHandler.Create)
	recs.Get("/:collection/:id", recordHandler.Get)
	recs.Put("/:collection/:id", recordHandler.Update)
	recs.Delete("/:collection/:id", recordHandler.Delete)

	dashboardHandler := NewDashboardHandler(deps.Records)
	protected.Get("/dashboard", dashboardHandler.GetSummary)

	// Plataforma (solo superuser)
	admin := protected.Group("/admin", RequireSuperuser(deps.Engine))
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	admin.Get("/companies", companyHandler.List)
	admin.Post("/companies/:id/approve", companyHandler.Approve)
	admin.Post("/companies/:id/suspend", companyHandler.Suspend)

	migrationHandler := NewMigrationHandler(deps.Migration)
	admin.Post("/backfill", migrationHandler.Backfill)
	admin.Get("/verify", migrationHandler.Verify)
}
