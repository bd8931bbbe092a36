package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/Reckonix-api/internal/application/auth"
	"github.com/jhoicas/Reckonix-api/internal/application/migration"
	"github.com/jhoicas/Reckonix-api/internal/application/records"
	"github.com/jhoicas/Reckonix-api/internal/application/tenancy"
	"github.com/jhoicas/Reckonix-api/internal/application/usecase"
	"github.com/jhoicas/Reckonix-api/internal/domain/access"
	"github.com/jhoicas/Reckonix-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Reckonix-api/internal/infrastructure/store"
	httpRouter "github.com/jhoicas/Reckonix-api/internal/interfaces/http"
	"github.com/jhoicas/Reckonix-api/pkg/config"
	"github.com/jhoicas/Reckonix-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	registry := access.NewRegistry(cfg.Access.Collections...)

	stores, err := store.Open(ctx, cfg, registry.Collections())
	if err != nil {
		log.Fatal().Err(err).Msg("abrir stores")
	}
	defer stores.Close()

	// Decisiones de acceso: log de denegaciones y, si está habilitado, métricas
	observers := access.Observers{tenancy.NewLogObserver(log.Named("access"))}
	var (
		promRegistry *prometheus.Registry
		appMetrics   *metrics.Metrics
	)
	if cfg.Metrics.Enabled {
		promRegistry = prometheus.NewRegistry()
		promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		appMetrics = metrics.NewMetrics(promRegistry)
		observers = append(observers, appMetrics)
	}
	engine := access.NewEngine(
		access.WithLegacyVisibility(cfg.Access.LegacyNullVisible),
		access.WithObserver(observers),
	)
	if !cfg.Access.LegacyNullVisible {
		log.Warn().Msg("aislamiento estricto: los registros sin companyId no son visibles para los tenants")
	}

	authUC := auth.NewAuthUseCase(stores.Users, stores.Companies, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	created, err := authUC.BootstrapSuperuser(ctx, cfg.Bootstrap.SuperuserName, cfg.Bootstrap.SuperuserEmail, cfg.Bootstrap.SuperuserPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("crear superuser inicial")
	}
	if created {
		log.Info().Str("username", cfg.Bootstrap.SuperuserName).Msg("superuser inicial creado")
	}

	var recorder migration.Recorder
	if appMetrics != nil {
		recorder = appMetrics
	}
	migrationSvc := migration.NewService(stores.Records, stores.Companies, registry, log.Named("backfill"), recorder)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	if appMetrics != nil {
		app.Use(appMetrics.Middleware())
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(promRegistry)))
	}

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Reckonix API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		CompanyUC: usecase.NewCompanyUseCase(stores.Companies, stores.Users, stores.Tx, engine, registry),
		UserUC:    usecase.NewUserUseCase(stores.Users, stores.Companies, engine, registry),
		Records:   records.NewService(stores.Records, engine, registry),
		Migration: migrationSvc,
		Resolver:  tenancy.NewResolver(stores.Users, stores.Companies),
		Engine:    engine,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
