// Comando backfill: asigna una empresa a los registros anteriores a multi-tenancy.
//
//	backfill -company 1 [-collections leads,orders] [-dry-run]
//
// Correr una sola vez por despliegue, después de crear la empresa destino.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jhoicas/Reckonix-api/internal/application/dto"
	"github.com/jhoicas/Reckonix-api/internal/application/migration"
	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/access"
	"github.com/jhoicas/Reckonix-api/internal/infrastructure/store"
	"github.com/jhoicas/Reckonix-api/pkg/config"
	"github.com/jhoicas/Reckonix-api/pkg/logger"
)

func main() {
	companyID := flag.Int64("company", 0, "ID de la empresa destino (obligatorio)")
	collections := flag.String("collections", "", "colecciones separadas por coma (vacío = todas las registradas)")
	dryRun := flag.Bool("dry-run", false, "solo cuenta, no modifica")
	verify := flag.Bool("verify", false, "después del backfill, imprime el reparto por colección")
	flag.Parse()

	if *companyID <= 0 {
		fmt.Fprintln(os.Stderr, "uso: backfill -company <id> [-collections a,b] [-dry-run] [-verify]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	if cfg.Store.Driver == config.StoreMemory {
		fmt.Fprintln(os.Stderr, "backfill no tiene sentido con STORE_DRIVER=memory")
		os.Exit(2)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := access.NewRegistry(cfg.Access.Collections...)
	stores, err := store.Open(ctx, cfg, registry.Collections())
	if err != nil {
		log.Fatal().Err(err).Msg("abrir stores")
	}
	defer stores.Close()

	svc := migration.NewService(stores.Records, stores.Companies, registry, log, nil)
	report, err := svc.Backfill(ctx, dto.BackfillRequest{
		TargetCompanyID: *companyID,
		Collections:     splitList(*collections),
		DryRun:          *dryRun,
	})
	if report != nil {
		log.Info().
			Int64("company_id", report.TargetCompanyID).
			Bool("dry_run", report.DryRun).
			Int64("total", report.Total).
			Strs("skipped", report.Skipped).
			Msg("backfill terminado")
	}
	exit := 0
	if err != nil {
		if errors.Is(err, domain.ErrMigrationPartialFailure) {
			log.Error().Err(err).Msg("backfill con colecciones fallidas; volver a correrlo es seguro")
			exit = 1
		} else {
			stores.Close()
			log.Fatal().Err(err).Msg("backfill")
		}
	}

	if *verify {
		out, err := svc.Verify(ctx, *companyID)
		if err != nil {
			log.Error().Err(err).Msg("verificación")
			exit = 1
		} else {
			for _, c := range out.Collections {
				log.Info().
					Str("collection", c.Collection).
					Bool("exists", c.Exists).
					Int64("owned", c.Owned).
					Int64("orphaned", c.Orphaned).
					Int64("foreign", c.Foreign).
					Msg("verificación")
			}
		}
	}
	if exit != 0 {
		stores.Close()
		os.Exit(exit)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
