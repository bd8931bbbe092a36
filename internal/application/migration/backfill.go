// Package migration asigna empresa a los registros anteriores a multi-tenancy y verifica el reparto.
package migration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/Reckonix-api/internal/application/dto"
	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/access"
	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
	"github.com/jhoicas/Reckonix-api/internal/domain/query"
	"github.com/jhoicas/Reckonix-api/internal/domain/repository"
	"github.com/jhoicas/Reckonix-api/pkg/logger"
)

// Recorder recibe los resultados por colección (métricas).
type Recorder interface {
	CollectionBackfilled(collection string, modified int64, dryRun bool)
	CollectionSkipped(collection string)
}

// PartialFailureError agrupa las colecciones que fallaron; el resto del lote sí se aplicó.
type PartialFailureError struct {
	Failures map[string]error
	Report   *dto.BackfillReport
}

func (e *PartialFailureError) Error() string {
	names := make([]string, 0, len(e.Failures))
	for name := range e.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Failures[name].Error())
	}
	return fmt.Sprintf("%s: %s", domain.ErrMigrationPartialFailure, strings.Join(parts, "; "))
}

// Is permite errors.Is(err, domain.ErrMigrationPartialFailure).
func (e *PartialFailureError) Is(target error) bool {
	return target == domain.ErrMigrationPartialFailure
}

// Service ejecuta el backfill y la verificación.
type Service struct {
	records   repository.RecordRepository
	companies repository.CompanyRepository
	registry  *access.Registry
	log       *logger.Logger
	recorder  Recorder

	running sync.Mutex
}

// NewService construye el servicio. recorder puede ser nil.
func NewService(records repository.RecordRepository, companies repository.CompanyRepository, registry *access.Registry, log *logger.Logger, recorder Recorder) *Service {
	return &Service{records: records, companies: companies, registry: registry, log: log, recorder: recorder}
}

// Backfill fija companyId = TargetCompanyID en todo registro con companyId ausente, nulo o de
// una empresa que no existe. Los registros correctos no se tocan, así que repetirlo no cambia nada.
// Una colección inexistente se omite con un warning; un error en una colección no detiene las demás.
func (s *Service) Backfill(ctx context.Context, req dto.BackfillRequest) (*dto.BackfillReport, error) {
	if req.TargetCompanyID <= 0 {
		return nil, fmt.Errorf("%w: company_id requerido", domain.ErrInvalidInput)
	}
	if !s.running.TryLock() {
		return nil, fmt.Errorf("%w: ya hay un backfill en curso", domain.ErrConflict)
	}
	defer s.running.Unlock()

	target, err := s.companies.GetByID(ctx, req.TargetCompanyID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("%w: empresa %d", domain.ErrNotFound, req.TargetCompanyID)
	}
	known, err := s.companies.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	orphans := orphanFilter(known)

	collections := req.Collections
	if len(collections) == 0 {
		collections = s.registry.Collections()
	}

	report := &dto.BackfillReport{
		TargetCompanyID: req.TargetCompanyID,
		DryRun:          req.DryRun,
		Modified:        make(map[string]int64, len(collections)),
		Skipped:         []string{},
	}
	failures := make(map[string]error)

	for _, col := range collections {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		ok, err := s.records.CollectionExists(ctx, col)
		if err != nil {
			failures[col] = err
			s.log.Error().Err(err).Str("collection", col).Msg("backfill: no se pudo consultar la colección")
			continue
		}
		if !ok {
			report.Skipped = append(report.Skipped, col)
			s.log.Warn().Str("collection", col).Msg("backfill: colección inexistente, se omite")
			if s.recorder != nil {
				s.recorder.CollectionSkipped(col)
			}
			continue
		}

		var n int64
		if req.DryRun {
			n, err = s.records.Count(ctx, col, orphans)
		} else {
			n, err = s.records.AssignCompany(ctx, col, orphans, req.TargetCompanyID)
		}
		if err != nil {
			failures[col] = err
			s.log.Error().Err(err).Str("collection", col).Msg("backfill: falló la colección")
			continue
		}
		report.Modified[col] = n
		report.Total += n
		s.log.Info().
			Str("collection", col).
			Int64("modified", n).
			Int64("company_id", req.TargetCompanyID).
			Bool("dry_run", req.DryRun).
			Msg("backfill: colección procesada")
		if s.recorder != nil {
			s.recorder.CollectionBackfilled(col, n, req.DryRun)
		}
	}

	if len(failures) > 0 {
		report.Failures = make(map[string]string, len(failures))
		for col, err := range failures {
			report.Failures[col] = err.Error()
		}
		return report, &PartialFailureError{Failures: failures, Report: report}
	}
	return report, nil
}

// orphanFilter: companyId nulo/ausente o fuera del conjunto de empresas conocidas.
func orphanFilter(known []int64) query.Filter {
	values := make([]any, 0, len(known))
	for _, id := range known {
		values = append(values, id)
	}
	return query.Or{
		query.IsNull{Field: entity.FieldCompanyID},
		query.Not{Filter: query.In{Field: entity.FieldCompanyID, Values: values}},
	}
}

// AsPartialFailure extrae el detalle de un fallo parcial.
func AsPartialFailure(err error) (*PartialFailureError, bool) {
	var pf *PartialFailureError
	ok := errors.As(err, &pf)
	return pf, ok
}
