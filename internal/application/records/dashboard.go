package records

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Reckonix-api/internal/application/dto"
	"github.com/jhoicas/Reckonix-api/internal/domain/access"
	"github.com/jhoicas/Reckonix-api/internal/domain/query"
)

// Summary cuenta, en paralelo, los registros visibles de cada colección que el caller puede ver.
// Las colecciones sin permiso o inexistentes se omiten.
func (s *Service) Summary(ctx context.Context, c *access.Context) (*dto.DashboardSummaryDTO, error) {
	var viewable []string
	for _, col := range s.registry.Collections() {
		if s.engine.Can(c, col, access.ActionView) {
			viewable = append(viewable, col)
		}
	}

	counts := make([]int64, len(viewable))
	present := make([]bool, len(viewable))
	g, gctx := errgroup.WithContext(ctx)
	for i, col := range viewable {
		i, col := i, col
		g.Go(func() error {
			ok, err := s.repo.CollectionExists(gctx, col)
			if err != nil || !ok {
				return err
			}
			n, err := s.repo.Count(gctx, col, s.engine.ScopeQuery(c, query.All{}))
			if err != nil {
				return fmt.Errorf("dashboard: %s: %w", col, err)
			}
			counts[i], present[i] = n, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dto.DashboardSummaryDTO{Collections: make([]dto.CollectionCountDTO, 0, len(viewable))}
	for i, col := range viewable {
		if !present[i] {
			continue
		}
		out.Collections = append(out.Collections, dto.CollectionCountDTO{Collection: col, Count: counts[i]})
		out.Total += counts[i]
	}
	return out, nil
}
