package migration

import (
	"context"
	"fmt"

	"github.com/jhoicas/Reckonix-api/internal/application/dto"
	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
	"github.com/jhoicas/Reckonix-api/internal/domain/query"
)

// Verify cuenta, por colección, los registros de companyID, los huérfanos (sin empresa) y los ajenos.
// Solo lectura.
func (s *Service) Verify(ctx context.Context, companyID int64) (*dto.VerifyReport, error) {
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("%w: empresa %d", domain.ErrNotFound, companyID)
	}

	own := query.Eq{Field: entity.FieldCompanyID, Value: companyID}
	orphan := query.IsNull{Field: entity.FieldCompanyID}
	foreign := query.And{query.Not{Filter: own}, query.Not{Filter: orphan}}

	out := &dto.VerifyReport{CompanyID: companyID}
	for _, col := range s.registry.Collections() {
		row := dto.CollectionAccessDTO{Collection: col}
		ok, err := s.records.CollectionExists(ctx, col)
		if err != nil {
			return nil, err
		}
		if ok {
			row.Exists = true
			if row.Owned, err = s.records.Count(ctx, col, own); err != nil {
				return nil, err
			}
			if row.Orphaned, err = s.records.Count(ctx, col, orphan); err != nil {
				return nil, err
			}
			if row.Foreign, err = s.records.Count(ctx, col, foreign); err != nil {
				return nil, err
			}
		}
		out.Collections = append(out.Collections, row)
	}
	return out, nil
}
