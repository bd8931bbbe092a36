// Package records expone las colecciones de negocio (customers, leads, orders...) pasando cada
// operación por access.Engine: Authorize, luego ScopeQuery / StampOwnership / AssertOwnership.
package records

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Reckonix-api/internal/application/dto"
	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/access"
	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
	"github.com/jhoicas/Reckonix-api/internal/domain/query"
	"github.com/jhoicas/Reckonix-api/internal/domain/repository"
)

// Service casos de uso genéricos sobre documentos.
type Service struct {
	repo     repository.RecordRepository
	engine   *access.Engine
	registry *access.Registry
}

// NewService construye el servicio.
func NewService(repo repository.RecordRepository, engine *access.Engine, registry *access.Registry) *Service {
	return &Service{repo: repo, engine: engine, registry: registry}
}

// List devuelve los documentos visibles que cumplen los filtros de igualdad.
func (s *Service) List(ctx context.Context, c *access.Context, collection string, params dto.RecordListParams) (*dto.RecordListResponse, error) {
	if err := s.authorize(ctx, c, collection, access.ActionView); err != nil {
		return nil, err
	}
	params.DefaultPage()

	base := make(map[string]any, len(params.Filters))
	for k, v := range params.Filters {
		if !query.ValidField(k) {
			return nil, fmt.Errorf("%w: filtro %q", domain.ErrInvalidInput, k)
		}
		base[k] = filterValue(k, v)
	}
	filter := s.engine.ScopeQuery(c, query.Equals(base))

	list, err := s.repo.Find(ctx, collection, filter, params.Limit, params.Offset)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.RecordResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toRecordResponse(r))
	}
	return &dto.RecordListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: params.Limit, Offset: params.Offset, Total: int(total)},
	}, nil
}

// Get devuelve un documento. Si existe pero es de otra empresa responde ErrNotFound
// para no revelar su existencia.
func (s *Service) Get(ctx context.Context, c *access.Context, collection, id string) (*dto.RecordResponse, error) {
	if err := s.authorize(ctx, c, collection, access.ActionView); err != nil {
		return nil, err
	}
	rec, err := s.repo.GetByID(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || !s.engine.Visible(c, rec) {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrNotFound, collection, id)
	}
	return toRecordResponse(rec), nil
}

// Create inserta un documento. El companyId lo fija el motor: el del caller, salvo superuser.
func (s *Service) Create(ctx context.Context, c *access.Context, collection string, body map[string]any) (*dto.RecordResponse, error) {
	if err := s.authorize(ctx, c, collection, access.ActionCreate); err != nil {
		return nil, err
	}
	if err := checkKeys(body); err != nil {
		return nil, err
	}
	now := time.Now()
	rec := &entity.Record{
		ID:         uuid.New().String(),
		Collection: collection,
		Data:       stripReserved(body),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	// Los ids son únicos entre empresas: solo un superuser (importaciones) puede elegirlo,
	// si no un choque revelaría que el id existe en otro tenant.
	if c.IsSuperuser() {
		if id, ok := body[entity.FieldID].(string); ok && id != "" {
			rec.ID = id
		}
		companyID, _, err := requestedCompany(body)
		if err != nil {
			return nil, err
		}
		rec.CompanyID = companyID
	}

	rec = s.engine.StampOwnership(c, rec)
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return toRecordResponse(rec), nil
}

// Update reemplaza los datos del documento. Un registro legado editado por un tenant queda
// a nombre de esa empresa.
func (s *Service) Update(ctx context.Context, c *access.Context, collection, id string, body map[string]any) (*dto.RecordResponse, error) {
	if err := s.authorize(ctx, c, collection, access.ActionUpdate); err != nil {
		return nil, err
	}
	if err := checkKeys(body); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	if err := s.engine.AssertOwnership(c, existing); err != nil {
		return nil, err
	}

	updated := existing.Clone()
	updated.Data = stripReserved(body)
	updated.UpdatedAt = time.Now()
	if c.IsSuperuser() {
		companyID, present, err := requestedCompany(body)
		if err != nil {
			return nil, err
		}
		if present {
			updated.CompanyID = companyID
		}
	}

	updated = s.engine.StampOwnership(c, updated)
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return toRecordResponse(updated), nil
}

// Delete elimina un documento de la empresa del caller.
func (s *Service) Delete(ctx context.Context, c *access.Context, collection, id string) error {
	if err := s.authorize(ctx, c, collection, access.ActionDelete); err != nil {
		return err
	}
	existing, err := s.repo.GetByID(ctx, collection, id)
	if err != nil {
		return err
	}
	if err := s.engine.AssertOwnership(c, existing); err != nil {
		return err
	}
	return s.repo.Delete(ctx, collection, id)
}

// authorize primero el permiso y después la existencia: sin permiso no se revela qué colecciones hay.
func (s *Service) authorize(ctx context.Context, c *access.Context, collection, action string) error {
	if err := s.engine.Authorize(c, collection, action); err != nil {
		return err
	}
	if collection == access.ResourceUsers {
		return fmt.Errorf("%w: colección %s", domain.ErrNotFound, collection)
	}
	ok, err := s.repo.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: colección %s", domain.ErrNotFound, collection)
	}
	return nil
}

// checkKeys aplica a las claves del documento la misma regla que a los filtros.
func checkKeys(body map[string]any) error {
	for k := range body {
		if !query.ValidField(k) {
			return fmt.Errorf("%w: campo %q", domain.ErrInvalidInput, k)
		}
	}
	return nil
}

func stripReserved(body map[string]any) map[string]any {
	out := make(map[string]any, len(body))
	for k, v := range body {
		if k == entity.FieldID || k == entity.FieldCompanyID {
			continue
		}
		out[k] = v
	}
	return out
}

// requestedCompany lee companyId del cuerpo (JSON decodifica números como float64).
func requestedCompany(body map[string]any) (*int64, bool, error) {
	v, present := body[entity.FieldCompanyID]
	if !present || v == nil {
		return nil, present, nil
	}
	switch n := v.(type) {
	case float64:
		if n == float64(int64(n)) && n > 0 {
			return entity.CompanyIDPtr(int64(n)), true, nil
		}
	case int64:
		return entity.CompanyIDPtr(n), true, nil
	case int:
		return entity.CompanyIDPtr(int64(n)), true, nil
	case string:
		if id, err := strconv.ParseInt(n, 10, 64); err == nil && id > 0 {
			return entity.CompanyIDPtr(id), true, nil
		}
	}
	return nil, true, fmt.Errorf("%w: companyId %v", domain.ErrInvalidInput, v)
}

// filterValue: los query params llegan como texto; companyId se compara como número.
func filterValue(field, raw string) any {
	if field == entity.FieldCompanyID {
		if raw == "null" {
			return nil
		}
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return id
		}
	}
	return raw
}

func toRecordResponse(r *entity.Record) *dto.RecordResponse {
	if r == nil {
		return nil
	}
	return &dto.RecordResponse{
		ID:         r.ID,
		Collection: r.Collection,
		CompanyID:  r.CompanyID,
		Data:       r.Data,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
