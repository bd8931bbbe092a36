// Package memory implementa los puertos de persistencia en memoria (STORE_DRIVER=memory).
// Pensado para desarrollo local y tests; no persiste entre reinicios.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
	"github.com/jhoicas/Reckonix-api/internal/domain/query"
	"github.com/jhoicas/Reckonix-api/internal/domain/repository"
)

var _ repository.RecordRepository = (*RecordRepo)(nil)

type collection struct {
	order []string
	byID  map[string]*entity.Record
}

// RecordRepo colecciones de documentos en memoria.
type RecordRepo struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewRecordRepository crea el store con las colecciones indicadas ya existentes.
func NewRecordRepository(collections ...string) *RecordRepo {
	r := &RecordRepo{collections: make(map[string]*collection)}
	for _, c := range collections {
		r.AddCollection(c)
	}
	return r
}

// AddCollection crea la colección si no existe.
func (r *RecordRepo) AddCollection(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.collections[name]; !ok {
		r.collections[name] = &collection{byID: make(map[string]*entity.Record)}
	}
}

// CollectionExists implementa RecordRepository.
func (r *RecordRepo) CollectionExists(_ context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.collections[name]
	return ok, nil
}

// Find devuelve los documentos que cumplen filter en orden de inserción.
func (r *RecordRepo) Find(_ context.Context, name string, filter query.Filter, limit, offset int) ([]*entity.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	col, ok := r.collections[name]
	if !ok {
		return nil, fmt.Errorf("colección %s: %w", name, domain.ErrNotFound)
	}
	var out []*entity.Record
	skipped := 0
	for _, id := range col.order {
		rec := col.byID[id]
		if !query.Match(filter, rec.Fields()) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, rec.Clone())
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Count implementa RecordRepository.
func (r *RecordRepo) Count(_ context.Context, name string, filter query.Filter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	col, ok := r.collections[name]
	if !ok {
		return 0, fmt.Errorf("colección %s: %w", name, domain.ErrNotFound)
	}
	var n int64
	for _, rec := range col.byID {
		if query.Match(filter, rec.Fields()) {
			n++
		}
	}
	return n, nil
}

// GetByID implementa RecordRepository.
func (r *RecordRepo) GetByID(_ context.Context, name, id string) (*entity.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	col, ok := r.collections[name]
	if !ok {
		return nil, nil
	}
	return col.byID[id].Clone(), nil
}

// Create implementa RecordRepository.
func (r *RecordRepo) Create(_ context.Context, rec *entity.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	col, ok := r.collections[rec.Collection]
	if !ok {
		return fmt.Errorf("colección %s: %w", rec.Collection, domain.ErrNotFound)
	}
	if _, dup := col.byID[rec.ID]; dup {
		return domain.ErrDuplicate
	}
	col.byID[rec.ID] = rec.Clone()
	col.order = append(col.order, rec.ID)
	return nil
}

// Update implementa RecordRepository.
func (r *RecordRepo) Update(_ context.Context, rec *entity.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	col, ok := r.collections[rec.Collection]
	if !ok || col.byID[rec.ID] == nil {
		return domain.ErrNotFound
	}
	col.byID[rec.ID] = rec.Clone()
	return nil
}

// Delete implementa RecordRepository.
func (r *RecordRepo) Delete(_ context.Context, name, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	col, ok := r.collections[name]
	if !ok || col.byID[id] == nil {
		return domain.ErrNotFound
	}
	delete(col.byID, id)
	for i, oid := range col.order {
		if oid == id {
			col.order = append(col.order[:i], col.order[i+1:]...)
			break
		}
	}
	return nil
}

// AssignCompany implementa RecordRepository. Cuenta solo los documentos que realmente cambian.
func (r *RecordRepo) AssignCompany(_ context.Context, name string, filter query.Filter, companyID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	col, ok := r.collections[name]
	if !ok {
		return 0, fmt.Errorf("colección %s: %w", name, domain.ErrNotFound)
	}
	now := time.Now()
	var modified int64
	for _, rec := range col.byID {
		if !query.Match(filter, rec.Fields()) {
			continue
		}
		if rec.CompanyID != nil && *rec.CompanyID == companyID {
			continue
		}
		rec.CompanyID = entity.CompanyIDPtr(companyID)
		rec.UpdatedAt = now
		modified++
	}
	return modified, nil
}
