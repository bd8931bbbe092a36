package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
	"github.com/jhoicas/Reckonix-api/internal/domain/repository"
)

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo empresas en memoria con IDs secuenciales.
type CompanyRepo struct {
	mu        sync.RWMutex
	nextID    int64
	companies map[int64]*entity.Company
}

// NewCompanyRepository crea el repositorio vacío.
func NewCompanyRepository() *CompanyRepo {
	return &CompanyRepo{nextID: 1, companies: make(map[int64]*entity.Company)}
}

// Create asigna ID si viene en cero.
func (r *CompanyRepo) Create(_ context.Context, company *entity.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if company.ID == 0 {
		company.ID = r.nextID
	}
	if _, dup := r.companies[company.ID]; dup {
		return domain.ErrDuplicate
	}
	if company.ID >= r.nextID {
		r.nextID = company.ID + 1
	}
	c := *company
	r.companies[c.ID] = &c
	return nil
}

// GetByID obtiene una empresa por ID.
func (r *CompanyRepo) GetByID(_ context.Context, id int64) (*entity.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.companies[id]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

// Update reemplaza la empresa.
func (r *CompanyRepo) Update(_ context.Context, company *entity.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[company.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *company
	r.companies[c.ID] = &c
	return nil
}

// List devuelve empresas ordenadas por ID.
func (r *CompanyRepo) List(_ context.Context, limit, offset int) ([]*entity.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*entity.Company, 0, len(r.companies))
	for _, c := range r.companies {
		out := *c
		all = append(all, &out)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, limit, offset), nil
}

// ListIDs devuelve todos los IDs conocidos.
func (r *CompanyRepo) ListIDs(_ context.Context) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.companies))
	for id := range r.companies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
