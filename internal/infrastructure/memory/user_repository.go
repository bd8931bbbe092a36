package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
	"github.com/jhoicas/Reckonix-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria.
type UserRepo struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

// NewUserRepository crea el repositorio vacío.
func NewUserRepository() *UserRepo {
	return &UserRepo{users: make(map[string]*entity.User)}
}

func cloneUser(u *entity.User) *entity.User {
	if u == nil {
		return nil
	}
	c := *u
	c.Permissions = append([]string(nil), u.Permissions...)
	if u.CompanyID != nil {
		c.CompanyID = entity.CompanyIDPtr(*u.CompanyID)
	}
	return &c
}

// Create persiste un nuevo usuario. Username y email son únicos.
func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == user.ID || u.Username == user.Username || (user.Email != "" && u.Email == user.Email) {
			return domain.ErrDuplicate
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneUser(r.users[id]), nil
}

// GetByLogin obtiene un usuario por username o email.
func (r *UserRepo) GetByLogin(_ context.Context, login string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == login || (u.Email != "" && u.Email == login) {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

// Update reemplaza el usuario.
func (r *UserRepo) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

// ListByCompany lista usuarios por company ordenados por fecha de alta.
func (r *UserRepo) ListByCompany(_ context.Context, companyID int64, limit, offset int) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []*entity.User
	for _, u := range r.users {
		if u.CompanyID != nil && *u.CompanyID == companyID {
			all = append(all, cloneUser(u))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return page(all, limit, offset), nil
}

// CountActiveByCompany cuenta los usuarios activos de la empresa.
func (r *UserRepo) CountActiveByCompany(_ context.Context, companyID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, u := range r.users {
		if u.IsActive && u.CompanyID != nil && *u.CompanyID == companyID {
			n++
		}
	}
	return n, nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}
