// Package tenancy resuelve, una vez por petición, el contexto de tenant del usuario que actúa.
package tenancy

import (
	"context"
	"fmt"

	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/access"
	"github.com/jhoicas/Reckonix-api/internal/domain/repository"
)

// Resolver construye access.Context leyendo el usuario (y su empresa) en cada petición.
// No cachea: un usuario desactivado o una empresa suspendida pierden acceso en la siguiente llamada.
type Resolver struct {
	users     repository.UserRepository
	companies repository.CompanyRepository
}

// NewResolver construye el resolver.
func NewResolver(users repository.UserRepository, companies repository.CompanyRepository) *Resolver {
	return &Resolver{users: users, companies: companies}
}

// Resolve devuelve {role, companyId, permissions} del usuario.
//   - ErrNotFound si el id no corresponde a un usuario activo.
//   - ErrUnauthenticated si un usuario no superuser no tiene empresa.
//   - ErrTenantInactive si su empresa no está activa.
func (r *Resolver) Resolve(ctx context.Context, userID string) (*access.Context, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolver usuario: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, fmt.Errorf("%w: usuario %s inexistente o inactivo", domain.ErrNotFound, userID)
	}
	if user.IsSuperuser() {
		return access.NewContext(user), nil
	}
	if user.CompanyID == nil {
		return nil, fmt.Errorf("%w: el usuario %s no tiene empresa", domain.ErrUnauthenticated, userID)
	}

	company, err := r.companies.GetByID(ctx, *user.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("resolver empresa: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("%w: empresa %d", domain.ErrUnauthenticated, *user.CompanyID)
	}
	if !company.IsActive() {
		return nil, fmt.Errorf("%w: empresa %d en estado %s", domain.ErrTenantInactive, company.ID, company.Status)
	}
	return access.NewContext(user), nil
}
