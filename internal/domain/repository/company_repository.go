package repository

import (
	"context"

	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	// Create asigna company.ID.
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id int64) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
	List(ctx context.Context, limit, offset int) ([]*entity.Company, error)
	// ListIDs devuelve los IDs de todos los tenants conocidos (para detectar huérfanos).
	ListIDs(ctx context.Context) ([]int64, error)
}
