package repository

import (
	"context"

	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
	"github.com/jhoicas/Reckonix-api/internal/domain/query"
)

// RecordRepository es el Entity Store: una colección de documentos por entidad de negocio.
// No aplica ninguna regla de tenant; eso lo hace access.Engine antes de llamar.
type RecordRepository interface {
	CollectionExists(ctx context.Context, collection string) (bool, error)
	Find(ctx context.Context, collection string, filter query.Filter, limit, offset int) ([]*entity.Record, error)
	Count(ctx context.Context, collection string, filter query.Filter) (int64, error)
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, collection, id string) (*entity.Record, error)
	Create(ctx context.Context, record *entity.Record) error
	Update(ctx context.Context, record *entity.Record) error
	Delete(ctx context.Context, collection, id string) error
	// AssignCompany fija companyId en todos los documentos que cumplen filter y devuelve cuántos cambió.
	AssignCompany(ctx context.Context, collection string, filter query.Filter, companyID int64) (int64, error)
}
