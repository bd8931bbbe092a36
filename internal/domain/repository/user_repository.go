package repository

import (
	"context"

	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Los Get* devuelven (nil, nil) cuando no existe.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByLogin busca por username o email.
	GetByLogin(ctx context.Context, login string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	ListByCompany(ctx context.Context, companyID int64, limit, offset int) ([]*entity.User, error)
	CountActiveByCompany(ctx context.Context, companyID int64) (int, error)
}
