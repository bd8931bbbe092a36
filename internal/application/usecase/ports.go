package usecase

import (
	"context"

	"github.com/jhoicas/Reckonix-api/internal/domain/repository"
)

// TxRunner ejecuta fn con repos atados a una misma transacción (alta de empresa + administrador).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		companyRepo repository.CompanyRepository,
		userRepo repository.UserRepository,
	) error) error
}
