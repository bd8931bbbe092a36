package memory

import (
	"context"

	"github.com/jhoicas/Reckonix-api/internal/domain/repository"
)

// TxRunner para el driver memory: sin rollback, los repos se usan directamente.
type TxRunner struct {
	companies repository.CompanyRepository
	users     repository.UserRepository
}

// NewTxRunner construye el runner.
func NewTxRunner(companies repository.CompanyRepository, users repository.UserRepository) *TxRunner {
	return &TxRunner{companies: companies, users: users}
}

// Run ejecuta fn con los repos en memoria.
func (r *TxRunner) Run(_ context.Context, fn func(
	companyRepo repository.CompanyRepository,
	userRepo repository.UserRepository,
) error) error {
	return fn(r.companies, r.users)
}
