package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Reckonix-api/internal/application/dto"
	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/access"
	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
	"github.com/jhoicas/Reckonix-api/internal/domain/repository"
)

// DefaultMaxUsers cupo de usuarios activos de una empresa nueva.
const DefaultMaxUsers = 5

// CompanyUseCase alta y administración de empresas (tenants).
type CompanyUseCase struct {
	repo     repository.CompanyRepository
	users    repository.UserRepository
	tx       TxRunner
	engine   *access.Engine
	registry *access.Registry
}

// NewCompanyUseCase construye el caso de uso.
func NewCompanyUseCase(repo repository.CompanyRepository, users repository.UserRepository, tx TxRunner, engine *access.Engine, registry *access.Registry) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, users: users, tx: tx, engine: engine, registry: registry}
}

// Signup crea la empresa en estado pending y su primer administrador, inactivo hasta que
// un superuser la apruebe. Ambos se crean en la misma transacción.
func (uc *CompanyUseCase) Signup(ctx context.Context, in dto.SignupRequest) (*dto.SignupResponse, error) {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.Username = strings.TrimSpace(in.Username)
	if in.CompanyName == "" || in.Username == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: company_name, username y email son obligatorios", domain.ErrInvalidInput)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos 8 caracteres", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	company := &entity.Company{
		Name:      in.CompanyName,
		Status:    entity.CompanyPending,
		MaxUsers:  DefaultMaxUsers,
		CreatedAt: now,
		UpdatedAt: now,
	}
	admin := &entity.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         entity.RoleAdmin,
		Permissions:  uc.registry.Defaults(entity.RoleAdmin),
		IsActive:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = uc.tx.Run(ctx, func(companies repository.CompanyRepository, users repository.UserRepository) error {
		if err := companies.Create(ctx, company); err != nil {
			return err
		}
		admin.CompanyID = entity.CompanyIDPtr(company.ID)
		return users.Create(ctx, admin)
	})
	if err != nil {
		return nil, err
	}
	return &dto.SignupResponse{
		Company: *entityToCompanyResponse(company),
		User:    *ToUserResponse(admin),
	}, nil
}

// GetByID obtiene una empresa por ID.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id int64) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, nil
	}
	return entityToCompanyResponse(company), nil
}

// List lista empresas con paginación. Solo superuser.
func (uc *CompanyUseCase) List(ctx context.Context, c *access.Context, page dto.PageRequest) (*dto.CompanyListResponse, error) {
	if err := uc.engine.RequireSuperuser(c); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, co := range list {
		items = append(items, *entityToCompanyResponse(co))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Approve activa la empresa. Solo en la primera aprobación (pending -> active) se activan los
// administradores creados en el alta, sin superar MaxUsers; reaprobar una empresa suspendida
// no revive usuarios desactivados.
func (uc *CompanyUseCase) Approve(ctx context.Context, c *access.Context, id int64) (*dto.CompanyResponse, error) {
	company, previous, err := uc.setStatus(ctx, c, id, entity.CompanyActive)
	if err != nil {
		return nil, err
	}
	if previous != entity.CompanyPending {
		return entityToCompanyResponse(company), nil
	}
	users, err := uc.users.ListByCompany(ctx, id, 0, 0)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Role != entity.RoleAdmin || u.IsActive {
			continue
		}
		active, err := uc.users.CountActiveByCompany(ctx, id)
		if err != nil {
			return nil, err
		}
		if active >= company.MaxUsers {
			return nil, fmt.Errorf("%w (%d/%d): administrador %s", domain.ErrTenantLimitReached, active, company.MaxUsers, u.ID)
		}
		u.IsActive = true
		u.UpdatedAt = time.Now()
		if err := uc.users.Update(ctx, u); err != nil {
			return nil, fmt.Errorf("activar administrador %s: %w", u.ID, err)
		}
	}
	return entityToCompanyResponse(company), nil
}

// Suspend suspende la empresa: sus usuarios dejan de resolver contexto en la siguiente petición.
func (uc *CompanyUseCase) Suspend(ctx context.Context, c *access.Context, id int64) (*dto.CompanyResponse, error) {
	company, _, err := uc.setStatus(ctx, c, id, entity.CompanySuspended)
	if err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// setStatus devuelve la empresa actualizada y el estado que tenía antes.
func (uc *CompanyUseCase) setStatus(ctx context.Context, c *access.Context, id int64, status string) (*entity.Company, string, error) {
	if err := uc.engine.RequireSuperuser(c); err != nil {
		return nil, "", err
	}
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if company == nil {
		return nil, "", fmt.Errorf("%w: empresa %d", domain.ErrNotFound, id)
	}
	previous := company.Status
	company.Status = status
	company.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, company); err != nil {
		return nil, "", err
	}
	return company, previous, nil
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Status:    c.Status,
		MaxUsers:  c.MaxUsers,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
