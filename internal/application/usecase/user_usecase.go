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

// UserUseCase administración de usuarios dentro de un tenant. Toda decisión pasa por access.Engine
// con el recurso "users".
type UserUseCase struct {
	repo      repository.UserRepository
	companies repository.CompanyRepository
	engine    *access.Engine
	registry  *access.Registry
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(repo repository.UserRepository, companies repository.CompanyRepository, engine *access.Engine, registry *access.Registry) *UserUseCase {
	return &UserUseCase{repo: repo, companies: companies, engine: engine, registry: registry}
}

// Me devuelve el usuario del contexto y su empresa.
func (uc *UserUseCase) Me(ctx context.Context, c *access.Context) (*dto.MeResponse, error) {
	user, err := uc.repo.GetByID(ctx, c.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	out := &dto.MeResponse{User: *ToUserResponse(user)}
	if user.CompanyID != nil {
		company, err := uc.companies.GetByID(ctx, *user.CompanyID)
		if err != nil {
			return nil, err
		}
		out.Company = entityToCompanyResponse(company)
	}
	return out, nil
}

// Create da de alta un usuario en la empresa del caller (un superuser indica la empresa).
// Respeta el cupo MaxUsers y valida los permisos contra el registro.
func (uc *UserUseCase) Create(ctx context.Context, c *access.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := uc.engine.Authorize(c, access.ResourceUsers, access.ActionCreate); err != nil {
		return nil, err
	}
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return nil, fmt.Errorf("%w: username es obligatorio", domain.ErrInvalidInput)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos 8 caracteres", domain.ErrInvalidInput)
	}
	if !entity.ValidRole(in.Role) {
		return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, in.Role)
	}
	if in.Role == entity.RoleSuperuser && !c.IsSuperuser() {
		return nil, fmt.Errorf("%w: solo un superuser puede crear superusers", domain.ErrForbidden)
	}

	var companyID *int64
	if in.Role != entity.RoleSuperuser {
		companyID = c.CompanyID
		if c.IsSuperuser() {
			companyID = in.CompanyID
		}
		if companyID == nil {
			return nil, fmt.Errorf("%w: company_id es obligatorio", domain.ErrInvalidInput)
		}
		if err := uc.checkCapacity(ctx, *companyID); err != nil {
			return nil, err
		}
	}

	perms := in.Permissions
	if len(perms) == 0 {
		perms = uc.registry.Defaults(in.Role)
	} else if err := uc.registry.Validate(perms); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: string(hash),
		Role:         in.Role,
		CompanyID:    companyID,
		Permissions:  perms,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// checkCapacity: empresa existente, activa y con cupo.
func (uc *UserUseCase) checkCapacity(ctx context.Context, companyID int64) error {
	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return err
	}
	if company == nil {
		return fmt.Errorf("%w: empresa %d", domain.ErrNotFound, companyID)
	}
	if !company.IsActive() {
		return fmt.Errorf("%w: empresa %d", domain.ErrTenantInactive, companyID)
	}
	active, err := uc.repo.CountActiveByCompany(ctx, companyID)
	if err != nil {
		return err
	}
	if active >= company.MaxUsers {
		return fmt.Errorf("%w (%d/%d)", domain.ErrTenantLimitReached, active, company.MaxUsers)
	}
	return nil
}

// List lista los usuarios de la empresa del caller. Un superuser debe indicar companyID.
func (uc *UserUseCase) List(ctx context.Context, c *access.Context, companyID *int64, page dto.PageRequest) (*dto.UserListResponse, error) {
	if err := uc.engine.Authorize(c, access.ResourceUsers, access.ActionView); err != nil {
		return nil, err
	}
	target := c.CompanyID
	if c.IsSuperuser() {
		target = companyID
	}
	if target == nil {
		return nil, fmt.Errorf("%w: company_id es obligatorio", domain.ErrInvalidInput)
	}
	page.DefaultPage()
	list, err := uc.repo.ListByCompany(ctx, *target, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *ToUserResponse(u))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// UpdatePermissions cambia rol y/o permisos. Si cambia el rol sin indicar permisos se aplican
// los del rol nuevo.
func (uc *UserUseCase) UpdatePermissions(ctx context.Context, c *access.Context, id string, in dto.UpdatePermissionsRequest) (*dto.UserResponse, error) {
	if err := uc.engine.Authorize(c, access.ResourceUsers, access.ActionUpdate); err != nil {
		return nil, err
	}
	user, err := uc.target(ctx, c, id)
	if err != nil {
		return nil, err
	}

	roleChanged := false
	if in.Role != nil && *in.Role != user.Role {
		if !entity.ValidRole(*in.Role) {
			return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, *in.Role)
		}
		if (*in.Role == entity.RoleSuperuser || user.IsSuperuser()) && !c.IsSuperuser() {
			return nil, fmt.Errorf("%w: solo un superuser puede otorgar o quitar el rol superuser", domain.ErrForbidden)
		}
		if *in.Role == entity.RoleSuperuser {
			user.CompanyID = nil
		} else if user.CompanyID == nil {
			return nil, fmt.Errorf("%w: un usuario sin empresa solo puede ser superuser", domain.ErrInvalidInput)
		}
		user.Role = *in.Role
		roleChanged = true
	}

	switch {
	case in.Permissions != nil:
		if err := uc.registry.Validate(in.Permissions); err != nil {
			return nil, err
		}
		user.Permissions = in.Permissions
	case roleChanged:
		user.Permissions = uc.registry.Defaults(user.Role)
	}

	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// Deactivate marca al usuario como inactivo. Nunca se borra.
func (uc *UserUseCase) Deactivate(ctx context.Context, c *access.Context, id string) error {
	if err := uc.engine.Authorize(c, access.ResourceUsers, access.ActionDelete); err != nil {
		return err
	}
	if id == c.UserID {
		return fmt.Errorf("%w: no puede desactivarse a sí mismo", domain.ErrConflict)
	}
	user, err := uc.target(ctx, c, id)
	if err != nil {
		return err
	}
	if user.IsSuperuser() && !c.IsSuperuser() {
		return domain.ErrForbidden
	}
	if !user.IsActive {
		return nil
	}
	user.IsActive = false
	user.UpdatedAt = time.Now()
	return uc.repo.Update(ctx, user)
}

// target carga el usuario y exige que pertenezca a la empresa del caller.
func (uc *UserUseCase) target(ctx context.Context, c *access.Context, id string) (*entity.User, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := uc.engine.AssertMember(c, user.CompanyID); err != nil {
		return nil, err
	}
	return user, nil
}

// ToUserResponse convierte la entidad en DTO sin el hash de la contraseña.
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	perms := append([]string{}, u.Permissions...)
	return &dto.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		CompanyID:   u.CompanyID,
		Permissions: perms,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
