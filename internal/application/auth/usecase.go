package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Reckonix-api/internal/application/dto"
	"github.com/jhoicas/Reckonix-api/internal/application/usecase"
	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
	"github.com/jhoicas/Reckonix-api/internal/domain/repository"
	"github.com/jhoicas/Reckonix-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase login y alta del superuser inicial.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	jwtCfg      JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, companyRepo repository.CompanyRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, companyRepo: companyRepo, jwtCfg: jwtCfg}
}

// Login verifica username/email + password y emite el JWT. El token solo lleva el user id:
// rol, empresa y permisos se resuelven en cada petición.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	login := strings.TrimSpace(in.Login)
	if login == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: login y password son obligatorios", domain.ErrInvalidInput)
	}
	user, err := uc.userRepo.GetByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: usuario inactivo", domain.ErrForbidden)
	}
	if !user.IsSuperuser() {
		if user.CompanyID == nil {
			return nil, domain.ErrUnauthenticated
		}
		company, err := uc.companyRepo.GetByID(ctx, *user.CompanyID)
		if err != nil {
			return nil, err
		}
		if !company.IsActive() {
			return nil, domain.ErrTenantInactive
		}
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *usecase.ToUserResponse(user),
	}, nil
}

// BootstrapSuperuser crea el superuser inicial si no existe. Devuelve true si lo creó.
func (uc *AuthUseCase) BootstrapSuperuser(ctx context.Context, username, email, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	existing, err := uc.userRepo.GetByLogin(ctx, username)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         entity.RoleSuperuser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}
