package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Reckonix-api/internal/application/auth"
	"github.com/jhoicas/Reckonix-api/internal/application/dto"
	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
	"github.com/jhoicas/Reckonix-api/internal/infrastructure/memory"
	"github.com/jhoicas/Reckonix-api/pkg/jwt"
)

const secret = "test-secret"

func setup(t *testing.T, status string, active bool) (*auth.AuthUseCase, *memory.UserRepo) {
	t.Helper()
	ctx := context.Background()
	users := memory.NewUserRepository()
	companies := memory.NewCompanyRepository()
	require.NoError(t, companies.Create(ctx, &entity.Company{Name: "Acme", Status: status, MaxUsers: 5}))

	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, &entity.User{
		ID: "u1", Username: "ana", Email: "ana@acme.co", PasswordHash: string(hash),
		Role: entity.RoleSales, CompanyID: entity.CompanyIDPtr(1), IsActive: active, CreatedAt: time.Now(),
	}))
	uc := auth.NewAuthUseCase(users, companies, auth.JWTConfig{Secret: secret, ExpMinutes: 5, Issuer: "test"})
	return uc, users
}

func TestLogin_PorUsernameOEmail(t *testing.T) {
	uc, _ := setup(t, entity.CompanyActive, true)
	ctx := context.Background()

	for _, login := range []string{"ana", "ana@acme.co"} {
		resp, err := uc.Login(ctx, dto.LoginRequest{Login: login, Password: "secreto123"})
		require.NoError(t, err, login)
		userID, err := jwt.Parse(secret, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "u1", userID)
		assert.Equal(t, "ana", resp.User.Username)
	}
}

func TestLogin_Rechazos(t *testing.T) {
	ctx := context.Background()

	uc, _ := setup(t, entity.CompanyActive, true)
	_, err := uc.Login(ctx, dto.LoginRequest{Login: "ana", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Login: "nadie", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	uc, _ = setup(t, entity.CompanyActive, false)
	_, err = uc.Login(ctx, dto.LoginRequest{Login: "ana", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	uc, _ = setup(t, entity.CompanyPending, true)
	_, err = uc.Login(ctx, dto.LoginRequest{Login: "ana", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrTenantInactive)
}

func TestBootstrapSuperuser_Idempotente(t *testing.T) {
	uc, users := setup(t, entity.CompanyActive, true)
	ctx := context.Background()

	created, err := uc.BootstrapSuperuser(ctx, "root", "root@reckonix.io", "cambiar-ya")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = uc.BootstrapSuperuser(ctx, "root", "root@reckonix.io", "cambiar-ya")
	require.NoError(t, err)
	assert.False(t, created)

	root, err := users.GetByLogin(ctx, "root")
	require.NoError(t, err)
	assert.True(t, root.IsSuperuser())
	assert.Nil(t, root.CompanyID)

	resp, err := uc.Login(ctx, dto.LoginRequest{Login: "root", Password: "cambiar-ya"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}
