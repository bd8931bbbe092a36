package tenancy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/access"
	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
	"github.com/jhoicas/Reckonix-api/pkg/logger"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockUserRepo) GetByLogin(ctx context.Context, login string) (*entity.User, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) ListByCompany(ctx context.Context, companyID int64, limit, offset int) ([]*entity.User, error) {
	args := m.Called(ctx, companyID, limit, offset)
	return args.Get(0).([]*entity.User), args.Error(1)
}

func (m *mockUserRepo) CountActiveByCompany(ctx context.Context, companyID int64) (int, error) {
	args := m.Called(ctx, companyID)
	return args.Int(0), args.Error(1)
}

type mockCompanyRepo struct {
	mock.Mock
}

func (m *mockCompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCompanyRepo) GetByID(ctx context.Context, id int64) (*entity.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Company), args.Error(1)
}

func (m *mockCompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCompanyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Company, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*entity.Company), args.Error(1)
}

func (m *mockCompanyRepo) ListIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).([]int64), args.Error(1)
}

func TestResolve_UsuarioDeEmpresa(t *testing.T) {
	ctx := context.Background()
	users, companies := new(mockUserRepo), new(mockCompanyRepo)
	users.On("GetByID", ctx, "u1").Return(&entity.User{
		ID: "u1", Role: entity.RoleSales, CompanyID: entity.CompanyIDPtr(5),
		Permissions: []string{"leads:view"}, IsActive: true,
	}, nil)
	companies.On("GetByID", ctx, int64(5)).Return(&entity.Company{ID: 5, Status: entity.CompanyActive}, nil)

	c, err := NewResolver(users, companies).Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, entity.RoleSales, c.Role)
	require.NotNil(t, c.CompanyID)
	assert.Equal(t, int64(5), *c.CompanyID)
	assert.True(t, c.Has("leads:view"))
	users.AssertExpectations(t)
	companies.AssertExpectations(t)
}

func TestResolve_SuperuserSinEmpresa(t *testing.T) {
	ctx := context.Background()
	users, companies := new(mockUserRepo), new(mockCompanyRepo)
	users.On("GetByID", ctx, "root").Return(&entity.User{ID: "root", Role: entity.RoleSuperuser, IsActive: true}, nil)

	c, err := NewResolver(users, companies).Resolve(ctx, "root")
	require.NoError(t, err)
	assert.True(t, c.IsSuperuser())
	assert.Nil(t, c.CompanyID)
	companies.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestResolve_Rechazos(t *testing.T) {
	ctx := context.Background()

	t.Run("inexistente", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("GetByID", ctx, "x").Return(nil, nil)
		_, err := NewResolver(users, new(mockCompanyRepo)).Resolve(ctx, "x")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("inactivo", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("GetByID", ctx, "u").Return(&entity.User{ID: "u", Role: entity.RoleUser, CompanyID: entity.CompanyIDPtr(1)}, nil)
		_, err := NewResolver(users, new(mockCompanyRepo)).Resolve(ctx, "u")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("sin empresa", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("GetByID", ctx, "u").Return(&entity.User{ID: "u", Role: entity.RoleAdmin, IsActive: true}, nil)
		_, err := NewResolver(users, new(mockCompanyRepo)).Resolve(ctx, "u")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("empresa suspendida", func(t *testing.T) {
		users, companies := new(mockUserRepo), new(mockCompanyRepo)
		users.On("GetByID", ctx, "u").Return(&entity.User{ID: "u", Role: entity.RoleAdmin, CompanyID: entity.CompanyIDPtr(3), IsActive: true}, nil)
		companies.On("GetByID", ctx, int64(3)).Return(&entity.Company{ID: 3, Status: entity.CompanySuspended}, nil)
		_, err := NewResolver(users, companies).Resolve(ctx, "u")
		assert.ErrorIs(t, err, domain.ErrTenantInactive)
	})

	t.Run("error de store", func(t *testing.T) {
		boom := errors.New("conexión perdida")
		users := new(mockUserRepo)
		users.On("GetByID", ctx, "u").Return(nil, boom)
		_, err := NewResolver(users, new(mockCompanyRepo)).Resolve(ctx, "u")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("id vacío", func(t *testing.T) {
		_, err := NewResolver(new(mockUserRepo), new(mockCompanyRepo)).Resolve(ctx, "")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestLogObserver_DenegacionEnWarn(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogObserver(logger.NewWriter(&buf, "info"))
	c := access.NewContext(&entity.User{ID: "u1", Role: entity.RoleUser, CompanyID: entity.CompanyIDPtr(9)})

	obs.Decision(c, "invoices", "delete", true)
	assert.Empty(t, buf.String(), "las concesiones no se registran en info")

	obs.Decision(c, "invoices", "delete", false)
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "invoices", line["resource"])
	assert.Equal(t, "delete", line["action"])
	assert.Equal(t, "u1", line["user_id"])
	assert.Equal(t, float64(9), line["company_id"])
}
