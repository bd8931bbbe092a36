package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reckonix-api/internal/application/auth"
	"github.com/jhoicas/Reckonix-api/internal/application/dto"
	"github.com/jhoicas/Reckonix-api/internal/application/migration"
	"github.com/jhoicas/Reckonix-api/internal/application/records"
	"github.com/jhoicas/Reckonix-api/internal/application/tenancy"
	"github.com/jhoicas/Reckonix-api/internal/application/usecase"
	"github.com/jhoicas/Reckonix-api/internal/domain/access"
	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
	"github.com/jhoicas/Reckonix-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Reckonix-api/internal/interfaces/http"
	"github.com/jhoicas/Reckonix-api/pkg/logger"
)

// apiEnv aplicación completa sobre el store en memoria.
type apiEnv struct {
	app     *fiber.App
	users   *memory.UserRepo
	records *memory.RecordRepo
}

func newAPI(t *testing.T) apiEnv {
	t.Helper()
	users := memory.NewUserRepository()
	companies := memory.NewCompanyRepository()
	recs := memory.NewRecordRepository(access.DefaultCollections...)
	engine := access.NewEngine()
	registry := access.NewRegistry()

	authUC := auth.NewAuthUseCase(users, companies, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})
	created, err := authUC.BootstrapSuperuser(context.Background(), "root", "root@reckonix.co", "rootpass123")
	require.NoError(t, err)
	require.True(t, created)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:    authUC,
		CompanyUC: usecase.NewCompanyUseCase(companies, users, memory.NewTxRunner(companies, users), engine, registry),
		UserUC:    usecase.NewUserUseCase(users, companies, engine, registry),
		Records:   records.NewService(recs, engine, registry),
		Migration: migration.NewService(recs, companies, registry, logger.Nop(), nil),
		Resolver:  tenancy.NewResolver(users, companies),
		Engine:    engine,
		JWTSecret: testJWTSecret,
	})
	return apiEnv{app: app, users: users, records: recs}
}

func (e apiEnv) call(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func (e apiEnv) login(t *testing.T, login, password string) string {
	t.Helper()
	status, body := e.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Login: login, Password: password})
	require.Equal(t, http.StatusOK, status, string(body))
	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out.Token
}

// tenant registra y aprueba una empresa; devuelve su ID y el token de su admin.
func (e apiEnv) tenant(t *testing.T, rootToken, name, admin string) (int64, string) {
	t.Helper()
	status, body := e.call(t, http.MethodPost, "/api/auth/signup", "", dto.SignupRequest{
		CompanyName: name, Username: admin, Email: admin + "@" + name + ".co", Password: "secreto123",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var signup dto.SignupResponse
	require.NoError(t, json.Unmarshal(body, &signup))

	// pendiente de aprobación: no puede iniciar sesión
	status, _ = e.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Login: admin, Password: "secreto123"})
	require.Equal(t, http.StatusForbidden, status)

	status, body = e.call(t, http.MethodPost, fmt.Sprintf("/api/admin/companies/%d/approve", signup.Company.ID), rootToken, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	return signup.Company.ID, e.login(t, admin, "secreto123")
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func TestAPI_AislamientoEntreEmpresas(t *testing.T) {
	e := newAPI(t)
	rootToken := e.login(t, "root", "rootpass123")
	acmeID, ana := e.tenant(t, rootToken, "acme", "ana")
	_, bob := e.tenant(t, rootToken, "globex", "bob")

	// legado anterior a multi-tenancy
	require.NoError(t, e.records.Create(context.Background(), &entity.Record{
		ID: "legacy-1", Collection: "leads", Data: map[string]any{"name": "Legado"}, CreatedAt: time.Now(),
	}))

	// El companyId del cliente se ignora: queda el de la empresa del creador.
	status, body := e.call(t, http.MethodPost, "/api/records/leads", ana, map[string]any{"name": "Lead Acme", "companyId": 999})
	require.Equal(t, http.StatusCreated, status, string(body))
	created := decode[dto.RecordResponse](t, body)
	require.NotNil(t, created.CompanyID)
	assert.Equal(t, acmeID, *created.CompanyID)

	status, body = e.call(t, http.MethodGet, "/api/records/leads", bob, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	list := decode[dto.RecordListResponse](t, body)
	require.Len(t, list.Items, 1, "globex solo ve el registro legado")
	assert.Equal(t, "legacy-1", list.Items[0].ID)

	status, _ = e.call(t, http.MethodGet, "/api/records/leads/"+created.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, status, "un registro ajeno no se revela")

	status, _ = e.call(t, http.MethodPut, "/api/records/leads/"+created.ID, bob, map[string]any{"name": "robado"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = e.call(t, http.MethodDelete, "/api/records/leads/"+created.ID, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = e.call(t, http.MethodGet, "/api/records/leads", ana, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[dto.RecordListResponse](t, body).Items, 2)

	// superuser ve todo, incluido el filtro explícito por empresa
	status, body = e.call(t, http.MethodGet, fmt.Sprintf("/api/records/leads?companyId=%d", acmeID), rootToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[dto.RecordListResponse](t, body).Items, 1)
}

func TestAPI_PermisosYDashboard(t *testing.T) {
	e := newAPI(t)
	rootToken := e.login(t, "root", "rootpass123")
	_, ana := e.tenant(t, rootToken, "acme", "ana")

	status, body := e.call(t, http.MethodPost, "/api/users", ana, dto.CreateUserRequest{
		Username: "carla", Email: "carla@acme.co", Password: "secreto123", Role: entity.RoleUser,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	carla := e.login(t, "carla", "secreto123")

	// rol user: solo view de leads, customers y tasks
	status, _ = e.call(t, http.MethodGet, "/api/records/leads", carla, nil)
	assert.Equal(t, http.StatusOK, status)
	status, body = e.call(t, http.MethodGet, "/api/records/invoices", carla, nil)
	assert.Equal(t, http.StatusForbidden, status, "sin permiso es 403, no una lista vacía")
	assert.Contains(t, string(body), "FORBIDDEN")
	status, _ = e.call(t, http.MethodPost, "/api/records/leads", carla, map[string]any{"name": "x"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = e.call(t, http.MethodGet, "/api/dashboard", carla, nil)
	require.Equal(t, http.StatusOK, status)
	summary := decode[dto.DashboardSummaryDTO](t, body)
	var names []string
	for _, c := range summary.Collections {
		names = append(names, c.Collection)
	}
	assert.ElementsMatch(t, []string{"customers", "leads", "tasks"}, names)

	status, body = e.call(t, http.MethodPut, "/api/users/"+decode[dto.MeResponse](t, e.me(t, carla)).User.ID+"/permissions", ana,
		dto.UpdatePermissionsRequest{Permissions: []string{"leads:view", "leads:fly"}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "leads:fly")

	status, _ = e.call(t, http.MethodGet, "/api/admin/companies", ana, nil)
	assert.Equal(t, http.StatusForbidden, status, "admin de empresa no administra la plataforma")
}

func (e apiEnv) me(t *testing.T, token string) []byte {
	t.Helper()
	status, body := e.call(t, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	return body
}

func TestAPI_UsuarioDesactivadoPierdeAcceso(t *testing.T) {
	e := newAPI(t)
	rootToken := e.login(t, "root", "rootpass123")
	_, ana := e.tenant(t, rootToken, "acme", "ana")

	status, body := e.call(t, http.MethodPost, "/api/users", ana, dto.CreateUserRequest{
		Username: "dario", Password: "secreto123", Role: entity.RoleSales,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	dario := e.login(t, "dario", "secreto123")
	darioID := decode[dto.UserResponse](t, body).ID

	status, _ = e.call(t, http.MethodDelete, "/api/users/"+darioID, ana, nil)
	require.Equal(t, http.StatusNoContent, status)

	// el token sigue siendo válido pero el usuario ya no resuelve
	status, _ = e.call(t, http.MethodGet, "/api/me", dario, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_EmpresaSuspendida(t *testing.T) {
	e := newAPI(t)
	rootToken := e.login(t, "root", "rootpass123")
	acmeID, ana := e.tenant(t, rootToken, "acme", "ana")

	status, _ := e.call(t, http.MethodPost, fmt.Sprintf("/api/admin/companies/%d/suspend", acmeID), rootToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, body := e.call(t, http.MethodGet, "/api/records/leads", ana, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, string(body), "TENANT_INACTIVE")
}

func TestAPI_BackfillYVerify(t *testing.T) {
	e := newAPI(t)
	rootToken := e.login(t, "root", "rootpass123")
	acmeID, ana := e.tenant(t, rootToken, "acme", "ana")
	ctx := context.Background()
	for _, id := range []string{"o1", "o2"} {
		require.NoError(t, e.records.Create(ctx, &entity.Record{ID: id, Collection: "orders", Data: map[string]any{}}))
	}

	req := dto.BackfillRequest{TargetCompanyID: acmeID, Collections: []string{"orders", "archived"}}
	status, _ := e.call(t, http.MethodPost, "/api/admin/backfill", ana, req)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := e.call(t, http.MethodPost, "/api/admin/backfill", rootToken, req)
	require.Equal(t, http.StatusOK, status, string(body))
	report := decode[dto.BackfillReport](t, body)
	assert.Equal(t, int64(2), report.Modified["orders"])
	assert.Equal(t, []string{"archived"}, report.Skipped)

	status, body = e.call(t, http.MethodPost, "/api/admin/backfill", rootToken, req)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(0), decode[dto.BackfillReport](t, body).Total, "segunda corrida no cambia nada")

	status, body = e.call(t, http.MethodGet, fmt.Sprintf("/api/admin/verify?company_id=%d", acmeID), rootToken, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	verify := decode[dto.VerifyReport](t, body)
	for _, c := range verify.Collections {
		if c.Collection == "orders" {
			assert.Equal(t, int64(2), c.Owned)
			assert.Zero(t, c.Orphaned)
		}
	}

	status, _ = e.call(t, http.MethodPost, "/api/admin/backfill", rootToken, dto.BackfillRequest{TargetCompanyID: 999})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_ErroresDeEntrada(t *testing.T) {
	e := newAPI(t)
	rootToken := e.login(t, "root", "rootpass123")

	status, _ := e.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Login: "root", Password: "mala"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = e.call(t, http.MethodGet, "/api/records/planets", rootToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = e.call(t, http.MethodGet, "/api/records/leads", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = e.call(t, http.MethodGet, "/api/admin/verify", rootToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
