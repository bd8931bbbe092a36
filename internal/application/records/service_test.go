package records_test

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reckonix-api/internal/application/dto"
	"github.com/jhoicas/Reckonix-api/internal/application/records"
	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/access"
	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
	"github.com/jhoicas/Reckonix-api/internal/infrastructure/memory"
)

type fixture struct {
	repo *memory.RecordRepo
	svc  *records.Service
}

// newFixture: leads [{1,5}, {2,6}, {3,null}].
func newFixture(t *testing.T, opts ...access.Option) fixture {
	t.Helper()
	ctx := context.Background()
	repo := memory.NewRecordRepository("leads", "orders")
	require.NoError(t, repo.Create(ctx, &entity.Record{ID: "1", Collection: "leads", CompanyID: entity.CompanyIDPtr(5), Data: map[string]any{"status": "open"}}))
	require.NoError(t, repo.Create(ctx, &entity.Record{ID: "2", Collection: "leads", CompanyID: entity.CompanyIDPtr(6), Data: map[string]any{"status": "open"}}))
	require.NoError(t, repo.Create(ctx, &entity.Record{ID: "3", Collection: "leads", Data: map[string]any{"status": "won"}}))
	registry := access.NewRegistry("leads", "orders", "tasks")
	return fixture{repo: repo, svc: records.NewService(repo, access.NewEngine(opts...), registry)}
}

func tenant(companyID int64, perms ...string) *access.Context {
	return access.NewContext(&entity.User{ID: "u", Role: entity.RoleUser, CompanyID: entity.CompanyIDPtr(companyID), Permissions: perms})
}

func superuser() *access.Context {
	return access.NewContext(&entity.User{ID: "root", Role: entity.RoleSuperuser})
}

func ids(list *dto.RecordListResponse) []string {
	out := make([]string, 0, len(list.Items))
	for _, it := range list.Items {
		out = append(out, it.ID)
	}
	sort.Strings(out)
	return out
}

func TestList_VisiblesParaElTenant(t *testing.T) {
	f := newFixture(t)
	list, err := f.svc.List(context.Background(), tenant(5, "leads:view"), "leads", dto.RecordListParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, ids(list))
	assert.Equal(t, 2, list.Page.Total)
}

func TestList_EstrictoOcultaLegados(t *testing.T) {
	f := newFixture(t, access.WithLegacyVisibility(false))
	list, err := f.svc.List(context.Background(), tenant(5, "leads:view"), "leads", dto.RecordListParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(list))
}

func TestList_SuperuserVeTodoYFiltra(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	list, err := f.svc.List(ctx, superuser(), "leads", dto.RecordListParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(list))

	list, err = f.svc.List(ctx, superuser(), "leads", dto.RecordListParams{Filters: map[string]string{"companyId": "6"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(list))

	list, err = f.svc.List(ctx, superuser(), "leads", dto.RecordListParams{Filters: map[string]string{"status": "won"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, ids(list))
}

func TestList_SinPermisoEsForbiddenNoListaVacia(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.List(context.Background(), tenant(5), "leads", dto.RecordListParams{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestList_ColeccionDesconocida(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.List(context.Background(), superuser(), "ghosts", dto.RecordListParams{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGet_DeOtraEmpresaEsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := tenant(5, "leads:view")

	_, err := f.svc.Get(ctx, c, "leads", "2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := f.svc.Get(ctx, c, "leads", "3")
	require.NoError(t, err)
	assert.Nil(t, got.CompanyID)
}

func TestCreate_EstampaEmpresaDelCaller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, tenant(5, "leads:create"), "leads", map[string]any{
		"name": "Acme", "companyId": float64(6),
	})
	require.NoError(t, err)
	require.NotNil(t, created.CompanyID)
	assert.Equal(t, int64(5), *created.CompanyID)
	assert.NotContains(t, created.Data, "companyId")

	stored, err := f.repo.GetByID(ctx, "leads", created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), *stored.CompanyID)
}

func TestCreate_SuperuserRespetaEmpresaIndicada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, superuser(), "orders", map[string]any{"id": "o-1", "companyId": float64(6)})
	require.NoError(t, err)
	assert.Equal(t, "o-1", created.ID)
	assert.Equal(t, int64(6), *created.CompanyID)

	_, err = f.svc.Create(ctx, superuser(), "orders", map[string]any{"companyId": "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Un tenant no elige el id: el de otra empresa (id "2", companyId 6) no choca ni se revela.
func TestCreate_TenantNoEligeID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, tenant(5, "leads:create"), "leads", map[string]any{"id": "2", "name": "x"})
	require.NoError(t, err)
	assert.NotEqual(t, "2", created.ID)

	ajeno, err := f.repo.GetByID(ctx, "leads", "2")
	require.NoError(t, err)
	assert.Equal(t, int64(6), *ajeno.CompanyID)
}

// Nombres de campo con operadores ("$where", "a.$gt") o NUL se rechazan antes de llegar al store.
func TestCamposConOperadoresSeRechazan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, field := range []string{"$where", "data.$gt", "a\x00b", ""} {
		_, err := f.svc.List(ctx, tenant(5, "leads:view"), "leads", dto.RecordListParams{
			Filters: map[string]string{field: "sleep(5000) || true"},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, field)
	}

	_, err := f.svc.Create(ctx, tenant(5, "leads:create"), "leads", map[string]any{"$set": map[string]any{"companyId": 6}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Update(ctx, tenant(5, "leads:update"), "leads", "1", map[string]any{"$unset": "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdate_OtraEmpresaEsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := tenant(5, "leads:update")

	_, err := f.svc.Update(ctx, c, "leads", "2", map[string]any{"status": "lost"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.Update(ctx, c, "leads", "404", map[string]any{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_LegadoQuedaParaLaEmpresa(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	updated, err := f.svc.Update(ctx, tenant(5, "leads:update"), "leads", "3", map[string]any{"status": "lost"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), *updated.CompanyID)
	assert.Equal(t, "lost", updated.Data["status"])

	stored, _ := f.repo.GetByID(ctx, "leads", "3")
	assert.Equal(t, int64(5), *stored.CompanyID)
}

func TestDelete_Reglas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.Delete(ctx, tenant(5, "leads:view"), "leads", "1"), domain.ErrForbidden)
	assert.ErrorIs(t, f.svc.Delete(ctx, tenant(5, "leads:delete"), "leads", "2"), domain.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, tenant(5, "leads:delete"), "leads", "1"))

	rec, err := f.repo.GetByID(ctx, "leads", "1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSummary_SoloColeccionesConPermiso(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sum, err := f.svc.Summary(ctx, tenant(5, "leads:view", "tasks:view"))
	require.NoError(t, err)
	// tasks no existe en el store y orders no tiene permiso: ambas se omiten.
	require.Len(t, sum.Collections, 1)
	assert.Equal(t, "leads", sum.Collections[0].Collection)
	assert.Equal(t, int64(2), sum.Collections[0].Count)
	assert.Equal(t, int64(2), sum.Total)

	sum, err = f.svc.Summary(ctx, superuser())
	require.NoError(t, err)
	assert.Equal(t, []dto.CollectionCountDTO{
		{Collection: "leads", Count: 3},
		{Collection: "orders", Count: 0},
	}, sum.Collections)
}
