package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	ret := m.Called(sql, args)
	return pgconn.NewCommandTag(ret.String(0)), ret.Error(1)
}

func (m *mockQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("Query no esperado")
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("QueryRow no esperado")
}

const insertCollection = `INSERT INTO collections (name) VALUES ($1) ON CONFLICT DO NOTHING`

func TestRegisterCollections_AltaIdempotenteDelCatalogo(t *testing.T) {
	db := new(mockQuerier)
	db.On("Exec", insertCollection, []any{"leads"}).Return("INSERT 0 0", nil).Once()
	db.On("Exec", insertCollection, []any{"contracts"}).Return("INSERT 0 1", nil).Once()

	repo := NewRecordRepository(db)
	require.NoError(t, repo.RegisterCollections(context.Background(), []string{"leads", "", "contracts"}))
	db.AssertExpectations(t)
	db.AssertNumberOfCalls(t, "Exec", 2)
}

func TestRegisterCollections_ErrorDeBaseSePropaga(t *testing.T) {
	boom := errors.New("conexión cerrada")
	db := new(mockQuerier)
	db.On("Exec", insertCollection, []any{"contracts"}).Return("", boom).Once()

	err := NewRecordRepository(db).RegisterCollections(context.Background(), []string{"contracts", "tasks"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "contracts")
	db.AssertNumberOfCalls(t, "Exec", 1)
}
