package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/access"
	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
)

func TestRegistry_ValidaVocabulario(t *testing.T) {
	r := access.NewRegistry("leads", "orders")
	assert.NoError(t, r.Validate([]string{"leads:view", "orders:delete", "users:update"}))

	err := r.Validate([]string{"leads:view", "leds:view", "leads:approve", "leads"})
	assert.ErrorIs(t, err, domain.ErrUnknownPermission)
	assert.Contains(t, err.Error(), "leds:view")
	assert.Contains(t, err.Error(), "leads:approve")
	assert.NotContains(t, err.Error(), "leads:view,")
}

func TestRegistry_ColeccionesExtensibles(t *testing.T) {
	r := access.NewRegistry("leads", " tickets ", "users", "leads")
	assert.Equal(t, []string{"leads", "tickets"}, r.Collections())
	assert.True(t, r.HasCollection("tickets"))
	assert.False(t, r.HasCollection("users"), "users es administrativo, no colección de negocio")
	assert.True(t, r.Known("tickets:create"))
}

func TestRegistry_DefaultsPorRol(t *testing.T) {
	r := access.NewRegistry()
	assert.Equal(t, r.All(), r.Defaults(entity.RoleAdmin))
	assert.Nil(t, r.Defaults(entity.RoleSuperuser))
	assert.Contains(t, r.Defaults(entity.RoleSales), "leads:create")
	assert.NotContains(t, r.Defaults(entity.RoleSales), "invoices:view")
	assert.Contains(t, r.Defaults(entity.RoleAccounts), "payments:update")
	assert.Equal(t, []string{"leads:view", "customers:view", "tasks:view"}, r.Defaults(entity.RoleUser))
	assert.NoError(t, r.Validate(r.Defaults(entity.RoleSales)))
}

func TestParsePermission(t *testing.T) {
	res, act, err := access.ParsePermission("leads:view")
	assert.NoError(t, err)
	assert.Equal(t, "leads", res)
	assert.Equal(t, "view", act)

	for _, bad := range []string{"", "leads", ":view", "leads:", "a:b:c"} {
		_, _, err := access.ParsePermission(bad)
		assert.Error(t, err, bad)
	}
}
