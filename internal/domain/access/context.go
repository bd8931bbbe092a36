// Package access es la única autoridad de autorización: decide si una operación
// (resource, action) está permitida y qué subconjunto de registros es visible para
// un tenant. Ningún otro componente debe comparar roles por su cuenta.
package access

import (
	"fmt"
	"strings"

	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
)

// Acciones del vocabulario de permisos.
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Actions lista las acciones en orden estable.
var Actions = []string{ActionView, ActionCreate, ActionUpdate, ActionDelete}

// Context es el triple {role, companyId, permissions} del usuario que actúa.
// Se construye una vez por petición y no se modifica.
type Context struct {
	UserID      string
	Role        string
	CompanyID   *int64 // nil solo para superuser
	permissions map[string]struct{}
}

// NewContext construye el contexto de tenant a partir de un usuario ya resuelto.
func NewContext(u *entity.User) *Context {
	c := &Context{
		UserID:      u.ID,
		Role:        u.Role,
		permissions: make(map[string]struct{}, len(u.Permissions)),
	}
	if u.CompanyID != nil {
		id := *u.CompanyID
		c.CompanyID = &id
	}
	for _, p := range u.Permissions {
		c.permissions[p] = struct{}{}
	}
	return c
}

// IsSuperuser informa si el contexto opera sin restricción de tenant.
func (c *Context) IsSuperuser() bool {
	return c != nil && c.Role == entity.RoleSuperuser
}

// Has informa si el permiso literal está en el conjunto (no aplica reglas de rol).
func (c *Context) Has(permission string) bool {
	if c == nil {
		return false
	}
	_, ok := c.permissions[permission]
	return ok
}

// Permissions devuelve una copia del conjunto de permisos.
func (c *Context) Permissions() []string {
	out := make([]string, 0, len(c.permissions))
	for p := range c.permissions {
		out = append(out, p)
	}
	return out
}

// Permission arma el string "resource:action".
func Permission(resource, action string) string {
	return resource + ":" + action
}

// ParsePermission separa "resource:action". Ambos lados deben ser no vacíos.
func ParsePermission(p string) (resource, action string, err error) {
	resource, action, ok := strings.Cut(p, ":")
	if !ok || resource == "" || action == "" || strings.Contains(action, ":") {
		return "", "", fmt.Errorf("permiso mal formado %q", p)
	}
	return resource, action, nil
}
