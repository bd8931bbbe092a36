package access

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
)

// ResourceUsers es el recurso administrativo de gestión de usuarios del tenant.
const ResourceUsers = "users"

// DefaultCollections colecciones de negocio cuando la configuración no define otras.
var DefaultCollections = []string{
	"customers", "leads", "quotations", "orders", "invoices", "payments", "inventory", "tasks",
}

// Registry es el vocabulario cerrado pero extensible de permisos "resource:action".
// El Engine trata los permisos como strings opacos; el registro solo valida en escritura
// para que un error tipográfico falle en vez de no otorgar nada.
type Registry struct {
	collections []string
	known       map[string]struct{}
}

// NewRegistry arma el registro con las colecciones de negocio dadas más el recurso "users".
func NewRegistry(collections ...string) *Registry {
	if len(collections) == 0 {
		collections = DefaultCollections
	}
	r := &Registry{known: make(map[string]struct{})}
	seen := make(map[string]bool)
	for _, c := range collections {
		c = strings.TrimSpace(c)
		if c == "" || c == ResourceUsers || seen[c] {
			continue
		}
		seen[c] = true
		r.collections = append(r.collections, c)
	}
	for _, res := range append(append([]string{}, r.collections...), ResourceUsers) {
		for _, a := range Actions {
			r.known[Permission(res, a)] = struct{}{}
		}
	}
	return r
}

// Collections devuelve las colecciones de negocio registradas, en el orden configurado.
func (r *Registry) Collections() []string {
	return append([]string(nil), r.collections...)
}

// HasCollection informa si name es una colección de negocio registrada.
func (r *Registry) HasCollection(name string) bool {
	for _, c := range r.collections {
		if c == name {
			return true
		}
	}
	return false
}

// Known informa si el permiso pertenece al vocabulario.
func (r *Registry) Known(permission string) bool {
	_, ok := r.known[permission]
	return ok
}

// All devuelve todos los permisos conocidos ordenados.
func (r *Registry) All() []string {
	out := make([]string, 0, len(r.known))
	for p := range r.known {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Validate rechaza permisos mal formados o fuera del vocabulario, listándolos todos.
func (r *Registry) Validate(permissions []string) error {
	var unknown []string
	for _, p := range permissions {
		if _, _, err := ParsePermission(p); err != nil || !r.Known(p) {
			unknown = append(unknown, p)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnknownPermission, strings.Join(unknown, ", "))
	}
	return nil
}

// Defaults devuelve el conjunto de permisos que se asigna a un rol cuando no se indican.
func (r *Registry) Defaults(role string) []string {
	switch role {
	case entity.RoleSuperuser:
		return nil
	case entity.RoleAdmin:
		return r.All()
	case entity.RoleSales:
		return r.grant([]string{"customers", "leads", "quotations", "orders", "tasks"}, ActionView, ActionCreate, ActionUpdate)
	case entity.RoleAccounts:
		return r.grant([]string{"customers", "invoices", "payments", "orders"}, ActionView, ActionCreate, ActionUpdate)
	default:
		return r.grant([]string{"leads", "customers", "tasks"}, ActionView)
	}
}

func (r *Registry) grant(resources []string, actions ...string) []string {
	var out []string
	for _, res := range resources {
		for _, a := range actions {
			if p := Permission(res, a); r.Known(p) {
				out = append(out, p)
			}
		}
	}
	return out
}
