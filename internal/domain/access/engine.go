package access

import (
	"fmt"

	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
	"github.com/jhoicas/Reckonix-api/internal/domain/query"
)

// Engine aplica la política de acceso. No guarda estado entre peticiones.
type Engine struct {
	legacyVisible bool
	observer      Observer
}

// Option configura el Engine.
type Option func(*Engine)

// WithLegacyVisibility controla si los registros sin companyId son visibles para cualquier tenant.
// Desactivarlo (aislamiento estricto) solo es seguro cuando el backfill terminó.
func WithLegacyVisibility(enabled bool) Option {
	return func(e *Engine) { e.legacyVisible = enabled }
}

// WithObserver registra quién recibe las decisiones de Authorize.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// NewEngine construye el motor. Por defecto los registros legados son visibles.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{legacyVisible: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LegacyVisible informa si está activo el fallback de companyId nulo.
func (e *Engine) LegacyVisible() bool { return e.legacyVisible }

// Can decide sin notificar a los observadores (p. ej. para armar menús o el dashboard).
func (e *Engine) Can(c *Context, resource, action string) bool {
	if c == nil {
		return false
	}
	if c.IsSuperuser() {
		return true
	}
	return c.Has(Permission(resource, action))
}

// Authorize permite la operación si el rol es superuser o si "resource:action" está en los permisos.
// La denegación es siempre explícita (ErrForbidden), nunca un filtrado silencioso.
func (e *Engine) Authorize(c *Context, resource, action string) error {
	if c == nil {
		return domain.ErrUnauthenticated
	}
	allowed := e.Can(c, resource, action)
	if e.observer != nil {
		e.observer.Decision(c, resource, action, allowed)
	}
	if !allowed {
		return fmt.Errorf("%w: falta el permiso %s", domain.ErrForbidden, Permission(resource, action))
	}
	return nil
}

// RequireSuperuser para operaciones de plataforma (aprobar empresas, backfill).
func (e *Engine) RequireSuperuser(c *Context) error {
	if c == nil {
		return domain.ErrUnauthenticated
	}
	if !c.IsSuperuser() {
		return fmt.Errorf("%w: se requiere rol superuser", domain.ErrForbidden)
	}
	return nil
}

// ScopeQuery restringe base a los registros visibles para el tenant:
//
//	base AND (companyId == ctx.companyId OR companyId IS NULL)
//
// Para superuser devuelve base sin cambios.
func (e *Engine) ScopeQuery(c *Context, base query.Filter) query.Filter {
	if c.IsSuperuser() {
		return base
	}
	return query.Conj(base, e.tenantFilter(c))
}

func (e *Engine) tenantFilter(c *Context) query.Filter {
	if c == nil || c.CompanyID == nil {
		// Sin tenant no hay nada visible, ni siquiera los legados.
		return query.Or{}
	}
	own := query.Eq{Field: entity.FieldCompanyID, Value: *c.CompanyID}
	if !e.legacyVisible {
		return own
	}
	return query.Or{own, query.IsNull{Field: entity.FieldCompanyID}}
}

// Visible evalúa en memoria el mismo predicado que ScopeQuery.
func (e *Engine) Visible(c *Context, rec *entity.Record) bool {
	if rec == nil || c == nil {
		return false
	}
	if c.IsSuperuser() {
		return true
	}
	return query.Match(e.tenantFilter(c), rec.Fields())
}

// StampOwnership fija companyId = ctx.companyId en un registro nuevo, pisando lo que haya
// enviado el cliente. Para superuser se respeta el valor recibido.
// Devuelve una copia; el registro de entrada no se modifica.
func (e *Engine) StampOwnership(c *Context, rec *entity.Record) *entity.Record {
	out := rec.Clone()
	if out == nil || c.IsSuperuser() {
		return out
	}
	if c != nil && c.CompanyID != nil {
		out.CompanyID = entity.CompanyIDPtr(*c.CompanyID)
	} else {
		out.CompanyID = nil
	}
	return out
}

// AssertOwnership se verifica antes de update/delete: el registro debe existir y pasar el
// mismo criterio de pertenencia que ScopeQuery.
func (e *Engine) AssertOwnership(c *Context, rec *entity.Record) error {
	if c == nil {
		return domain.ErrUnauthenticated
	}
	if rec == nil {
		return domain.ErrNotFound
	}
	if !e.Visible(c, rec) {
		return fmt.Errorf("%w: el registro %s/%s pertenece a otra empresa", domain.ErrForbidden, rec.Collection, rec.ID)
	}
	return nil
}

// AssertMember exige que companyID sea exactamente el tenant del contexto, sin el fallback
// de legados. Se usa con entidades administrativas (usuarios), donde nil significa superuser.
func (e *Engine) AssertMember(c *Context, companyID *int64) error {
	if c == nil {
		return domain.ErrUnauthenticated
	}
	if c.IsSuperuser() {
		return nil
	}
	if c.CompanyID == nil || companyID == nil || *c.CompanyID != *companyID {
		return fmt.Errorf("%w: fuera de la empresa del usuario", domain.ErrForbidden)
	}
	return nil
}
