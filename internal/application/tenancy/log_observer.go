package tenancy

import (
	"github.com/jhoicas/Reckonix-api/internal/domain/access"
	"github.com/jhoicas/Reckonix-api/pkg/logger"
)

var _ access.Observer = (*LogObserver)(nil)

// LogObserver deja en el log cada denegación del motor de permisos.
type LogObserver struct {
	log *logger.Logger
}

// NewLogObserver construye el observador.
func NewLogObserver(log *logger.Logger) *LogObserver {
	return &LogObserver{log: log}
}

// Decision implementa access.Observer. Las concesiones solo se ven en debug.
func (o *LogObserver) Decision(c *access.Context, resource, action string, allowed bool) {
	ev := o.log.Debug()
	msg := "acceso concedido"
	if !allowed {
		ev = o.log.Warn()
		msg = "acceso denegado"
	}
	ev = ev.Str("resource", resource).Str("action", action)
	if c != nil {
		ev = ev.Str("user_id", c.UserID).Str("role", c.Role)
		if c.CompanyID != nil {
			ev = ev.Int64("company_id", *c.CompanyID)
		}
	}
	ev.Msg(msg)
}
