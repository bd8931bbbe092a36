package access

// Observer recibe cada decisión de Authorize. Lo implementan el log de auditoría y las métricas,
// para que un hueco de permisos nunca se confunda con una lista vacía.
type Observer interface {
	Decision(c *Context, resource, action string, allowed bool)
}

// Observers reparte la decisión a varios observadores.
type Observers []Observer

// Decision implementa Observer.
func (o Observers) Decision(c *Context, resource, action string, allowed bool) {
	for _, obs := range o {
		if obs != nil {
			obs.Decision(c, resource, action, allowed)
		}
	}
}
