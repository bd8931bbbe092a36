package entity

import "time"

// Estados de una Company (tenant).
const (
	CompanyPending   = "pending"
	CompanyActive    = "active"
	CompanySuspended = "suspended"
)

// Company representa una organización/tenant: la unidad de aislamiento de datos.
// Invariante: usuarios activos con este ID <= MaxUsers.
type Company struct {
	ID        int64
	Name      string
	Status    string // pending, active, suspended
	MaxUsers  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive informa si la empresa fue aprobada y no está suspendida.
func (c *Company) IsActive() bool {
	return c != nil && c.Status == CompanyActive
}
