package entity

import "time"

// Campos reservados de todo documento de negocio.
const (
	FieldID        = "id"
	FieldCompanyID = "companyId"
)

// Record es un documento de cualquier colección de negocio (customers, leads, quotations,
// orders, invoices, payments, inventory, tasks...). La forma de Data es libre; lo único
// que la capa de acceso conoce es CompanyID.
// CompanyID nil = registro legado, anterior a multi-tenancy.
type Record struct {
	ID         string
	Collection string
	CompanyID  *int64
	Data       map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Fields devuelve el documento plano (Data + id + companyId) para evaluar filtros.
func (r *Record) Fields() map[string]any {
	out := make(map[string]any, len(r.Data)+2)
	for k, v := range r.Data {
		out[k] = v
	}
	out[FieldID] = r.ID
	if r.CompanyID != nil {
		out[FieldCompanyID] = *r.CompanyID
	} else {
		out[FieldCompanyID] = nil
	}
	return out
}

// Clone copia el registro (Data superficial) para no mutar el del caller.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Data = make(map[string]any, len(r.Data))
	for k, v := range r.Data {
		c.Data[k] = v
	}
	if r.CompanyID != nil {
		id := *r.CompanyID
		c.CompanyID = &id
	}
	return &c
}

// CompanyIDPtr helper para construir *int64 en literales.
func CompanyIDPtr(id int64) *int64 {
	return &id
}
