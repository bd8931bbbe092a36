package dto

import "time"

// RecordResponse documento de una colección de negocio.
type RecordResponse struct {
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	CompanyID  *int64         `json:"companyId"`
	Data       map[string]any `json:"data"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// RecordListResponse lista paginada de documentos visibles para el caller.
type RecordListResponse struct {
	Items []RecordResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// RecordListParams filtros de igualdad sobre campos del documento más paginación.
type RecordListParams struct {
	Filters map[string]string
	PageRequest
}
