package dto

// DashboardSummaryDTO respuesta de GET /api/dashboard.
// Solo incluye las colecciones que el usuario puede ver; las demás se omiten, no se reportan en cero.
type DashboardSummaryDTO struct {
	Collections []CollectionCountDTO `json:"collections"`
	Total       int64                `json:"total"`
}

// CollectionCountDTO registros visibles de una colección.
type CollectionCountDTO struct {
	Collection string `json:"collection"`
	Count      int64  `json:"count"`
}
