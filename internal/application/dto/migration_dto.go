package dto

// BackfillRequest asigna TargetCompanyID a los registros sin empresa o con una empresa desconocida.
// Collections vacío = todas las colecciones registradas.
type BackfillRequest struct {
	TargetCompanyID int64    `json:"company_id" validate:"required,min=1"`
	Collections     []string `json:"collections"`
	DryRun          bool     `json:"dry_run"`
}

// BackfillReport resultado por colección.
type BackfillReport struct {
	TargetCompanyID int64             `json:"company_id"`
	DryRun          bool              `json:"dry_run"`
	Modified        map[string]int64  `json:"modified"`
	Skipped         []string          `json:"skipped"`
	Failures        map[string]string `json:"failures,omitempty"`
	Total           int64             `json:"total"`
}

// CollectionAccessDTO reparto de los registros de una colección respecto de una empresa.
type CollectionAccessDTO struct {
	Collection string `json:"collection"`
	Exists     bool   `json:"exists"`
	Owned      int64  `json:"owned"`
	Orphaned   int64  `json:"orphaned"`
	Foreign    int64  `json:"foreign"`
}

// VerifyReport verificación de acceso a datos para una empresa.
type VerifyReport struct {
	CompanyID   int64                 `json:"company_id"`
	Collections []CollectionAccessDTO `json:"collections"`
}
