package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrUnauthenticated    = errors.New("no autenticado")
	ErrUnauthorized       = errors.New("credenciales inválidas")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrUnknownPermission  = errors.New("permiso desconocido")
	ErrTenantLimitReached = errors.New("la empresa alcanzó su límite de usuarios")
	ErrTenantInactive     = errors.New("la empresa no está activa")

	// ErrMigrationPartialFailure agrupa las colecciones que no se pudieron procesar en un backfill.
	ErrMigrationPartialFailure = errors.New("backfill con fallos parciales")
)
