package dto

import "time"

// CreateUserRequest entrada para crear un usuario dentro de la empresa del caller.
// Password en texto; se hashea en el use case. Permissions vacío = permisos por defecto del rol.
type CreateUserRequest struct {
	Username    string   `json:"username" validate:"required,min=3,max=100"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Password    string   `json:"password" validate:"required,min=8"`
	Role        string   `json:"role" validate:"required,oneof=user sales accounts admin superuser"`
	Permissions []string `json:"permissions"`
	// CompanyID solo lo usa un superuser; para el resto se toma la empresa del contexto.
	CompanyID *int64 `json:"company_id,omitempty"`
}

// UpdatePermissionsRequest edita rol y/o permisos de un usuario.
type UpdatePermissionsRequest struct {
	Role        *string  `json:"role,omitempty" validate:"omitempty,oneof=user sales accounts admin superuser"`
	Permissions []string `json:"permissions"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	Role        string    `json:"role"`
	CompanyID   *int64    `json:"company_id"`
	Permissions []string  `json:"permissions"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserListResponse lista paginada de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// LoginRequest entrada para login: username o email.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// SignupRequest alta de una empresa nueva con su primer administrador.
type SignupRequest struct {
	CompanyName string `json:"company_name" validate:"required,min=1,max=200"`
	Username    string `json:"username" validate:"required,min=3,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
}

// SignupResponse empresa (pending) y administrador (inactivo hasta la aprobación).
type SignupResponse struct {
	Company CompanyResponse `json:"company"`
	User    UserResponse    `json:"user"`
}

// MeResponse perfil del usuario autenticado con su contexto de tenant.
type MeResponse struct {
	User    UserResponse     `json:"user"`
	Company *CompanyResponse `json:"company,omitempty"`
}
