package entity

import "time"

// Roles válidos para User.
const (
	RoleUser      = "user"
	RoleSales     = "sales"
	RoleAccounts  = "accounts"
	RoleAdmin     = "admin"
	RoleSuperuser = "superuser"
)

// ValidRole informa si role es uno de los roles conocidos.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleSales, RoleAccounts, RoleAdmin, RoleSuperuser:
		return true
	}
	return false
}

// User representa un usuario del sistema.
// CompanyID es nil solo para superuser; el resto pertenece exactamente a una Company.
// Nunca se borra: se desactiva con IsActive=false.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt
	Role         string
	CompanyID    *int64
	Permissions  []string // "<resource>:<action>"
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsSuperuser informa si el usuario opera sin restricción de tenant.
func (u *User) IsSuperuser() bool {
	return u != nil && u.Role == RoleSuperuser
}
