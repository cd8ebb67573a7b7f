package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin   = "ADMIN"
	RoleCliente = "CLIENTE"
)

// User representa un usuario del sistema. Inmutable después del registro.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano
	Role         string // ADMIN, CLIENTE
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin indica si el usuario tiene la capacidad de administrador.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// ValidRole indica si role es uno de los roles conocidos.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCliente
}
