package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin      = "admin"
	RoleCotizador  = "cotizador"
	RoleInstalador = "instalador"
)

// Estados de User.
const (
	UserActive   = "active"
	UserInactive = "inactive"
)

// User representa un usuario del back office.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, cotizador, instalador
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidRole informa si role es uno de los roles del sistema.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleCotizador, RoleInstalador:
		return true
	}
	return false
}
