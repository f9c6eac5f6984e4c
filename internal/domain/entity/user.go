package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"     // todo, incluidas reversas y aprobación de traslados
	RoleWarehouse = "warehouse" // movimientos de inventario y despacho de traslados
	RoleCashier   = "cashier"   // ventas, recibos y consulta de cuentas
)

// User usuario del sistema. El rol viaja en el JWT.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsValidRole indica si role es uno de los conocidos.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleWarehouse, RoleCashier:
		return true
	default:
		return false
	}
}
