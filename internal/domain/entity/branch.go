package entity

import "time"

// Branch representa una sucursal que mantiene inventario propio.
type Branch struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
}
