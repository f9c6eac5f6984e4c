package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MainWarehouse identifica la bodega principal en filtros (BranchID nil).
const MainWarehouse = "main"

// Product representa un producto en una ubicación. BranchID nil = bodega principal.
// Quantity es la única fuente de verdad de "cuánto hay aquí ahora"; solo cambia vía movimientos.
type Product struct {
	ID          string
	Name        string
	Code        string // mismo código en todas las sucursales
	Quantity    decimal.Decimal
	MinQuantity decimal.Decimal
	BranchID    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LocatedAt indica si el producto está en la ubicación dada (nil = bodega principal).
func (p *Product) LocatedAt(branchID *string) bool {
	return SameLocation(p.BranchID, branchID)
}

// SameLocation compara dos ubicaciones opcionales.
func SameLocation(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
