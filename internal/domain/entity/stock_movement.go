package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType es la etiqueta de un movimiento de inventario.
type MovementType string

// Tipos de movimiento. El ajuste se separa en "fijar" y "delta" para que la intención sea explícita.
const (
	MovementIn          MovementType = "in"           // entrada, compra, devolución
	MovementOut         MovementType = "out"          // salida, venta, retiro manual
	MovementAdjustSet   MovementType = "adjust_set"   // conteo físico: cantidad absoluta
	MovementAdjustDelta MovementType = "adjust_delta" // corrección relativa (+/-)
)

// IsValid indica si el tipo es uno de los conocidos.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjustSet, MovementAdjustDelta:
		return true
	default:
		return false
	}
}

// Tipos de referencia habituales.
const (
	ReferenceSale       = "sale"
	ReferencePurchase   = "purchase"
	ReferenceReturn     = "return"
	ReferenceManual     = "manual"
	ReferenceStockCount = "stock_count"
	ReferenceTransfer   = "transfer"
	ReferenceReversal   = "reversal"
	ReferenceOpening    = "opening" // existencia inicial al crear el producto
)

// StockMovement es el registro de auditoría append-only de un cambio de cantidad.
// Quantity: unidades para in/out, cantidad objetivo para adjust_set, delta con signo para adjust_delta.
type StockMovement struct {
	ID               string
	Seq              int64
	ProductID        string
	Type             MovementType
	Quantity         decimal.Decimal
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
	ReferenceType    string
	ReferenceNumber  string
	ReversesID       string
	Date             time.Time
	CreatedAt        time.Time
	CreatedBy        string
}
