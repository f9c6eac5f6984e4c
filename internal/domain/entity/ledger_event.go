package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEventKind es la etiqueta del evento de cuenta corriente.
type LedgerEventKind string

// Tipos de evento. Las reversas sustituyen al borrado: el historial es append-only.
const (
	LedgerKindSale            LedgerEventKind = "sale"             // débito
	LedgerKindReceipt         LedgerEventKind = "receipt"          // crédito (recibo de caja)
	LedgerKindSaleReversal    LedgerEventKind = "sale_reversal"    // crédito que anula una venta
	LedgerKindReceiptReversal LedgerEventKind = "receipt_reversal" // débito que anula un recibo
)

// IsValid indica si el tipo es uno de los conocidos.
func (k LedgerEventKind) IsValid() bool {
	switch k {
	case LedgerKindSale, LedgerKindReceipt, LedgerKindSaleReversal, LedgerKindReceiptReversal:
		return true
	default:
		return false
	}
}

// IsReversal indica si el evento es una reversa de otro.
func (k LedgerEventKind) IsReversal() bool {
	return k == LedgerKindSaleReversal || k == LedgerKindReceiptReversal
}

// ReversalKind devuelve el tipo de la reversa compensatoria ("" si no aplica).
func (k LedgerEventKind) ReversalKind() LedgerEventKind {
	switch k {
	case LedgerKindSale:
		return LedgerKindSaleReversal
	case LedgerKindReceipt:
		return LedgerKindReceiptReversal
	default:
		return ""
	}
}

// LedgerEvent es un hecho financiero inmutable contra una cuenta.
// Amount nunca es negativo: el signo lo da Kind. Seq es el orden de inserción
// y desempata eventos con la misma fecha.
type LedgerEvent struct {
	ID         string
	Seq        int64
	AccountID  string
	Kind       LedgerEventKind
	Amount     decimal.Decimal
	Date       time.Time
	Reference  string
	ReversesID string // ID del evento reversado (solo reversas)
	CreatedAt  time.Time
	CreatedBy  string
}

// KindTotals suma de montos por tipo de evento de una cuenta.
type KindTotals map[LedgerEventKind]decimal.Decimal
