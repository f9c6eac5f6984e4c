// Package stock contiene las reglas puras para aplicar movimientos a una cantidad.
// La política ante una salida mayor al disponible es rechazar, nunca recortar a cero.
package stock

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// Status estado de existencias derivado de Quantity y MinQuantity.
type Status string

const (
	StatusInStock    Status = "in_stock"
	StatusLowStock   Status = "low_stock"
	StatusOutOfStock Status = "out_of_stock"
)

// StatusOf: 0 → out_of_stock; 0 < q ≤ min → low_stock; q > min → in_stock.
func StatusOf(quantity, minQuantity decimal.Decimal) Status {
	if quantity.Sign() <= 0 {
		return StatusOutOfStock
	}
	if quantity.LessThanOrEqual(minQuantity) {
		return StatusLowStock
	}
	return StatusInStock
}

// Validate revisa la forma del movimiento sin mirar el estado actual.
func Validate(typ entity.MovementType, quantity decimal.Decimal) error {
	switch typ {
	case entity.MovementIn, entity.MovementOut:
		if !quantity.IsPositive() {
			return domain.NewValidationError("quantity", "debe ser mayor que cero")
		}
	case entity.MovementAdjustSet:
		if quantity.IsNegative() {
			return domain.NewValidationError("quantity", "la cantidad objetivo no puede ser negativa")
		}
	case entity.MovementAdjustDelta:
		if quantity.IsZero() {
			return domain.NewValidationError("quantity", "el ajuste no puede ser cero")
		}
	default:
		return domain.NewValidationError("type", "tipo de movimiento desconocido: "+string(typ))
	}
	return domain.CheckScale("quantity", quantity, domain.QuantityScale)
}

// Apply calcula la nueva cantidad. No modifica nada: el llamador persiste el resultado.
func Apply(productID string, current decimal.Decimal, typ entity.MovementType, quantity decimal.Decimal) (decimal.Decimal, error) {
	if err := Validate(typ, quantity); err != nil {
		return current, err
	}
	switch typ {
	case entity.MovementIn:
		return current.Add(quantity), nil
	case entity.MovementOut:
		if quantity.GreaterThan(current) {
			return current, &domain.InsufficientStockError{ProductID: productID, Requested: quantity, Available: current}
		}
		return current.Sub(quantity), nil
	case entity.MovementAdjustSet:
		return quantity, nil
	case entity.MovementAdjustDelta:
		next := current.Add(quantity)
		if next.IsNegative() {
			return current, &domain.InsufficientStockError{ProductID: productID, Requested: quantity.Neg(), Available: current}
		}
		return next, nil
	}
	return current, domain.NewValidationError("type", "tipo de movimiento desconocido: "+string(typ))
}

// Reversal devuelve el movimiento compensatorio de m. Un ajuste absoluto se revierte
// como delta (anterior − nuevo) para no pisar movimientos posteriores.
func Reversal(m *entity.StockMovement) (entity.MovementType, decimal.Decimal, error) {
	switch m.Type {
	case entity.MovementIn:
		return entity.MovementOut, m.Quantity, nil
	case entity.MovementOut:
		return entity.MovementIn, m.Quantity, nil
	case entity.MovementAdjustDelta:
		return entity.MovementAdjustDelta, m.Quantity.Neg(), nil
	case entity.MovementAdjustSet:
		delta := m.PreviousQuantity.Sub(m.NewQuantity)
		if delta.IsZero() {
			return "", decimal.Zero, domain.NewValidationError("movement", "el ajuste no cambió la cantidad, no hay nada que reversar")
		}
		return entity.MovementAdjustDelta, delta, nil
	}
	return "", decimal.Zero, domain.NewValidationError("type", "tipo de movimiento desconocido: "+string(m.Type))
}
