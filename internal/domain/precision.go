package domain

import "github.com/shopspring/decimal"

// Escalas de las columnas NUMERIC: montos (18,2) y cantidades (18,3).
const (
	MoneyScale    int32 = 2
	QuantityScale int32 = 3
)

// FitsScale indica si d se guarda con scale decimales sin redondear.
// "1.5000" cabe en 3; "0.0004" no.
func FitsScale(d decimal.Decimal, scale int32) bool {
	return d.Equal(d.Truncate(scale))
}

// CheckScale devuelve un ValidationError si d tiene más decimales de los que admite el campo.
func CheckScale(field string, d decimal.Decimal, scale int32) error {
	if FitsScale(d, scale) {
		return nil
	}
	return &ValidationError{Field: field, Reason: "admite máximo " + decimal.NewFromInt32(scale).String() + " decimales"}
}
