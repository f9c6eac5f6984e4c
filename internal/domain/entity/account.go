package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account representa la cuenta de un cliente. OpeningBalance es con signo:
// positivo = el cliente debe, negativo = saldo a favor del cliente.
// Version sube en la misma transacción que cada evento nuevo de la cuenta.
type Account struct {
	ID             string
	Name           string
	Phone          string
	OpeningBalance decimal.Decimal
	Version        int64
	CreatedAt      time.Time
}
