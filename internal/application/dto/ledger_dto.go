package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordEventRequest body para POST /api/ledger/events (venta a crédito o recibo de caja).
type RecordEventRequest struct {
	AccountID string          `json:"account_id" validate:"required"`
	Kind      string          `json:"kind" validate:"required,oneof=sale receipt"`
	Amount    decimal.Decimal `json:"amount" validate:"positive_decimal,max_scale=2"`
	Date      *time.Time      `json:"date,omitempty"`
	Reference string          `json:"reference" validate:"max=120"`
}

// VoidEventRequest body para POST /api/ledger/events/:id/void.
type VoidEventRequest struct {
	Reason string `json:"reason" validate:"max=255"`
}

// LedgerEventResponse evento persistido.
type LedgerEventResponse struct {
	ID         string          `json:"id"`
	Seq        int64           `json:"seq"`
	AccountID  string          `json:"account_id"`
	Kind       string          `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	Reference  string          `json:"reference"`
	ReversesID string          `json:"reverses_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AccountBalanceDTO una fila de la pantalla de cuentas de clientes.
type AccountBalanceDTO struct {
	AccountID      string          `json:"account_id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	TotalDebit     decimal.Decimal `json:"total_debit"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Status         string          `json:"status"`
}

// AccountBalancesResponse respuesta de GET /api/accounts/balances.
type AccountBalancesResponse struct {
	Items []AccountBalanceDTO `json:"items"`
	Page  PageResponse        `json:"page"`
}

// CreateAccountRequest body para POST /api/accounts. OpeningBalance con signo.
type CreateAccountRequest struct {
	Name           string          `json:"name" validate:"required,max=200"`
	Phone          string          `json:"phone" validate:"max=40"`
	OpeningBalance decimal.Decimal `json:"opening_balance" validate:"max_scale=2"`
}

// AccountResponse cuenta creada.
type AccountResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CreatedAt      time.Time       `json:"created_at"`
}
