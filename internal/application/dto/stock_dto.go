package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplyMovementRequest body para POST /api/stock/movements.
// Quantity: unidades para in/out, cantidad objetivo para adjust_set, delta con signo para adjust_delta.
type ApplyMovementRequest struct {
	ProductID       string          `json:"product_id" validate:"required"`
	Type            string          `json:"type" validate:"required,oneof=in out adjust_set adjust_delta"`
	Quantity        decimal.Decimal `json:"quantity" validate:"max_scale=3"`
	ReferenceType   string          `json:"reference_type" validate:"max=40"`
	ReferenceNumber string          `json:"reference_number" validate:"max=80"`
	Date            *time.Time      `json:"date,omitempty"`
}

// MovementResponse movimiento persistido.
type MovementResponse struct {
	ID               string          `json:"id"`
	Seq              int64           `json:"seq"`
	ProductID        string          `json:"product_id"`
	Type             string          `json:"type"`
	Quantity         decimal.Decimal `json:"quantity"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	ReferenceType    string          `json:"reference_type,omitempty"`
	ReferenceNumber  string          `json:"reference_number,omitempty"`
	ReversesID       string          `json:"reverses_id,omitempty"`
	Date             time.Time       `json:"date"`
	CreatedBy        string          `json:"created_by,omitempty"`
}

// ApplyMovementResponse resultado de aplicar un movimiento.
type ApplyMovementResponse struct {
	Movement    MovementResponse `json:"movement"`
	NewQuantity decimal.Decimal  `json:"new_quantity"`
	Status      string           `json:"status"`
}

// MovementListResponse respuesta de GET /api/stock/products/:id/movements.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ProductStockDTO producto con su estado de existencias derivado.
type ProductStockDTO struct {
	ProductID   string          `json:"product_id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	BranchID    *string         `json:"branch_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
	Status      string          `json:"status"`
}

// ReconcileResponse resultado de reconstruir la cantidad desde el log de movimientos.
type ReconcileResponse struct {
	ProductID      string          `json:"product_id"`
	StoredQuantity decimal.Decimal `json:"stored_quantity"`
	Replayed       decimal.Decimal `json:"replayed_quantity"`
	Movements      int             `json:"movements"`
	Consistent     bool            `json:"consistent"`
	Issues         []string        `json:"issues,omitempty"`
}

// CreateBranchRequest body para POST /api/branches.
type CreateBranchRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Address string `json:"address" validate:"max=255"`
}

// BranchResponse sucursal.
type BranchResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateProductRequest body para POST /api/products. BranchID nil = bodega principal.
type CreateProductRequest struct {
	Name            string          `json:"name" validate:"required,max=200"`
	Code            string          `json:"code" validate:"required,max=60"`
	MinQuantity     decimal.Decimal `json:"min_quantity" validate:"max_scale=3"`
	BranchID        *string         `json:"branch_id"`
	InitialQuantity decimal.Decimal `json:"initial_quantity" validate:"max_scale=3"`
}

// ProductListResponse respuesta de GET /api/products y GET /api/stock/low-stock.
type ProductListResponse struct {
	Items []ProductStockDTO `json:"items"`
	Total int               `json:"total"`
}
