package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferItemRequest una línea de la solicitud de traslado.
type TransferItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"positive_decimal,max_scale=3"`
}

// CreateTransferRequest body para POST /api/transfers. Branch nil = bodega principal.
type CreateTransferRequest struct {
	FromBranchID *string               `json:"from_branch_id"`
	ToBranchID   *string               `json:"to_branch_id"`
	Items        []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes        string                `json:"notes" validate:"max=500"`
}

// AdvanceTransferRequest body para POST /api/transfers/:id/advance.
type AdvanceTransferRequest struct {
	Status string `json:"status" validate:"required,oneof=approved in_transit completed cancelled"`
}

// TransferResponse traslado persistido.
type TransferResponse struct {
	ID                   string          `json:"id"`
	TransferNumber       string          `json:"transfer_number"`
	FromBranchID         *string         `json:"from_branch_id"`
	ToBranchID           *string         `json:"to_branch_id"`
	ProductID            string          `json:"product_id"`
	DestinationProductID string          `json:"destination_product_id,omitempty"`
	Quantity             decimal.Decimal `json:"quantity"`
	Status               string          `json:"status"`
	Notes                string          `json:"notes,omitempty"`
	ReversesID           string          `json:"reverses_id,omitempty"`
	CreatedBy            string          `json:"created_by,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// TransferListResponse respuesta de GET /api/transfers.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
