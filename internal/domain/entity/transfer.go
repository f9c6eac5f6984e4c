package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus estado de un traslado entre ubicaciones.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferApproved  TransferStatus = "approved"
	TransferInTransit TransferStatus = "in_transit"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// IsValid indica si el estado es uno de los conocidos.
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferPending, TransferApproved, TransferInTransit, TransferCompleted, TransferCancelled:
		return true
	default:
		return false
	}
}

// Transfer es un registro por producto y por solicitud de traslado.
// FromBranchID/ToBranchID nil = bodega principal. Solo lo modifica el motor de traslados.
type Transfer struct {
	ID                   string
	TransferNumber       string
	FromBranchID         *string
	ToBranchID           *string
	ProductID            string // producto en origen
	DestinationProductID string // se resuelve al completar
	Quantity             decimal.Decimal
	Status               TransferStatus
	Notes                string
	ReversesID           string
	CreatedBy            string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
