package dto

import "github.com/jhoicas/retail-ledger/internal/domain/entity"

// ToLedgerEventResponse mapea la entidad al DTO de respuesta.
func ToLedgerEventResponse(e *entity.LedgerEvent) LedgerEventResponse {
	return LedgerEventResponse{
		ID:         e.ID,
		Seq:        e.Seq,
		AccountID:  e.AccountID,
		Kind:       string(e.Kind),
		Amount:     e.Amount,
		Date:       e.Date,
		Reference:  e.Reference,
		ReversesID: e.ReversesID,
		CreatedAt:  e.CreatedAt,
	}
}

// ToMovementResponse mapea la entidad al DTO de respuesta.
func ToMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:               m.ID,
		Seq:              m.Seq,
		ProductID:        m.ProductID,
		Type:             string(m.Type),
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		ReferenceType:    m.ReferenceType,
		ReferenceNumber:  m.ReferenceNumber,
		ReversesID:       m.ReversesID,
		Date:             m.Date,
		CreatedBy:        m.CreatedBy,
	}
}

// ToTransferResponse mapea la entidad al DTO de respuesta.
func ToTransferResponse(t *entity.Transfer) TransferResponse {
	return TransferResponse{
		ID:                   t.ID,
		TransferNumber:       t.TransferNumber,
		FromBranchID:         t.FromBranchID,
		ToBranchID:           t.ToBranchID,
		ProductID:            t.ProductID,
		DestinationProductID: t.DestinationProductID,
		Quantity:             t.Quantity,
		Status:               string(t.Status),
		Notes:                t.Notes,
		ReversesID:           t.ReversesID,
		CreatedBy:            t.CreatedBy,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

// ToTransferResponses mapea una lista.
func ToTransferResponses(ts []*entity.Transfer) []TransferResponse {
	out := make([]TransferResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, ToTransferResponse(t))
	}
	return out
}

// ToAccountResponse mapea la entidad al DTO de respuesta.
func ToAccountResponse(a *entity.Account) AccountResponse {
	return AccountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Phone:          a.Phone,
		OpeningBalance: a.OpeningBalance,
		CreatedAt:      a.CreatedAt,
	}
}

// ToBranchResponses mapea sucursales al DTO de respuesta.
func ToBranchResponses(list []*entity.Branch) []BranchResponse {
	out := make([]BranchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, BranchResponse{ID: b.ID, Name: b.Name, Address: b.Address, CreatedAt: b.CreatedAt})
	}
	return out
}
