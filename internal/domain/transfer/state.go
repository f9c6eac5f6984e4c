// Package transfer define la máquina de estados de los traslados entre ubicaciones.
package transfer

import (
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// edges aristas permitidas. Un traslado en tránsito no se cancela: el stock ya salió del origen,
// la compensación es un traslado nuevo en sentido contrario.
var edges = map[entity.TransferStatus][]entity.TransferStatus{
	entity.TransferPending:   {entity.TransferApproved, entity.TransferCancelled},
	entity.TransferApproved:  {entity.TransferInTransit, entity.TransferCancelled},
	entity.TransferInTransit: {entity.TransferCompleted},
}

// CanTransition indica si from → to es una arista permitida.
func CanTransition(from, to entity.TransferStatus) bool {
	for _, next := range edges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition valida la arista y devuelve *domain.InvalidTransitionError si no está permitida.
func Transition(from, to entity.TransferStatus) error {
	if !to.IsValid() {
		return domain.NewValidationError("status", "estado desconocido: "+string(to))
	}
	if !CanTransition(from, to) {
		return &domain.InvalidTransitionError{From: string(from), To: string(to)}
	}
	return nil
}

// IsTerminal indica si el estado ya no admite transiciones.
func IsTerminal(s entity.TransferStatus) bool {
	return s == entity.TransferCompleted || s == entity.TransferCancelled
}

// Next devuelve los estados alcanzables desde s.
func Next(s entity.TransferStatus) []entity.TransferStatus {
	out := make([]entity.TransferStatus, len(edges[s]))
	copy(out, edges[s])
	return out
}
