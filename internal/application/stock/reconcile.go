package stock

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/domain"
	domstock "github.com/jhoicas/retail-ledger/internal/domain/stock"
)

// Rebuild reproduce el historial de movimientos desde cero y lo compara con la cantidad
// almacenada. Es de solo lectura: informa, no corrige.
func (uc *UseCase) Rebuild(ctx context.Context, productID string) (*dto.ReconcileResponse, error) {
	p, err := uc.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	movements, err := uc.repos.Movements.ListByProduct(ctx, productID, nil, nil, 0, 0)
	if err != nil {
		return nil, err
	}

	out := &dto.ReconcileResponse{ProductID: p.ID, StoredQuantity: p.Quantity, Movements: len(movements)}
	running := decimal.Zero
	for _, m := range movements {
		if !m.PreviousQuantity.Equal(running) {
			out.Issues = append(out.Issues, fmt.Sprintf("movimiento %d (%s): anterior %s, esperado %s",
				m.Seq, m.ID, m.PreviousQuantity, running))
		}
		next, err := domstock.Apply(p.ID, running, m.Type, m.Quantity)
		if err != nil {
			out.Issues = append(out.Issues, fmt.Sprintf("movimiento %d (%s): %v", m.Seq, m.ID, err))
			next = m.NewQuantity
		} else if !next.Equal(m.NewQuantity) {
			out.Issues = append(out.Issues, fmt.Sprintf("movimiento %d (%s): nuevo %s, recalculado %s",
				m.Seq, m.ID, m.NewQuantity, next))
		}
		running = next
	}
	out.Replayed = running
	if !running.Equal(p.Quantity) {
		out.Issues = append(out.Issues, fmt.Sprintf("cantidad almacenada %s, reconstruida %s", p.Quantity, running))
	}
	out.Consistent = len(out.Issues) == 0
	return out, nil
}
