package repository

import (
	"context"
	"time"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para movimientos de inventario (DIP).
// Es append-only: no hay Update ni Delete.
type StockMovementRepository interface {
	// Append persiste el movimiento y le asigna Seq.
	Append(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)

	// ListByProduct devuelve los movimientos en orden de Seq ascendente. limit <= 0 = sin límite.
	ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)

	// GetReversalOf devuelve el movimiento que reversa a movementID, o nil.
	GetReversalOf(ctx context.Context, movementID string) (*entity.StockMovement, error)
}
