package repository

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// LedgerEventRepository es el almacén append-only de eventos de cuenta corriente.
type LedgerEventRepository interface {
	// Append persiste el evento y le asigna Seq (monótono global).
	Append(ctx context.Context, event *entity.LedgerEvent) error
	GetByID(ctx context.Context, id string) (*entity.LedgerEvent, error)

	// ListByAccount devuelve todos los eventos de la cuenta en orden de Seq.
	ListByAccount(ctx context.Context, accountID string) ([]*entity.LedgerEvent, error)

	// SumByKind suma los montos por cuenta y tipo en una sola consulta.
	SumByKind(ctx context.Context, accountIDs []string) (map[string]entity.KindTotals, error)

	GetReversalOf(ctx context.Context, eventID string) (*entity.LedgerEvent, error)
}
