package repository

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// TransferFilter filtros opcionales del listado de traslados.
type TransferFilter struct {
	Status         entity.TransferStatus
	TransferNumber string
}

// TransferRepository define el puerto de persistencia para traslados.
type TransferRepository interface {
	// Save inserta o actualiza el traslado completo.
	Save(ctx context.Context, transfer *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	List(ctx context.Context, filter TransferFilter, limit, offset int) ([]*entity.Transfer, error)

	// GetReversalOf devuelve el traslado compensatorio de transferID, o nil.
	GetReversalOf(ctx context.Context, transferID string) (*entity.Transfer, error)
}
