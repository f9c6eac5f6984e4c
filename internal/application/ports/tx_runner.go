package ports

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error nada de lo escrito queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(r repository.Repos) error) error
}
