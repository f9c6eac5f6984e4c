package repository

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// AccountRepository define el puerto de persistencia para cuentas de clientes.
type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Account, error)

	// BumpVersion incrementa Version y bloquea la cuenta hasta el fin de la transacción,
	// así los eventos de una cuenta se confirman uno a la vez. ErrNotFound si no existe.
	BumpVersion(ctx context.Context, id string) (int64, error)

	// Version devuelve la versión confirmada de la cuenta.
	Version(ctx context.Context, id string) (int64, error)
}
