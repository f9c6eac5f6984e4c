package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// ProductFilter filtra productos por ubicación. AllLocations ignora BranchID;
// si no, BranchID nil = bodega principal.
type ProductFilter struct {
	AllLocations bool
	BranchID     *string
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetByCodeAndBranch devuelven (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)

	// GetForUpdate lee el producto bloqueando la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)

	GetByCodeAndBranch(ctx context.Context, code string, branchID *string) (*entity.Product, error)

	// UpdateQuantity es un compare-and-swap: solo escribe si la cantidad almacenada
	// sigue siendo expected. Si no, devuelve domain.ErrConcurrencyConflict.
	UpdateQuantity(ctx context.Context, id string, expected, quantity decimal.Decimal, at time.Time) error

	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
}
