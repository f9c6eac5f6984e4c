package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/ports"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	domstock "github.com/jhoicas/retail-ledger/internal/domain/stock"
)

// CreateBranch registra una sucursal.
func (uc *UseCase) CreateBranch(ctx context.Context, name, address string) (*entity.Branch, error) {
	if name == "" {
		return nil, domain.NewValidationError("name", "es requerido")
	}
	b := &entity.Branch{ID: uuid.New().String(), Name: name, Address: address, CreatedAt: uc.now()}
	if err := uc.repos.Branches.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Branches lista las sucursales.
func (uc *UseCase) Branches(ctx context.Context) ([]*entity.Branch, error) {
	return uc.repos.Branches.List(ctx)
}

// CreateProductInput alta de producto en una ubicación.
type CreateProductInput struct {
	Name            string
	Code            string
	MinQuantity     decimal.Decimal
	BranchID        *string
	InitialQuantity decimal.Decimal
	UserID          string
}

// CreateProduct crea el producto con cantidad 0; la existencia inicial entra como
// movimiento "in" para que el historial explique toda la cantidad.
func (uc *UseCase) CreateProduct(ctx context.Context, in CreateProductInput) (*entity.Product, error) {
	if in.Name == "" {
		return nil, domain.NewValidationError("name", "es requerido")
	}
	if in.Code == "" {
		return nil, domain.NewValidationError("code", "es requerido")
	}
	if in.MinQuantity.IsNegative() {
		return nil, domain.NewValidationError("min_quantity", "no puede ser negativa")
	}
	if in.InitialQuantity.IsNegative() {
		return nil, domain.NewValidationError("initial_quantity", "no puede ser negativa")
	}
	if err := domain.CheckScale("min_quantity", in.MinQuantity, domain.QuantityScale); err != nil {
		return nil, err
	}
	if err := domain.CheckScale("initial_quantity", in.InitialQuantity, domain.QuantityScale); err != nil {
		return nil, err
	}
	if in.BranchID != nil {
		b, err := uc.repos.Branches.GetByID(ctx, *in.BranchID)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, domain.NewValidationError("branch_id", "la sucursal no existe")
		}
	}

	now := uc.now()
	p := &entity.Product{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Code:        in.Code,
		Quantity:    decimal.Zero,
		MinQuantity: in.MinQuantity,
		BranchID:    in.BranchID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	unlock, err := uc.locker.Lock(ctx, ports.DestinationLockKey(in.Code, in.BranchID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var res *ApplyResult
	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Products.Create(ctx, p); err != nil {
			return err
		}
		if !in.InitialQuantity.IsPositive() {
			return nil
		}
		var err error
		res, err = ApplyInTx(ctx, r, ApplyInput{
			ProductID:     p.ID,
			Type:          entity.MovementIn,
			Quantity:      in.InitialQuantity,
			ReferenceType: entity.ReferenceOpening,
			UserID:        in.UserID,
		}, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	if res != nil {
		uc.applied(ctx, res)
		return res.Product, nil
	}
	return p, nil
}

// Products lista productos con su estado. branchID: "" todas las ubicaciones,
// "main" bodega principal, otro valor una sucursal.
func (uc *UseCase) Products(ctx context.Context, branchID string) ([]dto.ProductStockDTO, error) {
	filter := repository.ProductFilter{AllLocations: branchID == ""}
	if branchID != "" && branchID != entity.MainWarehouse {
		filter.BranchID = &branchID
	}
	products, err := uc.repos.Products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductStockDTO, 0, len(products))
	for _, p := range products {
		out = append(out, ProductStock(p))
	}
	return out, nil
}

// ProductStock mapea el producto con su estado derivado.
func ProductStock(p *entity.Product) dto.ProductStockDTO {
	return dto.ProductStockDTO{
		ProductID:   p.ID,
		Code:        p.Code,
		Name:        p.Name,
		BranchID:    p.BranchID,
		Quantity:    p.Quantity,
		MinQuantity: p.MinQuantity,
		Status:      string(domstock.StatusOf(p.Quantity, p.MinQuantity)),
	}
}

// LowStock productos en low_stock u out_of_stock.
func (uc *UseCase) LowStock(ctx context.Context, branchID string) ([]dto.ProductStockDTO, error) {
	all, err := uc.Products(ctx, branchID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductStockDTO, 0)
	for _, p := range all {
		if p.Status != string(domstock.StatusInStock) {
			out = append(out, p)
		}
	}
	return out, nil
}
