package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

type branchRepo struct{ a access }

func (r *branchRepo) Create(_ context.Context, branch *entity.Branch) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.branches[branch.ID]; ok {
			return domain.ErrDuplicate
		}
		st.branches[branch.ID] = *branch
		st.branchOrder = append(st.branchOrder, branch.ID)
		return nil
	})
}

func (r *branchRepo) GetByID(_ context.Context, id string) (*entity.Branch, error) {
	var out *entity.Branch
	err := r.a.read(func(st *state) error {
		if b, ok := st.branches[id]; ok {
			out = &b
		}
		return nil
	})
	return out, err
}

func (r *branchRepo) List(_ context.Context) ([]*entity.Branch, error) {
	var out []*entity.Branch
	err := r.a.read(func(st *state) error {
		for _, id := range st.branchOrder {
			b := st.branches[id]
			out = append(out, &b)
		}
		return nil
	})
	return out, err
}

type productRepo struct{ a access }

func (r *productRepo) Create(_ context.Context, product *entity.Product) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, p := range st.products {
			if p.Code == product.Code && entity.SameLocation(p.BranchID, product.BranchID) {
				return domain.ErrDuplicate
			}
		}
		st.products[product.ID] = *cloneProduct(*product)
		st.productOrder = append(st.productOrder, product.ID)
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.a.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = cloneProduct(p)
		}
		return nil
	})
	return out, err
}

// GetForUpdate no necesita bloqueo extra: dentro de Run la copia es exclusiva.
func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) GetByCodeAndBranch(_ context.Context, code string, branchID *string) (*entity.Product, error) {
	var out *entity.Product
	err := r.a.read(func(st *state) error {
		for _, id := range st.productOrder {
			p := st.products[id]
			if p.Code == code && entity.SameLocation(p.BranchID, branchID) {
				out = cloneProduct(p)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *productRepo) UpdateQuantity(_ context.Context, id string, expected, quantity decimal.Decimal, at time.Time) error {
	return r.a.write(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		if !p.Quantity.Equal(expected) {
			return domain.ErrConcurrencyConflict
		}
		p.Quantity = quantity
		p.UpdatedAt = at
		st.products[id] = p
		return nil
	})
}

func (r *productRepo) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.a.read(func(st *state) error {
		for _, id := range st.productOrder {
			p := st.products[id]
			if !filter.AllLocations && !entity.SameLocation(p.BranchID, filter.BranchID) {
				continue
			}
			out = append(out, cloneProduct(p))
		}
		return nil
	})
	return out, err
}

type movementRepo struct{ a access }

func (r *movementRepo) Append(_ context.Context, movement *entity.StockMovement) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.movements[movement.ID]; ok {
			return domain.ErrDuplicate
		}
		st.movementSeq++
		movement.Seq = st.movementSeq
		st.movements[movement.ID] = *movement
		st.movementsByProduct[movement.ProductID] = append(st.movementsByProduct[movement.ProductID], movement.ID)
		return nil
	})
}

func (r *movementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.a.read(func(st *state) error {
		if m, ok := st.movements[id]; ok {
			out = &m
		}
		return nil
	})
	return out, err
}

func (r *movementRepo) ListByProduct(_ context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.a.read(func(st *state) error {
		var matched []*entity.StockMovement
		for _, id := range st.movementsByProduct[productID] {
			m := st.movements[id]
			if from != nil && m.Date.Before(*from) {
				continue
			}
			if to != nil && m.Date.After(*to) {
				continue
			}
			matched = append(matched, &m)
		}
		out = page(matched, limit, offset)
		return nil
	})
	return out, err
}

func (r *movementRepo) GetReversalOf(_ context.Context, movementID string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.a.read(func(st *state) error {
		orig, ok := st.movements[movementID]
		if !ok {
			return nil
		}
		for _, id := range st.movementsByProduct[orig.ProductID] {
			if m := st.movements[id]; m.ReversesID == movementID {
				out = &m
				return nil
			}
		}
		return nil
	})
	return out, err
}
