package memory

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

type transferRepo struct{ a access }

func (r *transferRepo) Save(_ context.Context, transfer *entity.Transfer) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.transfers[transfer.ID]; !ok {
			st.transferOrder = append(st.transferOrder, transfer.ID)
		}
		st.transfers[transfer.ID] = *cloneTransfer(*transfer)
		return nil
	})
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	var out *entity.Transfer
	err := r.a.read(func(st *state) error {
		if t, ok := st.transfers[id]; ok {
			out = cloneTransfer(t)
		}
		return nil
	})
	return out, err
}

func (r *transferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r *transferRepo) List(_ context.Context, filter repository.TransferFilter, limit, offset int) ([]*entity.Transfer, error) {
	var out []*entity.Transfer
	err := r.a.read(func(st *state) error {
		var matched []*entity.Transfer
		for _, id := range st.transferOrder {
			t := st.transfers[id]
			if filter.Status != "" && t.Status != filter.Status {
				continue
			}
			if filter.TransferNumber != "" && t.TransferNumber != filter.TransferNumber {
				continue
			}
			matched = append(matched, cloneTransfer(t))
		}
		out = page(matched, limit, offset)
		return nil
	})
	return out, err
}

func (r *transferRepo) GetReversalOf(_ context.Context, transferID string) (*entity.Transfer, error) {
	var out *entity.Transfer
	err := r.a.read(func(st *state) error {
		for _, id := range st.transferOrder {
			if t := st.transfers[id]; t.ReversesID == transferID {
				out = cloneTransfer(t)
				return nil
			}
		}
		return nil
	})
	return out, err
}
