package memory

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

type accountRepo struct{ a access }

func (r *accountRepo) Create(_ context.Context, account *entity.Account) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.accounts[account.ID]; ok {
			return domain.ErrDuplicate
		}
		st.accounts[account.ID] = *account
		st.accountOrder = append(st.accountOrder, account.ID)
		return nil
	})
}

func (r *accountRepo) GetByID(_ context.Context, id string) (*entity.Account, error) {
	var out *entity.Account
	err := r.a.read(func(st *state) error {
		if acc, ok := st.accounts[id]; ok {
			out = &acc
		}
		return nil
	})
	return out, err
}

func (r *accountRepo) List(_ context.Context, limit, offset int) ([]*entity.Account, error) {
	var out []*entity.Account
	err := r.a.read(func(st *state) error {
		for _, id := range page(st.accountOrder, limit, offset) {
			acc := st.accounts[id]
			out = append(out, &acc)
		}
		return nil
	})
	return out, err
}

func (r *accountRepo) BumpVersion(_ context.Context, id string) (int64, error) {
	var v int64
	err := r.a.write(func(st *state) error {
		acc, ok := st.accounts[id]
		if !ok {
			return domain.ErrNotFound
		}
		acc.Version++
		st.accounts[id] = acc
		v = acc.Version
		return nil
	})
	return v, err
}

func (r *accountRepo) Version(_ context.Context, id string) (int64, error) {
	var v int64
	err := r.a.read(func(st *state) error {
		acc, ok := st.accounts[id]
		if !ok {
			return domain.ErrNotFound
		}
		v = acc.Version
		return nil
	})
	return v, err
}

type eventRepo struct{ a access }

func (r *eventRepo) Append(_ context.Context, event *entity.LedgerEvent) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.events[event.ID]; ok {
			return domain.ErrDuplicate
		}
		st.eventSeq++
		event.Seq = st.eventSeq
		st.events[event.ID] = *event
		st.eventsByAccount[event.AccountID] = append(st.eventsByAccount[event.AccountID], event.ID)
		return nil
	})
}

func (r *eventRepo) GetByID(_ context.Context, id string) (*entity.LedgerEvent, error) {
	var out *entity.LedgerEvent
	err := r.a.read(func(st *state) error {
		if ev, ok := st.events[id]; ok {
			out = &ev
		}
		return nil
	})
	return out, err
}

func (r *eventRepo) ListByAccount(_ context.Context, accountID string) ([]*entity.LedgerEvent, error) {
	var out []*entity.LedgerEvent
	err := r.a.read(func(st *state) error {
		ids := st.eventsByAccount[accountID]
		out = make([]*entity.LedgerEvent, 0, len(ids))
		for _, id := range ids {
			ev := st.events[id]
			out = append(out, &ev)
		}
		return nil
	})
	return out, err
}

func (r *eventRepo) SumByKind(_ context.Context, accountIDs []string) (map[string]entity.KindTotals, error) {
	out := make(map[string]entity.KindTotals, len(accountIDs))
	err := r.a.read(func(st *state) error {
		for _, accID := range accountIDs {
			ids := st.eventsByAccount[accID]
			if len(ids) == 0 {
				continue
			}
			totals := entity.KindTotals{}
			for _, id := range ids {
				ev := st.events[id]
				totals[ev.Kind] = totals[ev.Kind].Add(ev.Amount)
			}
			out[accID] = totals
		}
		return nil
	})
	return out, err
}

func (r *eventRepo) GetReversalOf(_ context.Context, eventID string) (*entity.LedgerEvent, error) {
	var out *entity.LedgerEvent
	err := r.a.read(func(st *state) error {
		orig, ok := st.events[eventID]
		if !ok {
			return nil
		}
		for _, id := range st.eventsByAccount[orig.AccountID] {
			if ev := st.events[id]; ev.ReversesID == eventID {
				out = &ev
				return nil
			}
		}
		return nil
	})
	return out, err
}
