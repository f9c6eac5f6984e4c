package memory

import (
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

type state struct {
	accounts     map[string]entity.Account
	accountOrder []string

	events          map[string]entity.LedgerEvent
	eventsByAccount map[string][]string
	eventSeq        int64

	branches    map[string]entity.Branch
	branchOrder []string

	products     map[string]entity.Product
	productOrder []string

	movements          map[string]entity.StockMovement
	movementsByProduct map[string][]string
	movementSeq        int64

	transfers     map[string]entity.Transfer
	transferOrder []string

	users map[string]entity.User
}

func newState() *state {
	return &state{
		accounts:           make(map[string]entity.Account),
		events:             make(map[string]entity.LedgerEvent),
		eventsByAccount:    make(map[string][]string),
		branches:           make(map[string]entity.Branch),
		products:           make(map[string]entity.Product),
		movements:          make(map[string]entity.StockMovement),
		movementsByProduct: make(map[string][]string),
		transfers:          make(map[string]entity.Transfer),
		users:              make(map[string]entity.User),
	}
}

// clone copia mapas e índices. Los punteros a sucursal se copian en cada lectura
// (cloneProduct/cloneTransfer), así que compartirlos aquí es seguro.
func (s *state) clone() *state {
	c := &state{
		accounts:           make(map[string]entity.Account, len(s.accounts)),
		accountOrder:       append([]string(nil), s.accountOrder...),
		events:             make(map[string]entity.LedgerEvent, len(s.events)),
		eventsByAccount:    make(map[string][]string, len(s.eventsByAccount)),
		eventSeq:           s.eventSeq,
		branches:           make(map[string]entity.Branch, len(s.branches)),
		branchOrder:        append([]string(nil), s.branchOrder...),
		products:           make(map[string]entity.Product, len(s.products)),
		productOrder:       append([]string(nil), s.productOrder...),
		movements:          make(map[string]entity.StockMovement, len(s.movements)),
		movementsByProduct: make(map[string][]string, len(s.movementsByProduct)),
		movementSeq:        s.movementSeq,
		transfers:          make(map[string]entity.Transfer, len(s.transfers)),
		transferOrder:      append([]string(nil), s.transferOrder...),
		users:              make(map[string]entity.User, len(s.users)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.events {
		c.events[k] = v
	}
	for k, v := range s.eventsByAccount {
		c.eventsByAccount[k] = append([]string(nil), v...)
	}
	for k, v := range s.branches {
		c.branches[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.movements {
		c.movements[k] = v
	}
	for k, v := range s.movementsByProduct {
		c.movementsByProduct[k] = append([]string(nil), v...)
	}
	for k, v := range s.transfers {
		c.transfers[k] = v
	}
	return c
}

func copyBranchID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneProduct(p entity.Product) *entity.Product {
	p.BranchID = copyBranchID(p.BranchID)
	return &p
}

func cloneTransfer(t entity.Transfer) *entity.Transfer {
	t.FromBranchID = copyBranchID(t.FromBranchID)
	t.ToBranchID = copyBranchID(t.ToBranchID)
	return &t
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
