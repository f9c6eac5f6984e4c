// Package memory implementa los repositorios en memoria. Sirve para desarrollo
// (STORE_DRIVER=memory) y como almacén de eventos en las pruebas de casos de uso.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/retail-ledger/internal/application/ports"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

// Store guarda todo en mapas de valores. Las lecturas devuelven copias.
//
// Run serializa las transacciones: trabaja sobre una copia del estado y la publica
// solo si fn termina sin error. Las escrituras fuera de Run también toman txMu
// para no perderse cuando una transacción publica su copia.
type Store struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	state *state
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{state: newState()}
}

// Repos devuelve repositorios sobre el estado publicado.
func (s *Store) Repos() repository.Repos {
	return reposFor(liveAccess{s: s})
}

// Run ejecuta fn con repositorios sobre una copia privada del estado.
func (s *Store) Run(ctx context.Context, fn func(r repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	staged := s.state.clone()
	s.mu.RUnlock()

	if err := fn(reposFor(txAccess{st: staged})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = staged
	s.mu.Unlock()
	return nil
}

func reposFor(a access) repository.Repos {
	return repository.Repos{
		Accounts:  &accountRepo{a: a},
		Events:    &eventRepo{a: a},
		Products:  &productRepo{a: a},
		Branches:  &branchRepo{a: a},
		Movements: &movementRepo{a: a},
		Transfers: &transferRepo{a: a},
		Users:     &userRepo{a: a},
	}
}

type access interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
}

type liveAccess struct{ s *Store }

func (l liveAccess) read(fn func(st *state) error) error {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return fn(l.s.state)
}

func (l liveAccess) write(fn func(st *state) error) error {
	l.s.txMu.Lock()
	defer l.s.txMu.Unlock()
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return fn(l.s.state)
}

// txAccess opera sobre la copia de una transacción; Run ya garantiza exclusividad.
type txAccess struct{ st *state }

func (t txAccess) read(fn func(st *state) error) error  { return fn(t.st) }
func (t txAccess) write(fn func(st *state) error) error { return fn(t.st) }
