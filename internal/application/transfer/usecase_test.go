package transfer_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/retail-ledger/internal/application/ports"
	"github.com/jhoicas/retail-ledger/internal/application/stock"
	"github.com/jhoicas/retail-ledger/internal/application/transfer"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/lock"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/memory"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev ports.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type fixture struct {
	store    *memory.Store
	locker   *lock.KeyedMutex
	stock    *stock.UseCase
	uc       *transfer.UseCase
	pub      *recordingPublisher
	branchID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithTx(t, nil)
}

func newFixtureWithTx(t *testing.T, wrap func(ports.TxRunner) ports.TxRunner) *fixture {
	t.Helper()
	store := memory.New()
	var tx ports.TxRunner = store
	if wrap != nil {
		tx = wrap(store)
	}
	f := &fixture{store: store, locker: lock.NewKeyedMutex(), pub: &recordingPublisher{}}
	f.stock = stock.NewUseCase(stock.Deps{Repos: store.Repos(), Tx: store, Locker: f.locker})
	f.uc = transfer.NewUseCase(transfer.Deps{Repos: store.Repos(), Tx: tx, Locker: f.locker, Publisher: f.pub})

	b, err := f.stock.CreateBranch(context.Background(), "Sucursal Norte", "")
	require.NoError(t, err)
	f.branchID = b.ID
	return f
}

func (f *fixture) product(t *testing.T, code string, qty int64, branch *string) *entity.Product {
	t.Helper()
	p, err := f.stock.CreateProduct(context.Background(), stock.CreateProductInput{
		Name: code, Code: code, InitialQuantity: dec(qty), BranchID: branch,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) quantity(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	p, err := f.store.Repos().Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Quantity
}

func (f *fixture) request(t *testing.T, productID string, qty int64) *entity.Transfer {
	t.Helper()
	to := f.branchID
	ts, err := f.uc.Request(context.Background(), transfer.RequestInput{
		ToBranchID: &to, Items: []transfer.Item{{ProductID: productID, Quantity: dec(qty)}}, UserID: "u1",
	})
	require.NoError(t, err)
	require.Len(t, ts, 1)
	return ts[0]
}

func (f *fixture) advance(t *testing.T, id string, states ...entity.TransferStatus) *entity.Transfer {
	t.Helper()
	var out *entity.Transfer
	for _, s := range states {
		var err error
		out, err = f.uc.Advance(context.Background(), id, s, "u1")
		require.NoError(t, err, "-> %s", s)
		require.Equal(t, s, out.Status)
	}
	return out
}

func (f *fixture) status(t *testing.T, id string) entity.TransferStatus {
	t.Helper()
	tr, err := f.uc.Get(context.Background(), id)
	require.NoError(t, err)
	return tr.Status
}

func TestTransfer_CicloCompletoConservaCantidad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.product(t, "A-1", 10, nil)

	tr := f.request(t, src.ID, 4)
	assert.Equal(t, entity.TransferPending, tr.Status)
	assert.Regexp(t, `^TRF-\d{8}-[0-9A-F]{6}$`, tr.TransferNumber)
	assert.True(t, f.quantity(t, src.ID).Equal(dec(10)), "solicitar no mueve stock")

	f.advance(t, tr.ID, entity.TransferApproved)
	assert.True(t, f.quantity(t, src.ID).Equal(dec(10)))

	f.advance(t, tr.ID, entity.TransferInTransit)
	assert.True(t, f.quantity(t, src.ID).Equal(dec(6)))

	done := f.advance(t, tr.ID, entity.TransferCompleted)
	require.NotEmpty(t, done.DestinationProductID)

	dest, err := f.store.Repos().Products.GetByID(ctx, done.DestinationProductID)
	require.NoError(t, err)
	assert.Equal(t, "A-1", dest.Code)
	require.NotNil(t, dest.BranchID)
	assert.Equal(t, f.branchID, *dest.BranchID)
	assert.True(t, dest.Quantity.Equal(dec(4)))
	assert.True(t, f.quantity(t, src.ID).Add(dest.Quantity).Equal(dec(10)), "origen + destino = total inicial")

	out, err := f.stock.Movements(ctx, src.ID, nil, nil, 0, 0)
	require.NoError(t, err)
	last := out[len(out)-1]
	assert.Equal(t, entity.MovementOut, last.Type)
	assert.Equal(t, entity.ReferenceTransfer, last.ReferenceType)
	assert.Equal(t, tr.TransferNumber, last.ReferenceNumber)

	in, err := f.stock.Movements(ctx, dest.ID, nil, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, entity.MovementIn, in[0].Type)
	assert.Equal(t, tr.TransferNumber, in[0].ReferenceNumber)

	assert.Len(t, f.pub.events, 4)
	assert.Equal(t, ports.EventTransferStatusChanged, f.pub.events[3].Type)
}

func TestTransfer_DestinoExistenteSeAcredita(t *testing.T) {
	f := newFixture(t)
	src := f.product(t, "A-1", 10, nil)
	existing := f.product(t, "A-1", 3, &f.branchID)

	tr := f.request(t, src.ID, 5)
	done := f.advance(t, tr.ID, entity.TransferApproved, entity.TransferInTransit, entity.TransferCompleted)

	assert.Equal(t, existing.ID, done.DestinationProductID)
	assert.True(t, f.quantity(t, existing.ID).Equal(dec(8)))
}

func TestRequest_TodoONada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 10, nil)
	b := f.product(t, "B", 1, nil)
	to := f.branchID

	_, err := f.uc.Request(ctx, transfer.RequestInput{
		ToBranchID: &to,
		Items:      []transfer.Item{{ProductID: a.ID, Quantity: dec(2)}, {ProductID: b.ID, Quantity: dec(5)}},
	})
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Available.Equal(dec(1)))

	list, err := f.uc.List(ctx, repository.TransferFilter{}, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRequest_VariosItemsMismoNumero(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 10, nil)
	b := f.product(t, "B", 10, nil)
	to := f.branchID

	ts, err := f.uc.Request(context.Background(), transfer.RequestInput{
		ToBranchID: &to,
		Items:      []transfer.Item{{ProductID: a.ID, Quantity: dec(2)}, {ProductID: b.ID, Quantity: dec(3)}},
		Notes:      "reposición",
	})
	require.NoError(t, err)
	require.Len(t, ts, 2)
	assert.Equal(t, ts[0].TransferNumber, ts[1].TransferNumber)
	assert.NotEqual(t, ts[0].ID, ts[1].ID)

	byNumber, err := f.uc.List(context.Background(), repository.TransferFilter{TransferNumber: ts[0].TransferNumber}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, byNumber, 2)
}

func TestRequest_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "A", 10, nil)
	atBranch := f.product(t, "Z", 10, &f.branchID)
	to := f.branchID
	ghost := "no-existe"
	empty := ""

	cases := []struct {
		name string
		in   transfer.RequestInput
		want error
	}{
		{"sin destino", transfer.RequestInput{Items: []transfer.Item{{ProductID: p.ID, Quantity: dec(1)}}}, domain.ErrValidation},
		{"origen igual a destino", transfer.RequestInput{FromBranchID: &to, ToBranchID: &to, Items: []transfer.Item{{ProductID: atBranch.ID, Quantity: dec(1)}}}, domain.ErrValidation},
		{"origen vacío", transfer.RequestInput{FromBranchID: &empty, ToBranchID: &to, Items: []transfer.Item{{ProductID: p.ID, Quantity: dec(1)}}}, domain.ErrValidation},
		{"sin ítems", transfer.RequestInput{ToBranchID: &to}, domain.ErrValidation},
		{"cantidad cero", transfer.RequestInput{ToBranchID: &to, Items: []transfer.Item{{ProductID: p.ID, Quantity: dec(0)}}}, domain.ErrValidation},
		{"cantidad negativa", transfer.RequestInput{ToBranchID: &to, Items: []transfer.Item{{ProductID: p.ID, Quantity: dec(-1)}}}, domain.ErrValidation},
		{"cantidad con más de 3 decimales", transfer.RequestInput{ToBranchID: &to, Items: []transfer.Item{{ProductID: p.ID, Quantity: decimal.RequireFromString("0.0001")}}}, domain.ErrValidation},
		{"producto repetido", transfer.RequestInput{ToBranchID: &to, Items: []transfer.Item{{ProductID: p.ID, Quantity: dec(1)}, {ProductID: p.ID, Quantity: dec(1)}}}, domain.ErrValidation},
		{"sucursal inexistente", transfer.RequestInput{ToBranchID: &ghost, Items: []transfer.Item{{ProductID: p.ID, Quantity: dec(1)}}}, domain.ErrValidation},
		{"producto fuera del origen", transfer.RequestInput{ToBranchID: &to, Items: []transfer.Item{{ProductID: atBranch.ID, Quantity: dec(1)}}}, domain.ErrValidation},
		{"producto inexistente", transfer.RequestInput{ToBranchID: &to, Items: []transfer.Item{{ProductID: "nope", Quantity: dec(1)}}}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Request(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAdvance_AristasInvalidasNoCambianEstado(t *testing.T) {
	f := newFixture(t)
	src := f.product(t, "A", 10, nil)
	tr := f.request(t, src.ID, 2)

	_, err := f.uc.Advance(context.Background(), tr.ID, entity.TransferInTransit, "u1")
	var ite *domain.InvalidTransitionError
	require.True(t, errors.As(err, &ite))
	assert.Equal(t, "pending", ite.From)
	assert.Equal(t, "in_transit", ite.To)
	assert.Equal(t, entity.TransferPending, f.status(t, tr.ID))

	_, err = f.uc.Advance(context.Background(), tr.ID, entity.TransferCompleted, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	f.advance(t, tr.ID, entity.TransferApproved, entity.TransferInTransit)
	_, err = f.uc.Advance(context.Background(), tr.ID, entity.TransferCancelled, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "un traslado en tránsito no se cancela")
	assert.Equal(t, entity.TransferInTransit, f.status(t, tr.ID))

	_, err = f.uc.Advance(context.Background(), tr.ID, "shipped", "u1")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.Advance(context.Background(), "nope", entity.TransferApproved, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdvance_CancelarNoMueveStock(t *testing.T) {
	f := newFixture(t)
	src := f.product(t, "A", 10, nil)

	pending := f.request(t, src.ID, 2)
	f.advance(t, pending.ID, entity.TransferCancelled)

	approved := f.request(t, src.ID, 3)
	f.advance(t, approved.ID, entity.TransferApproved, entity.TransferCancelled)

	assert.True(t, f.quantity(t, src.ID).Equal(dec(10)))
	_, err := f.uc.Advance(context.Background(), pending.ID, entity.TransferApproved, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	cancelled, err := f.uc.List(context.Background(), repository.TransferFilter{Status: entity.TransferCancelled}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, cancelled, 2)
}

func TestAdvance_EnTransitoRevalidaDisponibilidad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.product(t, "A", 10, nil)
	tr := f.request(t, src.ID, 8)
	f.advance(t, tr.ID, entity.TransferApproved)

	_, err := f.stock.Apply(ctx, stock.ApplyInput{ProductID: src.ID, Type: entity.MovementOut, Quantity: dec(5), ReferenceType: entity.ReferenceSale})
	require.NoError(t, err)

	_, err = f.uc.Advance(ctx, tr.ID, entity.TransferInTransit, "u1")
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Available.Equal(dec(5)))
	assert.Equal(t, entity.TransferApproved, f.status(t, tr.ID))
	assert.True(t, f.quantity(t, src.ID).Equal(dec(5)))
}

func TestAdvance_DespachosConcurrentesNoSobregiran(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.product(t, "A", 10, nil)
	a := f.request(t, src.ID, 6)
	b := f.request(t, src.ID, 6)
	f.advance(t, a.ID, entity.TransferApproved)
	f.advance(t, b.ID, entity.TransferApproved)

	var g errgroup.Group
	results := make([]error, 2)
	for i, id := range []string{a.ID, b.ID} {
		i, id := i, id
		g.Go(func() error {
			_, results[i] = f.uc.Advance(ctx, id, entity.TransferInTransit, "u1")
			return nil
		})
	}
	require.NoError(t, g.Wait())

	okCount := 0
	for _, err := range results {
		if err == nil {
			okCount++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 1, okCount)
	assert.True(t, f.quantity(t, src.ID).Equal(dec(4)))
}

type failOnIn struct {
	repository.StockMovementRepository
}

func (f failOnIn) Append(ctx context.Context, m *entity.StockMovement) error {
	if m.Type == entity.MovementIn {
		return errors.New("disco lleno")
	}
	return f.StockMovementRepository.Append(ctx, m)
}

type failingDestinationTx struct {
	inner ports.TxRunner
}

func (f failingDestinationTx) Run(ctx context.Context, fn func(r repository.Repos) error) error {
	return f.inner.Run(ctx, func(r repository.Repos) error {
		r.Movements = failOnIn{r.Movements}
		return fn(r)
	})
}

func TestAdvance_FalloEnDestinoQuedaEnTransito(t *testing.T) {
	f := newFixtureWithTx(t, func(tx ports.TxRunner) ports.TxRunner { return failingDestinationTx{inner: tx} })
	ctx := context.Background()
	src := f.product(t, "A", 10, nil)
	tr := f.request(t, src.ID, 4)
	f.advance(t, tr.ID, entity.TransferApproved, entity.TransferInTransit)

	_, err := f.uc.Advance(ctx, tr.ID, entity.TransferCompleted, "u1")
	require.ErrorContains(t, err, "disco lleno")

	assert.Equal(t, entity.TransferInTransit, f.status(t, tr.ID))
	assert.True(t, f.quantity(t, src.ID).Equal(dec(6)))
	dest, err := f.store.Repos().Products.GetByCodeAndBranch(ctx, "A", &f.branchID)
	require.NoError(t, err)
	assert.Nil(t, dest, "el producto destino creado se revierte con la transacción")
}

func TestReverse_TrasladoCompletado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.product(t, "A", 10, nil)
	tr := f.request(t, src.ID, 4)
	done := f.advance(t, tr.ID, entity.TransferApproved, entity.TransferInTransit, entity.TransferCompleted)

	rev, err := f.uc.Reverse(ctx, tr.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, entity.TransferPending, rev.Status)
	assert.Equal(t, tr.ID, rev.ReversesID)
	assert.Equal(t, done.DestinationProductID, rev.ProductID)
	require.NotNil(t, rev.FromBranchID)
	assert.Equal(t, f.branchID, *rev.FromBranchID)
	assert.Nil(t, rev.ToBranchID, "vuelve a la bodega principal")

	back := f.advance(t, rev.ID, entity.TransferApproved, entity.TransferInTransit, entity.TransferCompleted)
	assert.Equal(t, src.ID, back.DestinationProductID)
	assert.True(t, f.quantity(t, src.ID).Equal(dec(10)))
	assert.True(t, f.quantity(t, done.DestinationProductID).IsZero())

	_, err = f.uc.Reverse(ctx, tr.ID, "u2")
	assert.ErrorIs(t, err, domain.ErrAlreadyReversed)

	_, err = f.uc.Reverse(ctx, rev.ID, "u2")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReverse_SoloCompletados(t *testing.T) {
	f := newFixture(t)
	src := f.product(t, "A", 10, nil)
	tr := f.request(t, src.ID, 4)

	_, err := f.uc.Reverse(context.Background(), tr.ID, "u2")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.Reverse(context.Background(), "nope", "u2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReverse_DespachoRevalidaElDestino(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.product(t, "A", 10, nil)
	tr := f.request(t, src.ID, 4)
	done := f.advance(t, tr.ID, entity.TransferApproved, entity.TransferInTransit, entity.TransferCompleted)

	rev, err := f.uc.Reverse(ctx, tr.ID, "u2")
	require.NoError(t, err)
	f.advance(t, rev.ID, entity.TransferApproved)

	_, err = f.stock.Apply(ctx, stock.ApplyInput{ProductID: done.DestinationProductID, Type: entity.MovementOut, Quantity: dec(3), ReferenceType: entity.ReferenceSale})
	require.NoError(t, err)

	_, err = f.uc.Advance(ctx, rev.ID, entity.TransferInTransit, "u1")
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Available.Equal(dec(1)))
	assert.Equal(t, entity.TransferApproved, f.status(t, rev.ID))
	assert.True(t, f.quantity(t, done.DestinationProductID).Equal(dec(1)))
	assert.True(t, f.quantity(t, src.ID).Equal(dec(6)))
}
