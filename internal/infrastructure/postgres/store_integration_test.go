package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/retail-ledger/pkg/config"
)

// Requiere TEST_DATABASE_URL (PostgreSQL 15+); sin ella se omiten.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))
	return pool
}

func newProduct(code string, branchID *string, qty int64) *entity.Product {
	now := time.Now().UTC()
	return &entity.Product{
		ID: uuid.NewString(), Name: "Producto " + code, Code: code,
		Quantity: decimal.NewFromInt(qty), MinQuantity: decimal.NewFromInt(1),
		BranchID: branchID, CreatedAt: now, UpdatedAt: now,
	}
}

func TestPostgres_ProductoCAS(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repos := postgres.NewRepos(pool)

	p := newProduct("CAS-"+uuid.NewString()[:8], nil, 10)
	require.NoError(t, repos.Products.Create(ctx, p))

	err := repos.Products.UpdateQuantity(ctx, p.ID, decimal.NewFromInt(9), decimal.NewFromInt(5), time.Now())
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	require.NoError(t, repos.Products.UpdateQuantity(ctx, p.ID, decimal.NewFromInt(10), decimal.NewFromInt(4), time.Now()))
	got, err := repos.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(4)))

	err = repos.Products.UpdateQuantity(ctx, uuid.NewString(), decimal.Zero, decimal.NewFromInt(1), time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgres_CodigoUnicoPorUbicacion(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repos := postgres.NewRepos(pool)

	branch := &entity.Branch{ID: uuid.NewString(), Name: "Norte", CreatedAt: time.Now()}
	require.NoError(t, repos.Branches.Create(ctx, branch))

	code := "UNI-" + uuid.NewString()[:8]
	require.NoError(t, repos.Products.Create(ctx, newProduct(code, nil, 1)))
	require.NoError(t, repos.Products.Create(ctx, newProduct(code, &branch.ID, 1)))
	assert.ErrorIs(t, repos.Products.Create(ctx, newProduct(code, nil, 1)), domain.ErrDuplicate, "NULL cuenta como la misma ubicación")

	atMain, err := repos.Products.GetByCodeAndBranch(ctx, code, nil)
	require.NoError(t, err)
	require.NotNil(t, atMain)
	assert.Nil(t, atMain.BranchID)
}

func TestPostgres_RollbackDescartaCambios(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool)

	p := newProduct("TX-"+uuid.NewString()[:8], nil, 3)
	boom := errors.New("boom")
	err := runner.Run(ctx, func(r repository.Repos) error {
		if err := r.Products.Create(ctx, p); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := postgres.NewProductRepository(pool).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPostgres_EventosSeqYReversaUnica(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repos := postgres.NewRepos(pool)

	acc := &entity.Account{ID: uuid.NewString(), Name: "Cliente", OpeningBalance: decimal.NewFromInt(100), CreatedAt: time.Now()}
	require.NoError(t, repos.Accounts.Create(ctx, acc))

	sale := &entity.LedgerEvent{ID: uuid.NewString(), AccountID: acc.ID, Kind: entity.LedgerKindSale,
		Amount: decimal.NewFromInt(50), Date: time.Now(), CreatedAt: time.Now()}
	require.NoError(t, repos.Events.Append(ctx, sale))
	assert.Positive(t, sale.Seq)

	totals, err := repos.Events.SumByKind(ctx, []string{acc.ID})
	require.NoError(t, err)
	assert.True(t, totals[acc.ID][entity.LedgerKindSale].Equal(decimal.NewFromInt(50)))

	rev := func() *entity.LedgerEvent {
		return &entity.LedgerEvent{ID: uuid.NewString(), AccountID: acc.ID, Kind: entity.LedgerKindSaleReversal,
			Amount: sale.Amount, Date: time.Now(), ReversesID: sale.ID, CreatedAt: time.Now()}
	}
	require.NoError(t, repos.Events.Append(ctx, rev()))
	assert.ErrorIs(t, repos.Events.Append(ctx, rev()), domain.ErrDuplicate)

	events, err := repos.Events.ListByAccount(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Less(t, events[0].Seq, events[1].Seq)
	assert.Empty(t, events[0].ReversesID)
}

func TestPostgres_VersionSerializaEventosDeLaCuenta(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool)

	acc := &entity.Account{ID: uuid.NewString(), Name: "Cliente", CreatedAt: time.Now()}
	require.NoError(t, postgres.NewAccountRepository(pool).Create(ctx, acc))

	txA, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = txA.Rollback(ctx) }()
	vA, err := postgres.NewAccountRepository(txA).BumpVersion(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), vA)

	done := make(chan int64, 1)
	go func() {
		var v int64
		_ = runner.Run(ctx, func(r repository.Repos) error {
			var err error
			v, err = r.Accounts.BumpVersion(ctx, acc.ID)
			return err
		})
		done <- v
	}()

	select {
	case <-done:
		t.Fatal("la segunda transacción no debe avanzar mientras la primera tiene la cuenta")
	case <-time.After(200 * time.Millisecond):
	}
	require.NoError(t, txA.Commit(ctx))
	assert.Equal(t, int64(2), <-done)

	v, err := postgres.NewAccountRepository(pool).Version(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	_, err = postgres.NewAccountRepository(pool).BumpVersion(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
