package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger/internal/domain/ledger"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/cache"
)

func sampleStatement() *ledger.Statement {
	at := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	return &ledger.Statement{
		AccountID:      "acc-1",
		AccountName:    "Cliente",
		OpeningBalance: decimal.NewFromInt(100),
		Lines: []ledger.StatementLine{
			{Date: at, Type: ledger.LineOpening, RunningBalance: decimal.NewFromInt(100)},
			{Date: at, Type: "sale", EventID: "e1", Debit: decimal.RequireFromString("20.50"), RunningBalance: decimal.RequireFromString("120.50")},
		},
		TotalDebit:     decimal.RequireFromString("20.50"),
		CurrentBalance: decimal.RequireFromString("120.50"),
		Status:         ledger.StatusDebtor,
	}
}

func TestRedisStatementCache_SetGet(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	c := cache.NewRedisStatementCache(rdb)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "statement:acc-1:3::")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "statement:acc-1:3::", sampleStatement(), time.Minute))

	got, ok, err := c.Get(ctx, "statement:acc-1:3::")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.CurrentBalance.Equal(decimal.RequireFromString("120.50")))
	assert.Equal(t, ledger.StatusDebtor, got.Status)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "e1", got.Lines[1].EventID)

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "statement:acc-1:3::")
	require.NoError(t, err)
	assert.False(t, ok, "la entrada expira con el TTL")
}

func TestRedisStatementCache_RedisCaido(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	c := cache.NewRedisStatementCache(rdb)
	mr.Close()

	_, _, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestMemoryStatementCache_DevuelveCopias(t *testing.T) {
	c := cache.NewMemoryStatementCache(2)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", sampleStatement(), 0))

	got, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	got.Lines[0].Type = "x"

	again, _, _ := c.Get(ctx, "a")
	assert.Equal(t, ledger.LineOpening, again.Lines[0].Type)

	require.NoError(t, c.Set(ctx, "b", sampleStatement(), 0))
	require.NoError(t, c.Set(ctx, "c", sampleStatement(), 0))
	_, ok, _ = c.Get(ctx, "a")
	assert.False(t, ok, "al llenarse se vacía")
}
