package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/ledger"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func d(n int) time.Time { return day0.AddDate(0, 0, n) }

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func testAccount(opening int64) *entity.Account {
	return &entity.Account{ID: "acc-1", Name: "محمد", OpeningBalance: dec(opening), CreatedAt: day0}
}

func ev(id string, seq int64, kind entity.LedgerEventKind, amount int64, date time.Time) *entity.LedgerEvent {
	return &entity.LedgerEvent{ID: id, Seq: seq, AccountID: "acc-1", Kind: kind, Amount: dec(amount), Date: date, Reference: id}
}

// Datos de ejemplo de la pantalla de cuentas de clientes: 15000 + 45000 − 35000 = 25000.
func TestCurrentBalance_EjemploCuentasClientes(t *testing.T) {
	acc := testAccount(15000)
	events := []*entity.LedgerEvent{
		ev("s1", 1, entity.LedgerKindSale, 45000, d(1)),
		ev("r1", 2, entity.LedgerKindReceipt, 35000, d(2)),
	}

	bal, err := ledger.CurrentBalance(acc, events)
	require.NoError(t, err)
	assert.True(t, bal.Equal(dec(25000)), "saldo = %s", bal)

	st, err := ledger.BuildStatement(acc, events)
	require.NoError(t, err)
	assert.True(t, st.CurrentBalance.Equal(dec(25000)))
	assert.Equal(t, ledger.StatusDebtor, st.Status)
	assert.True(t, st.TotalDebit.Equal(dec(45000)))
	assert.True(t, st.TotalCredit.Equal(dec(35000)))
}

func TestCurrentBalance_IndependienteDelOrden(t *testing.T) {
	acc := testAccount(1000)
	a := []*entity.LedgerEvent{
		ev("s1", 1, entity.LedgerKindSale, 300, d(5)),
		ev("r1", 2, entity.LedgerKindReceipt, 700, d(1)),
		ev("s2", 3, entity.LedgerKindSale, 50, d(3)),
		ev("r2", 4, entity.LedgerKindReceipt, 25, d(4)),
	}
	b := []*entity.LedgerEvent{a[3], a[1], a[0], a[2]}

	balA, err := ledger.CurrentBalance(acc, a)
	require.NoError(t, err)
	balB, err := ledger.CurrentBalance(acc, b)
	require.NoError(t, err)

	assert.True(t, balA.Equal(balB))
	assert.True(t, balA.Equal(dec(1000+300+50-700-25)))

	stA, err := ledger.BuildStatement(acc, a)
	require.NoError(t, err)
	stB, err := ledger.BuildStatement(acc, b)
	require.NoError(t, err)
	assert.True(t, stA.CurrentBalance.Equal(balA))
	assert.Equal(t, stA.Lines, stB.Lines, "el orden cronológico no depende del orden de entrada")
}

func TestBuildStatement_SaldoCorridoPorLinea(t *testing.T) {
	acc := testAccount(-500)
	events := []*entity.LedgerEvent{
		ev("s1", 1, entity.LedgerKindSale, 1200, d(2)),
		ev("r1", 2, entity.LedgerKindReceipt, 400, d(2)),
		ev("s2", 3, entity.LedgerKindSale, 90, d(7)),
		ev("rv", 4, entity.LedgerKindSaleReversal, 90, d(8)),
		ev("rr", 5, entity.LedgerKindReceiptReversal, 400, d(9)),
	}

	st, err := ledger.BuildStatement(acc, events)
	require.NoError(t, err)
	require.Len(t, st.Lines, len(events)+1)

	assert.Equal(t, ledger.LineOpening, st.Lines[0].Type)
	assert.True(t, st.Lines[0].RunningBalance.Equal(acc.OpeningBalance))
	for i := 1; i < len(st.Lines); i++ {
		prev, cur := st.Lines[i-1], st.Lines[i]
		want := prev.RunningBalance.Add(cur.Debit).Sub(cur.Credit)
		assert.True(t, cur.RunningBalance.Equal(want), "línea %d: %s != %s", i, cur.RunningBalance, want)
		assert.False(t, cur.Date.Before(prev.Date), "las líneas deben estar en orden cronológico")
	}
	last := st.Lines[len(st.Lines)-1]
	assert.True(t, last.RunningBalance.Equal(st.CurrentBalance))
	assert.True(t, st.CurrentBalance.Equal(st.OpeningBalance.Add(st.TotalDebit).Sub(st.TotalCredit)))
}

func TestBuildStatement_EmpateDeFechaUsaOrdenDeInsercion(t *testing.T) {
	acc := testAccount(0)
	events := []*entity.LedgerEvent{
		ev("b", 2, entity.LedgerKindReceipt, 10, d(1)),
		ev("a", 1, entity.LedgerKindSale, 10, d(1)),
	}

	st, err := ledger.BuildStatement(acc, events)
	require.NoError(t, err)

	assert.Equal(t, "a", st.Lines[1].EventID)
	assert.Equal(t, "b", st.Lines[2].EventID)
	assert.True(t, st.Lines[1].RunningBalance.Equal(dec(10)))
	assert.Equal(t, ledger.StatusSettled, st.Status)
}

func TestBuildStatement_SinEventos(t *testing.T) {
	st, err := ledger.BuildStatement(testAccount(-300), nil)
	require.NoError(t, err)
	require.Len(t, st.Lines, 1)
	assert.True(t, st.CurrentBalance.Equal(dec(-300)))
	assert.Equal(t, ledger.StatusCreditor, st.Status)
}

func TestBuildPeriodStatement_SaldoArrastrado(t *testing.T) {
	acc := testAccount(100)
	events := []*entity.LedgerEvent{
		ev("s1", 1, entity.LedgerKindSale, 1000, d(1)),
		ev("r1", 2, entity.LedgerKindReceipt, 200, d(5)),
		ev("s2", 3, entity.LedgerKindSale, 50, d(10)),
		ev("s3", 4, entity.LedgerKindSale, 999, d(20)),
	}
	from, to := d(4), d(10)

	st, err := ledger.BuildPeriodStatement(acc, events, ledger.Period{From: &from, To: &to})
	require.NoError(t, err)

	assert.True(t, st.OpeningBalance.Equal(dec(1100)), "saldo arrastrado = inicial + eventos previos")
	assert.True(t, st.AccountOpeningBalance.Equal(dec(100)))
	require.Len(t, st.Lines, 3)
	assert.Equal(t, from, st.Lines[0].Date)
	assert.True(t, st.CurrentBalance.Equal(dec(950)))
	assert.True(t, st.CurrentBalance.Equal(st.OpeningBalance.Add(st.TotalDebit).Sub(st.TotalCredit)))
}

func TestBuildPeriodStatement_RangoInvertido(t *testing.T) {
	from, to := d(5), d(1)
	_, err := ledger.BuildPeriodStatement(testAccount(0), nil, ledger.Period{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBuildStatement_RechazaEventoDeOtraCuenta(t *testing.T) {
	foreign := ev("x", 1, entity.LedgerKindSale, 10, d(1))
	foreign.AccountID = "acc-2"

	_, err := ledger.BuildStatement(testAccount(0), []*entity.LedgerEvent{foreign})
	assert.ErrorIs(t, err, domain.ErrAccountMismatch)

	_, err = ledger.CurrentBalance(testAccount(0), []*entity.LedgerEvent{foreign})
	assert.ErrorIs(t, err, domain.ErrAccountMismatch)
}

func TestBuildStatement_RechazaMontoNegativo(t *testing.T) {
	bad := ev("x", 1, entity.LedgerKindReceipt, -10, d(1))

	_, err := ledger.BuildStatement(testAccount(0), []*entity.LedgerEvent{bad})

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "amount", ve.Field)
}

func TestBuildStatement_TipoDesconocidoNoSeIgnora(t *testing.T) {
	odd := ev("x", 1, entity.LedgerEventKind("discount"), 10, d(1))

	_, err := ledger.BuildStatement(testAccount(0), []*entity.LedgerEvent{odd})
	assert.ErrorIs(t, err, domain.ErrUnknownEventKind)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, ledger.StatusDebtor, ledger.StatusOf(dec(1)))
	assert.Equal(t, ledger.StatusCreditor, ledger.StatusOf(dec(-1)))
	assert.Equal(t, ledger.StatusSettled, ledger.StatusOf(decimal.Zero))
	assert.Equal(t, ledger.StatusSettled, ledger.StatusOf(decimal.RequireFromString("0.000")))
}

func TestBuildStatement_EventoAnteriorAlAltaMueveLaLineaInicial(t *testing.T) {
	acc := testAccount(100)
	acc.CreatedAt = d(10)
	events := []*entity.LedgerEvent{
		ev("s1", 1, entity.LedgerKindSale, 50, d(3)),
		ev("r1", 2, entity.LedgerKindReceipt, 20, d(12)),
	}

	st, err := ledger.BuildStatement(acc, events)
	require.NoError(t, err)
	require.Len(t, st.Lines, 3)
	assert.Equal(t, d(3), st.Lines[0].Date)
	for i := 1; i < len(st.Lines); i++ {
		assert.False(t, st.Lines[i].Date.Before(st.Lines[i-1].Date), "línea %d retrocede en el tiempo", i)
	}

	plain, err := ledger.BuildStatement(testAccount(100), events[1:])
	require.NoError(t, err)
	assert.Equal(t, day0, plain.Lines[0].Date, "sin eventos anteriores se usa la fecha de alta")
}

func TestSummarize_CoincideConElEstadoDeCuenta(t *testing.T) {
	acc := testAccount(15000)
	events := []*entity.LedgerEvent{
		ev("s1", 1, entity.LedgerKindSale, 45000, d(1)),
		ev("r1", 2, entity.LedgerKindReceipt, 35000, d(2)),
		ev("x1", 3, entity.LedgerKindReceiptReversal, 5000, d(3)),
		ev("x2", 4, entity.LedgerKindSaleReversal, 1000, d(4)),
	}
	totals := entity.KindTotals{}
	for _, e := range events {
		totals[e.Kind] = totals[e.Kind].Add(e.Amount)
	}

	sum, err := ledger.Summarize(acc, totals)
	require.NoError(t, err)
	st, err := ledger.BuildStatement(acc, events)
	require.NoError(t, err)
	assert.True(t, sum.CurrentBalance.Equal(st.CurrentBalance))
	assert.True(t, sum.TotalDebit.Equal(st.TotalDebit))
	assert.True(t, sum.TotalCredit.Equal(st.TotalCredit))
	assert.Equal(t, st.Status, sum.Status)

	empty, err := ledger.Summarize(testAccount(-30), nil)
	require.NoError(t, err)
	assert.True(t, empty.CurrentBalance.Equal(dec(-30)))
	assert.Equal(t, ledger.StatusCreditor, empty.Status)

	_, err = ledger.Summarize(acc, entity.KindTotals{"discount": dec(1)})
	assert.True(t, errors.Is(err, domain.ErrUnknownEventKind))
}
