package pdf

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/ledger"
)

func TestLabelsFor_Idiomas(t *testing.T) {
	assert.Equal(t, "ESTADO DE CUENTA", labelsFor("es").T(msgTitle))
	assert.Equal(t, "ESTADO DE CUENTA", labelsFor("").T(msgTitle))
	assert.Equal(t, "ACCOUNT STATEMENT", labelsFor("en").T(msgTitle))
	assert.Equal(t, "ACCOUNT STATEMENT", labelsFor("en-GB").T(msgTitle))
	assert.Equal(t, "Recibo de caja", labelsFor("es-CO").lineType(string(entity.LedgerKindReceipt)))
	assert.Equal(t, "Opening balance", labelsFor("en").lineType(ledger.LineOpening))
}

func TestLabels_Money(t *testing.T) {
	es, en := labelsFor("es"), labelsFor("en")

	assert.Equal(t, "$25.000,00", es.money(decimal.NewFromInt(25000)))
	assert.Equal(t, "$25,000.00", en.money(decimal.NewFromInt(25000)))
	assert.Equal(t, "-$1.234.567,50", es.money(decimal.RequireFromString("-1234567.5")))
	assert.Equal(t, "$0,00", es.money(decimal.Zero))
	assert.Equal(t, "$999.00", en.money(decimal.NewFromInt(999)))
}

func TestLabels_Status(t *testing.T) {
	assert.Equal(t, "El cliente debe", labelsFor("es").status(ledger.StatusDebtor))
	assert.Equal(t, "Settled", labelsFor("en").status(ledger.StatusSettled))
}
