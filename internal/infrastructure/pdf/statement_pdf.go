// Package pdf genera la representación imprimible del estado de cuenta de un cliente.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + cliente     │  Período + fecha de emisión  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Concepto | Ref. | Débito | Crédito | Saldo   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Débitos / Créditos / SALDO ACTUAL + estado         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/application/ports"
	"github.com/jhoicas/retail-ledger/internal/domain/ledger"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorDebit   = &props.Color{Red: 170, Green: 30, Blue: 30}
	colorCredit  = &props.Color{Red: 20, Green: 120, Blue: 60}
)

var _ ports.StatementRenderer = (*StatementRenderer)(nil)

// StatementRenderer implementa ports.StatementRenderer usando Maroto v2.
type StatementRenderer struct {
	now func() time.Time
}

// NewStatementRenderer construye el generador.
func NewStatementRenderer() *StatementRenderer {
	return &StatementRenderer{now: time.Now}
}

// RenderStatement genera el PDF y devuelve sus bytes.
func (g *StatementRenderer) RenderStatement(ctx context.Context, st *ledger.Statement, locale string) ([]byte, error) {
	if st == nil {
		return nil, fmt.Errorf("pdf: estado de cuenta nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := labelsFor(locale)

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(l.T(msgTitle), true).
		WithAuthor(st.AccountName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(st, l, g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow(l))
	m.AddRows(lineRows(st.Lines, l)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(st, l))

	m.AddRows(line.NewRow(3))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New(l.T(msgFooterNotice), props.Text{Size: 6.5, Color: colorGray, Top: 2}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título + cliente (izq) y período + emisión (der).
func headerRow(st *ledger.Statement, l labels, issued time.Time) core.Row {
	period := l.T(msgAllHistory)
	if st.From != nil || st.To != nil {
		period = fmt.Sprintf("%s - %s", dateOrDash(st.From, l), dateOrDash(st.To, l))
	}

	return row.New(20).Add(
		col.New(7).Add(
			text.New(l.T(msgTitle), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(l.T(msgCustomer)+": "+st.AccountName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 9,
			}),
			text.New("ID: "+st.AccountID, props.Text{
				Size: 7, Top: 15, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(l.T(msgPeriod)+": "+period, props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New(l.T(msgIssued)+": "+issued.Format(l.dateLayout()), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de movimientos.
func tableHeaderRow(l labels) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h(l.T(msgDate), 2, align.Left),
		h(l.T(msgConcept), 2, align.Left),
		h(l.T(msgReference), 2, align.Left),
		h(l.T(msgDebit), 2, align.Right),
		h(l.T(msgCredit), 2, align.Right),
		h(l.T(msgBalance), 2, align.Right),
	)
}

// lineRows: una fila por línea; la primera es el saldo inicial.
func lineRows(lines []ledger.StatementLine, l labels) []core.Row {
	cell := func(s string, a align.Type, c *props.Color) core.Col {
		return col.New(2).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1, Color: c}))
	}
	amount := func(v decimal.Decimal) string {
		if v.IsZero() {
			return ""
		}
		return l.money(v)
	}

	result := make([]core.Row, 0, len(lines))
	for _, ln := range lines {
		result = append(result, row.New(7).Add(
			cell(ln.Date.Format(l.dateLayout()), align.Left, nil),
			cell(l.lineType(ln.Type), align.Left, nil),
			cell(ln.Reference, align.Left, colorGray),
			cell(amount(ln.Debit), align.Right, colorDebit),
			cell(amount(ln.Credit), align.Right, colorCredit),
			cell(l.money(ln.RunningBalance), align.Right, nil),
		))
	}
	return result
}

// totalsRow: totales y saldo actual con su estado.
func totalsRow(st *ledger.Statement, l labels) core.Row {
	return row.New(22).Add(
		col.New(4).Add(
			text.New(l.T(msgTotals), props.Text{Style: fontstyle.Bold, Size: 9, Top: 1}),
		),
		col.New(4).Add(
			text.New(l.T(msgDebit)+": "+l.money(st.TotalDebit), props.Text{Size: 9, Align: align.Right, Top: 1}),
			text.New(l.T(msgCredit)+": "+l.money(st.TotalCredit), props.Text{Size: 9, Align: align.Right, Top: 7}),
		),
		col.New(4).Add(
			text.New(l.T(msgCurrent)+": "+l.money(st.CurrentBalance), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(l.status(st.Status), props.Text{
				Size: 8, Align: align.Right, Color: colorGray, Top: 8,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func dateOrDash(t *time.Time, l labels) string {
	if t == nil {
		return "-"
	}
	return t.Format(l.dateLayout())
}
