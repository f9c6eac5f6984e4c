// Package ledger reconstruye el estado de cuenta de un cliente a partir de sus eventos.
// Es una proyección pura: no guarda estado y puede llamarse concurrentemente.
package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// LineOpening es el tipo de la línea sintética de saldo inicial.
const LineOpening = "opening_balance"

// Status estado derivado del saldo final.
type Status string

const (
	StatusDebtor   Status = "debtor"   // el cliente debe
	StatusCreditor Status = "creditor" // saldo a favor del cliente
	StatusSettled  Status = "settled"
)

// StatusOf deriva el estado a partir del saldo. Se recalcula en cada lectura.
func StatusOf(balance decimal.Decimal) Status {
	switch balance.Sign() {
	case 1:
		return StatusDebtor
	case -1:
		return StatusCreditor
	default:
		return StatusSettled
	}
}

// Period ventana opcional del estado de cuenta. To es inclusivo.
type Period struct {
	From *time.Time
	To   *time.Time
}

// StatementLine una línea del estado de cuenta; RunningBalance es el saldo después de aplicarla.
type StatementLine struct {
	Date           time.Time       `json:"date"`
	Type           string          `json:"type"`
	Reference      string          `json:"reference"`
	EventID        string          `json:"event_id,omitempty"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// Statement vista derivada (no se persiste). Lines[0] es siempre la línea de saldo inicial.
// Con período, OpeningBalance incluye los eventos anteriores a From (saldo arrastrado).
type Statement struct {
	AccountID             string          `json:"account_id"`
	AccountName           string          `json:"account_name"`
	AccountOpeningBalance decimal.Decimal `json:"account_opening_balance"`
	OpeningBalance        decimal.Decimal `json:"opening_balance"`
	Lines                 []StatementLine `json:"lines"`
	TotalDebit            decimal.Decimal `json:"total_debit"`
	TotalCredit           decimal.Decimal `json:"total_credit"`
	CurrentBalance        decimal.Decimal `json:"current_balance"`
	Status                Status          `json:"status"`
	From                  *time.Time      `json:"from,omitempty"`
	To                    *time.Time      `json:"to,omitempty"`
}

// Classify devuelve el débito y el crédito que aporta un evento.
// Un tipo desconocido es un error: ningún evento se ignora en silencio.
func Classify(ev *entity.LedgerEvent) (debit, credit decimal.Decimal, err error) {
	debit, credit, ok := split(ev.Kind, ev.Amount)
	if !ok {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: %q (evento %s)", domain.ErrUnknownEventKind, ev.Kind, ev.ID)
	}
	return debit, credit, nil
}

func split(kind entity.LedgerEventKind, amount decimal.Decimal) (debit, credit decimal.Decimal, ok bool) {
	switch kind {
	case entity.LedgerKindSale, entity.LedgerKindReceiptReversal:
		return amount, decimal.Zero, true
	case entity.LedgerKindReceipt, entity.LedgerKindSaleReversal:
		return decimal.Zero, amount, true
	default:
		return decimal.Zero, decimal.Zero, false
	}
}

// Summary totales de una cuenta sin líneas, para listados.
type Summary struct {
	TotalDebit     decimal.Decimal
	TotalCredit    decimal.Decimal
	CurrentBalance decimal.Decimal
	Status         Status
}

// Summarize calcula saldo y totales a partir de las sumas por tipo. Da el mismo
// resultado que BuildStatement sin período.
func Summarize(account *entity.Account, totals entity.KindTotals) (Summary, error) {
	if account == nil {
		return Summary{}, domain.NewValidationError("account", "es requerida")
	}
	s := Summary{TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for kind, amount := range totals {
		debit, credit, ok := split(kind, amount)
		if !ok {
			return Summary{}, fmt.Errorf("%w: %q (cuenta %s)", domain.ErrUnknownEventKind, kind, account.ID)
		}
		s.TotalDebit = s.TotalDebit.Add(debit)
		s.TotalCredit = s.TotalCredit.Add(credit)
	}
	s.CurrentBalance = account.OpeningBalance.Add(s.TotalDebit).Sub(s.TotalCredit)
	s.Status = StatusOf(s.CurrentBalance)
	return s, nil
}

// CurrentBalance = OpeningBalance + Σdébitos − Σcréditos. No depende del orden de los eventos.
func CurrentBalance(account *entity.Account, events []*entity.LedgerEvent) (decimal.Decimal, error) {
	if err := checkEvents(account, events); err != nil {
		return decimal.Zero, err
	}
	balance := account.OpeningBalance
	for _, ev := range events {
		debit, credit, err := Classify(ev)
		if err != nil {
			return decimal.Zero, err
		}
		balance = balance.Add(debit).Sub(credit)
	}
	return balance, nil
}

// BuildStatement construye el estado de cuenta completo de la cuenta.
func BuildStatement(account *entity.Account, events []*entity.LedgerEvent) (*Statement, error) {
	return BuildPeriodStatement(account, events, Period{})
}

// BuildPeriodStatement construye el estado de cuenta de una ventana. Los eventos anteriores a
// From se acumulan en la línea inicial; los posteriores a To se excluyen.
func BuildPeriodStatement(account *entity.Account, events []*entity.LedgerEvent, period Period) (*Statement, error) {
	if err := checkEvents(account, events); err != nil {
		return nil, err
	}
	if period.From != nil && period.To != nil && period.To.Before(*period.From) {
		return nil, domain.NewValidationError("to", "no puede ser anterior a from")
	}

	sorted := SortEvents(events)

	opening := account.OpeningBalance
	openingDate := account.CreatedAt
	if period.From != nil {
		openingDate = *period.From
	} else if len(sorted) > 0 && sorted[0].Date.Before(openingDate) {
		// Evento con fecha anterior al alta: la línea inicial no puede quedar después.
		openingDate = sorted[0].Date
	}

	inWindow := make([]*entity.LedgerEvent, 0, len(sorted))
	for _, ev := range sorted {
		debit, credit, err := Classify(ev)
		if err != nil {
			return nil, err
		}
		if period.From != nil && ev.Date.Before(*period.From) {
			opening = opening.Add(debit).Sub(credit)
			continue
		}
		if period.To != nil && ev.Date.After(*period.To) {
			continue
		}
		inWindow = append(inWindow, ev)
	}

	st := &Statement{
		AccountID:             account.ID,
		AccountName:           account.Name,
		AccountOpeningBalance: account.OpeningBalance,
		OpeningBalance:        opening,
		Lines:                 make([]StatementLine, 0, len(inWindow)+1),
		TotalDebit:            decimal.Zero,
		TotalCredit:           decimal.Zero,
		From:                  period.From,
		To:                    period.To,
	}
	st.Lines = append(st.Lines, StatementLine{
		Date:           openingDate,
		Type:           LineOpening,
		Debit:          decimal.Zero,
		Credit:         decimal.Zero,
		RunningBalance: opening,
	})

	running := opening
	for _, ev := range inWindow {
		debit, credit, _ := Classify(ev)
		running = running.Add(debit).Sub(credit)
		st.TotalDebit = st.TotalDebit.Add(debit)
		st.TotalCredit = st.TotalCredit.Add(credit)
		st.Lines = append(st.Lines, StatementLine{
			Date:           ev.Date,
			Type:           string(ev.Kind),
			Reference:      ev.Reference,
			EventID:        ev.ID,
			Debit:          debit,
			Credit:         credit,
			RunningBalance: running,
		})
	}
	st.CurrentBalance = running
	st.Status = StatusOf(running)
	return st, nil
}

// SortEvents devuelve una copia ordenada por (Date, Seq) ascendente. Con Seq iguales
// se conserva el orden de entrada.
func SortEvents(events []*entity.LedgerEvent) []*entity.LedgerEvent {
	sorted := make([]*entity.LedgerEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Seq < b.Seq
	})
	return sorted
}

func checkEvents(account *entity.Account, events []*entity.LedgerEvent) error {
	if account == nil {
		return domain.NewValidationError("account", "es requerida")
	}
	for _, ev := range events {
		if ev == nil {
			return domain.NewValidationError("events", "contiene un evento nulo")
		}
		if ev.AccountID != account.ID {
			return fmt.Errorf("%w: evento %s es de la cuenta %s, no de %s",
				domain.ErrAccountMismatch, ev.ID, ev.AccountID, account.ID)
		}
		if ev.Amount.IsNegative() {
			return domain.NewValidationError("amount", "no puede ser negativo (evento "+ev.ID+")")
		}
	}
	return nil
}
