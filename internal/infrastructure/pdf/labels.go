package pdf

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/ledger"
)

// Idiomas soportados; el primero es el de respaldo.
var supported = []language.Tag{language.Spanish, language.English}

var matcher = language.NewMatcher(supported)

// Claves del catálogo. El texto en inglés es la clave.
const (
	msgTitle        = "ACCOUNT STATEMENT"
	msgCustomer     = "Customer"
	msgPhone        = "Phone"
	msgPeriod       = "Period"
	msgAllHistory   = "Full history"
	msgIssued       = "Issued"
	msgDate         = "Date"
	msgConcept      = "Concept"
	msgReference    = "Reference"
	msgDebit        = "Debit"
	msgCredit       = "Credit"
	msgBalance      = "Balance"
	msgTotals       = "Totals"
	msgCurrent      = "CURRENT BALANCE"
	msgOpening      = "Opening balance"
	msgSale         = "Sale"
	msgReceipt      = "Receipt"
	msgSaleRev      = "Sale reversal"
	msgReceiptRev   = "Receipt reversal"
	msgDebtor       = "Customer owes"
	msgCreditor     = "Balance in customer's favor"
	msgSettled      = "Settled"
	msgFooterNotice = "Balance derived from the recorded events. Reversals replace deleted entries."
)

var spanish = map[string]string{
	msgTitle:        "ESTADO DE CUENTA",
	msgCustomer:     "Cliente",
	msgPhone:        "Tel",
	msgPeriod:       "Período",
	msgAllHistory:   "Historial completo",
	msgIssued:       "Emitido",
	msgDate:         "Fecha",
	msgConcept:      "Concepto",
	msgReference:    "Referencia",
	msgDebit:        "Débito",
	msgCredit:       "Crédito",
	msgBalance:      "Saldo",
	msgTotals:       "Totales",
	msgCurrent:      "SALDO ACTUAL",
	msgOpening:      "Saldo inicial",
	msgSale:         "Venta",
	msgReceipt:      "Recibo de caja",
	msgSaleRev:      "Reversa de venta",
	msgReceiptRev:   "Reversa de recibo",
	msgDebtor:       "El cliente debe",
	msgCreditor:     "Saldo a favor del cliente",
	msgSettled:      "A paz y salvo",
	msgFooterNotice: "Saldo calculado a partir de los eventos registrados. Las reversas reemplazan al borrado.",
}

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.Spanish))
	for key, es := range spanish {
		_ = b.SetString(language.Spanish, key, es)
		_ = b.SetString(language.English, key, key)
	}
	return b
}

var cat = newCatalog()

// labels textos y formatos de un idioma.
type labels struct {
	tag     language.Tag
	printer *message.Printer
}

// labelsFor resuelve el locale ("es", "en-US", "") a un idioma soportado. Vacío o desconocido = español.
func labelsFor(locale string) labels {
	tag := supported[0]
	if locale != "" {
		if _, idx, conf := matcher.Match(language.Make(locale)); conf != language.No {
			tag = supported[idx]
		}
	}
	return labels{tag: tag, printer: message.NewPrinter(tag, message.Catalog(cat))}
}

func (l labels) T(key string) string { return l.printer.Sprintf(key) }

func (l labels) english() bool { return l.tag == language.English }

// dateLayout dd/mm/aaaa en español, mm/dd/yyyy en inglés.
func (l labels) dateLayout() string {
	if l.english() {
		return "01/02/2006"
	}
	return "02/01/2006"
}

func (l labels) lineType(t string) string {
	switch t {
	case ledger.LineOpening:
		return l.T(msgOpening)
	case string(entity.LedgerKindSale):
		return l.T(msgSale)
	case string(entity.LedgerKindReceipt):
		return l.T(msgReceipt)
	case string(entity.LedgerKindSaleReversal):
		return l.T(msgSaleRev)
	case string(entity.LedgerKindReceiptReversal):
		return l.T(msgReceiptRev)
	}
	return t
}

func (l labels) status(s ledger.Status) string {
	switch s {
	case ledger.StatusDebtor:
		return l.T(msgDebtor)
	case ledger.StatusCreditor:
		return l.T(msgCreditor)
	}
	return l.T(msgSettled)
}

// money formatea con 2 decimales y separador de miles del idioma.
// Ej. es: "-25.000,50", en: "-25,000.50".
func (l labels) money(d decimal.Decimal) string {
	thousands, point := ".", ","
	if l.english() {
		thousands, point = ",", "."
	}
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	out := "$" + groupThousands(intPart, thousands) + point + frac
	if d.IsNegative() {
		return "-" + out
	}
	return out
}

// groupThousands inserta sep cada tres dígitos desde la derecha. "1000000" → "1.000.000".
func groupThousands(s, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteString(sep)
		}
		b.WriteRune(c)
	}
	return b.String()
}
