// Package ledger orquesta el estado de cuenta de clientes: lee eventos del almacén,
// delega el cálculo en el fold puro y registra ventas, recibos y anulaciones.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/ports"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	domledger "github.com/jhoicas/retail-ledger/internal/domain/ledger"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

// Deps dependencias del caso de uso. Cache, Renderer y Publisher son opcionales.
type Deps struct {
	Repos     repository.Repos
	Tx        ports.TxRunner
	Cache     ports.StatementCache
	CacheTTL  time.Duration
	Renderer  ports.StatementRenderer
	Publisher ports.EventPublisher
	Log       *logger.Logger
	Now       func() time.Time
}

// UseCase casos de uso de cuentas corrientes.
type UseCase struct {
	repos     repository.Repos
	tx        ports.TxRunner
	cache     ports.StatementCache
	cacheTTL  time.Duration
	renderer  ports.StatementRenderer
	publisher ports.EventPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(d Deps) *UseCase {
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return &UseCase{
		repos:     d.Repos,
		tx:        d.Tx,
		cache:     d.Cache,
		cacheTTL:  d.CacheTTL,
		renderer:  d.Renderer,
		publisher: d.Publisher,
		log:       d.Log.Component("ledger"),
		now:       d.Now,
	}
}

// CreateAccountInput alta de cuenta de cliente.
type CreateAccountInput struct {
	Name           string
	Phone          string
	OpeningBalance decimal.Decimal
}

// CreateAccount registra una cuenta. El saldo inicial es con signo.
func (uc *UseCase) CreateAccount(ctx context.Context, in CreateAccountInput) (*entity.Account, error) {
	if in.Name == "" {
		return nil, domain.NewValidationError("name", "es requerido")
	}
	if err := domain.CheckScale("opening_balance", in.OpeningBalance, domain.MoneyScale); err != nil {
		return nil, err
	}
	acc := &entity.Account{
		ID:             uuid.New().String(),
		Name:           in.Name,
		Phone:          in.Phone,
		OpeningBalance: in.OpeningBalance,
		CreatedAt:      uc.now(),
	}
	if err := uc.repos.Accounts.Create(ctx, acc); err != nil {
		return nil, err
	}
	uc.log.Info().Str("account_id", acc.ID).Msg("cuenta creada")
	return acc, nil
}

// BuildStatement devuelve el estado de cuenta de la cuenta en el período dado.
func (uc *UseCase) BuildStatement(ctx context.Context, accountID string, period domledger.Period) (*domledger.Statement, error) {
	account, err := uc.repos.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}
	return uc.statementFor(ctx, account, period)
}

func (uc *UseCase) statementFor(ctx context.Context, account *entity.Account, period domledger.Period) (*domledger.Statement, error) {
	key := StatementKey(account.ID, account.Version, period)
	if uc.cache != nil {
		st, ok, err := uc.cache.Get(ctx, key)
		if err != nil {
			uc.log.Warn().Err(err).Str("key", key).Msg("cache de estados de cuenta no disponible")
		} else if ok {
			return st, nil
		}
	}

	events, err := uc.repos.Events.ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	st, err := domledger.BuildPeriodStatement(account, events, period)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		uc.store(ctx, account, key, st)
	}
	return st, nil
}

// store guarda el estado solo si la versión no cambió desde que se leyó la cuenta:
// cada evento sube la versión en su misma transacción, así que una versión igual
// garantiza que la lista leída es exactamente la de esa versión.
func (uc *UseCase) store(ctx context.Context, account *entity.Account, key string, st *domledger.Statement) {
	v, err := uc.repos.Accounts.Version(ctx, account.ID)
	if err != nil {
		uc.log.Warn().Err(err).Str("account_id", account.ID).Msg("no se pudo leer la versión de la cuenta")
		return
	}
	if v != account.Version {
		return
	}
	if err := uc.cache.Set(ctx, key, st, uc.cacheTTL); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar el estado de cuenta en cache")
	}
}

// StatementKey clave de caché: version cambia con cada evento nuevo de la cuenta.
func StatementKey(accountID string, version int64, period domledger.Period) string {
	return fmt.Sprintf("statement:%s:%d:%s:%s", accountID, version, formatBound(period.From), formatBound(period.To))
}

func formatBound(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// Balances resumen por cuenta para la pantalla de cuentas de clientes.
func (uc *UseCase) Balances(ctx context.Context, limit, offset int) ([]dto.AccountBalanceDTO, error) {
	accounts, err := uc.repos.Accounts.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(accounts))
	for _, acc := range accounts {
		ids = append(ids, acc.ID)
	}
	totals, err := uc.repos.Events.SumByKind(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AccountBalanceDTO, 0, len(accounts))
	for _, acc := range accounts {
		st, err := domledger.Summarize(acc, totals[acc.ID])
		if err != nil {
			return nil, fmt.Errorf("saldo de cuenta %s: %w", acc.ID, err)
		}
		out = append(out, dto.AccountBalanceDTO{
			AccountID:      acc.ID,
			Name:           acc.Name,
			Phone:          acc.Phone,
			OpeningBalance: acc.OpeningBalance,
			TotalDebit:     st.TotalDebit,
			TotalCredit:    st.TotalCredit,
			CurrentBalance: st.CurrentBalance,
			Status:         string(st.Status),
		})
	}
	return out, nil
}

// RecordEventInput venta a crédito o recibo de caja.
type RecordEventInput struct {
	AccountID string
	Kind      entity.LedgerEventKind
	Amount    decimal.Decimal
	Date      *time.Time
	Reference string
	UserID    string
}

// RecordEvent agrega un evento sale o receipt. Las reversas solo se crean con VoidEvent.
func (uc *UseCase) RecordEvent(ctx context.Context, in RecordEventInput) (*entity.LedgerEvent, error) {
	if in.AccountID == "" {
		return nil, domain.NewValidationError("account_id", "es requerido")
	}
	if in.Kind != entity.LedgerKindSale && in.Kind != entity.LedgerKindReceipt {
		return nil, domain.NewValidationError("kind", "debe ser sale o receipt")
	}
	if !in.Amount.IsPositive() {
		return nil, domain.NewValidationError("amount", "debe ser mayor que cero")
	}
	if err := domain.CheckScale("amount", in.Amount, domain.MoneyScale); err != nil {
		return nil, err
	}

	now := uc.now()
	date := now
	if in.Date != nil && !in.Date.IsZero() {
		date = *in.Date
	}
	ev := &entity.LedgerEvent{
		ID:        uuid.New().String(),
		AccountID: in.AccountID,
		Kind:      in.Kind,
		Amount:    in.Amount,
		Date:      date,
		Reference: in.Reference,
		CreatedAt: now,
		CreatedBy: in.UserID,
	}

	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		if _, err := r.Accounts.BumpVersion(ctx, in.AccountID); err != nil {
			return err
		}
		return r.Events.Append(ctx, ev)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("account_id", ev.AccountID).Str("event_id", ev.ID).
		Str("kind", string(ev.Kind)).Str("amount", ev.Amount.String()).Msg("evento registrado")
	uc.publish(ctx, ev)
	return ev, nil
}

// VoidEvent anula un evento agregando su reversa (fechada hoy). Un evento se anula una sola vez
// y una reversa no se puede anular.
func (uc *UseCase) VoidEvent(ctx context.Context, eventID, reason, userID string) (*entity.LedgerEvent, error) {
	var rev *entity.LedgerEvent
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		orig, err := r.Events.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if orig == nil {
			return domain.ErrNotFound
		}
		if orig.Kind.IsReversal() {
			return domain.NewValidationError("event_id", "una reversa no se puede anular")
		}
		if _, err := r.Accounts.BumpVersion(ctx, orig.AccountID); err != nil {
			return err
		}
		existing, err := r.Events.GetReversalOf(ctx, orig.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrAlreadyReversed
		}

		now := uc.now()
		ref := reason
		if ref == "" {
			ref = "anula " + orig.Reference
		}
		rev = &entity.LedgerEvent{
			ID:         uuid.New().String(),
			AccountID:  orig.AccountID,
			Kind:       orig.Kind.ReversalKind(),
			Amount:     orig.Amount,
			Date:       now,
			Reference:  ref,
			ReversesID: orig.ID,
			CreatedAt:  now,
			CreatedBy:  userID,
		}
		return r.Events.Append(ctx, rev)
	})
	if errors.Is(err, domain.ErrDuplicate) {
		return nil, domain.ErrAlreadyReversed
	}
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("account_id", rev.AccountID).Str("event_id", rev.ID).
		Str("reverses_id", rev.ReversesID).Msg("evento anulado")
	uc.publish(ctx, rev)
	return rev, nil
}

// StatementPDF genera el PDF del estado de cuenta.
func (uc *UseCase) StatementPDF(ctx context.Context, accountID string, period domledger.Period, locale string) ([]byte, error) {
	if uc.renderer == nil {
		return nil, fmt.Errorf("generador de PDF no configurado")
	}
	st, err := uc.BuildStatement(ctx, accountID, period)
	if err != nil {
		return nil, err
	}
	return uc.renderer.RenderStatement(ctx, st, locale)
}

func (uc *UseCase) publish(ctx context.Context, ev *entity.LedgerEvent) {
	if uc.publisher == nil {
		return
	}
	err := uc.publisher.Publish(ctx, ports.DomainEvent{
		Type:       ports.EventLedgerEventRecorded,
		Key:        ev.AccountID,
		OccurredAt: ev.CreatedAt,
		Payload:    dto.ToLedgerEventResponse(ev),
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("event_id", ev.ID).Msg("no se pudo publicar el evento")
	}
}
