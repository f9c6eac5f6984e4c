package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var (
	_ repository.AccountRepository     = (*AccountRepo)(nil)
	_ repository.LedgerEventRepository = (*LedgerEventRepo)(nil)
)

// AccountRepo implementación de AccountRepository sobre PostgreSQL (pool o tx).
type AccountRepo struct {
	q Querier
}

// NewAccountRepository construye el adaptador de cuentas.
func NewAccountRepository(q Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

func (r *AccountRepo) Create(ctx context.Context, a *entity.Account) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO accounts (id, name, phone, opening_balance, created_at) VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.Name, a.Phone, a.OpeningBalance, a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	var a entity.Account
	err := r.q.QueryRow(ctx,
		`SELECT id, name, phone, opening_balance, version, created_at FROM accounts WHERE id = $1`, id,
	).Scan(&a.ID, &a.Name, &a.Phone, &a.OpeningBalance, &a.Version, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

func (r *AccountRepo) List(ctx context.Context, limit, offset int) ([]*entity.Account, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, name, phone, opening_balance, version, created_at FROM accounts
		 ORDER BY created_at, id LIMIT $1 OFFSET $2`, limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var list []*entity.Account
	for rows.Next() {
		var a entity.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Phone, &a.OpeningBalance, &a.Version, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// BumpVersion toma el lock de fila de la cuenta; otra transacción que agregue eventos
// a la misma cuenta espera hasta el commit o rollback de esta.
func (r *AccountRepo) BumpVersion(ctx context.Context, id string) (int64, error) {
	var v int64
	err := r.q.QueryRow(ctx,
		`UPDATE accounts SET version = version + 1 WHERE id = $1 RETURNING version`, id,
	).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("bump account version: %w", err)
	}
	return v, nil
}

func (r *AccountRepo) Version(ctx context.Context, id string) (int64, error) {
	var v int64
	err := r.q.QueryRow(ctx, `SELECT version FROM accounts WHERE id = $1`, id).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("account version: %w", err)
	}
	return v, nil
}

// LedgerEventRepo almacén append-only de eventos. Seq lo asigna el BIGSERIAL.
type LedgerEventRepo struct {
	q Querier
}

// NewLedgerEventRepository construye el adaptador de eventos.
func NewLedgerEventRepository(q Querier) *LedgerEventRepo {
	return &LedgerEventRepo{q: q}
}

const eventColumns = `seq, id, account_id, kind, amount, event_date, reference, COALESCE(reverses_id, ''), created_at, created_by`

func scanEvent(row pgx.Row) (*entity.LedgerEvent, error) {
	var e entity.LedgerEvent
	err := row.Scan(&e.Seq, &e.ID, &e.AccountID, &e.Kind, &e.Amount, &e.Date,
		&e.Reference, &e.ReversesID, &e.CreatedAt, &e.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *LedgerEventRepo) Append(ctx context.Context, e *entity.LedgerEvent) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO ledger_events (id, account_id, kind, amount, event_date, reference, reverses_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`,
		e.ID, e.AccountID, string(e.Kind), e.Amount, e.Date, e.Reference, nullIfEmpty(e.ReversesID), e.CreatedAt, e.CreatedBy,
	).Scan(&e.Seq)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert ledger event: %w", err)
	}
	return nil
}

func (r *LedgerEventRepo) GetByID(ctx context.Context, id string) (*entity.LedgerEvent, error) {
	e, err := scanEvent(r.q.QueryRow(ctx, `SELECT `+eventColumns+` FROM ledger_events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger event: %w", err)
	}
	return e, nil
}

func (r *LedgerEventRepo) ListByAccount(ctx context.Context, accountID string) ([]*entity.LedgerEvent, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+eventColumns+` FROM ledger_events WHERE account_id = $1 ORDER BY seq`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list ledger events: %w", err)
	}
	defer rows.Close()

	var list []*entity.LedgerEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger event: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *LedgerEventRepo) SumByKind(ctx context.Context, accountIDs []string) (map[string]entity.KindTotals, error) {
	out := make(map[string]entity.KindTotals, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT account_id, kind, SUM(amount) FROM ledger_events
		 WHERE account_id = ANY($1) GROUP BY account_id, kind`, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("sum ledger events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			accountID string
			kind      string
			total     decimal.Decimal
		)
		if err := rows.Scan(&accountID, &kind, &total); err != nil {
			return nil, fmt.Errorf("scan ledger totals: %w", err)
		}
		if out[accountID] == nil {
			out[accountID] = entity.KindTotals{}
		}
		out[accountID][entity.LedgerEventKind(kind)] = total
	}
	return out, rows.Err()
}

func (r *LedgerEventRepo) GetReversalOf(ctx context.Context, eventID string) (*entity.LedgerEvent, error) {
	e, err := scanEvent(r.q.QueryRow(ctx, `SELECT `+eventColumns+` FROM ledger_events WHERE reverses_id = $1`, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reversal: %w", err)
	}
	return e, nil
}

// limitOrAll traduce limit <= 0 a NULL (LIMIT NULL = sin límite).
func limitOrAll(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}
