package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo implementación de TransferRepository sobre PostgreSQL.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador de traslados.
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, transfer_number, from_branch_id, to_branch_id, product_id,
	COALESCE(destination_product_id, ''), quantity, status, notes, COALESCE(reverses_id, ''),
	created_by, created_at, updated_at`

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var t entity.Transfer
	err := row.Scan(&t.ID, &t.TransferNumber, &t.FromBranchID, &t.ToBranchID, &t.ProductID,
		&t.DestinationProductID, &t.Quantity, &t.Status, &t.Notes, &t.ReversesID,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Save inserta o actualiza. Solo status, destination_product_id y updated_at cambian tras el alta.
func (r *TransferRepo) Save(ctx context.Context, t *entity.Transfer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO transfers (id, transfer_number, from_branch_id, to_branch_id, product_id,
			destination_product_id, quantity, status, notes, reverses_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			destination_product_id = EXCLUDED.destination_product_id,
			updated_at = EXCLUDED.updated_at`,
		t.ID, t.TransferNumber, t.FromBranchID, t.ToBranchID, t.ProductID,
		nullIfEmpty(t.DestinationProductID), t.Quantity, string(t.Status), t.Notes, nullIfEmpty(t.ReversesID),
		t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("save transfer: %w", err)
	}
	return nil
}

func (r *TransferRepo) get(ctx context.Context, query string, args ...any) (*entity.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return t, nil
}

func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransferRepo) GetReversalOf(ctx context.Context, transferID string) (*entity.Transfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM transfers WHERE reverses_id = $1`, transferID)
}

// List filtra por estado y número; "" = sin filtro. En orden de alta.
func (r *TransferRepo) List(ctx context.Context, filter repository.TransferFilter, limit, offset int) ([]*entity.Transfer, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+transferColumns+` FROM transfers
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR transfer_number = $2)
		ORDER BY created_at, transfer_number, id
		LIMIT $3 OFFSET $4`,
		string(filter.Status), filter.TransferNumber, limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var list []*entity.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
