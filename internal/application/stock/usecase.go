// Package stock aplica movimientos de inventario de forma transaccional: lock por producto,
// lectura con bloqueo, regla pura, compare-and-swap de la cantidad y registro del movimiento.
package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/ports"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	domstock "github.com/jhoicas/retail-ledger/internal/domain/stock"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

// Deps dependencias del caso de uso. Publisher es opcional.
type Deps struct {
	Repos     repository.Repos
	Tx        ports.TxRunner
	Locker    ports.Locker
	Publisher ports.EventPublisher
	Log       *logger.Logger
	Now       func() time.Time
}

// UseCase casos de uso de inventario.
type UseCase struct {
	repos     repository.Repos
	tx        ports.TxRunner
	locker    ports.Locker
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
		locker:    d.Locker,
		publisher: d.Publisher,
		log:       d.Log.Component("stock"),
		now:       d.Now,
	}
}

// ApplyInput un movimiento a aplicar.
// Quantity: unidades para in/out, cantidad objetivo para adjust_set, delta con signo para adjust_delta.
type ApplyInput struct {
	ProductID       string
	Type            entity.MovementType
	Quantity        decimal.Decimal
	ReferenceType   string
	ReferenceNumber string
	Date            *time.Time
	ReversesID      string
	UserID          string
}

// ApplyResult resultado de un movimiento confirmado.
type ApplyResult struct {
	Movement    *entity.StockMovement
	Product     *entity.Product
	NewQuantity decimal.Decimal
	Status      domstock.Status
}

// Apply valida, toma el lock del producto y aplica el movimiento en una transacción.
// Una salida mayor al disponible se rechaza con *domain.InsufficientStockError.
func (uc *UseCase) Apply(ctx context.Context, in ApplyInput) (*ApplyResult, error) {
	if in.ProductID == "" {
		return nil, domain.NewValidationError("product_id", "es requerido")
	}
	if err := domstock.Validate(in.Type, in.Quantity); err != nil {
		return nil, err
	}
	if in.ReferenceType == entity.ReferenceTransfer || in.ReferenceType == entity.ReferenceReversal {
		return nil, domain.NewValidationError("reference_type", "reservado para movimientos internos")
	}

	unlock, err := uc.locker.Lock(ctx, ports.ProductLockKey(in.ProductID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var res *ApplyResult
	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		var err error
		res, err = ApplyInTx(ctx, r, in, uc.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.applied(ctx, res)
	return res, nil
}

// ApplyInTx aplica el movimiento con los repositorios de la transacción del llamador.
// El llamador debe tener el lock del producto.
func ApplyInTx(ctx context.Context, r repository.Repos, in ApplyInput, now time.Time) (*ApplyResult, error) {
	p, err := r.Products.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}

	next, err := domstock.Apply(p.ID, p.Quantity, in.Type, in.Quantity)
	if err != nil {
		return nil, err
	}
	if err := r.Products.UpdateQuantity(ctx, p.ID, p.Quantity, next, now); err != nil {
		return nil, err
	}

	date := now
	if in.Date != nil && !in.Date.IsZero() {
		date = *in.Date
	}
	mov := &entity.StockMovement{
		ID:               uuid.New().String(),
		ProductID:        p.ID,
		Type:             in.Type,
		Quantity:         in.Quantity,
		PreviousQuantity: p.Quantity,
		NewQuantity:      next,
		ReferenceType:    in.ReferenceType,
		ReferenceNumber:  in.ReferenceNumber,
		ReversesID:       in.ReversesID,
		Date:             date,
		CreatedAt:        now,
		CreatedBy:        in.UserID,
	}
	if err := r.Movements.Append(ctx, mov); err != nil {
		return nil, err
	}

	p.Quantity = next
	p.UpdatedAt = now
	return &ApplyResult{
		Movement:    mov,
		Product:     p,
		NewQuantity: next,
		Status:      domstock.StatusOf(next, p.MinQuantity),
	}, nil
}

// Reverse compensa un movimiento con otro de sentido contrario. Cada movimiento se reversa
// una sola vez; las reversas y los movimientos de traslados no se reversan aquí.
func (uc *UseCase) Reverse(ctx context.Context, movementID, userID string) (*ApplyResult, error) {
	orig, err := uc.repos.Movements.GetByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if orig == nil {
		return nil, domain.ErrNotFound
	}
	if orig.ReversesID != "" {
		return nil, domain.NewValidationError("movement_id", "una reversa no se puede reversar")
	}
	if orig.ReferenceType == entity.ReferenceTransfer {
		return nil, domain.NewValidationError("movement_id", "los movimientos de traslado se compensan con la reversa del traslado")
	}
	typ, qty, err := domstock.Reversal(orig)
	if err != nil {
		return nil, err
	}

	unlock, err := uc.locker.Lock(ctx, ports.ProductLockKey(orig.ProductID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var res *ApplyResult
	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		existing, err := r.Movements.GetReversalOf(ctx, orig.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrAlreadyReversed
		}
		res, err = ApplyInTx(ctx, r, ApplyInput{
			ProductID:       orig.ProductID,
			Type:            typ,
			Quantity:        qty,
			ReferenceType:   entity.ReferenceReversal,
			ReferenceNumber: orig.ID,
			ReversesID:      orig.ID,
			UserID:          userID,
		}, uc.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.applied(ctx, res)
	return res, nil
}

// Movements historial de movimientos de un producto en orden de registro.
func (uc *UseCase) Movements(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	p, err := uc.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return uc.repos.Movements.ListByProduct(ctx, productID, from, to, limit, offset)
}

func (uc *UseCase) applied(ctx context.Context, res *ApplyResult) {
	m := res.Movement
	uc.log.Info().Str("product_id", m.ProductID).Str("movement_id", m.ID).Str("type", string(m.Type)).
		Str("previous", m.PreviousQuantity.String()).Str("new", m.NewQuantity.String()).Msg("movimiento aplicado")
	if uc.publisher == nil {
		return
	}
	err := uc.publisher.Publish(ctx, ports.DomainEvent{
		Type:       ports.EventStockMovementApplied,
		Key:        m.ProductID,
		OccurredAt: m.CreatedAt,
		Payload: dto.ApplyMovementResponse{
			Movement:    dto.ToMovementResponse(m),
			NewQuantity: res.NewQuantity,
			Status:      string(res.Status),
		},
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("movement_id", m.ID).Msg("no se pudo publicar el movimiento")
	}
}
