// Package transfer mueve stock entre ubicaciones con la máquina de estados
// pending → approved → in_transit → completed. La salida del origen ocurre al pasar a
// in_transit y la entrada en destino al completar, cada una en su propia transacción.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/ports"
	appstock "github.com/jhoicas/retail-ledger/internal/application/stock"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	domtransfer "github.com/jhoicas/retail-ledger/internal/domain/transfer"
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

// UseCase casos de uso de traslados.
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
		log:       d.Log.Component("transfer"),
		now:       d.Now,
	}
}

// Item una línea de la solicitud.
type Item struct {
	ProductID string
	Quantity  decimal.Decimal
}

// RequestInput solicitud de traslado. FromBranchID nil = bodega principal.
type RequestInput struct {
	FromBranchID *string
	ToBranchID   *string
	Items        []Item
	Notes        string
	UserID       string
}

// NewTransferNumber genera TRF-YYYYMMDD-xxxxxx.
func NewTransferNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("TRF-%s-%s", now.Format("20060102"), suffix)
}

// Request crea un traslado pending por ítem, todos con el mismo número.
// Si un ítem falla no se guarda ninguno.
func (uc *UseCase) Request(ctx context.Context, in RequestInput) ([]*entity.Transfer, error) {
	if err := validateRequest(in); err != nil {
		return nil, err
	}

	now := uc.now()
	number := NewTransferNumber(now)
	var created []*entity.Transfer

	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		for _, id := range []*string{in.FromBranchID, in.ToBranchID} {
			if id == nil {
				continue
			}
			b, err := r.Branches.GetByID(ctx, *id)
			if err != nil {
				return err
			}
			if b == nil {
				return domain.NewValidationError("branch_id", "la sucursal "+*id+" no existe")
			}
		}

		created = created[:0]
		for _, item := range in.Items {
			p, err := r.Products.GetByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("producto %s: %w", item.ProductID, domain.ErrNotFound)
			}
			if !p.LocatedAt(in.FromBranchID) {
				return domain.NewValidationError("product_id", "el producto "+p.ID+" no está en la ubicación de origen")
			}
			if item.Quantity.GreaterThan(p.Quantity) {
				return &domain.InsufficientStockError{ProductID: p.ID, Requested: item.Quantity, Available: p.Quantity}
			}
			t := &entity.Transfer{
				ID:             uuid.New().String(),
				TransferNumber: number,
				FromBranchID:   in.FromBranchID,
				ToBranchID:     in.ToBranchID,
				ProductID:      p.ID,
				Quantity:       item.Quantity,
				Status:         entity.TransferPending,
				Notes:          in.Notes,
				CreatedBy:      in.UserID,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := r.Transfers.Save(ctx, t); err != nil {
				return err
			}
			created = append(created, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, t := range created {
		uc.changed(ctx, t, "")
	}
	return created, nil
}

func validateRequest(in RequestInput) error {
	if in.ToBranchID == nil || *in.ToBranchID == "" {
		return domain.NewValidationError("to_branch_id", "es requerido")
	}
	if in.FromBranchID != nil && *in.FromBranchID == "" {
		return domain.NewValidationError("from_branch_id", "no puede ser vacío; use null para la bodega principal")
	}
	if entity.SameLocation(in.FromBranchID, in.ToBranchID) {
		return domain.NewValidationError("to_branch_id", "debe ser distinta del origen")
	}
	if len(in.Items) == 0 {
		return domain.NewValidationError("items", "debe tener al menos un producto")
	}
	seen := make(map[string]bool, len(in.Items))
	for _, item := range in.Items {
		if item.ProductID == "" {
			return domain.NewValidationError("product_id", "es requerido")
		}
		if seen[item.ProductID] {
			return domain.NewValidationError("items", "producto repetido: "+item.ProductID)
		}
		seen[item.ProductID] = true
		if !item.Quantity.IsPositive() {
			return domain.NewValidationError("quantity", "debe ser mayor que cero")
		}
		if err := domain.CheckScale("quantity", item.Quantity, domain.QuantityScale); err != nil {
			return err
		}
	}
	return nil
}

// Advance lleva el traslado al estado target. Una arista no permitida devuelve
// *domain.InvalidTransitionError y el estado guardado no cambia.
func (uc *UseCase) Advance(ctx context.Context, transferID string, target entity.TransferStatus, userID string) (*entity.Transfer, error) {
	if !target.IsValid() {
		return nil, domain.NewValidationError("status", "estado desconocido: "+string(target))
	}
	current, err := uc.repos.Transfers.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if err := domtransfer.Transition(current.Status, target); err != nil {
		return nil, err
	}

	var updated *entity.Transfer
	switch target {
	case entity.TransferInTransit:
		updated, err = uc.dispatch(ctx, current, userID)
	case entity.TransferCompleted:
		updated, err = uc.complete(ctx, current, userID)
	default:
		updated, err = uc.flip(ctx, transferID, target)
	}
	if err != nil {
		return nil, err
	}
	uc.changed(ctx, updated, current.Status)
	return updated, nil
}

// flip cambia solo el estado (approved, cancelled).
func (uc *UseCase) flip(ctx context.Context, transferID string, target entity.TransferStatus) (*entity.Transfer, error) {
	var out *entity.Transfer
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		t, err := lockedTransfer(ctx, r, transferID, target)
		if err != nil {
			return err
		}
		t.Status = target
		t.UpdatedAt = uc.now()
		out = t
		return r.Transfers.Save(ctx, t)
	})
	return out, err
}

// dispatch descuenta el origen bajo el lock del producto y revalida la disponibilidad.
func (uc *UseCase) dispatch(ctx context.Context, current *entity.Transfer, userID string) (*entity.Transfer, error) {
	unlock, err := uc.locker.Lock(ctx, ports.ProductLockKey(current.ProductID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var out *entity.Transfer
	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		t, err := lockedTransfer(ctx, r, current.ID, entity.TransferInTransit)
		if err != nil {
			return err
		}
		now := uc.now()
		if _, err := appstock.ApplyInTx(ctx, r, appstock.ApplyInput{
			ProductID:       t.ProductID,
			Type:            entity.MovementOut,
			Quantity:        t.Quantity,
			ReferenceType:   entity.ReferenceTransfer,
			ReferenceNumber: t.TransferNumber,
			UserID:          userID,
		}, now); err != nil {
			return err
		}
		t.Status = entity.TransferInTransit
		t.UpdatedAt = now
		out = t
		return r.Transfers.Save(ctx, t)
	})
	return out, err
}

// complete acredita el destino. El producto destino es el del mismo código en la sucursal
// destino; si no existe se crea con cantidad 0 en la misma transacción.
func (uc *UseCase) complete(ctx context.Context, current *entity.Transfer, userID string) (*entity.Transfer, error) {
	src, err := uc.repos.Products.GetByID(ctx, current.ProductID)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("producto origen %s: %w", current.ProductID, domain.ErrNotFound)
	}

	unlockDest, err := uc.locker.Lock(ctx, ports.DestinationLockKey(src.Code, current.ToBranchID))
	if err != nil {
		return nil, err
	}
	defer unlockDest()

	dest, err := uc.repos.Products.GetByCodeAndBranch(ctx, src.Code, current.ToBranchID)
	if err != nil {
		return nil, err
	}
	if dest != nil {
		unlock, err := uc.locker.Lock(ctx, ports.ProductLockKey(dest.ID))
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	var out *entity.Transfer
	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		t, err := lockedTransfer(ctx, r, current.ID, entity.TransferCompleted)
		if err != nil {
			return err
		}
		now := uc.now()
		destID, err := ensureDestination(ctx, r, src, t.ToBranchID, now)
		if err != nil {
			return err
		}
		if _, err := appstock.ApplyInTx(ctx, r, appstock.ApplyInput{
			ProductID:       destID,
			Type:            entity.MovementIn,
			Quantity:        t.Quantity,
			ReferenceType:   entity.ReferenceTransfer,
			ReferenceNumber: t.TransferNumber,
			UserID:          userID,
		}, now); err != nil {
			return err
		}
		t.Status = entity.TransferCompleted
		t.DestinationProductID = destID
		t.UpdatedAt = now
		out = t
		return r.Transfers.Save(ctx, t)
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("transfer_id", current.ID).Msg("no se pudo completar el traslado; sigue en tránsito")
		return nil, err
	}
	return out, nil
}

func ensureDestination(ctx context.Context, r repository.Repos, src *entity.Product, branchID *string, now time.Time) (string, error) {
	dest, err := r.Products.GetByCodeAndBranch(ctx, src.Code, branchID)
	if err != nil {
		return "", err
	}
	if dest != nil {
		return dest.ID, nil
	}
	dest = &entity.Product{
		ID:          uuid.New().String(),
		Name:        src.Name,
		Code:        src.Code,
		Quantity:    decimal.Zero,
		MinQuantity: src.MinQuantity,
		BranchID:    branchID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.Products.Create(ctx, dest); err != nil {
		return "", fmt.Errorf("crear producto destino: %w", err)
	}
	return dest.ID, nil
}

// lockedTransfer relee el traslado con bloqueo y vuelve a validar la arista.
func lockedTransfer(ctx context.Context, r repository.Repos, id string, target entity.TransferStatus) (*entity.Transfer, error) {
	t, err := r.Transfers.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if err := domtransfer.Transition(t.Status, target); err != nil {
		return nil, err
	}
	return t, nil
}

// Get devuelve un traslado.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Transfer, error) {
	t, err := uc.repos.Transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// List lista traslados con filtros opcionales.
func (uc *UseCase) List(ctx context.Context, filter repository.TransferFilter, limit, offset int) ([]*entity.Transfer, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domain.NewValidationError("status", "estado desconocido: "+string(filter.Status))
	}
	return uc.repos.Transfers.List(ctx, filter, limit, offset)
}

// Reverse crea un traslado pending en sentido contrario para un traslado completado.
// La compensación recorre de nuevo toda la máquina de estados.
func (uc *UseCase) Reverse(ctx context.Context, transferID, userID string) (*entity.Transfer, error) {
	var rev *entity.Transfer
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		t, err := r.Transfers.GetForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.Status != entity.TransferCompleted {
			return domain.NewValidationError("status", "solo se reversan traslados completados")
		}
		if t.ReversesID != "" {
			return domain.NewValidationError("transfer_id", "un traslado de reversa no se puede reversar")
		}
		existing, err := r.Transfers.GetReversalOf(ctx, t.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrAlreadyReversed
		}

		dest, err := r.Products.GetByID(ctx, t.DestinationProductID)
		if err != nil {
			return err
		}
		if dest == nil {
			return fmt.Errorf("producto destino %s: %w", t.DestinationProductID, domain.ErrNotFound)
		}
		// Chequeo temprano sin lock del producto destino: la reserva real ocurre al despachar
		// la reversa (Advance a in_transit), que vuelve a validar bajo lock y FOR UPDATE.
		if t.Quantity.GreaterThan(dest.Quantity) {
			return &domain.InsufficientStockError{ProductID: dest.ID, Requested: t.Quantity, Available: dest.Quantity}
		}

		now := uc.now()
		rev = &entity.Transfer{
			ID:             uuid.New().String(),
			TransferNumber: NewTransferNumber(now),
			FromBranchID:   t.ToBranchID,
			ToBranchID:     t.FromBranchID,
			ProductID:      dest.ID,
			Quantity:       t.Quantity,
			Status:         entity.TransferPending,
			Notes:          "reversa de " + t.TransferNumber,
			ReversesID:     t.ID,
			CreatedBy:      userID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		return r.Transfers.Save(ctx, rev)
	})
	if errors.Is(err, domain.ErrDuplicate) {
		return nil, domain.ErrAlreadyReversed
	}
	if err != nil {
		return nil, err
	}
	uc.changed(ctx, rev, "")
	return rev, nil
}

type statusChanged struct {
	dto.TransferResponse
	PreviousStatus string `json:"previous_status,omitempty"`
}

func (uc *UseCase) changed(ctx context.Context, t *entity.Transfer, previous entity.TransferStatus) {
	uc.log.Info().Str("transfer_id", t.ID).Str("transfer_number", t.TransferNumber).
		Str("from", string(previous)).Str("to", string(t.Status)).Msg("traslado actualizado")
	if uc.publisher == nil {
		return
	}
	err := uc.publisher.Publish(ctx, ports.DomainEvent{
		Type:       ports.EventTransferStatusChanged,
		Key:        t.ID,
		OccurredAt: t.UpdatedAt,
		Payload:    statusChanged{TransferResponse: dto.ToTransferResponse(t), PreviousStatus: string(previous)},
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("transfer_id", t.ID).Msg("no se pudo publicar el cambio de estado")
	}
}
