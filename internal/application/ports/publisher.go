package ports

import (
	"context"
	"time"
)

// Tipos de evento publicados después de cada commit.
const (
	EventStockMovementApplied  = "stock.movement.applied"
	EventTransferStatusChanged = "transfer.status_changed"
	EventLedgerEventRecorded   = "ledger.event.recorded"
)

// DomainEvent notificación de un cambio ya confirmado. Key agrupa eventos del mismo agregado.
type DomainEvent struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// EventPublisher publica eventos de dominio. Se llama fuera de la transacción;
// un fallo no revierte el cambio.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}
