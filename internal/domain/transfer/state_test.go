package transfer_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/transfer"
)

var allStatuses = []entity.TransferStatus{
	entity.TransferPending,
	entity.TransferApproved,
	entity.TransferInTransit,
	entity.TransferCompleted,
	entity.TransferCancelled,
}

func TestTransition_MatrizCompleta(t *testing.T) {
	allowed := map[[2]entity.TransferStatus]bool{
		{entity.TransferPending, entity.TransferApproved}:    true,
		{entity.TransferPending, entity.TransferCancelled}:   true,
		{entity.TransferApproved, entity.TransferInTransit}:  true,
		{entity.TransferApproved, entity.TransferCancelled}:  true,
		{entity.TransferInTransit, entity.TransferCompleted}: true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			err := transfer.Transition(from, to)
			if allowed[[2]entity.TransferStatus{from, to}] {
				assert.NoError(t, err, "%s -> %s debe permitirse", from, to)
				continue
			}
			require.Error(t, err, "%s -> %s debe rechazarse", from, to)
			var ite *domain.InvalidTransitionError
			require.True(t, errors.As(err, &ite))
			assert.Equal(t, string(from), ite.From)
			assert.Equal(t, string(to), ite.To)
		}
	}
}

func TestTransition_EnTransitoNoSeCancela(t *testing.T) {
	err := transfer.Transition(entity.TransferInTransit, entity.TransferCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransition_EstadoDesconocido(t *testing.T) {
	err := transfer.Transition(entity.TransferPending, entity.TransferStatus("shipped"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, transfer.IsTerminal(entity.TransferCompleted))
	assert.True(t, transfer.IsTerminal(entity.TransferCancelled))
	assert.False(t, transfer.IsTerminal(entity.TransferInTransit))
	assert.Empty(t, transfer.Next(entity.TransferCompleted))
	assert.Equal(t, []entity.TransferStatus{entity.TransferCompleted}, transfer.Next(entity.TransferInTransit))
}
