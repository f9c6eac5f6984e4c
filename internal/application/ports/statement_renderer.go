package ports

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/ledger"
)

// StatementRenderer convierte un estado de cuenta en un documento (PDF).
type StatementRenderer interface {
	RenderStatement(ctx context.Context, st *ledger.Statement, locale string) ([]byte, error)
}
