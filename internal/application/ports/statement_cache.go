package ports

import (
	"context"
	"time"

	"github.com/jhoicas/retail-ledger/internal/domain/ledger"
)

// StatementCache guarda estados de cuenta ya calculados. La clave incluye el último Seq
// de la cuenta, así que una entrada nunca queda desactualizada: solo deja de usarse.
type StatementCache interface {
	Get(ctx context.Context, key string) (*ledger.Statement, bool, error)
	Set(ctx context.Context, key string, st *ledger.Statement, ttl time.Duration) error
}
