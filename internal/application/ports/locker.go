package ports

import "context"

// Locker serializa operaciones sobre una misma clave (p. ej. un producto).
// unlock debe llamarse siempre; es seguro llamarlo más de una vez.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// ProductLockKey clave compartida por movimientos de stock y traslados.
func ProductLockKey(productID string) string {
	return "stock:product:" + productID
}

// DestinationLockKey protege la creación del producto destino de un traslado.
func DestinationLockKey(code string, branchID *string) string {
	b := "main"
	if branchID != nil {
		b = *branchID
	}
	return "stock:dest:" + code + ":" + b
}
