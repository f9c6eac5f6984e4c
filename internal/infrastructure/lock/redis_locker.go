package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/retail-ledger/internal/application/ports"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

var _ ports.Locker = (*RedisLocker)(nil)

// RedisOptions parámetros del lock distribuido.
type RedisOptions struct {
	TTL     time.Duration // vida máxima del lock si el proceso muere
	Backoff time.Duration // espera entre intentos
	Retries int           // intentos extra antes de rendirse
}

// DefaultRedisOptions valores razonables para operaciones de stock (milisegundos).
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{TTL: 10 * time.Second, Backoff: 25 * time.Millisecond, Retries: 80}
}

// RedisLocker lock por clave sobre Redis (bsm/redislock). Si no se obtiene tras los
// reintentos devuelve domain.ErrConcurrencyConflict y el llamador reintenta la operación.
type RedisLocker struct {
	client *redislock.Client
	opts   RedisOptions
	log    *logger.Logger
}

// NewRedisLocker construye el locker sobre un cliente go-redis.
func NewRedisLocker(rdb redis.UniversalClient, opts RedisOptions, log *logger.Logger) *RedisLocker {
	if opts.TTL <= 0 {
		opts.TTL = DefaultRedisOptions().TTL
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultRedisOptions().Backoff
	}
	return &RedisLocker{client: redislock.New(rdb), opts: opts, log: log}
}

// Lock obtiene "lock:<key>".
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	retry := redislock.LimitRetry(redislock.LinearBackoff(l.opts.Backoff), l.opts.Retries)
	lk, err := l.client.Obtain(ctx, "lock:"+key, l.opts.TTL, &redislock.Options{RetryStrategy: retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: lock %s ocupado", domain.ErrConcurrencyConflict, key)
	}
	if err != nil {
		return nil, fmt.Errorf("obtener lock %s: %w", key, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(lk, key) })
	}, nil
}

func (l *RedisLocker) release(lk *redislock.Lock, key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := lk.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
		l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el lock")
	}
}
