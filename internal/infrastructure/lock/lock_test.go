package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/lock"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

func TestKeyedMutex_ExclusionPorClave(t *testing.T) {
	km := lock.NewKeyedMutex()
	var inside, maxInside int32
	var g errgroup.Group

	for i := 0; i < 20; i++ {
		g.Go(func() error {
			unlock, err := km.Lock(context.Background(), "stock:product:p1")
			if err != nil {
				return err
			}
			defer unlock()
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, km.Len(), "las claves sin uso se liberan")
}

func TestKeyedMutex_ClavesDistintasNoSeBloquean(t *testing.T) {
	km := lock.NewKeyedMutex()
	unlockA, err := km.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := km.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestKeyedMutex_RespetaContexto(t *testing.T) {
	km := lock.NewKeyedMutex()
	unlock, err := km.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = km.Lock(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock()
	assert.Equal(t, 0, km.Len())
}

func newRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisLocker_OcupadoDevuelveConflicto(t *testing.T) {
	rdb := newRedis(t)
	opts := lock.RedisOptions{TTL: 5 * time.Second, Backoff: 5 * time.Millisecond, Retries: 2}
	a := lock.NewRedisLocker(rdb, opts, logger.Nop())
	b := lock.NewRedisLocker(rdb, opts, logger.Nop())
	ctx := context.Background()

	unlock, err := a.Lock(ctx, "stock:product:p1")
	require.NoError(t, err)

	_, err = b.Lock(ctx, "stock:product:p1")
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	unlock()
	unlock2, err := b.Lock(ctx, "stock:product:p1")
	require.NoError(t, err)
	unlock2()
}

func TestRedisLocker_EsperaAlTitular(t *testing.T) {
	rdb := newRedis(t)
	locker := lock.NewRedisLocker(rdb, lock.RedisOptions{TTL: 5 * time.Second, Backoff: 5 * time.Millisecond, Retries: 200}, logger.Nop())
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "k")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	var got error
	go func() {
		defer wg.Done()
		u, err := locker.Lock(ctx, "k")
		got = err
		if err == nil {
			u()
		}
	}()
	time.Sleep(20 * time.Millisecond)
	unlock()
	wg.Wait()
	assert.NoError(t, got)
}
