// Package cache guarda estados de cuenta calculados.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/retail-ledger/internal/application/ports"
	"github.com/jhoicas/retail-ledger/internal/domain/ledger"
)

var (
	_ ports.StatementCache = (*RedisStatementCache)(nil)
	_ ports.StatementCache = (*MemoryStatementCache)(nil)
)

const keyPrefix = "retail-ledger:"

// RedisStatementCache guarda el estado de cuenta serializado en JSON.
type RedisStatementCache struct {
	client redis.UniversalClient
}

// NewRedisStatementCache construye la caché sobre un cliente go-redis.
func NewRedisStatementCache(client redis.UniversalClient) *RedisStatementCache {
	return &RedisStatementCache{client: client}
}

// Get devuelve (nil, false, nil) si la clave no existe.
func (c *RedisStatementCache) Get(ctx context.Context, key string) (*ledger.Statement, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var st ledger.Statement
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return &st, true, nil
}

// Set guarda el estado de cuenta con el TTL dado.
func (c *RedisStatementCache) Set(ctx context.Context, key string, st *ledger.Statement, ttl time.Duration) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// MemoryStatementCache caché en proceso para cuando no hay Redis.
type MemoryStatementCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	limit   int
}

type memoryEntry struct {
	st      ledger.Statement
	expires time.Time
}

// NewMemoryStatementCache limita la caché a limit entradas (se vacía al llenarse).
func NewMemoryStatementCache(limit int) *MemoryStatementCache {
	if limit <= 0 {
		limit = 1024
	}
	return &MemoryStatementCache{entries: make(map[string]memoryEntry), limit: limit}
}

func (c *MemoryStatementCache) Get(_ context.Context, key string) (*ledger.Statement, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || (!e.expires.IsZero() && time.Now().After(e.expires)) {
		return nil, false, nil
	}
	st := e.st
	st.Lines = append([]ledger.StatementLine(nil), e.st.Lines...)
	return &st, true, nil
}

func (c *MemoryStatementCache) Set(_ context.Context, key string, st *ledger.Statement, ttl time.Duration) error {
	e := memoryEntry{st: *st}
	e.st.Lines = append([]ledger.StatementLine(nil), st.Lines...)
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.limit {
		c.entries = make(map[string]memoryEntry)
	}
	c.entries[key] = e
	return nil
}
