// Package db defines the key-value store contract backing the freshness
// caches (synonym tables, term-store labels).
package db

import (
	"context"
	"time"
)

// Store is the key-value facade consumed by the caching repositories.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides the key-value operations the freshness caches use: reads
// and TTL-bounded writes. Entries expire, they are never deleted explicitly.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
