package db

import (
	"context"
	"time"
)

// Store is everything the Redis backend offers. Repositories depend on
// narrower interfaces declared next to them.
//
//nolint:interfacebloat // composition root needs the full set
type Store interface {
	Pinger
	HashStore
	NameReserver
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore reads and writes retailer records kept as hashes.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
}

// NameReserver claims unique names with SET NX.
type NameReserver interface {
	// SetNX stores value only if key is absent; false means the key already existed.
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
	Del(ctx context.Context, key string) error
}

// IndexManager creates and probes FT indexes.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher counts and aggregates over FT indexes.
type Searcher interface {
	SearchCount(ctx context.Context, q *CountQuery) (int, error)
	Aggregate(ctx context.Context, q *AggregateQuery) ([]Row, error)
	AggregateCount(ctx context.Context, q *AggregateQuery) (int, error)
}
