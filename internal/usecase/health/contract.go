package health

import "context"

// DBPinger is satisfied by the Redis store, the pgx pool and the memory repository.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker reports whether the retailer search index is queryable.
type IndexChecker interface {
	IndexReady(ctx context.Context) error
}
