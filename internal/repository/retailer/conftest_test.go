package retailer

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/retailerdir/internal/db"
	"github.com/kailas-cloud/retailerdir/internal/domain/geo"
	domret "github.com/kailas-cloud/retailerdir/internal/domain/retailer"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn           func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn        func(ctx context.Context, key string) (map[string]string, error)
	delFn            func(ctx context.Context, key string) error
	setNXFn          func(ctx context.Context, key string, value []byte) (bool, error)
	createIndexFn    func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn    func(ctx context.Context, name string) (bool, error)
	searchCountFn    func(ctx context.Context, q *db.CountQuery) (int, error)
	aggregateFn      func(ctx context.Context, q *db.AggregateQuery) ([]db.Row, error)
	aggregateCountFn func(ctx context.Context, q *db.AggregateQuery) (int, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	if m.setNXFn != nil {
		return m.setNXFn(ctx, key, value)
	}
	return true, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return true, nil
}

func (m *mockStore) SearchCount(ctx context.Context, q *db.CountQuery) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, q)
	}
	return 0, nil
}

func (m *mockStore) Aggregate(ctx context.Context, q *db.AggregateQuery) ([]db.Row, error) {
	if m.aggregateFn != nil {
		return m.aggregateFn(ctx, q)
	}
	return []db.Row{}, nil
}

func (m *mockStore) AggregateCount(ctx context.Context, q *db.AggregateQuery) (int, error) {
	if m.aggregateCountFn != nil {
		return m.aggregateCountFn(ctx, q)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "rd:"), ms
}

func testRetailer(t *testing.T) domret.Retailer {
	t.Helper()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return domret.Reconstruct(
		"5f0c6f0e-8b8c-4d8e-9c1a-2b3c4d5e6f70", "Green Grocer", domret.Grocery,
		"+15551234567", "1 Main St", geo.Reconstruct(77.59, 12.97),
		created, created,
	)
}
