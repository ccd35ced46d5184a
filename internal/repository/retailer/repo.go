package retailer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/retailerdir/internal/db"
	"github.com/kailas-cloud/retailerdir/internal/domain"
	"github.com/kailas-cloud/retailerdir/internal/domain/geo"
	domret "github.com/kailas-cloud/retailerdir/internal/domain/retailer"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/filter"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/result"
)

// store is the consumer interface for retailers (ISP).
//
//nolint:interfacebloat // retailer repo needs hash, kv, index and search operations
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchCount(ctx context.Context, q *db.CountQuery) (int, error)
	Aggregate(ctx context.Context, q *db.AggregateQuery) ([]db.Row, error)
	AggregateCount(ctx context.Context, q *db.AggregateQuery) (int, error)
}

// Repo implements usecase/retailer.Repository on top of RediSearch.
type Repo struct {
	store  store
	prefix string
}

// New creates a Redis-backed retailer repository. keyPrefix namespaces
// every key and the index name.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// EnsureIndex creates the retailer index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def, err := r.buildIndex()
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}

// IndexReady reports an error when the retailer index is missing.
func (r *Repo) IndexReady(ctx context.Context) error {
	ok, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("probe index: %w", err)
	}
	if !ok {
		return fmt.Errorf("index %s: %w", r.indexName(), domain.ErrNotFound)
	}
	return nil
}

// Create stores a retailer: SET NX on the name key, then HSET the record.
// On HSET failure, releases the name via DEL.
func (r *Repo) Create(ctx context.Context, ret domret.Retailer) error {
	nameKey := r.nameKey(ret.Name())
	ok, err := r.store.SetNX(ctx, nameKey, []byte(ret.ID()))
	if err != nil {
		return fmt.Errorf("reserve name: %w", err)
	}
	if !ok {
		return domain.ErrAlreadyExists
	}

	if err := r.store.HSet(ctx, r.recordKey(ret.ID()), buildHashFields(&ret)); err != nil {
		if delErr := r.store.Del(ctx, nameKey); delErr != nil {
			return fmt.Errorf("hset %s: %w (rollback failed: %w)", ret.ID(), err, delErr)
		}
		return fmt.Errorf("hset %s: %w", ret.ID(), err)
	}
	return nil
}

// Get returns a retailer by ID.
func (r *Repo) Get(ctx context.Context, id string) (domret.Retailer, error) {
	key := r.recordKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domret.Retailer{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domret.Retailer{}, domain.ErrNotFound
	}
	ret, err := parseHashFields(m)
	if err != nil {
		return domret.Retailer{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return ret, nil
}

// CountExact counts retailers matching the name/category predicate.
func (r *Repo) CountExact(ctx context.Context, p filter.Predicate) (int, error) {
	n, err := r.store.SearchCount(ctx, &db.CountQuery{
		IndexName: r.indexName(),
		Filters:   matches(p),
	})
	if err != nil {
		return 0, fmt.Errorf("count exact: %w", err)
	}
	return n, nil
}

// PageExact returns one page of matching retailers, newest first.
func (r *Repo) PageExact(ctx context.Context, p filter.Predicate, offset, limit int) ([]domret.Retailer, error) {
	rows, err := r.store.Aggregate(ctx, &db.AggregateQuery{
		IndexName: r.indexName(),
		Filters:   matches(p),
		Load:      loadFields,
		SortBy: []db.SortKey{
			{Field: fieldCreatedAt, Desc: true},
			{Field: fieldID},
		},
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("page exact: %w", err)
	}

	out := make([]domret.Retailer, 0, len(rows))
	for _, row := range rows {
		ret, err := parseHashFields(row)
		if err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		out = append(out, ret)
	}
	return out, nil
}

// CountByProximity counts matching retailers within radiusMeters of center
// (unbounded when radiusMeters is nil).
func (r *Repo) CountByProximity(
	ctx context.Context, center geo.Point, radiusMeters *float64, p filter.Predicate,
) (int, error) {
	n, err := r.store.AggregateCount(ctx, &db.AggregateQuery{
		IndexName: r.indexName(),
		Filters:   matches(p),
		Distance:  distance(center, radiusMeters),
	})
	if err != nil {
		return 0, fmt.Errorf("count by proximity: %w", err)
	}
	return n, nil
}

// SearchByProximity returns one page of matching retailers ordered by
// distance from center, nearest first.
func (r *Repo) SearchByProximity(
	ctx context.Context, center geo.Point, radiusMeters *float64, p filter.Predicate, offset, limit int,
) ([]result.Item, error) {
	rows, err := r.store.Aggregate(ctx, &db.AggregateQuery{
		IndexName: r.indexName(),
		Filters:   matches(p),
		Load:      loadFields,
		Distance:  distance(center, radiusMeters),
		SortBy: []db.SortKey{
			{Field: fieldDistance},
			{Field: fieldID},
		},
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search by proximity: %w", err)
	}

	out := make([]result.Item, 0, len(rows))
	for _, row := range rows {
		ret, err := parseHashFields(row)
		if err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		meters, err := strconv.ParseFloat(row[fieldDistance], 64)
		if err != nil {
			return nil, fmt.Errorf("parse distance for %s: %w", ret.ID(), err)
		}
		out = append(out, result.NewProximityItem(ret, meters))
	}
	return out, nil
}

// matches translates a predicate into tag pre-filters.
func matches(p filter.Predicate) []db.Match {
	var out []db.Match
	if p.Search != "" {
		out = append(out, db.Match{Field: fieldNameLC, Contains: strings.ToLower(p.Search)})
	}
	if len(p.Categories) > 0 {
		vals := make([]string, len(p.Categories))
		for i, c := range p.Categories {
			vals[i] = string(c)
		}
		out = append(out, db.Match{Field: fieldCategory, AnyOf: vals})
	}
	return out
}

func distance(center geo.Point, radiusMeters *float64) *db.GeoDistance {
	return &db.GeoDistance{
		Field:     fieldLocation,
		Lng:       center.Lng(),
		Lat:       center.Lat(),
		As:        fieldDistance,
		MaxMeters: radiusMeters,
	}
}
