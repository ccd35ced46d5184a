package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/kailas-cloud/retailerdir/internal/domain"
	"github.com/kailas-cloud/retailerdir/internal/domain/geo"
	domret "github.com/kailas-cloud/retailerdir/internal/domain/retailer"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/filter"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/result"
)

// Repo is an in-process implementation of usecase/retailer.Repository.
// Distances are haversine on the geo.EarthRadiusMeters sphere.
type Repo struct {
	mu     sync.RWMutex
	byID   map[string]domret.Retailer
	byName map[string]string
}

// New creates an empty in-memory repository.
func New() *Repo {
	return &Repo{
		byID:   make(map[string]domret.Retailer),
		byName: make(map[string]string),
	}
}

// Create stores a retailer; names are unique.
func (r *Repo) Create(_ context.Context, ret domret.Retailer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[ret.Name()]; ok {
		return domain.ErrAlreadyExists
	}
	if _, ok := r.byID[ret.ID()]; ok {
		return domain.ErrAlreadyExists
	}
	r.byID[ret.ID()] = ret
	r.byName[ret.Name()] = ret.ID()
	return nil
}

// Get returns a retailer by ID.
func (r *Repo) Get(ctx context.Context, id string) (domret.Retailer, error) {
	if err := ctx.Err(); err != nil {
		return domret.Retailer{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	ret, ok := r.byID[id]
	if !ok {
		return domret.Retailer{}, domain.ErrNotFound
	}
	return ret, nil
}

// CountExact counts retailers matching p.
func (r *Repo) CountExact(ctx context.Context, p filter.Predicate) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(r.matching(p)), nil
}

// PageExact returns one page of matching retailers ordered by createdAt desc, id asc.
func (r *Repo) PageExact(ctx context.Context, p filter.Predicate, offset, limit int) ([]domret.Retailer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all := r.matching(p)
	sort.Slice(all, func(i, j int) bool {
		a, b := &all[i], &all[j]
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().After(b.CreatedAt())
		}
		return a.ID() < b.ID()
	})
	return window(all, offset, limit), nil
}

// CountByProximity counts matching retailers within radiusMeters of center.
func (r *Repo) CountByProximity(
	ctx context.Context, center geo.Point, radiusMeters *float64, p filter.Predicate,
) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(r.near(center, radiusMeters, p)), nil
}

// SearchByProximity returns one page of matching retailers ordered by distance asc, id asc.
func (r *Repo) SearchByProximity(
	ctx context.Context, center geo.Point, radiusMeters *float64, p filter.Predicate, offset, limit int,
) ([]result.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return window(r.near(center, radiusMeters, p), offset, limit), nil
}

func (r *Repo) matching(p filter.Predicate) []domret.Retailer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domret.Retailer, 0, len(r.byID))
	for _, ret := range r.byID {
		if p.Matches(ret.Name(), ret.Category()) {
			out = append(out, ret)
		}
	}
	return out
}

func (r *Repo) near(center geo.Point, radiusMeters *float64, p filter.Predicate) []result.Item {
	matched := r.matching(p)
	items := make([]result.Item, 0, len(matched))
	dist := make(map[string]float64, len(matched))
	for _, ret := range matched {
		d := center.DistanceTo(ret.Position())
		if radiusMeters != nil && !(d <= *radiusMeters) {
			continue
		}
		dist[ret.ID()] = d
		items = append(items, result.NewProximityItem(ret, d))
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i].Retailer().ID(), items[j].Retailer().ID()
		if dist[a] != dist[b] {
			return dist[a] < dist[b]
		}
		return a < b
	})
	return items
}

func window[T any](all []T, offset, limit int) []T {
	if offset >= len(all) || offset < 0 {
		return []T{}
	}
	end := len(all)
	if limit < end-offset {
		end = offset + limit
	}
	return all[offset:end]
}

// Ping reports the context state; the in-memory store is always reachable.
func (r *Repo) Ping(ctx context.Context) error { return ctx.Err() }
