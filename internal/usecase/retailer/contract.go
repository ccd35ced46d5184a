package retailer

import (
	"context"

	"github.com/kailas-cloud/retailerdir/internal/domain/geo"
	domret "github.com/kailas-cloud/retailerdir/internal/domain/retailer"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/filter"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/result"
)

// Repository defines the storage contract for retailers.
// A nil radiusMeters means the proximity search is unbounded.
type Repository interface {
	Create(ctx context.Context, ret domret.Retailer) error
	Get(ctx context.Context, id string) (domret.Retailer, error)
	CountExact(ctx context.Context, p filter.Predicate) (int, error)
	PageExact(ctx context.Context, p filter.Predicate, offset, limit int) ([]domret.Retailer, error)
	CountByProximity(ctx context.Context, center geo.Point, radiusMeters *float64, p filter.Predicate) (int, error)
	SearchByProximity(
		ctx context.Context, center geo.Point, radiusMeters *float64, p filter.Predicate, offset, limit int,
	) ([]result.Item, error)
}
