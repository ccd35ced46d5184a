package retailer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/retailerdir/internal/domain/search/filter"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/result"
)

// Strategy names the retrieval path chosen for a search.
type Strategy string

const (
	// StrategyExact filters by name/category and orders by creation time.
	StrategyExact Strategy = "exact"
	// StrategyProximity orders by distance from a center point.
	StrategyProximity Strategy = "proximity"
)

// retrieval returns one page of matches plus the total over the whole filtered set.
type retrieval func(ctx context.Context, repo Repository, spec *filter.Spec) ([]result.Item, int, error)

// selectStrategy picks the retrieval path from the presence of a center point.
func selectStrategy(spec *filter.Spec) (Strategy, retrieval) {
	if _, ok := spec.Center(); ok {
		return StrategyProximity, searchProximity
	}
	return StrategyExact, searchExact
}

// searchExact issues count and page concurrently over the same predicate.
// A write landing between the two calls can make them disagree.
func searchExact(ctx context.Context, repo Repository, spec *filter.Spec) ([]result.Item, int, error) {
	pred := spec.Predicate()

	var total int
	var items []result.Item

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := repo.CountExact(gctx, pred)
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		rets, err := repo.PageExact(gctx, pred, spec.Offset(), spec.Limit())
		if err != nil {
			return fmt.Errorf("page: %w", err)
		}
		items = make([]result.Item, 0, len(rets))
		for _, r := range rets {
			items = append(items, result.NewItem(r))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func searchProximity(ctx context.Context, repo Repository, spec *filter.Spec) ([]result.Item, int, error) {
	center, _ := spec.Center()
	var radius *float64
	if m, ok := spec.RadiusMeters(); ok {
		radius = &m
	}
	pred := spec.Predicate()

	var total int
	var items []result.Item

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := repo.CountByProximity(gctx, center, radius, pred)
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		page, err := repo.SearchByProximity(gctx, center, radius, pred, spec.Offset(), spec.Limit())
		if err != nil {
			return fmt.Errorf("page: %w", err)
		}
		items = page
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
