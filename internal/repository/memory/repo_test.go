package memory

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/kailas-cloud/retailerdir/internal/domain"
	"github.com/kailas-cloud/retailerdir/internal/domain/geo"
	domret "github.com/kailas-cloud/retailerdir/internal/domain/retailer"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/filter"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// kmEast returns a point km kilometers east of (0,0) along the equator.
func kmEast(km float64) geo.Point {
	return geo.Reconstruct(km*1000/geo.EarthRadiusMeters*180/math.Pi, 0)
}

func seed(t *testing.T, r *Repo, id, name string, cat domret.Category, pos geo.Point, age time.Duration) {
	t.Helper()
	ret := domret.Reconstruct(id, name, cat, "+15551234567", "addr", pos, base.Add(-age), base.Add(-age))
	if err := r.Create(context.Background(), ret); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func newSeeded(t *testing.T) *Repo {
	t.Helper()
	r := New()
	seed(t, r, "a", "Green Grocer", domret.Grocery, kmEast(2), 3*time.Hour)
	seed(t, r, "b", "Green Pharmacy", domret.Medicine, kmEast(8), 2*time.Hour)
	seed(t, r, "c", "Far Mart", domret.Grocery, kmEast(50), time.Hour)
	return r
}

func TestCreate_DuplicateName(t *testing.T) {
	r := newSeeded(t)
	dup := domret.Reconstruct("z", "Green Grocer", domret.Other, "+1555", "x", geo.Reconstruct(0, 0), base, base)
	if err := r.Create(context.Background(), dup); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGet(t *testing.T) {
	r := newSeeded(t)
	got, err := r.Get(context.Background(), "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name() != "Green Pharmacy" {
		t.Errorf("name = %q", got.Name())
	}
	if _, err := r.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPageExact_NewestFirst(t *testing.T) {
	r := newSeeded(t)
	page, err := r.PageExact(context.Background(), filter.Predicate{}, 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := make([]string, len(page))
	for i := range page {
		got[i] = page[i].ID()
	}
	if len(got) != 3 || got[0] != "c" || got[1] != "b" || got[2] != "a" {
		t.Errorf("order = %v, want [c b a]", got)
	}
}

func TestPageExact_TieBreakByID(t *testing.T) {
	r := New()
	seed(t, r, "y", "Y", domret.Other, geo.Reconstruct(0, 0), 0)
	seed(t, r, "x", "X", domret.Other, geo.Reconstruct(0, 0), 0)
	page, _ := r.PageExact(context.Background(), filter.Predicate{}, 0, 10)
	if page[0].ID() != "x" || page[1].ID() != "y" {
		t.Errorf("tie order = [%s %s], want [x y]", page[0].ID(), page[1].ID())
	}
}

func TestCountAndPageExact_SearchFragment(t *testing.T) {
	r := newSeeded(t)
	p := filter.Predicate{Search: "green"}
	n, err := r.CountExact(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
	page, _ := r.PageExact(context.Background(), p, 0, 10)
	if len(page) != 2 || page[0].ID() != "b" || page[1].ID() != "a" {
		t.Errorf("unexpected page")
	}
}

func TestPageExact_Window(t *testing.T) {
	r := newSeeded(t)
	page, _ := r.PageExact(context.Background(), filter.Predicate{}, 2, 10)
	if len(page) != 1 || page[0].ID() != "a" {
		t.Errorf("page 2 = %d items", len(page))
	}
	page, _ = r.PageExact(context.Background(), filter.Predicate{}, 100, 10)
	if len(page) != 0 {
		t.Errorf("past the end = %d items, want 0", len(page))
	}
}

func TestProximity_RadiusAndCategory(t *testing.T) {
	r := newSeeded(t)
	center := geo.Reconstruct(0, 0)
	radius := 10_000.0
	p := filter.Predicate{Categories: []domret.Category{domret.Grocery}}

	n, err := r.CountByProximity(context.Background(), center, &radius, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
	items, _ := r.SearchByProximity(context.Background(), center, &radius, p, 0, 10)
	if len(items) != 1 || items[0].Retailer().ID() != "a" {
		t.Fatalf("unexpected items")
	}
	km, _ := items[0].DistanceKm()
	if km < 1.999 || km > 2.001 {
		t.Errorf("distanceKm = %v, want ~2", km)
	}
}

func TestProximity_NoRadiusOrdersAll(t *testing.T) {
	r := newSeeded(t)
	items, _ := r.SearchByProximity(context.Background(), geo.Reconstruct(0, 0), nil, filter.Predicate{}, 0, 10)
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	want := []string{"a", "b", "c"}
	for i := range items {
		if items[i].Retailer().ID() != want[i] {
			t.Errorf("items[%d] = %s, want %s", i, items[i].Retailer().ID(), want[i])
		}
	}
}

func TestProximity_BoundaryInclusive(t *testing.T) {
	r := New()
	pos := kmEast(5)
	seed(t, r, "edge", "Edge", domret.Other, pos, 0)
	center := geo.Reconstruct(0, 0)
	radius := center.DistanceTo(pos)

	n, _ := r.CountByProximity(context.Background(), center, &radius, filter.Predicate{})
	if n != 1 {
		t.Errorf("record exactly on the boundary must be included, count = %d", n)
	}
}

func TestProximity_NaNRadiusMatchesNothing(t *testing.T) {
	r := newSeeded(t)
	radius := math.NaN()

	n, err := r.CountByProximity(context.Background(), geo.Reconstruct(0, 0), &radius, filter.Predicate{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0 for a NaN radius", n)
	}
	items, _ := r.SearchByProximity(context.Background(), geo.Reconstruct(0, 0), &radius, filter.Predicate{}, 0, 10)
	if len(items) != 0 {
		t.Errorf("items = %d, want 0 for a NaN radius", len(items))
	}
}

func TestCanceledContext(t *testing.T) {
	r := newSeeded(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.CountExact(ctx, filter.Predicate{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
