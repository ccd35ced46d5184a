package result

import (
	"testing"
	"time"

	"github.com/kailas-cloud/retailerdir/internal/domain/geo"
	"github.com/kailas-cloud/retailerdir/internal/domain/retailer"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name               string
		page, limit, total int
		wantPages          int
	}{
		{"empty", 1, 20, 0, 0},
		{"single partial", 1, 20, 3, 1},
		{"exact multiple", 1, 10, 30, 3},
		{"remainder", 2, 10, 31, 4},
		{"limit one", 1, 1, 5, 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPagination(tc.page, tc.limit, tc.total)
			if p.Pages != tc.wantPages {
				t.Errorf("Pages = %d, want %d", p.Pages, tc.wantPages)
			}
			if p.Page != tc.page || p.Limit != tc.limit || p.Total != tc.total {
				t.Errorf("unexpected pagination %+v", p)
			}
		})
	}
}

func TestNewEnvelope_ZeroTotalHasNoItems(t *testing.T) {
	r := retailer.Reconstruct("a", "A", retailer.Grocery, "+15551234567", "x",
		geo.Reconstruct(0, 0), time.Now(), time.Now())
	e := NewEnvelope([]Item{NewItem(r)}, NewPagination(1, 20, 0))
	if len(e.Items()) != 0 {
		t.Errorf("expected no items, got %d", len(e.Items()))
	}
	if e.Items() == nil {
		t.Error("items must be non-nil for JSON encoding")
	}
}

func TestItem_Distance(t *testing.T) {
	r := retailer.Reconstruct("a", "A", retailer.Grocery, "+15551234567", "x",
		geo.Reconstruct(0, 0), time.Now(), time.Now())

	exact := NewItem(r)
	if _, ok := exact.DistanceKm(); ok {
		t.Error("exact item must not carry distance")
	}

	prox := NewProximityItem(r, 2500)
	km, ok := prox.DistanceKm()
	if !ok || km != 2.5 {
		t.Errorf("DistanceKm() = %v (ok=%v), want 2.5", km, ok)
	}
	if prox.Retailer().ID() != "a" {
		t.Errorf("Retailer().ID() = %q", prox.Retailer().ID())
	}
}
