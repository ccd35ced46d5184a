package result

import "github.com/kailas-cloud/retailerdir/internal/domain/retailer"

// Item is a single search hit.
type Item struct {
	retailer       retailer.Retailer
	distanceMeters *float64
}

// NewItem creates an exact-strategy hit (no distance).
func NewItem(r retailer.Retailer) Item {
	return Item{retailer: r}
}

// NewProximityItem creates a proximity-strategy hit with its distance in meters.
func NewProximityItem(r retailer.Retailer, distanceMeters float64) Item {
	d := distanceMeters
	return Item{retailer: r, distanceMeters: &d}
}

// Retailer returns the matched retailer.
func (i *Item) Retailer() *retailer.Retailer { return &i.retailer }

// DistanceKm returns the distance from the search center in kilometers,
// present only for proximity hits.
func (i *Item) DistanceKm() (float64, bool) {
	if i.distanceMeters == nil {
		return 0, false
	}
	return *i.distanceMeters / 1000, true
}

// HasDistance reports whether the item came from a proximity search.
func (i *Item) HasDistance() bool { return i.distanceMeters != nil }

// Pagination describes the page window of a search.
type Pagination struct {
	Page  int
	Limit int
	Total int
	Pages int
}

// NewPagination computes pages = ceil(total/limit).
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 && total > 0 {
		pages = total / limit
		if total%limit != 0 {
			pages++
		}
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Envelope is the outcome of one search.
type Envelope struct {
	items      []Item
	pagination Pagination
}

// NewEnvelope creates an Envelope. A zero total always yields no items.
func NewEnvelope(items []Item, p Pagination) Envelope {
	if p.Total == 0 || items == nil {
		items = []Item{}
	}
	return Envelope{items: items, pagination: p}
}

// Items returns the hits in strategy order.
func (e *Envelope) Items() []Item { return e.items }

// Pagination returns the page metadata.
func (e *Envelope) Pagination() Pagination { return e.pagination }
