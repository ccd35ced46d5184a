package filter

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kailas-cloud/retailerdir/internal/domain"
	"github.com/kailas-cloud/retailerdir/internal/domain/geo"
	"github.com/kailas-cloud/retailerdir/internal/domain/retailer"
)

// Pagination defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// Raw holds optional search inputs as received from the transport layer,
// already type-checked but not yet cross-validated.
type Raw struct {
	Search   *string
	Category *string // comma separated
	Lat      *float64
	Lng      *float64
	RadiusKm *float64
	Page     *int
	Limit    *int
}

// Spec is a validated, normalized retailer search.
type Spec struct {
	search     string
	categories []retailer.Category
	center     *geo.Point
	radiusKm   *float64
	page       int
	limit      int
}

// NewSpec validates raw inputs and builds a Spec.
// Coordinates must be given together; a radius requires a center.
// Non-positive or missing page/limit fall back to 1 and defaultLimit.
func NewSpec(raw Raw, defaultLimit int) (Spec, error) {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}

	if raw.Lat != nil && raw.Lng == nil {
		return Spec{}, domain.NewFieldError(domain.ErrInvalidFilterCombination,
			"lng", "latitude and longitude must be provided together, or neither")
	}
	if raw.Lng != nil && raw.Lat == nil {
		return Spec{}, domain.NewFieldError(domain.ErrInvalidFilterCombination,
			"lat", "latitude and longitude must be provided together, or neither")
	}
	if raw.RadiusKm != nil && raw.Lat == nil {
		return Spec{}, domain.NewFieldError(domain.ErrInvalidFilterCombination,
			"radiusKm", "radius requires latitude and longitude")
	}

	s := Spec{page: DefaultPage, limit: defaultLimit}

	if raw.Search != nil {
		s.search = *raw.Search
	}

	if raw.Category != nil {
		cats, err := parseCategories(*raw.Category)
		if err != nil {
			return Spec{}, err
		}
		s.categories = cats
	}

	if raw.Lat != nil {
		p := geo.Reconstruct(*raw.Lng, *raw.Lat)
		s.center = &p
		if raw.RadiusKm != nil {
			r := *raw.RadiusKm
			s.radiusKm = &r
		}
	}

	if raw.Page != nil && *raw.Page > 0 {
		s.page = *raw.Page
	}
	if raw.Limit != nil && *raw.Limit > 0 {
		s.limit = *raw.Limit
	}

	return s, nil
}

// parseCategories splits a comma-separated list into a sorted set of categories.
func parseCategories(in string) ([]retailer.Category, error) {
	seen := make(map[retailer.Category]struct{})
	for _, tok := range strings.Split(in, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		c, err := retailer.ParseCategory(tok)
		if err != nil {
			return nil, domain.NewFieldError(domain.ErrInvalidCategory, "category",
				fmt.Sprintf("unknown category %q", tok))
		}
		seen[c] = struct{}{}
	}
	if len(seen) == 0 {
		return nil, nil
	}
	out := make([]retailer.Category, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Search returns the case-insensitive name fragment ("" when absent).
func (s *Spec) Search() string { return s.search }

// Categories returns the requested category set (nil when absent).
func (s *Spec) Categories() []retailer.Category { return s.categories }

// Center returns the proximity center, if any.
func (s *Spec) Center() (geo.Point, bool) {
	if s.center == nil {
		return geo.Point{}, false
	}
	return *s.center, true
}

// RadiusMeters returns the radius bound in meters, if any.
func (s *Spec) RadiusMeters() (float64, bool) {
	if s.radiusKm == nil {
		return 0, false
	}
	return *s.radiusKm * 1000, true
}

// Page returns the 1-based page number.
func (s *Spec) Page() int { return s.page }

// Limit returns the page size.
func (s *Spec) Limit() int { return s.limit }

// Offset returns the number of records to skip, saturating on overflow.
// A Spec not built by NewSpec has offset 0.
func (s *Spec) Offset() int {
	if s.page <= 1 || s.limit <= 0 {
		return 0
	}
	if s.page-1 > math.MaxInt/s.limit {
		return math.MaxInt
	}
	return (s.page - 1) * s.limit
}
