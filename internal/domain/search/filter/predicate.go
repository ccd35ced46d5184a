package filter

import (
	"strings"

	"github.com/kailas-cloud/retailerdir/internal/domain/retailer"
)

// Predicate is the non-geographic part of a search: name fragment and category set.
type Predicate struct {
	Search     string
	Categories []retailer.Category
}

// Predicate returns the name/category part of s.
func (s *Spec) Predicate() Predicate {
	return Predicate{Search: s.search, Categories: s.categories}
}

// IsEmpty reports whether the predicate matches every retailer.
func (p Predicate) IsEmpty() bool {
	return p.Search == "" && len(p.Categories) == 0
}

// Matches evaluates the predicate against a retailer's name and category.
func (p Predicate) Matches(name string, category retailer.Category) bool {
	if p.Search != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(p.Search)) {
		return false
	}
	if len(p.Categories) == 0 {
		return true
	}
	for _, c := range p.Categories {
		if c == category {
			return true
		}
	}
	return false
}
