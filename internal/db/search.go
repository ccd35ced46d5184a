package db

// Match is a pre-filter condition on a TAG field. AnyOf values are OR-ed;
// Contains requires the field to be indexed WITHSUFFIXTRIE.
type Match struct {
	Field    string
	AnyOf    []string
	Contains string
}

// CountQuery is the input for counting documents matching the pre-filters.
type CountQuery struct {
	IndexName string
	Filters   []Match
}

// GeoDistance computes the great-circle distance (meters) from a fixed point
// to a GEO field and exposes it under As. MaxMeters, when set, drops rows
// strictly farther than the bound.
type GeoDistance struct {
	Field     string
	Lng       float64
	Lat       float64
	As        string
	MaxMeters *float64
}

// SortKey is one ordering key of an aggregation.
type SortKey struct {
	Field string
	Desc  bool
}

// AggregateQuery is the input for an FT.AGGREGATE pipeline:
// pre-filter -> load -> optional distance apply/filter -> sort -> window.
type AggregateQuery struct {
	IndexName string
	Filters   []Match
	Load      []string
	Distance  *GeoDistance
	SortBy    []SortKey
	Offset    int
	Limit     int
}

// Row is a single aggregation result row (field -> value).
type Row map[string]string
