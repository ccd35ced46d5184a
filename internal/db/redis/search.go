package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/retailerdir/internal/db"
)

const countAlias = "__count"

// SearchCount returns document count via FT.SEARCH with LIMIT 0 0.
func (s *Store) SearchCount(ctx context.Context, q *db.CountQuery) (int, error) {
	if q.IndexName == "" {
		return 0, fmt.Errorf("index name is required")
	}

	args := []string{q.IndexName, buildQuery(q.Filters), "LIMIT", "0", "0", "DIALECT", "2"}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Key: q.IndexName, Err: err}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

// Aggregate runs an FT.AGGREGATE pipeline and returns the windowed rows.
func (s *Store) Aggregate(ctx context.Context, q *db.AggregateQuery) ([]db.Row, error) {
	args, err := buildAggregateArgs(q, false)
	if err != nil {
		return nil, err
	}

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Key: q.IndexName, Err: err}
	}

	return parseAggregateRows(raw), nil
}

// AggregateCount runs the filtering stages of q and counts the surviving rows
// (GROUPBY 0 REDUCE COUNT). Sorting and the window are ignored.
func (s *Store) AggregateCount(ctx context.Context, q *db.AggregateQuery) (int, error) {
	args, err := buildAggregateArgs(q, true)
	if err != nil {
		return 0, err
	}

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpAggregate, Key: q.IndexName, Err: err}
	}

	rows := parseAggregateRows(raw)
	if len(rows) == 0 {
		return 0, nil
	}
	v, ok := rows[0][countAlias]
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return n, nil
}

func buildAggregateArgs(q *db.AggregateQuery, count bool) ([]string, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if !count && q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	args := []string{q.IndexName, buildQuery(q.Filters)}

	load := q.Load
	if count {
		load = nil
		if q.Distance != nil {
			load = []string{q.Distance.Field}
		}
	} else if q.Distance != nil && !containsString(load, q.Distance.Field) {
		load = append(append([]string{}, load...), q.Distance.Field)
	}
	if len(load) > 0 {
		args = append(args, "LOAD", strconv.Itoa(len(load)))
		for _, f := range load {
			args = append(args, "@"+f)
		}
	}

	if d := q.Distance; d != nil {
		args = append(args, "APPLY",
			fmt.Sprintf("geodistance(@%s,%s,%s)", d.Field, formatFloat(d.Lng), formatFloat(d.Lat)),
			"AS", d.As)
		if d.MaxMeters != nil {
			args = append(args, "FILTER", fmt.Sprintf("@%s<=%s", d.As, formatFloat(*d.MaxMeters)))
		}
	}

	if count {
		args = append(args, "GROUPBY", "0", "REDUCE", "COUNT", "0", "AS", countAlias)
		return append(args, "DIALECT", "2"), nil
	}

	if len(q.SortBy) > 0 {
		args = append(args, "SORTBY", strconv.Itoa(len(q.SortBy)*2))
		for _, k := range q.SortBy {
			dir := "ASC"
			if k.Desc {
				dir = "DESC"
			}
			args = append(args, "@"+k.Field, dir)
		}
	}

	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)
	return args, nil
}

// --- Result parsing ---

// parseAggregateRows reads [total, row1, row2, ...] where each row is a flat
// field/value array. The leading total is not reliable for aggregations.
func parseAggregateRows(raw []rueidis.RedisMessage) []db.Row {
	if len(raw) <= 1 {
		return []db.Row{}
	}
	rows := make([]db.Row, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		fields, err := raw[i].ToArray()
		if err != nil {
			continue
		}
		rows = append(rows, parseFieldPairs(fields))
	}
	return rows
}

func parseFieldPairs(fields []rueidis.RedisMessage) db.Row {
	m := make(db.Row, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query building ---

// buildQuery translates tag pre-filters into an FT query string ("*" when empty).
func buildQuery(filters []db.Match) string {
	parts := make([]string, 0, len(filters))
	for _, m := range filters {
		if p := buildMatch(m); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

func buildMatch(m db.Match) string {
	var parts []string
	if m.Contains != "" {
		parts = append(parts, fmt.Sprintf("@%s:{*%s*}", m.Field, tagEscaper.Replace(m.Contains)))
	}
	if len(m.AnyOf) > 0 {
		vals := make([]string, len(m.AnyOf))
		for i, v := range m.AnyOf {
			vals[i] = tagEscaper.Replace(v)
		}
		parts = append(parts, fmt.Sprintf("@%s:{%s}", m.Field, strings.Join(vals, " | ")))
	}
	return strings.Join(parts, " ")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"?", "\\?",
	"/", "\\/",
	" ", "\\ ",
)
