package postgis

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/retailerdir/internal/domain/geo"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/filter"
)

const selectColumns = `id, name, category, phone, address,
	ST_X(location::geometry), ST_Y(location::geometry), created_at, updated_at`

// args accumulates positional parameters.
type args []any

func (a *args) add(v any) string {
	*a = append(*a, v)
	return "$" + strconv.Itoa(len(*a))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// predicateSQL renders the name/category predicate as WHERE conditions.
func predicateSQL(p filter.Predicate, a *args) []string {
	var conds []string
	if p.Search != "" {
		conds = append(conds, "name ILIKE '%' || "+a.add(likeEscaper.Replace(p.Search))+` || '%' ESCAPE '\'`)
	}
	if len(p.Categories) > 0 {
		cats := make([]string, len(p.Categories))
		for i, c := range p.Categories {
			cats[i] = string(c)
		}
		conds = append(conds, "category = ANY("+a.add(cats)+")")
	}
	return conds
}

func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// centerSQL renders the center point as a geography literal built from parameters.
func centerSQL(center geo.Point, a *args) string {
	return "ST_SetSRID(ST_MakePoint(" + a.add(center.Lng()) + ", " + a.add(center.Lat()) + "), 4326)::geography"
}

// withinSQL is the inclusive radius bound on the sphere.
func withinSQL(center string, radiusMeters float64, a *args) string {
	return "ST_DWithin(location, " + center + ", " + a.add(radiusMeters) + ", false)"
}

func countExactSQL(p filter.Predicate) (string, args) {
	var a args
	return "SELECT count(*) FROM retailers" + where(predicateSQL(p, &a)), a
}

func pageExactSQL(p filter.Predicate, offset, limit int) (string, args) {
	var a args
	q := "SELECT " + selectColumns + " FROM retailers" + where(predicateSQL(p, &a)) +
		" ORDER BY created_at DESC, id ASC LIMIT " + a.add(limit) + " OFFSET " + a.add(offset)
	return q, a
}

// countProximitySQL binds the center only when a radius references it.
func countProximitySQL(center geo.Point, radiusMeters *float64, p filter.Predicate) (string, args) {
	var a args
	conds := predicateSQL(p, &a)
	if radiusMeters != nil {
		conds = append(conds, withinSQL(centerSQL(center, &a), *radiusMeters, &a))
	}
	return "SELECT count(*) FROM retailers" + where(conds), a
}

func searchProximitySQL(
	center geo.Point, radiusMeters *float64, p filter.Predicate, offset, limit int,
) (string, args) {
	var a args
	c := centerSQL(center, &a)
	conds := predicateSQL(p, &a)
	if radiusMeters != nil {
		conds = append(conds, withinSQL(c, *radiusMeters, &a))
	}
	q := "SELECT " + selectColumns + ", ST_Distance(location, " + c + ", false) AS distance" +
		" FROM retailers" + where(conds) +
		" ORDER BY distance ASC, id ASC LIMIT " + a.add(limit) + " OFFSET " + a.add(offset)
	return q, a
}
