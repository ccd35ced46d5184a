package retailer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/retailerdir/internal/domain/geo"
	domret "github.com/kailas-cloud/retailerdir/internal/domain/retailer"
)

// Hash field names. name_lc mirrors name lowercased for substring matching.
const (
	fieldID        = "id"
	fieldName      = "name"
	fieldNameLC    = "name_lc"
	fieldCategory  = "category"
	fieldPhone     = "phone"
	fieldAddress   = "address"
	fieldLocation  = "location"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
	fieldDistance  = "distance"
)

var loadFields = []string{
	fieldID, fieldName, fieldCategory, fieldPhone, fieldAddress,
	fieldLocation, fieldCreatedAt, fieldUpdatedAt,
}

// buildHashFields converts a domain Retailer into a flat map for HSET.
func buildHashFields(r *domret.Retailer) map[string]string {
	pos := r.Position()
	return map[string]string{
		fieldID:        r.ID(),
		fieldName:      r.Name(),
		fieldNameLC:    strings.ToLower(r.Name()),
		fieldCategory:  string(r.Category()),
		fieldPhone:     r.Phone(),
		fieldAddress:   r.Address(),
		fieldLocation:  formatLocation(pos),
		fieldCreatedAt: strconv.FormatInt(r.CreatedAt().UnixMilli(), 10),
		fieldUpdatedAt: strconv.FormatInt(r.UpdatedAt().UnixMilli(), 10),
	}
}

// parseHashFields converts a hash (or aggregation row) back into a domain Retailer.
func parseHashFields(m map[string]string) (domret.Retailer, error) {
	id := m[fieldID]
	if id == "" {
		return domret.Retailer{}, fmt.Errorf("record without id")
	}
	pos, err := parseLocation(m[fieldLocation])
	if err != nil {
		return domret.Retailer{}, fmt.Errorf("retailer %s: %w", id, err)
	}
	return domret.Reconstruct(
		id,
		m[fieldName],
		domret.Category(m[fieldCategory]),
		m[fieldPhone],
		m[fieldAddress],
		pos,
		parseMillis(m[fieldCreatedAt]),
		parseMillis(m[fieldUpdatedAt]),
	), nil
}

// formatLocation renders a point in the "lon,lat" form expected by GEO fields.
func formatLocation(p geo.Point) string {
	return strconv.FormatFloat(p.Lng(), 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat(), 'f', -1, 64)
}

func parseLocation(s string) (geo.Point, error) {
	lng, lat, ok := strings.Cut(s, ",")
	if !ok {
		return geo.Point{}, fmt.Errorf("malformed location %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("parse longitude: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("parse latitude: %w", err)
	}
	return geo.Reconstruct(x, y), nil
}

func parseMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
