package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean radius of the sphere used for great-circle distance.
const EarthRadiusMeters = 6_371_000.0

// Point is a geographic position. Storage order is longitude, then latitude.
type Point struct {
	lng float64
	lat float64
}

// NewPoint validates and creates a Point.
func NewPoint(lng, lat float64) (Point, error) {
	if !ValidateCoordinates(lat, lng) {
		return Point{}, fmt.Errorf("coordinates out of range: lng=%g lat=%g", lng, lat)
	}
	return Point{lng: lng, lat: lat}, nil
}

// Reconstruct creates a Point without validation (storage hydration).
func Reconstruct(lng, lat float64) Point {
	return Point{lng: lng, lat: lat}
}

// Lng returns the longitude in degrees.
func (p Point) Lng() float64 { return p.lng }

// Lat returns the latitude in degrees.
func (p Point) Lat() float64 { return p.lat }

// Coordinates returns the [lng, lat] pair.
func (p Point) Coordinates() [2]float64 { return [2]float64{p.lng, p.lat} }

// DistanceTo returns the great-circle distance to q in meters.
func (p Point) DistanceTo(q Point) float64 {
	return Haversine(p.lat, p.lng, q.lat, q.lng)
}

// Haversine returns the great-circle distance in meters between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
