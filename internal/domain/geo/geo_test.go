package geo

import (
	"math"
	"testing"
)

func almost(a, b, eps float64) bool {
	if a > b {
		return a-b < eps
	}
	return b-a < eps
}

func TestHaversine_SamePoint(t *testing.T) {
	d := Haversine(40.7128, -74.0060, 40.7128, -74.0060)
	if d != 0 {
		t.Fatalf("want 0, got %f", d)
	}
}

func TestHaversine_NewYork_London(t *testing.T) {
	// NYC to London: ~5,570 km
	d := Haversine(40.7128, -74.0060, 51.5074, -0.1278)
	expected := 5_570_000.0
	if !almost(d, expected, 30_000) {
		t.Fatalf("want ~%.0fm, got %.0fm", expected, d)
	}
}

func TestHaversine_Antipodal(t *testing.T) {
	d := Haversine(0, 0, 0, 180)
	expected := math.Pi * EarthRadiusMeters
	if !almost(d, expected, 1) {
		t.Fatalf("want ~%.0fm, got %.0fm", expected, d)
	}
}

func TestHaversine_AlongMeridian(t *testing.T) {
	// One degree of latitude on the sphere is R*pi/180 meters.
	d := Haversine(10, 20, 11, 20)
	expected := EarthRadiusMeters * math.Pi / 180
	if !almost(d, expected, 1e-6) {
		t.Fatalf("want %.6f, got %.6f", expected, d)
	}
}

func TestNewPoint_Valid(t *testing.T) {
	p, err := NewPoint(-74.006, 40.7128)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Lng() != -74.006 || p.Lat() != 40.7128 {
		t.Fatalf("unexpected point: %v", p.Coordinates())
	}
	if c := p.Coordinates(); c[0] != -74.006 || c[1] != 40.7128 {
		t.Fatalf("coordinates must be lng-then-lat, got %v", c)
	}
}

func TestNewPoint_OutOfRange(t *testing.T) {
	cases := []struct{ lng, lat float64 }{
		{181, 0}, {-181, 0}, {0, 91}, {0, -91},
	}
	for _, tc := range cases {
		if _, err := NewPoint(tc.lng, tc.lat); err == nil {
			t.Errorf("NewPoint(%g, %g): expected error", tc.lng, tc.lat)
		}
	}
}

func TestPoint_DistanceTo(t *testing.T) {
	a := Reconstruct(0, 0)
	b := Reconstruct(0, 1)
	if !almost(a.DistanceTo(b), EarthRadiusMeters*math.Pi/180, 1e-6) {
		t.Fatalf("unexpected distance %f", a.DistanceTo(b))
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{90.1, 0, false},
		{0, 180.1, false},
	}
	for _, tc := range tests {
		if got := ValidateCoordinates(tc.lat, tc.lon); got != tc.want {
			t.Errorf("ValidateCoordinates(%g, %g) = %v, want %v", tc.lat, tc.lon, got, tc.want)
		}
	}
}
