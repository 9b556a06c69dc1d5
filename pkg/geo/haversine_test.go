package geo

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name             string
		lat1, lon1       float64
		lat2, lon2       float64
		wantMeters       float64
		tolerancePercent float64
	}{
		{
			name: "Singapore CBD to Changi Airport",
			lat1: 1.2830, lon1: 103.8513, // Raffles Place
			lat2: 1.3644, lon2: 103.9915, // Changi Airport
			wantMeters:       18_023, // ~18 km great-circle
			tolerancePercent: 1,
		},
		{
			name: "Same point",
			lat1: 1.3521, lon1: 103.8198,
			lat2: 1.3521, lon2: 103.8198,
			wantMeters:       0,
			tolerancePercent: 0,
		},
		{
			name: "London to Paris",
			lat1: 51.5074, lon1: -0.1278,
			lat2: 48.8566, lon2: 2.3522,
			wantMeters:       343_500, // ~343.5 km
			tolerancePercent: 1,
		},
		{
			name: "Short distance (~100m)",
			lat1: 1.3521, lon1: 103.8198,
			lat2: 1.3530, lon2: 103.8198,
			wantMeters:       100,
			tolerancePercent: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if tt.wantMeters == 0 {
				if got != 0 {
					t.Errorf("expected 0, got %f", got)
				}
				return
			}
			diff := math.Abs(got-tt.wantMeters) / tt.wantMeters * 100
			if diff > tt.tolerancePercent {
				t.Errorf("Haversine = %f m, want ~%f m (diff %.1f%%)", got, tt.wantMeters, diff)
			}
		})
	}
}

// TestNormalizeHeading covers testable property 1 and scenario S1.
func TestNormalizeHeading(t *testing.T) {
	if got := NormalizeHeading(370); got != 10 {
		t.Errorf("NormalizeHeading(370) = %v, want 10", got)
	}
	if got := NormalizeHeading(-10); got != 350 {
		t.Errorf("NormalizeHeading(-10) = %v, want 350", got)
	}
	for _, x := range []float64{0, 45.5, 179.9, 270, 359.999} {
		for k := -3; k <= 3; k++ {
			got := NormalizeHeading(x + 360*float64(k))
			want := NormalizeHeading(x)
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("NormalizeHeading(%v + 360*%d) = %v, want %v", x, k, got, want)
			}
		}
	}
}

// TestAngularDifference covers testable property 2.
func TestAngularDifference(t *testing.T) {
	tests := []struct{ a, b, want float64 }{
		{0, 0, 0},
		{0, 180, 180},
		{10, 350, 20},
		{350, 10, 20},
		{190, 170, 20},
	}
	for _, tt := range tests {
		got := AngularDifference(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AngularDifference(%v,%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		rev := AngularDifference(tt.b, tt.a)
		if got != rev {
			t.Errorf("AngularDifference not symmetric: (%v,%v)=%v (%v,%v)=%v", tt.a, tt.b, got, tt.b, tt.a, rev)
		}
		if got < 0 || got > 180 {
			t.Errorf("AngularDifference(%v,%v) = %v out of [0,180]", tt.a, tt.b, got)
		}
	}
}

func TestBearingDegrees(t *testing.T) {
	// Due north.
	got := BearingDegrees(LatLon{Lat: 0, Lon: 0}, LatLon{Lat: 1, Lon: 0})
	if math.Abs(got-0) > 0.1 {
		t.Errorf("bearing due north = %v, want ~0", got)
	}
	// Due east at the equator.
	got = BearingDegrees(LatLon{Lat: 0, Lon: 0}, LatLon{Lat: 0, Lon: 1})
	if math.Abs(got-90) > 0.1 {
		t.Errorf("bearing due east = %v, want ~90", got)
	}
}

func TestPointAlongHeadingRoundTrips(t *testing.T) {
	origin := LatLon{Lat: 1.3521, Lon: 103.8198}
	for _, h := range []float64{0, 45, 90, 180, 270} {
		p := PointAlongHeading(origin, h, 1000)
		dist := HaversineLL(origin, p)
		if math.Abs(dist-1000) > 5 {
			t.Errorf("heading %v: distance = %v, want ~1000", h, dist)
		}
	}
}

func BenchmarkHaversine(b *testing.B) {
	for b.Loop() {
		Haversine(1.3521, 103.8198, 1.2905, 103.8520)
	}
}
