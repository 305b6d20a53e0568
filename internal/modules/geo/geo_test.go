package geo

import (
	"math"
	"testing"

	"ridebooking/internal/types"
)

func TestHaversineKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		a, b      types.Point
		wantKm    float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         types.Point{Lat: 12.9716, Lng: 77.5946},
			b:         types.Point{Lat: 12.9716, Lng: 77.5946},
			wantKm:    0,
			tolerance: 0.001,
		},
		{
			name:      "Bangalore pickup to nearby driver (~1.5km)",
			a:         types.Point{Lat: 12.97, Lng: 77.59},
			b:         types.Point{Lat: 12.98, Lng: 77.60},
			wantKm:    1.5,
			tolerance: 0.3,
		},
		{
			name:      "New York to Los Angeles (~3944km)",
			a:         types.Point{Lat: 40.7128, Lng: -74.0060},
			b:         types.Point{Lat: 34.0522, Lng: -118.2437},
			wantKm:    3944,
			tolerance: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineKm(tt.a, tt.b)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("HaversineKm() = %f, want %f (±%f)", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestHaversineKm_Symmetry(t *testing.T) {
	a := types.Point{Lat: 25.0, Lng: 121.0}
	b := types.Point{Lat: 26.0, Lng: 122.0}
	d1 := HaversineKm(a, b)
	d2 := HaversineKm(b, a)
	if math.Abs(d1-d2) > 0.0001 {
		t.Errorf("haversine is not symmetric: %f vs %f", d1, d2)
	}
}

func TestHaversineKm_TriangleInequality(t *testing.T) {
	a := types.Point{Lat: 12.97, Lng: 77.59}
	b := types.Point{Lat: 13.05, Lng: 77.62}
	c := types.Point{Lat: 12.90, Lng: 77.70}
	if HaversineKm(a, c) > HaversineKm(a, b)+HaversineKm(b, c)+1e-9 {
		t.Errorf("triangle inequality violated")
	}
}

func TestSortByDistance(t *testing.T) {
	type cand struct {
		id   string
		dist float64
	}
	items := []cand{{"c", 5.0}, {"a", 1.0}, {"b", 3.0}}

	SortByDistance(items, func(c cand) float64 { return c.dist })

	if items[0].id != "a" || items[1].id != "b" || items[2].id != "c" {
		t.Errorf("unexpected sort order: %v", items)
	}
}

func TestSortByDistance_Empty(t *testing.T) {
	var items []types.Point
	SortByDistance(items, func(p types.Point) float64 { return p.Lat })
}
