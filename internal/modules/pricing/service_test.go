package pricing

import (
	"context"
	"math"
	"testing"

	"ridebooking/internal/types"
)

func TestService_Fare(t *testing.T) {
	s := NewService(nil) // default rate

	tests := []struct {
		name        string
		distanceKm  float64
		durationMin float64
		want        float64
	}{
		{"10km 20min", 10, 20, 170.0}, // 30 + 10*10 + 2*20
		{"8km 25min", 8, 25, 160.0},   // 30 + 80 + 50
		{"zero trip", 0, 0, 30.0},
		{"rounding", 1.234, 0, 42.34}, // 30 + 12.34
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Fare(context.Background(), "", tt.distanceKm, tt.durationMin)
			if got != tt.want {
				t.Errorf("Fare() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestService_Estimate(t *testing.T) {
	s := NewService(nil)

	pickup := types.Point{Lat: 12.97, Lng: 77.59}
	drop := types.Point{Lat: 12.98, Lng: 77.60}

	q := s.Estimate(context.Background(), "", pickup, drop)

	if q.DistanceKm <= 0 || q.DistanceKm > 3 {
		t.Fatalf("estimated distance out of range: %v", q.DistanceKm)
	}
	// Projection at 40km/h: duration minutes = distance / 40 * 60.
	wantDur := Round2(q.DistanceKm / 40 * 60)
	if math.Abs(q.DurationMin-wantDur) > 0.05 {
		t.Errorf("DurationMin = %v, want ~%v", q.DurationMin, wantDur)
	}
	if q.Fare < 30 {
		t.Errorf("estimate below base fare: %v", q.Fare)
	}
	if q.Currency != DefaultRate.Currency {
		t.Errorf("Currency = %q, want %q", q.Currency, DefaultRate.Currency)
	}
}

func TestService_Estimate_SamePoint(t *testing.T) {
	s := NewService(nil)
	p := types.Point{Lat: 12.97, Lng: 77.59}
	q := s.Estimate(context.Background(), "", p, p)
	if q.Fare != 30.0 {
		t.Errorf("zero-distance estimate = %v, want base fare 30", q.Fare)
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(169.996); got != 170.0 {
		t.Errorf("Round2(169.996) = %v", got)
	}
	if got := Round2(12.344); got != 12.34 {
		t.Errorf("Round2(12.344) = %v", got)
	}
}
