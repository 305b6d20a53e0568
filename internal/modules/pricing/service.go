// README: Pricing service computes trip fares and pre-booking estimates.
package pricing

import (
	"context"
	"math"

	"ridebooking/internal/modules/geo"
	"ridebooking/internal/types"
)

type Service struct {
	store *Store
}

// NewService builds a pricing service. A nil store means every ride type is
// charged at DefaultRate.
func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Quote is a pre-booking projection, not a charged amount.
type Quote struct {
	DistanceKm  float64
	DurationMin float64
	Fare        float64
	Currency    string
}

// Fare computes the charged amount for a finished trip:
// base + perKm*distance + perMinute*duration, rounded to 2 decimals.
func (s *Service) Fare(ctx context.Context, rideType string, distanceKm, durationMin float64) float64 {
	r := s.rate(ctx, rideType)
	return Round2(r.BaseFare + r.PerKm*distanceKm + r.PerMinute*durationMin)
}

// Estimate projects a quote from the straight-line distance and an assumed
// average speed. The same formula as Fare applies, so the quote and the final
// charge agree when the projected distance/duration hold.
func (s *Service) Estimate(ctx context.Context, rideType string, pickup, drop types.Point) Quote {
	distanceKm := geo.HaversineKm(pickup, drop)
	durationMin := distanceKm / averageSpeedKmPerHr * 60
	r := s.rate(ctx, rideType)
	return Quote{
		DistanceKm:  Round2(distanceKm),
		DurationMin: Round2(durationMin),
		Fare:        Round2(r.BaseFare + r.PerKm*distanceKm + r.PerMinute*durationMin),
		Currency:    r.Currency,
	}
}

func (s *Service) rate(ctx context.Context, rideType string) Rate {
	if rideType == "" {
		rideType = DefaultRideType
	}
	if s.store == nil {
		return DefaultRate
	}
	r, err := s.store.GetRate(ctx, rideType)
	if err != nil {
		return DefaultRate
	}
	return r
}

// Round2 rounds to 2 decimal places for display and charging.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
