// README: Optional road-route estimates backed by the Google Maps
// Directions API. The fare quote stays haversine-based; this only annotates
// quotes with real driving time when an API key is configured.
package maps

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"

	"ridebooking/internal/types"
)

type RouteService struct {
	client *maps.Client
}

func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// TravelEstimate holds a driving-mode route summary between two points.
type TravelEstimate struct {
	Duration time.Duration
	Distance string
}

// DrivingEstimate returns the route duration and human-readable distance for
// a trip from origin to destination.
func (s *RouteService) DrivingEstimate(ctx context.Context, origin, destination types.Point) (*TravelEstimate, error) {
	req := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", origin.Lat, origin.Lng),
		Destination: fmt.Sprintf("%f,%f", destination.Lat, destination.Lng),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := s.client.Directions(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, fmt.Errorf("no route found")
	}

	leg := routes[0].Legs[0]
	return &TravelEstimate{Duration: leg.Duration, Distance: leg.Distance.HumanReadable}, nil
}
