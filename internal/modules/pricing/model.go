// README: Pricing rate definition for each ride type.
package pricing

// Rate holds the per-ride-type tariff components, in currency units.
type Rate struct {
	RideType  string
	BaseFare  float64
	PerKm     float64
	PerMinute float64
	Currency  string
}

// DefaultRideType is assumed when a request does not name a ride type.
const DefaultRideType = "standard"

// DefaultRate is the fallback tariff applied when no rate row exists for a
// ride type (or when no store is configured).
var DefaultRate = Rate{
	RideType:  DefaultRideType,
	BaseFare:  30,
	PerKm:     10,
	PerMinute: 2,
	Currency:  "INR",
}

// averageSpeedKmPerHr projects trip duration from distance for pre-booking quotes.
const averageSpeedKmPerHr = 40.0
