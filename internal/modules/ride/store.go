// README: Ride store contract; transitions use optimistic compare-and-swap.
package ride

import (
	"context"

	"ridebooking/internal/types"
)

// StatusPatch carries the fields written together with a status transition.
// Nil fields are left untouched.
type StatusPatch struct {
	DriverID        *types.ID
	DistanceKm      *float64
	DurationMinutes *float64
	Fare            *float64
}

// Store persists rides. UpdateStatus applies the transition only while the
// ride still matches (from, version) and reports whether this caller won;
// the store stamps start/completion times from the target status. ActiveByRider
// and ActiveByDriver return (nil, nil) when the party has no ride in an active
// status. Rides are never deleted; terminal states are kept for history.
type Store interface {
	Create(ctx context.Context, r *Ride) error
	Get(ctx context.Context, id types.ID) (*Ride, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, patch StatusPatch) (bool, error)
	SetRating(ctx context.Context, id types.ID, byDriver bool, rating int, feedback string) error
	SetPayment(ctx context.Context, id types.ID, transactionID string, status PaymentStatus) error
	ActiveByRider(ctx context.Context, riderID types.ID) (*Ride, error)
	ActiveByDriver(ctx context.Context, driverID types.ID) (*Ride, error)
	ListByRider(ctx context.Context, riderID types.ID) ([]*Ride, error)
	ListByDriver(ctx context.Context, driverID types.ID) ([]*Ride, error)
}
