// README: Driver store contract; status changes go through compare-and-swap.
package driver

import (
	"context"

	"ridebooking/internal/types"
)

// Store persists drivers. UpdateStatus must be atomic with respect to other
// concurrent calls for the same driver id: it applies the change only when the
// driver is still in the expected source status and reports whether it won.
type Store interface {
	Create(ctx context.Context, d *Driver) error
	Get(ctx context.Context, id types.ID) (*Driver, error)
	GetByUsername(ctx context.Context, username string) (*Driver, error)
	UpdateLocation(ctx context.Context, id types.ID, p types.Point) error
	UpdateStatus(ctx context.Context, id types.ID, from, to Status) (bool, error)
	ListByStatus(ctx context.Context, status Status) ([]*Driver, error)
}
