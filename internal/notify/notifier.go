// README: Driver notification sinks; delivery is fire-and-forget.
package notify

import (
	"context"

	"ridebooking/internal/types"
)

// Notifier delivers a short message to one driver. Implementations must not
// block ride processing: callers treat every error as non-fatal.
type Notifier interface {
	Notify(ctx context.Context, driverID types.ID, token, title, body string) error
}

// Multi tries each sink in order and stops at the first success. A driver with
// a live websocket session gets the message there; everyone else falls back to
// push.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, driverID types.ID, token, title, body string) error {
	var lastErr error
	for _, n := range m {
		if err := n.Notify(ctx, driverID, token, title, body); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return lastErr
}
