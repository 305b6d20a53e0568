// README: Ride aggregate, status machine, and payment status definitions.
package ride

import (
	"time"

	"ridebooking/internal/types"
)

type Status string

const (
	StatusRequested Status = "requested"
	StatusAccepted  Status = "accepted"
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentNone    PaymentStatus = "none"
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

// Ride owns its scalar trip fields and references rider/driver by id.
// DriverID stays nil until acceptance; distance, duration, and fare are set
// only at completion; ratings only after completion.
type Ride struct {
	types.Audit
	RiderID         types.ID      `json:"rider_id"`
	DriverID        *types.ID     `json:"driver_id,omitempty"`
	PickupLocation  string        `json:"pickup_location"`
	DropoffLocation string        `json:"dropoff_location"`
	PickupCoord     types.Point   `json:"pickup_coord"`
	RideType        string        `json:"ride_type"`
	Status          Status        `json:"status"`
	StatusVersion   int           `json:"status_version"`
	StartTime       *time.Time    `json:"start_time,omitempty"`
	CompletionTime  *time.Time    `json:"completion_time,omitempty"`
	DistanceKm      *float64      `json:"distance_km,omitempty"`
	DurationMinutes *float64      `json:"duration_minutes,omitempty"`
	Fare            *float64      `json:"fare,omitempty"`
	UserRating      *int          `json:"user_rating,omitempty"`
	UserFeedback    *string       `json:"user_feedback,omitempty"`
	DriverRating    *int          `json:"driver_rating,omitempty"`
	DriverFeedback  *string       `json:"driver_feedback,omitempty"`
	TransactionID   *string       `json:"transaction_id,omitempty"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
}

// AllowedTransitions represents the ride state flow as code. Completed and
// cancelled are terminal: no entry leaves them.
var AllowedTransitions = map[Status][]Status{
	StatusRequested: {StatusAccepted, StatusCancelled},
	StatusAccepted:  {StatusStarted, StatusCancelled},
	StatusStarted:   {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Active reports whether the ride currently binds a driver to a rider.
func (s Status) Active() bool {
	return s == StatusAccepted || s == StatusStarted
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}
