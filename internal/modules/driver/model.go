// README: Driver aggregate and availability status definitions.
package driver

import (
	"ridebooking/internal/types"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusOnRide    Status = "on_ride"
	StatusOffline   Status = "offline"
)

// Driver holds the profile and the authoritative availability/location state.
// Status is written only through the registry; a driver is on_ride exactly
// while it is the assigned driver of one active ride.
type Driver struct {
	types.Audit
	Username      string       `json:"username"`
	FullName      string       `json:"full_name"`
	PhoneNumber   string       `json:"phone_number,omitempty"`
	VehicleNumber string       `json:"vehicle_number,omitempty"`
	VehicleModel  string       `json:"vehicle_model,omitempty"`
	LicenceNumber string       `json:"licence_number"`
	FCMToken      string       `json:"-"`
	Status        Status       `json:"status"`
	Location      *types.Point `json:"location,omitempty"` // nil until the first fix; unmatched without one
}
