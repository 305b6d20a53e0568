// README: Dispatch coordinator; matches ride requests to nearby drivers and
// fans out notifications on state transitions.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ridebooking/internal/modules/account"
	"ridebooking/internal/modules/driver"
	"ridebooking/internal/modules/ride"
	"ridebooking/internal/notify"
	"ridebooking/internal/observability"
	"ridebooking/internal/types"
)

var ErrNoDriversAvailable = errors.New("no drivers available now")

// DefaultRadiusKm bounds the candidate search around the pickup point.
const DefaultRadiusKm = 5.0

// notifyTimeout bounds one whole fan-out round; delivery is best-effort.
const notifyTimeout = 5 * time.Second

// Lifecycle is the slice of the ride service the coordinator drives.
type Lifecycle interface {
	Create(ctx context.Context, cmd ride.CreateCommand) (*ride.Ride, error)
	Accept(ctx context.Context, cmd ride.AcceptCommand) (*ride.Ride, error)
}

// Candidates answers radius queries around a pickup point.
type Candidates interface {
	FindAvailableWithinRadius(ctx context.Context, center types.Point, radiusKm float64) ([]*driver.Driver, error)
}

// Accounts resolves rider references.
type Accounts interface {
	Get(ctx context.Context, id types.ID) (*account.User, error)
}

type Service struct {
	rides    Lifecycle
	drivers  Candidates
	users    Accounts
	notifier notify.Notifier
	radiusKm float64
	log      *slog.Logger
}

func NewService(rides Lifecycle, drivers Candidates, users Accounts, notifier notify.Notifier, radiusKm float64, log *slog.Logger) *Service {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	return &Service{rides: rides, drivers: drivers, users: users, notifier: notifier, radiusKm: radiusKm, log: log}
}

type RequestCommand struct {
	RiderID         types.ID
	PickupLocation  string
	DropoffLocation string
	PickupCoord     types.Point
	RideType        string
}

// RequestRide opens a ride and notifies every available driver near the
// pickup point. A request with zero candidates is rejected outright and no
// ride row is created; queueing it for later drivers is a product decision
// this engine does not make.
func (s *Service) RequestRide(ctx context.Context, cmd RequestCommand) (*ride.Ride, error) {
	if _, err := s.users.Get(ctx, cmd.RiderID); err != nil {
		return nil, err
	}

	candidates, err := s.drivers.FindAvailableWithinRadius(ctx, cmd.PickupCoord, s.radiusKm)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		observability.NoDriversTotal.Inc()
		return nil, ErrNoDriversAvailable
	}

	r, err := s.rides.Create(ctx, ride.CreateCommand{
		RiderID:         cmd.RiderID,
		PickupLocation:  cmd.PickupLocation,
		DropoffLocation: cmd.DropoffLocation,
		PickupCoord:     cmd.PickupCoord,
		RideType:        cmd.RideType,
	})
	if err != nil {
		return nil, err
	}
	observability.RidesRequestedTotal.Inc()

	body := fmt.Sprintf("Pickup: %s, Drop: %s", r.PickupLocation, r.DropoffLocation)
	go s.fanOut(candidates, nil, "New Ride Request", body)

	return r, nil
}

// AcceptRide runs the exclusive acceptance through the lifecycle, then tells
// the losing candidates the ride is gone. The fan-out happens strictly after
// the transition commits and never blocks or fails the acceptance.
func (s *Service) AcceptRide(ctx context.Context, rideID, driverID types.ID) (*ride.Ride, error) {
	r, err := s.rides.Accept(ctx, ride.AcceptCommand{RideID: rideID, DriverID: driverID})
	if err != nil {
		if errors.Is(err, ride.ErrInvalidState) || errors.Is(err, driver.ErrInvalidState) {
			observability.AcceptConflictsTotal.Inc()
		}
		return nil, err
	}

	go s.notifyRideTaken(r, driverID)

	return r, nil
}

func (s *Service) notifyRideTaken(r *ride.Ride, winner types.ID) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	// the winner is on_ride by now, so this scan naturally excludes it; the
	// explicit skip below guards against a stale geo index answer.
	candidates, err := s.drivers.FindAvailableWithinRadius(ctx, r.PickupCoord, s.radiusKm)
	if err != nil {
		s.log.Warn("ride-taken fan-out query failed", "ride_id", r.ID, "err", err)
		return
	}
	body := fmt.Sprintf("Ride %s has already been accepted", r.ID)
	s.fanOutCtx(ctx, candidates, &winner, "Ride Unavailable", body)
}

func (s *Service) fanOut(candidates []*driver.Driver, skip *types.ID, title, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	s.fanOutCtx(ctx, candidates, skip, title, body)
}

func (s *Service) fanOutCtx(ctx context.Context, candidates []*driver.Driver, skip *types.ID, title, body string) {
	for _, d := range candidates {
		if skip != nil && d.ID == *skip {
			continue
		}
		if err := s.notifier.Notify(ctx, d.ID, d.FCMToken, title, body); err != nil {
			observability.NotificationsFailed.Inc()
			s.log.Warn("driver notification failed", "driver_id", d.ID, "title", title, "err", err)
			continue
		}
		observability.NotificationsSent.Inc()
	}
}
