// README: Ride lifecycle service; validates and applies state transitions.
package ride

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ridebooking/internal/observability"
	"ridebooking/internal/types"
)

var (
	ErrNotFound     = errors.New("ride not found")
	ErrInvalidState = errors.New("invalid ride state")
	ErrActiveRide   = errors.New("rider has an active ride")
	ErrDependency   = errors.New("dependency failure")
	ErrBadRequest   = errors.New("bad request")
)

// DriverGate is the slice of the driver registry the lifecycle needs: atomic
// reservation of an available driver, and release when a trip ends.
type DriverGate interface {
	Reserve(ctx context.Context, id types.ID) error
	Release(ctx context.Context, id types.ID) error
}

// Fares computes the charged amount for a finished trip.
type Fares interface {
	Fare(ctx context.Context, rideType string, distanceKm, durationMin float64) float64
}

// PaymentGateway creates a payment order keyed by ride receipt. It is called
// outside the transition's protected section; its failure never rolls a
// completed ride back.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount float64, receiptID string) (string, error)
}

type Service struct {
	store    Store
	drivers  DriverGate
	fares    Fares
	payments PaymentGateway // optional
	log      *slog.Logger
}

func NewService(store Store, drivers DriverGate, fares Fares, payments PaymentGateway, log *slog.Logger) *Service {
	return &Service{store: store, drivers: drivers, fares: fares, payments: payments, log: log}
}

type CreateCommand struct {
	RiderID         types.ID
	PickupLocation  string
	DropoffLocation string
	PickupCoord     types.Point
	RideType        string
}

type AcceptCommand struct {
	RideID   types.ID
	DriverID types.ID
}

type CompleteCommand struct {
	RideID          types.ID
	DistanceKm      float64
	DurationMinutes float64
}

type RateCommand struct {
	RideID   types.ID
	ByDriver bool
	Rating   int
	Feedback string
}

// Create opens a new ride in requested status with no driver. A rider already
// bound to an active ride cannot open another one.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Ride, error) {
	if cmd.RiderID == "" || cmd.PickupLocation == "" || cmd.DropoffLocation == "" {
		return nil, ErrBadRequest
	}
	active, err := s.store.ActiveByRider(ctx, cmd.RiderID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrActiveRide
	}

	r := &Ride{
		RiderID:         cmd.RiderID,
		PickupLocation:  cmd.PickupLocation,
		DropoffLocation: cmd.DropoffLocation,
		PickupCoord:     cmd.PickupCoord,
		RideType:        cmd.RideType,
		Status:          StatusRequested,
		StatusVersion:   0,
		PaymentStatus:   PaymentNone,
	}
	r.ID = types.NewID()
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Accept assigns a driver to a requested ride. The ride is validated first,
// then the driver is reserved (available -> on_ride), then the ride transition
// is compare-and-swapped; if the ride CAS loses, the reservation is released.
// When two drivers race for the same ride at most one wins; the loser observes
// an invalid-state error and is never left marked on_ride.
func (s *Service) Accept(ctx context.Context, cmd AcceptCommand) (*Ride, error) {
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(r.Status, StatusAccepted) {
		return nil, fmt.Errorf("%w: ride already %s", ErrInvalidState, r.Status)
	}
	// a rider holds at most one active ride even if several requests are open
	if active, err := s.store.ActiveByRider(ctx, r.RiderID); err != nil {
		return nil, err
	} else if active != nil {
		if active.ID == r.ID {
			return nil, fmt.Errorf("%w: ride has already been accepted", ErrInvalidState)
		}
		return nil, ErrActiveRide
	}

	if err := s.drivers.Reserve(ctx, cmd.DriverID); err != nil {
		return nil, err
	}

	driverID := cmd.DriverID
	ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, StatusAccepted, r.StatusVersion, StatusPatch{DriverID: &driverID})
	if err != nil {
		_ = s.drivers.Release(ctx, cmd.DriverID)
		return nil, err
	}
	if !ok {
		_ = s.drivers.Release(ctx, cmd.DriverID)
		return nil, fmt.Errorf("%w: ride has already been accepted", ErrInvalidState)
	}
	return s.store.Get(ctx, r.ID)
}

// Start marks an accepted ride as underway and stamps the start time.
func (s *Service) Start(ctx context.Context, id types.ID) (*Ride, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusAccepted {
		return nil, fmt.Errorf("%w: ride is %s, not accepted", ErrInvalidState, r.Status)
	}
	ok, err := s.store.UpdateStatus(ctx, r.ID, StatusAccepted, StatusStarted, r.StatusVersion, StatusPatch{})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: ride is no longer accepted", ErrInvalidState)
	}
	return s.store.Get(ctx, r.ID)
}

// Complete finishes a started ride: distance/duration/fare are written with
// the transition, the driver is released, and a payment order is created
// afterwards. A payment gateway failure surfaces as ErrDependency but the
// ride stays completed; reconciliation is out-of-band.
func (s *Service) Complete(ctx context.Context, cmd CompleteCommand) (*Ride, error) {
	if cmd.DistanceKm < 0 || cmd.DurationMinutes < 0 {
		return nil, ErrBadRequest
	}
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusStarted {
		return nil, fmt.Errorf("%w: ride is %s, not started", ErrInvalidState, r.Status)
	}

	fare := s.fares.Fare(ctx, r.RideType, cmd.DistanceKm, cmd.DurationMinutes)
	ok, err := s.store.UpdateStatus(ctx, r.ID, StatusStarted, StatusCompleted, r.StatusVersion, StatusPatch{
		DistanceKm:      &cmd.DistanceKm,
		DurationMinutes: &cmd.DurationMinutes,
		Fare:            &fare,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: ride is no longer started", ErrInvalidState)
	}
	observability.RidesCompletedTotal.Inc()

	if r.DriverID != nil {
		if err := s.drivers.Release(ctx, *r.DriverID); err != nil {
			s.log.Error("driver release failed after completion", "ride_id", r.ID, "driver_id", *r.DriverID, "err", err)
		}
	}

	if s.payments == nil {
		return s.store.Get(ctx, r.ID)
	}
	orderID, err := s.payments.CreateOrder(ctx, fare, "ride_"+string(r.ID))
	if err != nil {
		if perr := s.store.SetPayment(ctx, r.ID, "", PaymentFailed); perr != nil {
			s.log.Error("payment status write failed", "ride_id", r.ID, "err", perr)
		}
		done, gerr := s.store.Get(ctx, r.ID)
		if gerr != nil {
			return nil, gerr
		}
		return done, fmt.Errorf("%w: payment order creation: %v", ErrDependency, err)
	}
	if err := s.store.SetPayment(ctx, r.ID, orderID, PaymentPending); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, r.ID)
}

// Cancel aborts any non-terminal ride and hands an assigned driver back.
func (s *Service) Cancel(ctx context.Context, id types.ID) (*Ride, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status.Terminal() {
		return nil, fmt.Errorf("%w: ride is already %s", ErrInvalidState, r.Status)
	}
	ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, StatusCancelled, r.StatusVersion, StatusPatch{})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: ride state changed concurrently", ErrInvalidState)
	}
	observability.RidesCancelledTotal.Inc()
	if r.DriverID != nil {
		if err := s.drivers.Release(ctx, *r.DriverID); err != nil {
			s.log.Error("driver release failed after cancellation", "ride_id", r.ID, "driver_id", *r.DriverID, "err", err)
		}
	}
	return s.store.Get(ctx, r.ID)
}

// Rate records one party's rating of a completed ride. Rider and driver
// ratings are independent fields; neither overwrites the other.
func (s *Service) Rate(ctx context.Context, cmd RateCommand) error {
	if cmd.Rating < 1 || cmd.Rating > 5 {
		return ErrBadRequest
	}
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return err
	}
	if r.Status != StatusCompleted {
		return fmt.Errorf("%w: cannot rate a ride that is %s", ErrInvalidState, r.Status)
	}
	return s.store.SetRating(ctx, cmd.RideID, cmd.ByDriver, cmd.Rating, cmd.Feedback)
}

// ConfirmPayment records a successful external payment against a completed
// ride. Confirmation of a ride that has not completed is rejected.
func (s *Service) ConfirmPayment(ctx context.Context, id types.ID, externalPaymentID string) (*Ride, error) {
	if externalPaymentID == "" {
		return nil, ErrBadRequest
	}
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusCompleted {
		return nil, fmt.Errorf("%w: ride is %s, not completed", ErrInvalidState, r.Status)
	}
	if err := s.store.SetPayment(ctx, id, externalPaymentID, PaymentSuccess); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Ride, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) GetStatus(ctx context.Context, id types.ID) (Status, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return r.Status, nil
}

// CurrentForRider returns the rider's ride in accepted/started, or nil.
func (s *Service) CurrentForRider(ctx context.Context, riderID types.ID) (*Ride, error) {
	return s.store.ActiveByRider(ctx, riderID)
}

// CurrentForDriver returns the driver's ride in accepted/started, or nil.
func (s *Service) CurrentForDriver(ctx context.Context, driverID types.ID) (*Ride, error) {
	return s.store.ActiveByDriver(ctx, driverID)
}

func (s *Service) HistoryForRider(ctx context.Context, riderID types.ID) ([]*Ride, error) {
	return s.store.ListByRider(ctx, riderID)
}

func (s *Service) HistoryForDriver(ctx context.Context, driverID types.ID) ([]*Ride, error) {
	return s.store.ListByDriver(ctx, driverID)
}
