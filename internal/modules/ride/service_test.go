package ride

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"ridebooking/internal/modules/driver"
	"ridebooking/internal/modules/pricing"
	"ridebooking/internal/types"
)

type fakeGateway struct {
	fail    bool
	orders  int
	lastAmt float64
}

func (f *fakeGateway) CreateOrder(ctx context.Context, amount float64, receiptID string) (string, error) {
	if f.fail {
		return "", errors.New("gateway unreachable")
	}
	f.orders++
	f.lastAmt = amount
	return fmt.Sprintf("order_%d", f.orders), nil
}

type testEnv struct {
	svc     *Service
	drivers *driver.Registry
	gateway *fakeGateway
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := driver.NewRegistry(driver.NewMemoryStore(), nil, log)
	gw := &fakeGateway{}
	svc := NewService(NewMemoryStore(), reg, pricing.NewService(nil), gw, log)
	return &testEnv{svc: svc, drivers: reg, gateway: gw}
}

func (e *testEnv) addDriver(t *testing.T, name string) types.ID {
	t.Helper()
	d, err := e.drivers.Register(context.Background(), driver.RegisterCommand{
		Username:      name,
		FullName:      "Driver " + name,
		LicenceNumber: "LIC-" + name,
	})
	if err != nil {
		t.Fatalf("register driver: %v", err)
	}
	return d.ID
}

func (e *testEnv) requestRide(t *testing.T, riderID string) *Ride {
	t.Helper()
	r, err := e.svc.Create(context.Background(), CreateCommand{
		RiderID:         types.ID(riderID),
		PickupLocation:  "MG Road",
		DropoffLocation: "Airport",
		PickupCoord:     types.Point{Lat: 12.97, Lng: 77.59},
	})
	if err != nil {
		t.Fatalf("create ride: %v", err)
	}
	return r
}

func (e *testEnv) driverStatus(t *testing.T, id types.ID) driver.Status {
	t.Helper()
	d, err := e.drivers.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get driver: %v", err)
	}
	return d.Status
}

func TestLifecycle_HappyPath(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	driverID := e.addDriver(t, "d1")
	r := e.requestRide(t, "rider1")

	if r.Status != StatusRequested || r.DriverID != nil {
		t.Fatalf("new ride should be requested with no driver: %+v", r)
	}

	r, err := e.svc.Accept(ctx, AcceptCommand{RideID: r.ID, DriverID: driverID})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if r.Status != StatusAccepted || r.DriverID == nil || *r.DriverID != driverID {
		t.Fatalf("after accept: %+v", r)
	}
	if got := e.driverStatus(t, driverID); got != driver.StatusOnRide {
		t.Fatalf("driver should be on_ride, got %s", got)
	}

	r, err = e.svc.Start(ctx, r.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if r.Status != StatusStarted || r.StartTime == nil {
		t.Fatalf("after start: %+v", r)
	}

	r, err = e.svc.Complete(ctx, CompleteCommand{RideID: r.ID, DistanceKm: 8, DurationMinutes: 25})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if r.Status != StatusCompleted || r.CompletionTime == nil {
		t.Fatalf("after complete: %+v", r)
	}
	if r.Fare == nil || *r.Fare != 160.0 { // 30 + 10*8 + 2*25
		t.Fatalf("fare = %v, want 160.0", r.Fare)
	}
	if *r.DistanceKm != 8 || *r.DurationMinutes != 25 {
		t.Fatalf("trip summary not recorded: %+v", r)
	}
	if got := e.driverStatus(t, driverID); got != driver.StatusAvailable {
		t.Fatalf("driver should be available again, got %s", got)
	}
	if r.PaymentStatus != PaymentPending || r.TransactionID == nil {
		t.Fatalf("payment order not recorded: status=%s txn=%v", r.PaymentStatus, r.TransactionID)
	}
	if e.gateway.lastAmt != 160.0 {
		t.Fatalf("gateway charged %v, want 160.0", e.gateway.lastAmt)
	}
}

func TestAccept_WrongState(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	d1 := e.addDriver(t, "d1")
	d2 := e.addDriver(t, "d2")
	r := e.requestRide(t, "rider1")

	if _, err := e.svc.Accept(ctx, AcceptCommand{RideID: r.ID, DriverID: d1}); err != nil {
		t.Fatalf("first accept: %v", err)
	}

	for _, advance := range []func() error{
		func() error { return nil },                                 // accepted
		func() error { _, err := e.svc.Start(ctx, r.ID); return err }, // started
		func() error {
			_, err := e.svc.Complete(ctx, CompleteCommand{RideID: r.ID, DistanceKm: 1, DurationMinutes: 5})
			return err
		}, // completed
	} {
		if err := advance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
		_, err := e.svc.Accept(ctx, AcceptCommand{RideID: r.ID, DriverID: d2})
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
		if got := e.driverStatus(t, d2); got != driver.StatusAvailable {
			t.Fatalf("losing driver must stay available, got %s", got)
		}
	}
}

func TestAccept_UnknownRide(t *testing.T) {
	e := newTestEnv(t)
	d1 := e.addDriver(t, "d1")
	_, err := e.svc.Accept(context.Background(), AcceptCommand{RideID: "missing", DriverID: d1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAccept_DriverNotAvailable(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	d1 := e.addDriver(t, "d1")
	r1 := e.requestRide(t, "rider1")
	r2 := e.requestRide(t, "rider2")

	if _, err := e.svc.Accept(ctx, AcceptCommand{RideID: r1.ID, DriverID: d1}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	// d1 is now on_ride: accepting a second ride must fail and leave r2 requested.
	_, err := e.svc.Accept(ctx, AcceptCommand{RideID: r2.ID, DriverID: d1})
	if !errors.Is(err, driver.ErrInvalidState) {
		t.Fatalf("expected driver.ErrInvalidState, got %v", err)
	}
	got, _ := e.svc.GetStatus(ctx, r2.ID)
	if got != StatusRequested {
		t.Fatalf("second ride should stay requested, got %s", got)
	}
}

func TestStart_RequiresAccepted(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	r := e.requestRide(t, "rider1")
	if _, err := e.svc.Start(ctx, r.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestComplete_RequiresStarted(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	d1 := e.addDriver(t, "d1")
	r := e.requestRide(t, "rider1")

	if _, err := e.svc.Complete(ctx, CompleteCommand{RideID: r.ID, DistanceKm: 5, DurationMinutes: 10}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on requested ride, got %v", err)
	}
	if _, err := e.svc.Accept(ctx, AcceptCommand{RideID: r.ID, DriverID: d1}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := e.svc.Complete(ctx, CompleteCommand{RideID: r.ID, DistanceKm: 5, DurationMinutes: 10}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on accepted ride, got %v", err)
	}

	got, err := e.svc.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusAccepted || got.Fare != nil {
		t.Fatalf("failed complete must leave ride unchanged: %+v", got)
	}
}

func TestComplete_PaymentFailure(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	e.gateway.fail = true
	d1 := e.addDriver(t, "d1")
	r := e.requestRide(t, "rider1")

	if _, err := e.svc.Accept(ctx, AcceptCommand{RideID: r.ID, DriverID: d1}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := e.svc.Start(ctx, r.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	got, err := e.svc.Complete(ctx, CompleteCommand{RideID: r.ID, DistanceKm: 10, DurationMinutes: 20})
	if !errors.Is(err, ErrDependency) {
		t.Fatalf("expected ErrDependency, got %v", err)
	}
	// the trip happened: completion must not be rolled back
	if got == nil || got.Status != StatusCompleted {
		t.Fatalf("ride must stay completed despite payment failure: %+v", got)
	}
	if got.Fare == nil || *got.Fare != 170.0 {
		t.Fatalf("fare = %v, want 170.0", got.Fare)
	}
	if got.PaymentStatus != PaymentFailed {
		t.Fatalf("payment status = %s, want failed", got.PaymentStatus)
	}
	if st := e.driverStatus(t, d1); st != driver.StatusAvailable {
		t.Fatalf("driver should be released, got %s", st)
	}
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	d1 := e.addDriver(t, "d1")

	// cancel while requested, no driver assigned
	r := e.requestRide(t, "rider1")
	got, err := e.svc.Cancel(ctx, r.ID)
	if err != nil {
		t.Fatalf("cancel requested: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Fatalf("status = %s, want cancelled", got.Status)
	}

	// cancel after acceptance hands the driver back
	r = e.requestRide(t, "rider1")
	if _, err := e.svc.Accept(ctx, AcceptCommand{RideID: r.ID, DriverID: d1}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := e.svc.Cancel(ctx, r.ID); err != nil {
		t.Fatalf("cancel accepted: %v", err)
	}
	if st := e.driverStatus(t, d1); st != driver.StatusAvailable {
		t.Fatalf("driver should be available after cancel, got %s", st)
	}

	// terminal rides cannot be cancelled
	if _, err := e.svc.Cancel(ctx, r.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState cancelling a cancelled ride, got %v", err)
	}

	r = e.requestRide(t, "rider1")
	if _, err := e.svc.Accept(ctx, AcceptCommand{RideID: r.ID, DriverID: d1}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := e.svc.Start(ctx, r.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := e.svc.Complete(ctx, CompleteCommand{RideID: r.ID, DistanceKm: 2, DurationMinutes: 6}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := e.svc.Cancel(ctx, r.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState cancelling a completed ride, got %v", err)
	}
}

func TestRate(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	d1 := e.addDriver(t, "d1")
	r := e.requestRide(t, "rider1")

	if err := e.svc.Rate(ctx, RateCommand{RideID: r.ID, Rating: 5}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState rating a requested ride, got %v", err)
	}

	if _, err := e.svc.Accept(ctx, AcceptCommand{RideID: r.ID, DriverID: d1}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := e.svc.Start(ctx, r.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := e.svc.Complete(ctx, CompleteCommand{RideID: r.ID, DistanceKm: 3, DurationMinutes: 9}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if err := e.svc.Rate(ctx, RateCommand{RideID: r.ID, Rating: 0}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for rating 0, got %v", err)
	}

	if err := e.svc.Rate(ctx, RateCommand{RideID: r.ID, Rating: 4, Feedback: "smooth trip"}); err != nil {
		t.Fatalf("rider rating: %v", err)
	}
	if err := e.svc.Rate(ctx, RateCommand{RideID: r.ID, ByDriver: true, Rating: 5, Feedback: "polite rider"}); err != nil {
		t.Fatalf("driver rating: %v", err)
	}

	got, _ := e.svc.Get(ctx, r.ID)
	if got.UserRating == nil || *got.UserRating != 4 || got.UserFeedback == nil || *got.UserFeedback != "smooth trip" {
		t.Fatalf("rider rating lost: %+v", got)
	}
	if got.DriverRating == nil || *got.DriverRating != 5 || got.DriverFeedback == nil || *got.DriverFeedback != "polite rider" {
		t.Fatalf("driver rating lost: %+v", got)
	}
}

func TestConfirmPayment(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	d1 := e.addDriver(t, "d1")
	r := e.requestRide(t, "rider1")

	if _, err := e.svc.ConfirmPayment(ctx, r.ID, "pay_abc"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState confirming an incomplete ride, got %v", err)
	}

	if _, err := e.svc.Accept(ctx, AcceptCommand{RideID: r.ID, DriverID: d1}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := e.svc.Start(ctx, r.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := e.svc.Complete(ctx, CompleteCommand{RideID: r.ID, DistanceKm: 3, DurationMinutes: 9}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, err := e.svc.ConfirmPayment(ctx, r.ID, "pay_abc")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if got.PaymentStatus != PaymentSuccess || got.TransactionID == nil || *got.TransactionID != "pay_abc" {
		t.Fatalf("payment confirmation not recorded: %+v", got)
	}
}

func TestCurrentRides(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	d1 := e.addDriver(t, "d1")
	r := e.requestRide(t, "rider1")

	// a requested ride is not active
	cur, err := e.svc.CurrentForRider(ctx, "rider1")
	if err != nil || cur != nil {
		t.Fatalf("expected no active ride, got %v (%v)", cur, err)
	}

	if _, err := e.svc.Accept(ctx, AcceptCommand{RideID: r.ID, DriverID: d1}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	cur, err = e.svc.CurrentForRider(ctx, "rider1")
	if err != nil || cur == nil || cur.ID != r.ID {
		t.Fatalf("expected active ride for rider, got %v (%v)", cur, err)
	}
	cur, err = e.svc.CurrentForDriver(ctx, d1)
	if err != nil || cur == nil || cur.ID != r.ID {
		t.Fatalf("expected active ride for driver, got %v (%v)", cur, err)
	}

	if _, err := e.svc.Start(ctx, r.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := e.svc.Complete(ctx, CompleteCommand{RideID: r.ID, DistanceKm: 1, DurationMinutes: 4}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	cur, err = e.svc.CurrentForDriver(ctx, d1)
	if err != nil || cur != nil {
		t.Fatalf("completed ride must not be active, got %v (%v)", cur, err)
	}
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	d1 := e.addDriver(t, "d1")

	if _, err := e.svc.Create(ctx, CreateCommand{RiderID: "r"}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}

	r := e.requestRide(t, "rider1")
	if _, err := e.svc.Accept(ctx, AcceptCommand{RideID: r.ID, DriverID: d1}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := e.svc.Create(ctx, CreateCommand{
		RiderID:         "rider1",
		PickupLocation:  "A",
		DropoffLocation: "B",
	}); !errors.Is(err, ErrActiveRide) {
		t.Fatalf("expected ErrActiveRide, got %v", err)
	}
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	d1 := e.addDriver(t, "d1")

	for i := 0; i < 3; i++ {
		r := e.requestRide(t, "rider1")
		if _, err := e.svc.Accept(ctx, AcceptCommand{RideID: r.ID, DriverID: d1}); err != nil {
			t.Fatalf("accept: %v", err)
		}
		if _, err := e.svc.Start(ctx, r.ID); err != nil {
			t.Fatalf("start: %v", err)
		}
		if _, err := e.svc.Complete(ctx, CompleteCommand{RideID: r.ID, DistanceKm: 1, DurationMinutes: 2}); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}

	riderRides, err := e.svc.HistoryForRider(ctx, "rider1")
	if err != nil || len(riderRides) != 3 {
		t.Fatalf("rider history = %d rides (%v), want 3", len(riderRides), err)
	}
	driverRides, err := e.svc.HistoryForDriver(ctx, d1)
	if err != nil || len(driverRides) != 3 {
		t.Fatalf("driver history = %d rides (%v), want 3", len(driverRides), err)
	}
}
