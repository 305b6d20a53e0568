// README: Driver registry; single writer of driver availability status.
package driver

import (
	"context"
	"errors"
	"log/slog"

	"ridebooking/internal/modules/geo"
	"ridebooking/internal/types"
)

var (
	ErrNotFound     = errors.New("driver not found")
	ErrInvalidState = errors.New("driver is not available")
	ErrBadRequest   = errors.New("bad request")
)

type Registry struct {
	store Store
	geo   GeoIndex // optional
	log   *slog.Logger
}

func NewRegistry(store Store, geoIndex GeoIndex, log *slog.Logger) *Registry {
	return &Registry{store: store, geo: geoIndex, log: log}
}

type RegisterCommand struct {
	Username      string
	FullName      string
	PhoneNumber   string
	VehicleNumber string
	VehicleModel  string
	LicenceNumber string
	FCMToken      string
}

// Register creates a driver in available status with no location fix.
// Usernames are unique across the fleet.
func (r *Registry) Register(ctx context.Context, cmd RegisterCommand) (*Driver, error) {
	if cmd.Username == "" || cmd.FullName == "" || cmd.LicenceNumber == "" {
		return nil, ErrBadRequest
	}
	if _, err := r.store.GetByUsername(ctx, cmd.Username); err == nil {
		return nil, ErrBadRequest
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	d := &Driver{
		Username:      cmd.Username,
		FullName:      cmd.FullName,
		PhoneNumber:   cmd.PhoneNumber,
		VehicleNumber: cmd.VehicleNumber,
		VehicleModel:  cmd.VehicleModel,
		LicenceNumber: cmd.LicenceNumber,
		FCMToken:      cmd.FCMToken,
		Status:        StatusAvailable,
	}
	d.ID = types.NewID()
	if err := r.store.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *Registry) Get(ctx context.Context, id types.ID) (*Driver, error) {
	return r.store.Get(ctx, id)
}

func (r *Registry) FindByUsername(ctx context.Context, username string) (*Driver, error) {
	return r.store.GetByUsername(ctx, username)
}

// UpdateLocation records a new fix and mirrors it into the geo index.
// Index failures degrade radius queries to full scans, so they only log.
func (r *Registry) UpdateLocation(ctx context.Context, id types.ID, p types.Point) error {
	if err := r.store.UpdateLocation(ctx, id, p); err != nil {
		return err
	}
	if r.geo != nil {
		if err := r.geo.Upsert(ctx, id, p); err != nil {
			r.log.Warn("geo index upsert failed", "driver_id", id, "err", err)
		}
	}
	return nil
}

// FindAvailableWithinRadius returns available drivers with a known location
// within radiusKm of center, nearest first. Geo index candidates are
// re-verified against the store: the index may be stale on status and the
// search grid is approximate on distance.
func (r *Registry) FindAvailableWithinRadius(ctx context.Context, center types.Point, radiusKm float64) ([]*Driver, error) {
	if r.geo != nil {
		ids, err := r.geo.Nearby(ctx, center, radiusKm)
		if err == nil {
			out := make([]*Driver, 0, len(ids))
			for _, id := range ids {
				d, err := r.store.Get(ctx, id)
				if err != nil {
					continue
				}
				if eligible(d, center, radiusKm) {
					out = append(out, d)
				}
			}
			return out, nil
		}
		r.log.Warn("geo index search failed, falling back to scan", "err", err)
	}

	all, err := r.store.ListByStatus(ctx, StatusAvailable)
	if err != nil {
		return nil, err
	}
	out := make([]*Driver, 0, len(all))
	for _, d := range all {
		if eligible(d, center, radiusKm) {
			out = append(out, d)
		}
	}
	geo.SortByDistance(out, func(d *Driver) float64 {
		return geo.HaversineKm(center, *d.Location)
	})
	return out, nil
}

func eligible(d *Driver, center types.Point, radiusKm float64) bool {
	return d.Status == StatusAvailable &&
		d.Location != nil &&
		geo.HaversineKm(center, *d.Location) <= radiusKm
}

func (r *Registry) ListAvailable(ctx context.Context) ([]*Driver, error) {
	return r.store.ListByStatus(ctx, StatusAvailable)
}

// ToggleAvailability flips available <-> offline. A driver mid-trip cannot go
// offline through this path.
func (r *Registry) ToggleAvailability(ctx context.Context, id types.ID) (*Driver, error) {
	d, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var from, to Status
	switch d.Status {
	case StatusAvailable:
		from, to = StatusAvailable, StatusOffline
	case StatusOffline:
		from, to = StatusOffline, StatusAvailable
	default:
		return nil, ErrInvalidState
	}
	ok, err := r.store.UpdateStatus(ctx, id, from, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		// lost a race with another status change
		return nil, ErrInvalidState
	}
	d.Status = to
	if r.geo != nil {
		// keep the index free of offline drivers; candidates are re-verified
		// on lookup, so index errors only log
		var gerr error
		switch {
		case to == StatusOffline:
			gerr = r.geo.Remove(ctx, d.ID)
		case d.Location != nil:
			gerr = r.geo.Upsert(ctx, d.ID, *d.Location)
		}
		if gerr != nil {
			r.log.Warn("geo index update failed on toggle", "driver_id", d.ID, "err", gerr)
		}
	}
	return d, nil
}

// Reserve transitions an available driver to on_ride. Exactly one of N racing
// reservations for the same driver wins; the rest observe ErrInvalidState.
func (r *Registry) Reserve(ctx context.Context, id types.ID) error {
	ok, err := r.store.UpdateStatus(ctx, id, StatusAvailable, StatusOnRide)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidState
	}
	return nil
}

// Release returns a driver to available after a trip ends or is cancelled.
// Releasing a driver that is no longer on_ride is a no-op.
func (r *Registry) Release(ctx context.Context, id types.ID) error {
	ok, err := r.store.UpdateStatus(ctx, id, StatusOnRide, StatusAvailable)
	if err != nil {
		return err
	}
	if !ok {
		r.log.Debug("release skipped, driver not on ride", "driver_id", id)
	}
	return nil
}
