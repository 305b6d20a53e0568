// README: Ride store backed by PostgreSQL with optimistic status versioning.
package ride

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridebooking/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const rideColumns = `
    id, rider_id, driver_id, pickup_location, dropoff_location,
    pickup_lat, pickup_lng, ride_type, status, status_version,
    start_time, completion_time, distance_km, duration_minutes, fare,
    user_rating, user_feedback, driver_rating, driver_feedback,
    transaction_id, payment_status, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, r *Ride) error {
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	_, err := s.db.Exec(ctx, `
        INSERT INTO rides (
            id, rider_id, pickup_location, dropoff_location,
            pickup_lat, pickup_lng, ride_type, status, status_version,
            payment_status, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		string(r.ID), string(r.RiderID), r.PickupLocation, r.DropoffLocation,
		r.PickupCoord.Lat, r.PickupCoord.Lng, r.RideType,
		string(r.Status), r.StatusVersion, string(r.PaymentStatus),
		r.CreatedAt, r.UpdatedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Ride, error) {
	row := s.db.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = $1`, string(id))
	return scanRide(row)
}

// UpdateStatus wins only while the row still matches (status, status_version).
// Start and completion times are stamped from the target status in SQL so the
// transition and its timestamps commit together.
func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, patch StatusPatch) (bool, error) {
	var driverID *string
	if patch.DriverID != nil {
		v := string(*patch.DriverID)
		driverID = &v
	}
	tag, err := s.db.Exec(ctx, `
        UPDATE rides
        SET status = $1,
            status_version = status_version + 1,
            driver_id = COALESCE($2, driver_id),
            distance_km = COALESCE($3, distance_km),
            duration_minutes = COALESCE($4, duration_minutes),
            fare = COALESCE($5, fare),
            start_time = CASE WHEN $1 = 'started' THEN NOW() ELSE start_time END,
            completion_time = CASE WHEN $1 = 'completed' THEN NOW() ELSE completion_time END,
            updated_at = NOW()
        WHERE id = $6 AND status = $7 AND status_version = $8`,
		string(to), driverID, patch.DistanceKm, patch.DurationMinutes, patch.Fare,
		string(id), string(from), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) SetRating(ctx context.Context, id types.ID, byDriver bool, rating int, feedback string) error {
	var query string
	if byDriver {
		query = `UPDATE rides SET driver_rating = $1, driver_feedback = $2, updated_at = NOW() WHERE id = $3`
	} else {
		query = `UPDATE rides SET user_rating = $1, user_feedback = $2, updated_at = NOW() WHERE id = $3`
	}
	tag, err := s.db.Exec(ctx, query, rating, feedback, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) SetPayment(ctx context.Context, id types.ID, transactionID string, status PaymentStatus) error {
	var txn *string
	if transactionID != "" {
		txn = &transactionID
	}
	tag, err := s.db.Exec(ctx, `
        UPDATE rides
        SET transaction_id = COALESCE($1, transaction_id),
            payment_status = $2,
            updated_at = NOW()
        WHERE id = $3`,
		txn, string(status), string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) ActiveByRider(ctx context.Context, riderID types.ID) (*Ride, error) {
	row := s.db.QueryRow(ctx, `
        SELECT `+rideColumns+` FROM rides
        WHERE rider_id = $1 AND status IN ('accepted','started')
        LIMIT 1`, string(riderID),
	)
	r, err := scanRide(row)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return r, err
}

func (s *PGStore) ActiveByDriver(ctx context.Context, driverID types.ID) (*Ride, error) {
	row := s.db.QueryRow(ctx, `
        SELECT `+rideColumns+` FROM rides
        WHERE driver_id = $1 AND status IN ('accepted','started')
        LIMIT 1`, string(driverID),
	)
	r, err := scanRide(row)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return r, err
}

func (s *PGStore) ListByRider(ctx context.Context, riderID types.ID) ([]*Ride, error) {
	return s.list(ctx, `SELECT `+rideColumns+` FROM rides WHERE rider_id = $1 ORDER BY created_at DESC`, string(riderID))
}

func (s *PGStore) ListByDriver(ctx context.Context, driverID types.ID) ([]*Ride, error) {
	return s.list(ctx, `SELECT `+rideColumns+` FROM rides WHERE driver_id = $1 ORDER BY created_at DESC`, string(driverID))
}

func (s *PGStore) list(ctx context.Context, query string, arg any) ([]*Ride, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*Ride, error) {
	var r Ride
	var driverID *string
	err := row.Scan(
		&r.ID, &r.RiderID, &driverID, &r.PickupLocation, &r.DropoffLocation,
		&r.PickupCoord.Lat, &r.PickupCoord.Lng, &r.RideType, &r.Status, &r.StatusVersion,
		&r.StartTime, &r.CompletionTime, &r.DistanceKm, &r.DurationMinutes, &r.Fare,
		&r.UserRating, &r.UserFeedback, &r.DriverRating, &r.DriverFeedback,
		&r.TransactionID, &r.PaymentStatus, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if driverID != nil {
		d := types.ID(*driverID)
		r.DriverID = &d
	}
	return &r, nil
}
