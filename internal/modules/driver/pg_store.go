// README: Driver store backed by PostgreSQL.
package driver

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

const driverColumns = `
    id, username, full_name, phone_number, vehicle_number, vehicle_model,
    licence_number, fcm_token, status, current_lat, current_lng, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, d *Driver) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	var lat, lng *float64
	if d.Location != nil {
		lat, lng = &d.Location.Lat, &d.Location.Lng
	}
	_, err := s.db.Exec(ctx, `
        INSERT INTO drivers (
            id, username, full_name, phone_number, vehicle_number, vehicle_model,
            licence_number, fcm_token, status, current_lat, current_lng, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		string(d.ID), d.Username, d.FullName, d.PhoneNumber, d.VehicleNumber,
		d.VehicleModel, d.LicenceNumber, d.FCMToken, string(d.Status),
		lat, lng, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Driver, error) {
	row := s.db.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, string(id))
	return scanDriver(row)
}

func (s *PGStore) GetByUsername(ctx context.Context, username string) (*Driver, error) {
	row := s.db.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers WHERE username = $1`, username)
	return scanDriver(row)
}

func (s *PGStore) UpdateLocation(ctx context.Context, id types.ID, p types.Point) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE drivers
        SET current_lat = $1, current_lng = $2, updated_at = NOW()
        WHERE id = $3`,
		p.Lat, p.Lng, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE drivers
        SET status = $1, updated_at = NOW()
        WHERE id = $2 AND status = $3`,
		string(to), string(id), string(from),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) ListByStatus(ctx context.Context, status Status) ([]*Driver, error) {
	rows, err := s.db.Query(ctx, `SELECT `+driverColumns+` FROM drivers WHERE status = $1`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDriver(row rowScanner) (*Driver, error) {
	var d Driver
	var lat, lng *float64
	err := row.Scan(
		&d.ID, &d.Username, &d.FullName, &d.PhoneNumber, &d.VehicleNumber,
		&d.VehicleModel, &d.LicenceNumber, &d.FCMToken, &d.Status,
		&lat, &lng, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		d.Location = &types.Point{Lat: *lat, Lng: *lng}
	}
	return &d, nil
}
