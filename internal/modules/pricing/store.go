// README: Pricing store backed by PostgreSQL.
package pricing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrRateNotFound = errors.New("rate not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) GetRate(ctx context.Context, rideType string) (Rate, error) {
	row := s.db.QueryRow(ctx, `
        SELECT ride_type, base_fare, per_km, per_minute, currency
        FROM pricing_rates
        WHERE ride_type = $1`, rideType,
	)
	var r Rate
	err := row.Scan(&r.RideType, &r.BaseFare, &r.PerKm, &r.PerMinute, &r.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rate{}, ErrRateNotFound
	}
	if err != nil {
		return Rate{}, err
	}
	return r, nil
}
