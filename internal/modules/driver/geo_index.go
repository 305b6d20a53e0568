// README: Redis GEO index narrowing radius queries before status re-checks.
package driver

import (
	"context"

	"github.com/redis/go-redis/v9"

	"ridebooking/internal/types"
)

const driverGeoKey = "dispatch:drivers"

// GeoIndex answers approximate "who is near P" queries. Results are candidate
// ids only; the registry re-verifies status and exact distance.
type GeoIndex interface {
	Upsert(ctx context.Context, id types.ID, p types.Point) error
	Remove(ctx context.Context, id types.ID) error
	Nearby(ctx context.Context, center types.Point, radiusKm float64) ([]types.ID, error)
}

type RedisGeoIndex struct {
	redis *redis.Client
}

func NewRedisGeoIndex(client *redis.Client) *RedisGeoIndex {
	return &RedisGeoIndex{redis: client}
}

func (s *RedisGeoIndex) Upsert(ctx context.Context, id types.ID, p types.Point) error {
	return s.redis.GeoAdd(ctx, driverGeoKey, &redis.GeoLocation{
		Name:      string(id),
		Longitude: p.Lng,
		Latitude:  p.Lat,
	}).Err()
}

func (s *RedisGeoIndex) Remove(ctx context.Context, id types.ID) error {
	return s.redis.ZRem(ctx, driverGeoKey, string(id)).Err()
}

func (s *RedisGeoIndex) Nearby(ctx context.Context, center types.Point, radiusKm float64) ([]types.ID, error) {
	results, err := s.redis.GeoSearch(ctx, driverGeoKey, &redis.GeoSearchQuery{
		Longitude:  center.Lng,
		Latitude:   center.Lat,
		Radius:     radiusKm,
		RadiusUnit: "km",
		Sort:       "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]types.ID, len(results))
	for i, r := range results {
		ids[i] = types.ID(r)
	}
	return ids, nil
}
