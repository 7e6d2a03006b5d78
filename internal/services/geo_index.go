package services

import (
	"context"

	"ridelink/pkg/cache"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const driverGeoKey = "drivers:geo"

// DriverLocationIndex is a spatial prefilter over driver positions. The
// matcher treats it as advisory: results are re-checked against the record
// store before use.
type DriverLocationIndex interface {
	Add(ctx context.Context, driverID primitive.ObjectID, lat, lng float64) error
	Nearby(ctx context.Context, lat, lng, radiusKM float64, limit int) ([]primitive.ObjectID, error)
	Remove(ctx context.Context, driverID primitive.ObjectID) error
}

type redisGeoIndex struct {
	cache *cache.RedisCache
}

func NewRedisGeoIndex(c *cache.RedisCache) DriverLocationIndex {
	return &redisGeoIndex{cache: c}
}

func (g *redisGeoIndex) Add(ctx context.Context, driverID primitive.ObjectID, lat, lng float64) error {
	return g.cache.GeoAdd(ctx, driverGeoKey, &redis.GeoLocation{
		Name:      driverID.Hex(),
		Latitude:  lat,
		Longitude: lng,
	})
}

func (g *redisGeoIndex) Nearby(ctx context.Context, lat, lng, radiusKM float64, limit int) ([]primitive.ObjectID, error) {
	query := &redis.GeoRadiusQuery{
		Radius:    radiusKM,
		Unit:      "km",
		Sort:      "ASC",
		Count:     limit,
		WithCoord: true,
	}

	locations, err := g.cache.GeoRadius(ctx, driverGeoKey, lng, lat, query)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(locations))
	for _, loc := range locations {
		id, err := primitive.ObjectIDFromHex(loc.Name)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func (g *redisGeoIndex) Remove(ctx context.Context, driverID primitive.ObjectID) error {
	return g.cache.GeoRemove(ctx, driverGeoKey, driverID.Hex())
}
