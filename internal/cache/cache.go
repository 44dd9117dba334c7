// Package cache stores ranked search results keyed by the normalized query.
//
// Flights are read-only to the booking engine, so a ranked list stays valid
// until the flight table is reloaded; the TTL bounds staleness after a
// reload. Seat availability is never cached: Book re-checks it inside its
// own transaction.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roach88/flightbook/internal/flight"
	"github.com/roach88/flightbook/internal/ranking"
)

// KeyPrefix namespaces every entry written by RedisCache.
const KeyPrefix = "flightbook:search:"

// Cache is a search result cache. Get reports a miss with ok == false;
// backend errors are treated as misses.
type Cache interface {
	Get(ctx context.Context, q ranking.Query) (itineraries []flight.Itinerary, ok bool)
	Set(ctx context.Context, q ranking.Query, itineraries []flight.Itinerary) error
	Close() error
}

// RedisConfig configures NewRedisCache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// DefaultRedisConfig returns a local Redis with a five minute TTL.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr: "localhost:6379",
		TTL:  5 * time.Minute,
	}
}

// RedisCache keeps results in Redis as JSON.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects and pings the server.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr, err)
	}

	return NewRedisCacheFromClient(client, cfg.TTL), nil
}

// NewRedisCacheFromClient wraps an existing client without pinging it.
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached result for q. Any backend or decode error is a miss.
func (c *RedisCache) Get(ctx context.Context, q ranking.Query) ([]flight.Itinerary, bool) {
	data, err := c.client.Get(ctx, Key(q)).Bytes()
	if err != nil {
		return nil, false
	}

	var itineraries []flight.Itinerary
	if err := json.Unmarshal(data, &itineraries); err != nil {
		return nil, false
	}
	return itineraries, true
}

// Set stores itineraries for q with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, q ranking.Query, itineraries []flight.Itinerary) error {
	if itineraries == nil {
		itineraries = []flight.Itinerary{}
	}
	data, err := json.Marshal(itineraries)
	if err != nil {
		return fmt.Errorf("encode search result: %w", err)
	}

	if err := c.client.Set(ctx, Key(q), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache search result: %w", err)
	}
	return nil
}

// Purge removes every entry under KeyPrefix. Used after flights are reloaded.
func (c *RedisCache) Purge(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("purge %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cache keys: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NoOpCache never hits.
type NoOpCache struct{}

// NewNoOpCache returns a cache that stores nothing.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always misses.
func (c *NoOpCache) Get(context.Context, ranking.Query) ([]flight.Itinerary, bool) {
	return nil, false
}

// Set discards the result.
func (c *NoOpCache) Set(context.Context, ranking.Query, []flight.Itinerary) error {
	return nil
}

// Close is a no-op.
func (c *NoOpCache) Close() error {
	return nil
}

// Key derives the cache key of q after normalization.
func Key(q ranking.Query) string {
	q = q.Normalize()
	data, _ := json.Marshal(q)
	hash := sha256.Sum256(data)
	return KeyPrefix + hex.EncodeToString(hash[:])
}
