package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flightbook/internal/flight"
	"github.com/roach88/flightbook/internal/ranking"
)

var _ Cache = (*RedisCache)(nil)
var _ Cache = (*NoOpCache)(nil)

func sampleQuery() ranking.Query {
	return ranking.Query{Origin: "Seattle WA", Dest: "Boston MA", Day: 10, Count: 3}
}

func sampleItineraries() []flight.Itinerary {
	a := flight.Flight{ID: 10, DayOfMonth: 10, CarrierID: "AS", FlightNum: "1", OriginCity: "Seattle WA", DestCity: "Chicago IL", Duration: 150, Capacity: 3, Price: 100}
	b := flight.Flight{ID: 11, DayOfMonth: 10, CarrierID: "AS", FlightNum: "2", OriginCity: "Chicago IL", DestCity: "Boston MA", Duration: 150, Capacity: 3, Price: 120}
	d := flight.Flight{ID: 1, DayOfMonth: 10, CarrierID: "UA", FlightNum: "9", OriginCity: "Seattle WA", DestCity: "Boston MA", Duration: 320, Capacity: 1, Price: 400}
	return []flight.Itinerary{flight.Connecting(a, b), flight.Direct(d)}
}

func TestKey_StableAndPrefixed(t *testing.T) {
	k := Key(sampleQuery())
	assert.True(t, strings.HasPrefix(k, KeyPrefix))
	assert.Len(t, k, len(KeyPrefix)+64)
	assert.Equal(t, k, Key(sampleQuery()))
}

func TestKey_NormalizesCities(t *testing.T) {
	q := sampleQuery()
	spaced := q
	spaced.Origin = "  Seattle WA "
	assert.Equal(t, Key(q), Key(spaced))

	composed := ranking.Query{Origin: "S\u00e3o Paulo", Dest: "Lima", Day: 1, Count: 1}
	decomposed := ranking.Query{Origin: "Sa\u0303o Paulo", Dest: "Lima", Day: 1, Count: 1}
	assert.Equal(t, Key(composed), Key(decomposed))
}

func TestKey_DistinguishesEveryField(t *testing.T) {
	base := sampleQuery()
	variants := []ranking.Query{base, base, base, base, base}
	variants[0].Dest = "Chicago IL"
	variants[1].Day = 11
	variants[2].DirectOnly = true
	variants[3].Count = 4
	variants[4].Origin = "Portland OR"

	seen := map[string]bool{Key(base): true}
	for _, v := range variants {
		k := Key(v)
		assert.False(t, seen[k], "collision for %+v", v)
		seen[k] = true
	}
}

func TestNoOpCache(t *testing.T) {
	c := NewNoOpCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, sampleQuery(), sampleItineraries()))
	got, ok := c.Get(ctx, sampleQuery())
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.NoError(t, c.Close())
}

func TestRedisCache_UnreachableServerIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewRedisCacheFromClient(client, time.Minute)
	defer c.Close()

	_, ok := c.Get(context.Background(), sampleQuery())
	assert.False(t, ok)
	assert.Error(t, c.Set(context.Background(), sampleQuery(), sampleItineraries()))
}

func TestNewRedisCache_PingFailure(t *testing.T) {
	_, err := NewRedisCache(context.Background(), RedisConfig{Addr: "127.0.0.1:1"})
	assert.ErrorContains(t, err, "ping redis")
}

// TestRedisCache_RoundTrip needs a live server; set FLIGHTBOOK_TEST_REDIS_ADDR
// to run it.
func TestRedisCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("FLIGHTBOOK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FLIGHTBOOK_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisConfig{Addr: addr, TTL: time.Minute})
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Purge(ctx))

	_, ok := c.Get(ctx, sampleQuery())
	assert.False(t, ok)

	want := sampleItineraries()
	require.NoError(t, c.Set(ctx, sampleQuery(), want))

	got, ok := c.Get(ctx, sampleQuery())
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, c.Set(ctx, ranking.Query{Origin: "A", Dest: "B", Day: 1, Count: 1}, nil))
	empty, ok := c.Get(ctx, ranking.Query{Origin: "A", Dest: "B", Day: 1, Count: 1})
	require.True(t, ok, "empty results are cached too")
	assert.Empty(t, empty)

	require.NoError(t, c.Purge(ctx))
	_, ok = c.Get(ctx, sampleQuery())
	assert.False(t, ok)
}
