package booking

import (
	"context"
	"slices"

	"github.com/roach88/flightbook/internal/cache"
	"github.com/roach88/flightbook/internal/flight"
	"github.com/roach88/flightbook/internal/ranking"
	"github.com/roach88/flightbook/internal/store"
)

// search returns the ranked itineraries for a normalized, validated query,
// consulting the cache first. Concurrent misses for the same query share one
// storage round trip.
func (s *Service) search(ctx context.Context, q ranking.Query) ([]flight.Itinerary, error) {
	if cached, ok := s.cache.Get(ctx, q); ok {
		s.logger.Debug("search cache hit", "origin", q.Origin, "dest", q.Dest, "day", q.Day)
		return cached, nil
	}

	v, err, _ := s.searches.Do(cache.Key(q), func() (any, error) {
		var results []flight.Itinerary
		_, err := s.retry.Do(ctx, "search", func(ctx context.Context) error {
			return s.store.InTx(ctx, store.TxOptions{ReadOnly: true}, func(tx *store.Tx) error {
				var err error
				results, err = ranking.Search(ctx, tx, q)
				return err
			})
		})
		if err != nil {
			return nil, err
		}

		if err := s.cache.Set(ctx, q, results); err != nil {
			s.logger.Warn("failed to cache search result", "error", err)
		}
		return results, nil
	})
	if err != nil {
		return nil, err
	}

	// The slice is shared by every caller of the same singleflight call.
	return slices.Clone(v.([]flight.Itinerary)), nil
}
