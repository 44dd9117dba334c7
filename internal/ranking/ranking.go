// Package ranking turns raw direct and connecting flight rows into the top-N
// itineraries ordered by total duration.
//
// Direct and connecting candidates arrive as two streams, each already sorted
// by the storage layer. Merge interleaves them through a min-heap keyed on
// (total duration, first leg id, second leg id) and emits at most N entries.
// Positions in the returned slice are the itinerary ids a session may book.
package ranking

import (
	"container/heap"
	"context"
	"fmt"

	"github.com/roach88/flightbook/internal/flight"
)

// Query describes one search request.
type Query struct {
	Origin     string `json:"origin"`
	Dest       string `json:"dest"`
	Day        int    `json:"day"`
	DirectOnly bool   `json:"direct_only"`
	Count      int    `json:"count"`
}

// Normalize returns q with canonical city names.
func (q Query) Normalize() Query {
	q.Origin = flight.NormalizeCity(q.Origin)
	q.Dest = flight.NormalizeCity(q.Dest)
	return q
}

// Validate rejects requests that can never match.
func (q Query) Validate() error {
	if q.Count < 0 {
		return fmt.Errorf("itinerary count must be non-negative, got %d", q.Count)
	}
	if q.Origin == "" || q.Dest == "" {
		return fmt.Errorf("origin and destination are required")
	}
	return nil
}

// Source fetches the two candidate streams. Implementations must return rows
// that are not canceled, sorted as documented, and at most limit long.
type Source interface {
	// DirectFlights returns origin→dest flights on day ordered by duration, fid.
	DirectFlights(ctx context.Context, origin, dest string, day, limit int) ([]flight.Flight, error)

	// ConnectingFlights returns same-day two-leg itineraries ordered by
	// combined duration, first fid, second fid.
	ConnectingFlights(ctx context.Context, origin, dest string, day, limit int) ([]flight.Itinerary, error)
}

// Search runs the direct fetch, the connecting fetch when direct results fall
// short of q.Count and connections are allowed, and merges both.
func Search(ctx context.Context, src Source, q Query) ([]flight.Itinerary, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if q.Count == 0 {
		return nil, nil
	}

	direct, err := src.DirectFlights(ctx, q.Origin, q.Dest, q.Day, q.Count)
	if err != nil {
		return nil, fmt.Errorf("direct flights: %w", err)
	}

	var connecting []flight.Itinerary
	if !q.DirectOnly && len(direct) < q.Count {
		connecting, err = src.ConnectingFlights(ctx, q.Origin, q.Dest, q.Day, q.Count-len(direct))
		if err != nil {
			return nil, fmt.Errorf("connecting flights: %w", err)
		}
	}

	candidates := make([]flight.Itinerary, 0, len(direct)+len(connecting))
	for _, f := range direct {
		candidates = append(candidates, flight.Direct(f))
	}
	candidates = append(candidates, connecting...)

	return Merge(candidates, q.Count), nil
}

// Merge returns up to n itineraries from candidates in rank order.
func Merge(candidates []flight.Itinerary, n int) []flight.Itinerary {
	if n <= 0 || len(candidates) == 0 {
		return nil
	}

	pq := make(itineraryHeap, len(candidates))
	copy(pq, candidates)
	heap.Init(&pq)

	out := make([]flight.Itinerary, 0, min(n, len(candidates)))
	for pq.Len() > 0 && len(out) < n {
		out = append(out, heap.Pop(&pq).(flight.Itinerary))
	}
	return out
}

// itineraryHeap is a min-heap under flight.Itinerary.Less.
type itineraryHeap []flight.Itinerary

func (h itineraryHeap) Len() int           { return len(h) }
func (h itineraryHeap) Less(i, j int) bool { return h[i].Less(h[j]) }
func (h itineraryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *itineraryHeap) Push(x any) {
	*h = append(*h, x.(flight.Itinerary))
}

func (h *itineraryHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
