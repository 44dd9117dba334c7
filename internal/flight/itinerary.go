package flight

import (
	"fmt"
	"strings"
)

// Itinerary is a direct flight (Flight2 == nil) or a connection of two flights
// on the same day where Flight1.DestCity == Flight2.OriginCity.
type Itinerary struct {
	Flight1 Flight  `json:"flight1"`
	Flight2 *Flight `json:"flight2,omitempty"`
}

// Direct builds a one-leg itinerary.
func Direct(f Flight) Itinerary {
	return Itinerary{Flight1: f}
}

// Connecting builds a two-leg itinerary.
func Connecting(first, second Flight) Itinerary {
	return Itinerary{Flight1: first, Flight2: &second}
}

// Size is the number of legs, 1 or 2.
func (it Itinerary) Size() int {
	if it.Flight2 == nil {
		return 1
	}
	return 2
}

// TotalDuration is the sum of leg durations in minutes.
func (it Itinerary) TotalDuration() int {
	total := it.Flight1.Duration
	if it.Flight2 != nil {
		total += it.Flight2.Duration
	}
	return total
}

// Cost is the sum of leg prices.
func (it Itinerary) Cost() int {
	total := it.Flight1.Price
	if it.Flight2 != nil {
		total += it.Flight2.Price
	}
	return total
}

// Flights returns the legs in travel order.
func (it Itinerary) Flights() []Flight {
	if it.Flight2 == nil {
		return []Flight{it.Flight1}
	}
	return []Flight{it.Flight1, *it.Flight2}
}

// Less orders itineraries by total duration, then first leg id, then second
// leg id. A direct itinerary sorts before a connecting one with the same
// duration and first leg.
func (it Itinerary) Less(other Itinerary) bool {
	if a, b := it.TotalDuration(), other.TotalDuration(); a != b {
		return a < b
	}
	if it.Flight1.ID != other.Flight1.ID {
		return it.Flight1.ID < other.Flight1.ID
	}
	return secondID(it) < secondID(other)
}

func secondID(it Itinerary) int64 {
	if it.Flight2 == nil {
		return 0
	}
	return it.Flight2.ID
}

// Format renders the itinerary block for position index:
//
//	Itinerary 0: 1 flight(s), 280 minutes
//	ID: 2 Day: 10 ...
func (it Itinerary) Format(index int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Itinerary %d: %d flight(s), %d minutes\n", index, it.Size(), it.TotalDuration())
	for _, f := range it.Flights() {
		sb.WriteString(f.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
