// Package flight defines the immutable flight rows read from storage and the
// one- or two-leg itineraries built from them.
package flight

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Flight is a single scheduled flight instance. Rows are read-only to the
// booking engine.
type Flight struct {
	ID         int64  `json:"fid" yaml:"fid"`
	DayOfMonth int    `json:"day_of_month" yaml:"day_of_month"`
	CarrierID  string `json:"carrier_id" yaml:"carrier_id"`
	FlightNum  string `json:"flight_num" yaml:"flight_num"`
	OriginCity string `json:"origin_city" yaml:"origin_city"`
	DestCity   string `json:"dest_city" yaml:"dest_city"`
	Duration   int    `json:"duration" yaml:"duration"` // minutes
	Capacity   int    `json:"capacity" yaml:"capacity"`
	Price      int    `json:"price" yaml:"price"`
	Canceled   bool   `json:"canceled,omitempty" yaml:"canceled,omitempty"`
}

// String renders the flight in the line format shown to users.
func (f Flight) String() string {
	return fmt.Sprintf("ID: %d Day: %d Carrier: %s Number: %s Origin: %s Dest: %s Duration: %d Capacity: %d Price: %d",
		f.ID, f.DayOfMonth, f.CarrierID, f.FlightNum, f.OriginCity, f.DestCity, f.Duration, f.Capacity, f.Price)
}

// Validate reports whether the row can be stored.
func (f Flight) Validate() error {
	switch {
	case f.ID <= 0:
		return fmt.Errorf("flight id must be positive, got %d", f.ID)
	case f.DayOfMonth < 1 || f.DayOfMonth > 31:
		return fmt.Errorf("flight %d: day_of_month %d out of range", f.ID, f.DayOfMonth)
	case f.OriginCity == "" || f.DestCity == "":
		return fmt.Errorf("flight %d: origin and destination are required", f.ID)
	case f.Duration < 0 || f.Capacity < 0 || f.Price < 0:
		return fmt.Errorf("flight %d: duration, capacity and price must be non-negative", f.ID)
	}
	return nil
}

// NormalizeCity returns the canonical form of a city name used in queries and
// cache keys: surrounding space trimmed and Unicode NFC composed, so that
// "São Paulo" and "São Paulo" address the same rows.
func NormalizeCity(city string) string {
	return norm.NFC.String(strings.TrimSpace(city))
}
