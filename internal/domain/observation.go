package domain

import (
	"fmt"
	"time"
)

// Status is a HURDAT2 system classification code.
type Status string

const (
	StatusTropicalDepression    Status = "TD"
	StatusTropicalStorm         Status = "TS"
	StatusHurricane             Status = "HU"
	StatusExtratropical         Status = "EX"
	StatusSubtropicalDepression Status = "SD"
	StatusSubtropicalStorm      Status = "SS"
	StatusLow                   Status = "LO"
	StatusTropicalWave          Status = "WV"
	StatusDisturbance           Status = "DB"
)

// Statuses is the closed set of valid classification codes. Downstream
// aggregation queries depend on this vocabulary staying closed.
var Statuses = map[Status]struct{}{
	StatusTropicalDepression:    {},
	StatusTropicalStorm:         {},
	StatusHurricane:             {},
	StatusExtratropical:         {},
	StatusSubtropicalDepression: {},
	StatusSubtropicalStorm:      {},
	StatusLow:                   {},
	StatusTropicalWave:          {},
	StatusDisturbance:           {},
}

// ParseStatus validates a classification code from the source text.
// An unrecognized code is an error, not a pass-through.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := Statuses[st]; !ok {
		return "", fmt.Errorf("invalid storm status %q", s)
	}
	return st, nil
}

// Observation is a single best-track entry. Optional numeric fields are nil
// when the source carried a missing-value sentinel.
type Observation struct {
	Date             time.Time
	RecordIdentifier string // single-letter code, empty when absent
	Status           Status
	Location         Point
	MaxWind          *int // knots
	MinPressure      *int // millibars

	// Wind radii: maximum extent of 34/50/64 kt winds per quadrant, in
	// nautical miles.
	NE34, SE34, SW34, NW34 *int
	NE50, SE50, SW50, NW50 *int
	NE64, SE64, SW64, NW64 *int

	MaxWindRadius *int // nautical miles
}

// Validate checks model-level range constraints: the status code must be in
// the closed set and every optional numeric field must be non-negative once
// the missing sentinels have been mapped to nil.
func (o *Observation) Validate() error {
	if _, ok := Statuses[o.Status]; !ok {
		return fmt.Errorf("invalid storm status %q", o.Status)
	}
	fields := []struct {
		name  string
		value *int
	}{
		{"max_wind", o.MaxWind},
		{"min_pressure", o.MinPressure},
		{"ne34", o.NE34}, {"se34", o.SE34}, {"sw34", o.SW34}, {"nw34", o.NW34},
		{"ne50", o.NE50}, {"se50", o.SE50}, {"sw50", o.SW50}, {"nw50", o.NW50},
		{"ne64", o.NE64}, {"se64", o.SE64}, {"sw64", o.SW64}, {"nw64", o.NW64},
		{"max_wind_radius", o.MaxWindRadius},
	}
	for _, f := range fields {
		if f.value != nil && *f.value < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", f.name, *f.value)
		}
	}
	return nil
}
