package domain

import (
	"fmt"
	"slices"
)

const (
	// MaxCycloneNumber is the highest ATCF sequence number within a year.
	MaxCycloneNumber = 99
	// MinYear and MaxYear bound the sane historical range for storm years.
	MinYear = 1800
	MaxYear = 2100
)

// DefaultBasins is the basin allow-list when no configuration overrides it:
// Atlantic, Eastern Pacific, Central Pacific.
var DefaultBasins = []string{"AL", "EP", "CP"}

// Storm is one cyclone: a header plus its observations in file order, which
// is chronological order. A storm owns its observations exclusively.
type Storm struct {
	Basin         string
	CycloneNumber int
	Year          int
	Name          string
	Observations  []Observation
}

// ID returns the natural key, e.g. "AL122007".
func (s *Storm) ID() string {
	return fmt.Sprintf("%s%02d%d", s.Basin, s.CycloneNumber, s.Year)
}

// ObservationCount returns the number of observations.
func (s *Storm) ObservationCount() int {
	return len(s.Observations)
}

// Validate checks the header fields against the given basin allow-list
// (nil means DefaultBasins) and validates every observation.
func (s *Storm) Validate(basins []string) error {
	if basins == nil {
		basins = DefaultBasins
	}
	if !slices.Contains(basins, s.Basin) {
		return fmt.Errorf("invalid basin %q, expected one of %v", s.Basin, basins)
	}
	if s.CycloneNumber < 0 || s.CycloneNumber > MaxCycloneNumber {
		return fmt.Errorf("cyclone number must be between 0-%d, got %d", MaxCycloneNumber, s.CycloneNumber)
	}
	if s.Year < MinYear || s.Year > MaxYear {
		return fmt.Errorf("year must be between %d-%d, got %d", MinYear, MaxYear, s.Year)
	}
	if s.Name == "" {
		return fmt.Errorf("storm %s has an empty name", s.ID())
	}
	for i := range s.Observations {
		if err := s.Observations[i].Validate(); err != nil {
			return fmt.Errorf("observation %d: %w", i, err)
		}
	}
	return nil
}
