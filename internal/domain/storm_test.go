package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intptr(v int) *int { return &v }

func validObservation() Observation {
	return Observation{
		Date:     time.Date(2007, 9, 25, 0, 0, 0, 0, time.UTC),
		Status:   StatusTropicalDepression,
		Location: Point{Latitude: 10.0, Longitude: -35.9},
		MaxWind:  intptr(30),
	}
}

func validStorm() Storm {
	return Storm{
		Basin:         "AL",
		CycloneNumber: 12,
		Year:          2007,
		Name:          "KAREN",
		Observations:  []Observation{validObservation()},
	}
}

func TestStormID(t *testing.T) {
	s := validStorm()
	assert.Equal(t, "AL122007", s.ID())

	s.CycloneNumber = 9
	s.Year = 2021
	assert.Equal(t, "AL092021", s.ID())
}

func TestStormValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s := validStorm()
		require.NoError(t, s.Validate(nil))
	})

	t.Run("basin outside allow-list", func(t *testing.T) {
		s := validStorm()
		s.Basin = "XX"
		assert.Error(t, s.Validate(nil))
	})

	t.Run("custom allow-list", func(t *testing.T) {
		s := validStorm()
		s.Basin = "EP"
		assert.NoError(t, s.Validate(nil))
		assert.Error(t, s.Validate([]string{"AL"}))
	})

	t.Run("cyclone number out of range", func(t *testing.T) {
		s := validStorm()
		s.CycloneNumber = 100
		assert.Error(t, s.Validate(nil))
		s.CycloneNumber = -1
		assert.Error(t, s.Validate(nil))
		s.CycloneNumber = 0
		assert.NoError(t, s.Validate(nil))
	})

	t.Run("year out of range", func(t *testing.T) {
		s := validStorm()
		s.Year = 1700
		assert.Error(t, s.Validate(nil))
		s.Year = 2200
		assert.Error(t, s.Validate(nil))
	})

	t.Run("empty name", func(t *testing.T) {
		s := validStorm()
		s.Name = ""
		assert.Error(t, s.Validate(nil))
	})

	t.Run("invalid observation surfaces with index", func(t *testing.T) {
		s := validStorm()
		s.Observations[0].MaxWind = intptr(-5)
		err := s.Validate(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "observation 0")
	})
}

func TestParseStatus(t *testing.T) {
	for _, code := range []string{"TD", "TS", "HU", "EX", "SD", "SS", "LO", "WV", "DB"} {
		st, err := ParseStatus(code)
		require.NoError(t, err, code)
		assert.Equal(t, Status(code), st)
	}

	for _, code := range []string{"", "XX", "td", "ZZ", "HUU"} {
		_, err := ParseStatus(code)
		assert.Error(t, err, code)
	}
}

func TestObservationValidate(t *testing.T) {
	t.Run("nil optionals pass", func(t *testing.T) {
		o := validObservation()
		o.MaxWind = nil
		o.MinPressure = nil
		assert.NoError(t, o.Validate())
	})

	t.Run("negative radii rejected", func(t *testing.T) {
		o := validObservation()
		o.SW64 = intptr(-1)
		err := o.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sw64")
	})

	t.Run("status outside closed set rejected", func(t *testing.T) {
		o := validObservation()
		o.Status = "XX"
		assert.Error(t, o.Validate())
	})
}
