// Package extract parses HURDAT2 text into storm aggregates.
package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/hurdat2-etl/internal/domain"
)

const (
	headerFieldCount      = 3
	observationFieldCount = 21
	cycloneIDLength       = 8

	dateTimeLayout = "200601021504" // YYYYMMDD + HHMM
)

// Header carries the parsed fields of a HURDAT2 header line. The name is
// returned as-is; empty-name policy belongs to the caller.
type Header struct {
	Basin            string
	CycloneNumber    int
	Year             int
	Name             string
	ObservationCount int
}

// ParseHeader parses a header line such as
// "AL122007,              KAREN,     19,". Trailing commas and whitespace are
// stripped before splitting; exactly three fields must remain.
func ParseHeader(line string) (Header, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Header{}, errors.New("empty header line")
	}
	line = strings.TrimRight(line, ",")

	parts := strings.Split(line, ",")
	if len(parts) != headerFieldCount {
		return Header{}, fmt.Errorf("expected %d header fields, got %d", headerFieldCount, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	cycloneID := parts[0]
	if len(cycloneID) != cycloneIDLength {
		return Header{}, fmt.Errorf("invalid cyclone id %q: want %d characters", cycloneID, cycloneIDLength)
	}

	number, err := strconv.Atoi(cycloneID[2:4])
	if err != nil {
		return Header{}, fmt.Errorf("invalid cyclone number in %q: %w", cycloneID, err)
	}
	year, err := strconv.Atoi(cycloneID[4:])
	if err != nil {
		return Header{}, fmt.Errorf("invalid year in %q: %w", cycloneID, err)
	}
	count, err := strconv.Atoi(parts[2])
	if err != nil {
		return Header{}, fmt.Errorf("invalid observation count %q: %w", parts[2], err)
	}
	if count < 0 {
		return Header{}, fmt.Errorf("observation count must be non-negative, got %d", count)
	}

	return Header{
		Basin:            cycloneID[:2],
		CycloneNumber:    number,
		Year:             year,
		Name:             parts[1],
		ObservationCount: count,
	}, nil
}

// ParseObservation parses one observation line of at least 21 comma-separated
// fields. Extra trailing fields (a trailing comma in some file vintages) are
// ignored; fewer fields is a hard error, since silently dropping fields would
// corrupt wind-radii quadrant assignment. Numeric values matching one of the
// missing sentinels become nil.
func ParseObservation(line string, missing map[int]struct{}) (domain.Observation, error) {
	if strings.TrimSpace(line) == "" {
		return domain.Observation{}, errors.New("empty observation line")
	}

	fields := strings.Split(line, ",")
	if len(fields) < observationFieldCount {
		return domain.Observation{}, fmt.Errorf("expected %d observation fields, got %d", observationFieldCount, len(fields))
	}
	for i := 0; i < observationFieldCount; i++ {
		fields[i] = strings.TrimSpace(fields[i])
	}

	date, err := time.Parse(dateTimeLayout, fields[0]+fields[1])
	if err != nil {
		return domain.Observation{}, fmt.Errorf("invalid date/time %q %q: %w", fields[0], fields[1], err)
	}

	status, err := domain.ParseStatus(fields[3])
	if err != nil {
		return domain.Observation{}, err
	}

	location, err := domain.NewPointFromStrings(fields[4], fields[5])
	if err != nil {
		return domain.Observation{}, err
	}

	values := make([]*int, observationFieldCount-6)
	for i := range values {
		v, err := parsePossibleMissing(fields[i+6], missing)
		if err != nil {
			return domain.Observation{}, err
		}
		values[i] = v
	}

	obs := domain.Observation{
		Date:             date,
		RecordIdentifier: fields[2],
		Status:           status,
		Location:         location,
		MaxWind:          values[0],
		MinPressure:      values[1],
		NE34:             values[2],
		SE34:             values[3],
		SW34:             values[4],
		NW34:             values[5],
		NE50:             values[6],
		SE50:             values[7],
		SW50:             values[8],
		NW50:             values[9],
		NE64:             values[10],
		SE64:             values[11],
		SW64:             values[12],
		NW64:             values[13],
		MaxWindRadius:    values[14],
	}
	if err := obs.Validate(); err != nil {
		return domain.Observation{}, err
	}
	return obs, nil
}

// parsePossibleMissing parses an integer field that may carry a missing-value
// sentinel. Sentinels map to nil; any other value is kept literally and
// range-checked later at the model layer.
func parsePossibleMissing(s string, missing map[int]struct{}) (*int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid numeric field %q: %w", s, err)
	}
	if _, ok := missing[v]; ok {
		return nil, nil
	}
	return &v, nil
}
