package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxLatitude bounds valid latitudes in decimal degrees.
const MaxLatitude = 90.0

// Point is a geographic position in WGS-84 decimal degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// NewPoint builds a Point from decimal degrees. Longitude is renormalized into
// (-180, 180]; an out-of-range latitude is an error, never normalized.
func NewPoint(lat, lon float64) (Point, error) {
	if lat < -MaxLatitude || lat > MaxLatitude {
		return Point{}, fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	}
	return Point{Latitude: lat, Longitude: NormalizeLongitude(lon)}, nil
}

// NewPointFromStrings builds a Point from HURDAT2 coordinate strings such as
// "29.1N" / "90.2W".
func NewPointFromStrings(latStr, lonStr string) (Point, error) {
	lat, err := ParseCoordinate(latStr)
	if err != nil {
		return Point{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := ParseCoordinate(lonStr)
	if err != nil {
		return Point{}, fmt.Errorf("longitude: %w", err)
	}
	return NewPoint(lat, lon)
}

// ParseCoordinate converts a HURDAT2 coordinate string ("29.1N") into signed
// decimal degrees. S and W negate, N and E keep the sign.
func ParseCoordinate(coord string) (float64, error) {
	coord = strings.ToUpper(strings.TrimSpace(coord))
	if len(coord) < 2 {
		return 0, fmt.Errorf("invalid coordinate %q", coord)
	}
	dir := coord[len(coord)-1]
	value, err := strconv.ParseFloat(strings.TrimSpace(coord[:len(coord)-1]), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid coordinate %q: %w", coord, err)
	}
	switch dir {
	case 'N', 'E':
		return value, nil
	case 'S', 'W':
		return -value, nil
	default:
		return 0, fmt.Errorf("invalid coordinate %q: unknown direction %q", coord, string(dir))
	}
}

// NormalizeLongitude maps any longitude in degrees into (-180, 180]. The
// intermediate modulo is forced non-negative so that inputs on either side of
// the antimeridian (200, -200) fold to the correct hemisphere; -180 maps to
// +180 to keep the range half-open.
func NormalizeLongitude(lon float64) float64 {
	norm := math.Mod(lon+180, 360)
	if norm < 0 {
		norm += 360
	}
	norm -= 180
	if norm == -180 {
		return 180
	}
	return norm
}

// WKT renders the point as Well-Known Text for the spatial engine,
// longitude first per the WKT axis convention.
func (p Point) WKT() string {
	return "POINT(" + formatDegrees(p.Longitude) + " " + formatDegrees(p.Latitude) + ")"
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
