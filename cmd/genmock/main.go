// Command genmock generates a deterministic synthetic HURDAT2 best-track
// fixture for pipeline and load testing. Tracks drift northwest from the
// Caribbean with an intensification/decay wind curve; the same seed always
// produces the same file.
//
// Usage:
//
//	go run ./cmd/genmock -out testdata/synthetic.txt -storms 25 -year 2005
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/couchcryptid/hurdat2-etl/internal/domain"
)

const missingSentinel = -999

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the synthetic HURDAT2 file")
	storms := flag.Int("storms", 10, "number of storms to generate")
	year := flag.Int("year", 2005, "season year")
	basin := flag.String("basin", "AL", "basin prefix for every storm")
	seed := flag.Int64("seed", 42, "PRNG seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close() //nolint:errcheck

	w := bufio.NewWriter(f)
	rng := rand.New(rand.NewSource(*seed)) //nolint:gosec // reproducibility beats entropy here

	for n := 1; n <= *storms; n++ {
		if err := writeStorm(w, rng, *basin, n, *year); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	fmt.Printf("wrote %d storms to %s\n", *storms, *out)
	return nil
}

func writeStorm(w *bufio.Writer, rng *rand.Rand, basin string, number, year int) error {
	obsCount := 8 + rng.Intn(40)
	name := "UNNAMED"
	if rng.Float64() < 0.8 {
		name = stormNames[rng.Intn(len(stormNames))]
	}

	if _, err := fmt.Fprintf(w, "%s%02d%d,%19s,%7d,\n", basin, number, year, name, obsCount); err != nil {
		return err
	}

	// Genesis in the deep tropics, drifting northwest every six hours.
	lat := 10.0 + rng.Float64()*10
	lon := -30.0 - rng.Float64()*30
	wind := 20 + rng.Intn(15)
	peakAt := obsCount / 2
	start := time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, rng.Intn(150))

	for i := 0; i < obsCount; i++ {
		at := start.Add(time.Duration(i) * 6 * time.Hour)

		if i < peakAt {
			wind += rng.Intn(15)
		} else {
			wind -= rng.Intn(12)
		}
		if wind < 15 {
			wind = 15
		}
		lat += 0.1 + rng.Float64()*0.4
		lon -= 0.2 + rng.Float64()*0.6

		if err := writeObservation(w, rng, at, lat, lon, wind, i == peakAt); err != nil {
			return err
		}
	}
	return nil
}

func writeObservation(w *bufio.Writer, rng *rand.Rand, at time.Time, lat, lon float64, wind int, atPeak bool) error {
	status := statusFor(wind)
	pressure := 1013 - wind
	recordID := " "
	if atPeak && rng.Float64() < 0.3 {
		recordID = "I"
	}

	radii := [13]int{}
	for k := range radii {
		radii[k] = missingSentinel
	}
	if wind >= 34 {
		base := wind + rng.Intn(60)
		for k := 0; k < 4; k++ {
			radii[k] = base - rng.Intn(20)
		}
		radii[12] = 10 + rng.Intn(30)
	}
	if wind >= 50 {
		for k := 4; k < 8; k++ {
			radii[k] = 20 + rng.Intn(40)
		}
	}
	if wind >= 64 {
		for k := 8; k < 12; k++ {
			radii[k] = 10 + rng.Intn(25)
		}
	}

	_, err := fmt.Fprintf(w,
		"%s, %s,%2s, %s, %5.1fN, %6.1fW, %3d, %4d, %4d, %4d, %4d, %4d, %4d, %4d, %4d, %4d, %4d, %4d, %4d, %4d, %4d,\n",
		at.Format("20060102"), at.Format("1504"), recordID, status,
		lat, -lon, wind, pressure,
		radii[0], radii[1], radii[2], radii[3],
		radii[4], radii[5], radii[6], radii[7],
		radii[8], radii[9], radii[10], radii[11],
		radii[12],
	)
	return err
}

func statusFor(wind int) domain.Status {
	switch {
	case wind >= 64:
		return domain.StatusHurricane
	case wind >= 34:
		return domain.StatusTropicalStorm
	default:
		return domain.StatusTropicalDepression
	}
}

var stormNames = []string{
	"ARLENE", "BRET", "CINDY", "DENNIS", "EMILY", "FRANKLIN", "GERT",
	"HARVEY", "IRENE", "JOSE", "KATRINA", "LEE", "MARIA", "NATE",
	"OPHELIA", "PHILIPPE", "RITA", "STAN", "TAMMY", "VINCE", "WILMA",
}
