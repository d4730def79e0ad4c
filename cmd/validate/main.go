// Command validate runs integrity checks against an already loaded HURDAT2
// database: schema completeness, basin coverage, intensity distribution, and
// spatial extent. It prints a per-phase pass/fail summary and exits non-zero
// when any phase fails.
//
// Usage:
//
//	go run ./cmd/validate -db hurdat2.db
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/hurdat2-etl/internal/load"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dbPath := flag.String("db", "", "path to a loaded HURDAT2 database")
	spatialitePath := flag.String("spatialite", "mod_spatialite", "SpatiaLite extension library")
	flag.Parse()

	if *dbPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dbPath, *spatialitePath); code != 0 {
		os.Exit(code)
	}
}

func run(dbPath, spatialitePath string) int {
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "database not found: %v\n", err)
		return 1
	}

	db, err := load.Open(dbPath, spatialitePath, 2)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		return 1
	}
	defer db.Close() //nolint:errcheck

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	reporter := load.NewReporter(db, logger, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	results, err := reporter.Validate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validation failed: %v\n", err)
		return 1
	}
	reporter.Report(results)

	phases := []*phase{
		checkSchema(results),
		checkBasins(results),
		checkIntensity(results),
		checkSpatial(results),
	}

	failed := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		failed++
		fmt.Printf("FAIL %s\n", p.name)
		for _, msg := range p.errors {
			fmt.Printf("     %s\n", msg)
		}
	}
	if failed > 0 {
		fmt.Printf("%d of %d phases failed\n", failed, len(phases))
		return 1
	}
	fmt.Printf("all %d phases passed\n", len(phases))
	return 0
}

func checkSchema(results *load.ValidationResults) *phase {
	p := &phase{name: "schema"}
	objects := make(map[string]string, len(results.Schema))
	for _, obj := range results.Schema {
		objects[obj.Name] = obj.Type
	}
	for _, want := range []struct{ name, typ string }{
		{"storms", "table"},
		{"observations", "table"},
		{"observations_geom_validate", "trigger"},
		{"observations_validate", "trigger"},
		{"idx_storms_year", "index"},
		{"idx_observations_date", "index"},
	} {
		if objects[want.name] != want.typ {
			p.errorf("missing %s %q", want.typ, want.name)
		}
	}
	return p
}

func checkBasins(results *load.ValidationResults) *phase {
	p := &phase{name: "basin coverage"}
	if len(results.Basins) == 0 {
		p.errorf("no basins loaded")
		return p
	}
	currentYear := time.Now().Year()
	for _, bs := range results.Basins {
		if bs.StormCount <= 0 {
			p.errorf("basin %s has no storms", bs.Basin)
		}
		if bs.FirstYear < 1851 || bs.LastYear > currentYear {
			p.errorf("basin %s year range %d-%d outside 1851-%d",
				bs.Basin, bs.FirstYear, bs.LastYear, currentYear)
		}
		if bs.ActiveYears < 1 || bs.ActiveYears > bs.LastYear-bs.FirstYear+1 {
			p.errorf("basin %s active years %d inconsistent with range %d-%d",
				bs.Basin, bs.ActiveYears, bs.FirstYear, bs.LastYear)
		}
		if bs.AvgObservations < 1 {
			p.errorf("basin %s averages under one observation per storm", bs.Basin)
		}
	}
	return p
}

func checkIntensity(results *load.ValidationResults) *phase {
	p := &phase{name: "intensity distribution"}
	if len(results.Intensity) == 0 {
		p.errorf("no intensity data (every max_wind is NULL)")
		return p
	}
	for _, is := range results.Intensity {
		if is.ObservationCount <= 0 {
			p.errorf("category %s has no observations", is.Category)
		}
		if is.MaxWind < 0 {
			p.errorf("category %s has negative max wind %d", is.Category, is.MaxWind)
		}
		if is.FirstYear > is.LastYear {
			p.errorf("category %s year range %d-%d is inverted",
				is.Category, is.FirstYear, is.LastYear)
		}
		if is.MinPressure != nil && is.AvgPressure != nil && float64(*is.MinPressure) > *is.AvgPressure {
			p.errorf("category %s minimum pressure %d exceeds average %.1f",
				is.Category, *is.MinPressure, *is.AvgPressure)
		}
	}
	return p
}

func checkSpatial(results *load.ValidationResults) *phase {
	p := &phase{name: "spatial coverage"}
	s := results.Spatial
	if s == nil || s.ObservationCount == 0 {
		p.errorf("no observations loaded")
		return p
	}
	if s.MinLatitude < -90 || s.MaxLatitude > 90 {
		p.errorf("latitude extent %v to %v out of range", s.MinLatitude, s.MaxLatitude)
	}
	if s.MinLongitude < -180 || s.MaxLongitude > 180 {
		p.errorf("longitude extent %v to %v out of range", s.MinLongitude, s.MaxLongitude)
	}
	if s.ActiveMonths <= 0 {
		p.errorf("no active months recorded")
	}
	return p
}
