package load

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

const schemaQuery = `
SELECT name, type
FROM sqlite_master
WHERE type IN ('table', 'trigger', 'index')
  AND name NOT LIKE 'sqlite_%'
  AND name NOT LIKE 'idx_observations_geom%'
ORDER BY type, name`

const basinQuery = `
SELECT basin,
       COUNT(*) AS storm_count,
       MIN(year) AS first_year,
       MAX(year) AS last_year,
       COUNT(DISTINCT year) AS active_years,
       (SELECT AVG(obs_count) FROM (
            SELECT COUNT(*) AS obs_count
            FROM observations o
            JOIN storms s2 ON s2.id = o.storm_id
            WHERE s2.basin = s.basin
            GROUP BY o.storm_id
        )) AS avg_observations
FROM storms s
GROUP BY basin
ORDER BY basin`

const intensityQuery = `
WITH intensity_categories AS (
    SELECT CASE
               WHEN max_wind <= 33 THEN 'depression'
               WHEN max_wind <= 63 THEN 'storm'
               WHEN max_wind <= 95 THEN 'hurricane'
               ELSE 'major_hurricane'
           END AS category,
           min_pressure,
           max_wind,
           date
    FROM observations
    WHERE max_wind IS NOT NULL
)
SELECT category,
       COUNT(*) AS observation_count,
       MIN(min_pressure) AS min_pressure,
       AVG(min_pressure) AS avg_pressure,
       MAX(max_wind) AS max_wind,
       strftime('%Y', MIN(date)) AS first_year,
       strftime('%Y', MAX(date)) AS last_year
FROM intensity_categories
GROUP BY category
ORDER BY observation_count DESC`

const spatialQuery = `
SELECT COUNT(*) AS observation_count,
       COUNT(DISTINCT storm_id) AS storm_count,
       MIN(Y(geom)) AS min_latitude,
       MAX(Y(geom)) AS max_latitude,
       MIN(CASE
               WHEN X(geom) > 180 THEN X(geom) - 360
               WHEN X(geom) < -180 THEN X(geom) + 360
               ELSE X(geom)
           END) AS min_longitude,
       MAX(CASE
               WHEN X(geom) > 180 THEN X(geom) - 360
               WHEN X(geom) < -180 THEN X(geom) + 360
               ELSE X(geom)
           END) AS max_longitude,
       COUNT(DISTINCT strftime('%m', date)) AS active_months
FROM observations`

// SchemaObject is one row of the sqlite_master inventory.
type SchemaObject struct {
	Name string
	Type string
}

// BasinStats summarizes loaded storms for a single basin.
type BasinStats struct {
	Basin           string
	StormCount      int
	FirstYear       int
	LastYear        int
	ActiveYears     int
	AvgObservations float64
}

// IntensityStats summarizes the observations whose max_wind falls in one
// Saffir-Simpson aligned bucket. Rows with a missing max_wind are excluded;
// pressure statistics are nil when every observation in the bucket lacks a
// pressure reading.
type IntensityStats struct {
	Category         string
	ObservationCount int
	MinPressure      *int
	AvgPressure      *float64
	MaxWind          int
	FirstYear        int
	LastYear         int
}

// SpatialStats summarizes the geographic and temporal extent of the loaded
// observations. Longitudes are renormalized into (-180, 180] at query time so
// basin-crossing tracks report a sane extent; ActiveMonths counts the
// distinct calendar months of the year with at least one observation.
type SpatialStats struct {
	ObservationCount int
	StormCount       int
	MinLatitude      float64
	MaxLatitude      float64
	MinLongitude     float64
	MaxLongitude     float64
	ActiveMonths     int
}

// ValidationResults aggregates the post-load analyses.
type ValidationResults struct {
	GeneratedAt time.Time
	Schema      []SchemaObject
	Basins      []BasinStats
	Intensity   []IntensityStats
	Spatial     *SpatialStats
}

// Reporter runs read-only validation analyses against a loaded database.
type Reporter struct {
	db     *sql.DB
	logger *slog.Logger
	clock  clockwork.Clock
}

// NewReporter creates a Reporter over db. A nil clock falls back to the real
// clock.
func NewReporter(db *sql.DB, logger *slog.Logger, clock clockwork.Clock) *Reporter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Reporter{db: db, logger: logger, clock: clock}
}

// Validate runs every analysis and collects the results. The first analysis
// to fail aborts the run with a ValidationError naming it.
func (r *Reporter) Validate(ctx context.Context) (*ValidationResults, error) {
	results := &ValidationResults{GeneratedAt: r.clock.Now().UTC()}

	var err error
	if results.Schema, err = r.schemaObjects(ctx); err != nil {
		return nil, &ValidationError{Analysis: "schema", Err: err}
	}
	if results.Basins, err = r.basinCoverage(ctx); err != nil {
		return nil, &ValidationError{Analysis: "basin coverage", Err: err}
	}
	if results.Intensity, err = r.intensityDistribution(ctx); err != nil {
		return nil, &ValidationError{Analysis: "intensity distribution", Err: err}
	}
	if results.Spatial, err = r.spatialCoverage(ctx); err != nil {
		return nil, &ValidationError{Analysis: "spatial coverage", Err: err}
	}
	return results, nil
}

func (r *Reporter) schemaObjects(ctx context.Context) ([]SchemaObject, error) {
	rows, err := r.db.QueryContext(ctx, schemaQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objects []SchemaObject
	for rows.Next() {
		var obj SchemaObject
		if err := rows.Scan(&obj.Name, &obj.Type); err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	return objects, rows.Err()
}

func (r *Reporter) basinCoverage(ctx context.Context) ([]BasinStats, error) {
	rows, err := r.db.QueryContext(ctx, basinQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []BasinStats
	for rows.Next() {
		var bs BasinStats
		if err := rows.Scan(&bs.Basin, &bs.StormCount, &bs.FirstYear, &bs.LastYear, &bs.ActiveYears, &bs.AvgObservations); err != nil {
			return nil, err
		}
		stats = append(stats, bs)
	}
	return stats, rows.Err()
}

func (r *Reporter) intensityDistribution(ctx context.Context) ([]IntensityStats, error) {
	rows, err := r.db.QueryContext(ctx, intensityQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []IntensityStats
	for rows.Next() {
		var (
			is       IntensityStats
			minPress sql.NullInt64
			avgPress sql.NullFloat64
		)
		if err := rows.Scan(&is.Category, &is.ObservationCount, &minPress, &avgPress, &is.MaxWind, &is.FirstYear, &is.LastYear); err != nil {
			return nil, err
		}
		if minPress.Valid {
			v := int(minPress.Int64)
			is.MinPressure = &v
		}
		if avgPress.Valid {
			is.AvgPressure = &avgPress.Float64
		}
		stats = append(stats, is)
	}
	return stats, rows.Err()
}

func (r *Reporter) spatialCoverage(ctx context.Context) (*SpatialStats, error) {
	var (
		ss             SpatialStats
		minLat, maxLat sql.NullFloat64
		minLon, maxLon sql.NullFloat64
	)
	row := r.db.QueryRowContext(ctx, spatialQuery)
	if err := row.Scan(&ss.ObservationCount, &ss.StormCount, &minLat, &maxLat, &minLon, &maxLon, &ss.ActiveMonths); err != nil {
		return nil, err
	}
	ss.MinLatitude = minLat.Float64
	ss.MaxLatitude = maxLat.Float64
	ss.MinLongitude = minLon.Float64
	ss.MaxLongitude = maxLon.Float64
	return &ss, nil
}

// Report logs the analyses in a stable order.
func (r *Reporter) Report(results *ValidationResults) {
	r.logger.Info("validation report", "generated_at", results.GeneratedAt.Format(time.RFC3339))
	for _, obj := range results.Schema {
		r.logger.Info("schema object", "name", obj.Name, "type", obj.Type)
	}
	for _, bs := range results.Basins {
		r.logger.Info("basin coverage",
			"basin", bs.Basin,
			"storms", bs.StormCount,
			"first_year", bs.FirstYear,
			"last_year", bs.LastYear,
			"active_years", bs.ActiveYears,
			"avg_observations", bs.AvgObservations,
		)
	}
	for _, is := range results.Intensity {
		r.logger.Info("intensity distribution",
			"category", is.Category,
			"observations", is.ObservationCount,
			"min_pressure", optionalValue(is.MinPressure),
			"avg_pressure", optionalValue(is.AvgPressure),
			"max_wind", is.MaxWind,
			"first_year", is.FirstYear,
			"last_year", is.LastYear,
		)
	}
	if s := results.Spatial; s != nil {
		r.logger.Info("spatial coverage",
			"observations", s.ObservationCount,
			"storms", s.StormCount,
			"latitude_range", [2]float64{s.MinLatitude, s.MaxLatitude},
			"longitude_range", [2]float64{s.MinLongitude, s.MaxLongitude},
			"active_months", s.ActiveMonths,
		)
	}
}

// optionalValue dereferences a nullable statistic for logging.
func optionalValue[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
