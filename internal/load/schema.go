package load

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/hurdat2-etl/internal/config"
)

const (
	initAttempts = 3
	initBackoff  = 500 * time.Millisecond
)

const createTablesSQL = `
DROP TABLE IF EXISTS observations;
DROP TABLE IF EXISTS storms;

CREATE TABLE storms (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    basin TEXT NOT NULL,
    cyclone_number INTEGER NOT NULL,
    year INTEGER NOT NULL,
    name TEXT NOT NULL,
    UNIQUE(basin, cyclone_number, year),
    CONSTRAINT valid_basin CHECK (basin IN ('AL', 'EP', 'CP')),
    CONSTRAINT valid_cyclone_number CHECK (cyclone_number > 0),
    CONSTRAINT valid_year CHECK (year >= 1851)
);

CREATE TABLE observations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    storm_id INTEGER NOT NULL,
    date TEXT NOT NULL,
    record_identifier TEXT,
    status TEXT NOT NULL,
    max_wind INTEGER,
    min_pressure INTEGER,
    ne34 INTEGER,
    se34 INTEGER,
    sw34 INTEGER,
    nw34 INTEGER,
    ne50 INTEGER,
    se50 INTEGER,
    sw50 INTEGER,
    nw50 INTEGER,
    ne64 INTEGER,
    se64 INTEGER,
    sw64 INTEGER,
    nw64 INTEGER,
    max_wind_radius INTEGER,
    FOREIGN KEY(storm_id) REFERENCES storms(id) ON DELETE CASCADE
);
`

// geometryTriggerSQL is the storage-layer second line of defense for the
// geometry column: null, non-point, wrong-SRID, or out-of-range coordinates
// roll the statement back.
const geometryTriggerSQL = `
CREATE TRIGGER observations_geom_validate
BEFORE INSERT ON observations
FOR EACH ROW
BEGIN
    SELECT CASE
        WHEN NEW.geom IS NULL THEN
            RAISE(ROLLBACK, 'Geometry cannot be null')
        WHEN GeometryType(NEW.geom) != 'POINT' THEN
            RAISE(ROLLBACK, 'Invalid geometry type')
        WHEN ST_SRID(NEW.geom) != 4326 THEN
            RAISE(ROLLBACK, 'Invalid SRID')
        WHEN ST_X(NEW.geom) < -180 OR ST_X(NEW.geom) > 180 THEN
            RAISE(ROLLBACK, 'Longitude out of range (-180 to 180)')
        WHEN ST_Y(NEW.geom) < -90 OR ST_Y(NEW.geom) > 90 THEN
            RAISE(ROLLBACK, 'Latitude out of range (-90 to 90)')
    END;
END;
`

// attributeTriggerSQL rejects status codes outside the closed set and
// negative wind/pressure values that are not missing sentinels. The typed
// model stores sentinels as NULL; tolerating the literals here only matters
// for rows loaded by hand.
const attributeTriggerSQL = `
CREATE TRIGGER observations_validate
BEFORE INSERT ON observations
FOR EACH ROW
BEGIN
    SELECT CASE
        WHEN NEW.status NOT IN (
            'TD', 'TS', 'HU', 'EX', 'SD', 'SS', 'LO', 'WV', 'DB'
        ) THEN
            RAISE(ROLLBACK, 'Invalid storm status')
        WHEN NEW.max_wind < 0 AND NEW.max_wind NOT IN (-999, -99) THEN
            RAISE(ROLLBACK, 'Invalid max wind value')
        WHEN NEW.min_pressure < 0
            AND NEW.min_pressure NOT IN (-999, -99) THEN
            RAISE(ROLLBACK, 'Invalid min pressure value')
    END;
END;
`

const createIndicesSQL = `
CREATE INDEX idx_storms_year ON storms(year);
CREATE INDEX idx_storms_basin ON storms(basin);
CREATE INDEX idx_observations_date ON observations(date);
CREATE INDEX idx_observations_status ON observations(status);
`

// SchemaManager creates a fresh database schema, destroying any prior
// database at the target path.
type SchemaManager struct {
	cfg    *config.Config
	logger *slog.Logger
	clock  clockwork.Clock
}

// NewSchemaManager creates a schema manager. A nil clock means real time.
func NewSchemaManager(cfg *config.Config, logger *slog.Logger, clock clockwork.Clock) *SchemaManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SchemaManager{cfg: cfg, logger: logger, clock: clock}
}

// Initialize builds the complete schema from nothing. Transient failures are
// retried with a fixed backoff before an InitError surfaces.
func (m *SchemaManager) Initialize(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= initAttempts; attempt++ {
		if attempt > 1 {
			m.logger.Warn("schema initialization retrying", "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return &InitError{Err: ctx.Err()}
			case <-m.clock.After(initBackoff):
			}
		}
		if lastErr = m.initialize(ctx); lastErr == nil {
			m.logger.Info("database initialized", "path", m.cfg.DBPath)
			return nil
		}
	}
	return &InitError{Err: lastErr}
}

func (m *SchemaManager) initialize(ctx context.Context) error {
	if err := os.Remove(m.cfg.DBPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}
	// WAL sidecars from a prior run must not outlive the database file.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(m.cfg.DBPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove existing database: %w", err)
		}
	}

	db, err := Open(m.cfg.DBPath, m.cfg.SpatialitePath, m.cfg.PoolSize)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // schema init owns this handle

	steps := []struct {
		name string
		sql  string
	}{
		{"initialize spatial metadata", "SELECT InitSpatialMetadata(1)"},
		{"create base tables", createTablesSQL},
		{"add geometry column", "SELECT AddGeometryColumn('observations', 'geom', 4326, 'POINT', 'XY')"},
		{"create geometry trigger", geometryTriggerSQL},
		{"create attribute trigger", attributeTriggerSQL},
		{"create indices", createIndicesSQL},
		{"create spatial index", "SELECT CreateSpatialIndex('observations', 'geom')"},
	}
	for _, step := range steps {
		if err := execStep(ctx, db, step.name, step.sql); err != nil {
			return err
		}
	}
	return nil
}

func execStep(ctx context.Context, db *sql.DB, name, stmt string) error {
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
