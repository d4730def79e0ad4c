package load

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/hurdat2-etl/internal/domain"
	"github.com/couchcryptid/hurdat2-etl/internal/observability"
)

const insertStormSQL = `
INSERT INTO storms (basin, cyclone_number, year, name)
VALUES (?, ?, ?, ?)
`

const insertObservationSQL = `
INSERT INTO observations (
    storm_id, date, record_identifier, status,
    max_wind, min_pressure,
    ne34, se34, sw34, nw34,
    ne50, se50, sw50, nw50,
    ne64, se64, sw64, nw64,
    max_wind_radius, geom
)
VALUES (
    ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
    ?, ?, ?, ?, ?, ?, ?, ?, ?,
    ST_PointFromText(?, 4326)
)
`

// observationDateLayout matches the ISO-8601 form the reporting queries'
// strftime calls expect.
const observationDateLayout = "2006-01-02T15:04:05"

// Inserter writes storm aggregates into an initialized database.
type Inserter struct {
	db        *sql.DB
	batchSize int
	basins    []string
	logger    *slog.Logger
	metrics   *observability.Metrics

	// Progress, when set, observes (completed, total) storm counts during a
	// run. Purely a side channel.
	Progress func(completed, total int)
}

// NewInserter creates an Inserter writing through db in observation batches
// of batchSize, revalidating storms against the basins allow-list.
func NewInserter(db *sql.DB, batchSize int, basins []string, logger *slog.Logger, metrics *observability.Metrics) *Inserter {
	return &Inserter{
		db:        db,
		batchSize: batchSize,
		basins:    basins,
		logger:    logger,
		metrics:   metrics,
	}
}

// InsertStorms inserts every storm inside a single transaction: a failure on
// any storm rolls back the whole run, so the store is never left with a
// partial load from this run. The returned error names the failing storm.
func (ins *Inserter) InsertStorms(ctx context.Context, storms []domain.Storm) error {
	if len(storms) == 0 {
		return &InsertionError{Err: errors.New("no storm data provided")}
	}

	tx, err := ins.db.BeginTx(ctx, nil)
	if err != nil {
		return &InsertionError{Err: fmt.Errorf("begin transaction: %w", err)}
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	stmt, err := tx.PrepareContext(ctx, insertObservationSQL)
	if err != nil {
		return &InsertionError{Err: fmt.Errorf("prepare observation insert: %w", err)}
	}
	defer stmt.Close() //nolint:errcheck // closed with the transaction

	for i := range storms {
		storm := &storms[i]
		if err := ins.insertStorm(ctx, tx, stmt, storm); err != nil {
			return &InsertionError{StormID: storm.ID(), Name: storm.Name, Err: err}
		}
		ins.metrics.StormsLoaded.Inc()
		if ins.Progress != nil {
			ins.Progress(i+1, len(storms))
		}
	}

	if err := tx.Commit(); err != nil {
		return &InsertionError{Err: fmt.Errorf("commit transaction: %w", err)}
	}
	ins.logger.Info("insertion complete", "storms", len(storms))
	return nil
}

func (ins *Inserter) insertStorm(ctx context.Context, tx *sql.Tx, stmt *sql.Stmt, storm *domain.Storm) error {
	// Revalidate immediately before insertion: the Transform stage and test
	// harnesses can mutate a storm between parse and load.
	if err := storm.Validate(ins.basins); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, insertStormSQL,
		storm.Basin, storm.CycloneNumber, storm.Year, storm.Name)
	if err != nil {
		return fmt.Errorf("insert storm row: %w", err)
	}
	stormID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("storm row id: %w", err)
	}

	for start := 0; start < len(storm.Observations); start += ins.batchSize {
		end := min(start+ins.batchSize, len(storm.Observations))
		batch := storm.Observations[start:end]

		began := time.Now()
		for k := range batch {
			if err := insertObservation(ctx, stmt, stormID, &batch[k]); err != nil {
				return err
			}
		}
		ins.metrics.BatchSize.Observe(float64(len(batch)))
		ins.metrics.BatchInsertDuration.Observe(time.Since(began).Seconds())
		ins.metrics.ObservationsLoaded.Add(float64(len(batch)))
	}
	return nil
}

func insertObservation(ctx context.Context, stmt *sql.Stmt, stormID int64, obs *domain.Observation) error {
	_, err := stmt.ExecContext(ctx,
		stormID,
		obs.Date.Format(observationDateLayout),
		nullString(obs.RecordIdentifier),
		string(obs.Status),
		nullInt(obs.MaxWind),
		nullInt(obs.MinPressure),
		nullInt(obs.NE34), nullInt(obs.SE34), nullInt(obs.SW34), nullInt(obs.NW34),
		nullInt(obs.NE50), nullInt(obs.SE50), nullInt(obs.SW50), nullInt(obs.NW50),
		nullInt(obs.NE64), nullInt(obs.SE64), nullInt(obs.SW64), nullInt(obs.NW64),
		nullInt(obs.MaxWindRadius),
		obs.Location.WKT(),
	)
	if err != nil {
		return fmt.Errorf("insert observation at %s: %w", obs.Date.Format(observationDateLayout), err)
	}
	return nil
}

// nullInt maps an absent optional value to SQL NULL. Missing sentinels never
// reach storage as literal negative numbers.
func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
