package load

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/hurdat2-etl/internal/config"
	"github.com/couchcryptid/hurdat2-etl/internal/domain"
	"github.com/couchcryptid/hurdat2-etl/internal/observability"
)

// Loader is the pipeline load stage. It rebuilds the database schema, inserts
// every storm in a single transaction, then runs the post-load validation
// analyses.
type Loader struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock

	// Progress, when set, observes (completed, total) storm counts during
	// insertion.
	Progress func(completed, total int)
}

// NewLoader creates a Loader. A nil clock means real time.
func NewLoader(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Loader {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Loader{cfg: cfg, logger: logger, metrics: metrics, clock: clock}
}

// Load initializes the schema, inserts storms, and validates the result. A
// validation failure is returned to the caller but does not unwind the
// committed load.
func (l *Loader) Load(ctx context.Context, storms []domain.Storm) error {
	schema := NewSchemaManager(l.cfg, l.logger, l.clock)
	if err := schema.Initialize(ctx); err != nil {
		return err
	}

	db, err := Open(l.cfg.DBPath, l.cfg.SpatialitePath, l.cfg.PoolSize)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	inserter := NewInserter(db, l.cfg.BatchSize, l.cfg.Basins, l.logger, l.metrics)
	inserter.Progress = l.Progress
	if err := inserter.InsertStorms(ctx, storms); err != nil {
		return err
	}

	reporter := NewReporter(db, l.logger, l.clock)
	results, err := reporter.Validate(ctx)
	if err != nil {
		return err
	}
	reporter.Report(results)
	return nil
}
