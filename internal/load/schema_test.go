package load

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hurdat2-etl/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// unremovableDBPath returns a path os.Remove cannot delete, so every
// initialization attempt fails before touching the database.
func unremovableDBPath(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "child"), 0o755))
	return dir
}

func TestSchemaManagerRetriesBeforeFailing(t *testing.T) {
	cfg := config.Default()
	cfg.DBPath = unremovableDBPath(t)

	clock := clockwork.NewFakeClock()
	mgr := NewSchemaManager(cfg, discardLogger(), clock)

	done := make(chan error, 1)
	go func() {
		done <- mgr.Initialize(context.Background())
	}()

	for attempt := 2; attempt <= initAttempts; attempt++ {
		clock.BlockUntil(1)
		clock.Advance(initBackoff)
	}

	err := <-done
	require.Error(t, err)
	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Contains(t, err.Error(), "remove existing database")
}

func TestSchemaManagerAbortsOnCancelledContext(t *testing.T) {
	cfg := config.Default()
	cfg.DBPath = unremovableDBPath(t)

	clock := clockwork.NewFakeClock()
	mgr := NewSchemaManager(cfg, discardLogger(), clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- mgr.Initialize(ctx)
	}()

	// First attempt fails immediately; cancel while it waits out the backoff.
	clock.BlockUntil(1)
	cancel()

	err := <-done
	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSchemaInitializeCreatesObjects(t *testing.T) {
	cfg := testConfig(t)
	mgr := NewSchemaManager(cfg, discardLogger(), nil)
	require.NoError(t, mgr.Initialize(context.Background()))

	db := openTestDB(t, cfg)

	wantTables := []string{"storms", "observations"}
	for _, name := range wantTables {
		var got string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", name,
		).Scan(&got)
		require.NoError(t, err, "table %s missing", name)
	}

	wantTriggers := []string{"observations_geom_validate", "observations_validate"}
	for _, name := range wantTriggers {
		var got string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'trigger' AND name = ?", name,
		).Scan(&got)
		require.NoError(t, err, "trigger %s missing", name)
	}

	var indexCount int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name LIKE 'idx_%'",
	).Scan(&indexCount)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, indexCount, 4)

	// Reinitializing must rebuild from scratch, not fail on existing objects.
	require.NoError(t, db.Close())
	require.NoError(t, mgr.Initialize(context.Background()))
}
