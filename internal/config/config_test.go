package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "hurdat2.db", cfg.DBPath)
	assert.Equal(t, "mod_spatialite", cfg.SpatialitePath)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 5, cfg.PoolSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, []int{-999, -99}, cfg.MissingValues)
	assert.Equal(t, []string{"AL", "EP", "CP"}, cfg.Basins)
	assert.Equal(t, "UNNAMED", cfg.DefaultStormName)
	assert.Equal(t, Bounds{North: 70, South: 0, East: 10, West: -110}, cfg.Bounds)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("INPUT_PATH", "/data/hurdat2.txt")
	t.Setenv("DB_PATH", "/tmp/out.db")
	t.Setenv("SPATIALITE_PATH", "/usr/lib/mod_spatialite.so")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("METRICS_ADDR", ":9090")
	t.Setenv("BATCH_SIZE", "500")
	t.Setenv("POOL_SIZE", "2")
	t.Setenv("BASINS", "AL, EP")
	t.Setenv("DEFAULT_STORM_NAME", "NONAME")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/data/hurdat2.txt", cfg.InputPath)
	assert.Equal(t, "/tmp/out.db", cfg.DBPath)
	assert.Equal(t, "/usr/lib/mod_spatialite.so", cfg.SpatialitePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.Equal(t, 2, cfg.PoolSize)
	assert.Equal(t, []string{"AL", "EP"}, cfg.Basins)
	assert.Equal(t, "NONAME", cfg.DefaultStormName)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
input_path: ref/hurdat2.txt
db_path: etl.db
batch_size: 250
basins: [AL]
bounds:
  north: 60
  south: 5
  east: 0
  west: -100
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ref/hurdat2.txt", cfg.InputPath)
	assert.Equal(t, "etl.db", cfg.DBPath)
	assert.Equal(t, 250, cfg.BatchSize)
	assert.Equal(t, []string{"AL"}, cfg.Basins)
	assert.Equal(t, Bounds{North: 60, South: 5, East: 0, West: -100}, cfg.Bounds)
	// Untouched fields keep their defaults.
	assert.Equal(t, 5, cfg.PoolSize)
	assert.Equal(t, []int{-999, -99}, cfg.MissingValues)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch_size: 250\n"), 0o644))
	t.Setenv("BATCH_SIZE", "42")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.BatchSize)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("bad batch size", func(t *testing.T) {
		t.Setenv("BATCH_SIZE", "zero")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("non-positive batch size", func(t *testing.T) {
		t.Setenv("BATCH_SIZE", "0")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("inverted bounds", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("bounds: {north: 0, south: 10, east: 0, west: -10}\n"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestMissingSet(t *testing.T) {
	cfg := Default()
	set := cfg.MissingSet()
	assert.Contains(t, set, -999)
	assert.Contains(t, set, -99)
	assert.NotContains(t, set, 0)
}
