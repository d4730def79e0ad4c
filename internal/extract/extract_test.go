package extract_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/hurdat2-etl/internal/config"
	"github.com/couchcryptid/hurdat2-etl/internal/extract"
	"github.com/couchcryptid/hurdat2-etl/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const karenFixture = `AL122007,KAREN,3,
20070925,0000,,TD,10.0N,35.9W,30,1006,  0,  0, 0,  0,  0,  0, 0, 0, 0, 0,0, 0, -999
20070925,0600,,TS,10.3N,37.0W,35,1005, 40, 30, 0, 40,  0,  0, 0, 0, 0, 0,0, 0, -999
20070925,1200,,TS,10.6N,38.0W,35,1005, 40, 30, 0, 40,  0,  0, 0, 0, 0, 0,0, 0, -999
`

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newStormReader(input string) *extract.StormReader {
	cfg := config.Default()
	return extract.NewStormReader(strings.NewReader(input), cfg.MissingSet(), cfg.Basins, cfg.DefaultStormName)
}

func TestStormReader_SingleStorm(t *testing.T) {
	r := newStormReader(karenFixture)

	storm, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "AL122007", storm.ID())
	assert.Equal(t, "KAREN", storm.Name)
	require.Len(t, storm.Observations, 3)

	// File order is chronological order.
	assert.True(t, storm.Observations[0].Date.Before(storm.Observations[1].Date))
	assert.True(t, storm.Observations[1].Date.Before(storm.Observations[2].Date))

	_, err = r.Read()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 4, r.Line())
}

func TestStormReader_MultipleStorms(t *testing.T) {
	input := karenFixture + `AL092021,IDA,2,
20210829,1200,,HU,28.0N,89.6W,130, 931, 130, 110, 80, 110, 70, 60, 40, 60, 45, 35, 20, 30, 10
20210829,1655,L,HU,29.1N,90.2W,130, 931, 130, 110, 80, 110, 70, 60, 40, 60, 45, 35, 20, 30, 10
`
	r := newStormReader(input)

	first, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "KAREN", first.Name)

	second, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "IDA", second.Name)
	require.Len(t, second.Observations, 2)
	assert.Equal(t, "L", second.Observations[1].RecordIdentifier)

	_, err = r.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStormReader_EmptyInput(t *testing.T) {
	r := newStormReader("")
	_, err := r.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStormReader_TruncatedStorm(t *testing.T) {
	// Header declares 3 observations but only 2 follow.
	input := strings.Join(strings.Split(karenFixture, "\n")[:3], "\n") + "\n"
	r := newStormReader(input)

	_, err := r.Read()
	var perr *extract.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "declares 3 observations, got 2")
}

func TestStormReader_MalformedObservationCarriesLineNumber(t *testing.T) {
	input := `AL122007,KAREN,2,
20070925,0000,,TD,10.0N,35.9W,30,1006,  0,  0, 0,  0,  0,  0, 0, 0, 0, 0,0, 0, -999
20070925,0600,,ZZ,10.3N,37.0W,35,1005, 40, 30, 0, 40,  0,  0, 0, 0, 0, 0,0, 0, -999
`
	r := newStormReader(input)

	_, err := r.Read()
	var perr *extract.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 3, perr.Line)
	assert.Contains(t, perr.Raw, "ZZ")
}

func TestStormReader_MalformedHeaderAborts(t *testing.T) {
	r := newStormReader("not a header line\n")

	_, err := r.Read()
	var perr *extract.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)
}

func TestStormReader_BasinOutsideAllowList(t *testing.T) {
	input := strings.Replace(karenFixture, "AL122007", "XX122007", 1)
	r := newStormReader(input)

	_, err := r.Read()
	var perr *extract.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)
	assert.Contains(t, perr.Error(), "basin")
}

func TestStormReader_EmptyNamePolicy(t *testing.T) {
	input := strings.Replace(karenFixture, "KAREN", "", 1)

	t.Run("defaulted", func(t *testing.T) {
		r := newStormReader(input)
		storm, err := r.Read()
		require.NoError(t, err)
		assert.Equal(t, "UNNAMED", storm.Name)
	})

	t.Run("rejected when no default configured", func(t *testing.T) {
		cfg := config.Default()
		r := extract.NewStormReader(strings.NewReader(input), cfg.MissingSet(), cfg.Basins, "")
		_, err := r.Read()
		var perr *extract.ParseError
		require.ErrorAs(t, err, &perr)
		assert.Contains(t, perr.Error(), "empty storm name")
	})
}

func TestExtractor_Extract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hurdat2.txt")
	require.NoError(t, os.WriteFile(path, []byte(karenFixture), 0o644))

	cfg := config.Default()
	cfg.InputPath = path
	ext := extract.NewExtractor(cfg, discardLogger(), observability.NewMetricsForTesting())

	var seen []int
	ext.Progress = func(storms int) { seen = append(seen, storms) }

	storms, err := ext.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, storms, 1)
	assert.Equal(t, 3, storms[0].ObservationCount())
	assert.Equal(t, []int{1}, seen)
}

func TestExtractor_MissingFile(t *testing.T) {
	cfg := config.Default()
	cfg.InputPath = filepath.Join(t.TempDir(), "absent.txt")
	ext := extract.NewExtractor(cfg, discardLogger(), observability.NewMetricsForTesting())

	_, err := ext.Extract(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open hurdat2 file")
}

func TestExtractor_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	cfg := config.Default()
	cfg.InputPath = path
	ext := extract.NewExtractor(cfg, discardLogger(), observability.NewMetricsForTesting())

	storms, err := ext.Extract(context.Background())
	require.NoError(t, err)
	assert.Empty(t, storms)
}

func TestExtractor_Cancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hurdat2.txt")
	require.NoError(t, os.WriteFile(path, []byte(karenFixture), 0o644))

	cfg := config.Default()
	cfg.InputPath = path
	ext := extract.NewExtractor(cfg, discardLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ext.Extract(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
