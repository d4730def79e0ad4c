package extract

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/hurdat2-etl/internal/config"
	"github.com/couchcryptid/hurdat2-etl/internal/domain"
	"github.com/couchcryptid/hurdat2-etl/internal/observability"
)

// ParseError reports a malformed line. It always carries the 1-based line
// number and the raw line text; extraction never skips a bad line, because
// header-declared observation counts make line boundaries load-bearing.
type ParseError struct {
	Line int
	Raw  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, strings.TrimSpace(e.Raw))
}

func (e *ParseError) Unwrap() error { return e.Err }

// StormReader reads storm aggregates from HURDAT2 text one header block at a
// time, in the manner of csv.Reader: Read returns the next storm, or io.EOF
// after the last one. The sequence is single-pass and non-restartable.
type StormReader struct {
	scanner     *bufio.Scanner
	line        int
	missing     map[int]struct{}
	basins      []string
	defaultName string
}

// NewStormReader wraps r. missing is the sentinel set for numeric fields,
// basins the allow-list for storm validation (nil means the default set), and
// defaultName replaces empty storm names; when it is itself empty, an empty
// name is a parse error instead.
func NewStormReader(r io.Reader, missing map[int]struct{}, basins []string, defaultName string) *StormReader {
	return &StormReader{
		scanner:     bufio.NewScanner(r),
		missing:     missing,
		basins:      basins,
		defaultName: defaultName,
	}
}

// Line returns the number of lines consumed so far.
func (r *StormReader) Line() int { return r.line }

// Read returns the next storm aggregate. A header line starts a storm and
// declares exactly how many observation lines follow; a malformed header or
// observation, or end of input mid-storm, aborts with a ParseError.
func (r *StormReader) Read() (*domain.Storm, error) {
	raw, err := r.next()
	if err != nil {
		return nil, err
	}

	headerLine := r.line
	header, err := ParseHeader(raw)
	if err != nil {
		return nil, &ParseError{Line: headerLine, Raw: raw, Err: fmt.Errorf("parse header: %w", err)}
	}

	name := header.Name
	if name == "" {
		if r.defaultName == "" {
			return nil, &ParseError{Line: headerLine, Raw: raw, Err: errors.New("empty storm name")}
		}
		name = r.defaultName
	}

	observations := make([]domain.Observation, 0, header.ObservationCount)
	for i := 0; i < header.ObservationCount; i++ {
		rawObs, err := r.next()
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{
				Line: r.line,
				Raw:  raw,
				Err:  fmt.Errorf("unexpected end of input: header declares %d observations, got %d", header.ObservationCount, i),
			}
		}
		if err != nil {
			return nil, err
		}
		obs, err := ParseObservation(rawObs, r.missing)
		if err != nil {
			return nil, &ParseError{Line: r.line, Raw: rawObs, Err: fmt.Errorf("parse observation: %w", err)}
		}
		observations = append(observations, obs)
	}

	storm := &domain.Storm{
		Basin:         header.Basin,
		CycloneNumber: header.CycloneNumber,
		Year:          header.Year,
		Name:          name,
		Observations:  observations,
	}
	if err := storm.Validate(r.basins); err != nil {
		return nil, &ParseError{Line: headerLine, Raw: raw, Err: err}
	}
	return storm, nil
}

func (r *StormReader) next() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", fmt.Errorf("read line %d: %w", r.line+1, err)
		}
		return "", io.EOF
	}
	r.line++
	return r.scanner.Text(), nil
}

// Extractor is the pipeline stage that reads a HURDAT2 file into storms. The
// result is materialized because the load stage needs a known total for
// transaction and progress accounting.
type Extractor struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics

	// Progress, when set, observes the running storm count. Purely a side
	// channel.
	Progress func(storms int)
}

// NewExtractor creates the extract stage for the configured input path.
func NewExtractor(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Extractor {
	return &Extractor{cfg: cfg, logger: logger, metrics: metrics}
}

// Extract parses the whole input file. Any malformed line aborts the run with
// the ParseError propagated unchanged.
func (e *Extractor) Extract(ctx context.Context) ([]domain.Storm, error) {
	e.logger.Info("extraction starting", "path", e.cfg.InputPath)

	f, err := os.Open(e.cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("open hurdat2 file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	reader := NewStormReader(f, e.cfg.MissingSet(), e.cfg.Basins, e.cfg.DefaultStormName)

	var storms []domain.Storm
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extraction cancelled: %w", err)
		}

		storm, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		storms = append(storms, *storm)
		e.metrics.StormsExtracted.Inc()
		e.metrics.ObservationsExtracted.Add(float64(storm.ObservationCount()))
		if e.Progress != nil {
			e.Progress(len(storms))
		}
	}

	e.logger.Info("extraction complete", "storms", len(storms), "lines", reader.Line())
	return storms, nil
}
