// Package pipeline wires the extract, transform, and load stages into a
// single run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/hurdat2-etl/internal/domain"
	"github.com/couchcryptid/hurdat2-etl/internal/observability"
)

// Extractor produces the full storm set from the source text.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.Storm, error)
}

// Transformer annotates or reshapes an extracted storm set.
type Transformer interface {
	Transform(ctx context.Context, storms []domain.Storm) ([]domain.Storm, error)
}

// Loader persists a storm set.
type Loader interface {
	Load(ctx context.Context, storms []domain.Storm) error
}

// Pipeline runs the stages strictly in order. A stage failure stops the run;
// nothing downstream of a failed stage executes.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      Loader
	logger      *slog.Logger
	metrics     *observability.Metrics
}

func New(e Extractor, t Transformer, l Loader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run executes extract, transform, and load once. An empty extraction is an
// error: a source file that yields zero storms is misconfiguration, not a
// successful no-op load.
func (p *Pipeline) Run(ctx context.Context) error {
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	storms, err := p.extractor.Extract(ctx)
	if err != nil {
		return fmt.Errorf("extract stage: %w", err)
	}
	if len(storms) == 0 {
		return errors.New("extract stage: no storms in input")
	}
	observations := 0
	for i := range storms {
		observations += storms[i].ObservationCount()
	}
	p.logger.Info("extraction complete", "storms", len(storms), "observations", observations)

	storms, err = p.transformer.Transform(ctx, storms)
	if err != nil {
		return fmt.Errorf("transform stage: %w", err)
	}

	if err := p.loader.Load(ctx, storms); err != nil {
		return fmt.Errorf("load stage: %w", err)
	}

	p.logger.Info("pipeline complete", "storms", len(storms), "observations", observations)
	return nil
}
