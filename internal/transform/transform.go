// Package transform annotates extracted storms before loading.
package transform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/golang/geo/s2"

	"github.com/couchcryptid/hurdat2-etl/internal/config"
	"github.com/couchcryptid/hurdat2-etl/internal/domain"
	"github.com/couchcryptid/hurdat2-etl/internal/observability"
)

// Annotator flags observations falling outside the configured bounding
// region. Findings are informational only: nothing is mutated, dropped, or
// rejected, and the input is always returned structurally unchanged.
type Annotator struct {
	region  s2.Rect
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAnnotator builds the transform stage for the given bounding region.
func NewAnnotator(bounds config.Bounds, logger *slog.Logger, metrics *observability.Metrics) *Annotator {
	region := s2.RectFromLatLng(s2.LatLngFromDegrees(bounds.South, bounds.West)).
		AddPoint(s2.LatLngFromDegrees(bounds.North, bounds.East))
	return &Annotator{region: region, logger: logger, metrics: metrics}
}

// Transform reports every observation outside the region and returns the
// storms unchanged. It fails only on context cancellation.
func (a *Annotator) Transform(ctx context.Context, storms []domain.Storm) ([]domain.Storm, error) {
	outside := 0
	for i := range storms {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("transform cancelled: %w", err)
		}
		storm := &storms[i]
		for j := range storm.Observations {
			obs := &storm.Observations[j]
			ll := s2.LatLngFromDegrees(obs.Location.Latitude, obs.Location.Longitude)
			if a.region.ContainsLatLng(ll) {
				continue
			}
			outside++
			a.metrics.ObservationsOutside.Inc()
			a.logger.Info("observation outside expected region",
				"storm", storm.ID(),
				"date", obs.Date,
				"lat", obs.Location.Latitude,
				"lon", obs.Location.Longitude,
			)
		}
	}
	if outside > 0 {
		a.logger.Info("bounding region annotation complete", "outside_region", outside)
	}
	return storms, nil
}
