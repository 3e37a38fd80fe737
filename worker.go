package gridastar

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// SearchAll runs an independent Search for every grid on a pool of
// Options.NumberOfWorkers goroutines (WithWorkers, default runtime.NumCPU()).
// Results are returned in the order of grids. The first error cancels the
// searches still running and is returned.
func SearchAll(ctx context.Context, grids []*Grid, options ...Option) ([]Result, error) {
	searchOptions := applyOptions(options)

	ctx, span := tracer.Start(ctx, "gridastar.SearchAll", trace.WithAttributes(
		attribute.Int("search.grids", len(grids)),
		attribute.Int("search.workers", searchOptions.NumberOfWorkers),
	))
	defer span.End()

	results := make([]Result, len(grids))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(searchOptions.NumberOfWorkers)
	for i, grid := range grids {
		group.Go(func() error {
			result, err := Search(groupCtx, grid, options...)
			if err != nil {
				return errors.Wrapf(err, "search grid %d", i)
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return results, nil
}
