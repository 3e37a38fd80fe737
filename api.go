package gridastar

import (
	"context"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/pdrpinto/gridastar")

// Result contains the outcome of a search.
type Result struct {
	Path          []Coord
	TotalCost     float64
	ExpandedNodes int
	Found         bool
}

// Options defines parameters for engines and searches.
type Options struct {
	NumberOfWorkers int
	Logger          *zap.Logger
	Recorder        Recorder
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithWorkers sets how many searches SearchAll runs at once.
func WithWorkers(numberOfWorkers int) Option {
	return func(options *Options) { options.NumberOfWorkers = numberOfWorkers }
}

// WithLogger attaches a logger. Terminal transitions are logged at info level
// and every expansion at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(options *Options) {
		if logger != nil {
			options.Logger = logger
		}
	}
}

// WithRecorder attaches a progress Recorder.
func WithRecorder(recorder Recorder) Option {
	return func(options *Options) {
		if recorder != nil {
			options.Recorder = recorder
		}
	}
}

func applyOptions(options []Option) Options {
	searchOptions := Options{
		NumberOfWorkers: runtime.NumCPU(),
		Logger:          zap.NewNop(),
		Recorder:        nopRecorder{},
	}
	for _, option := range options {
		option(&searchOptions)
	}
	if searchOptions.NumberOfWorkers < 1 {
		searchOptions.NumberOfWorkers = 1
	}
	return searchOptions
}

// Search steps a new engine over grid until it is terminal. An unreachable
// goal is not an error: it yields a Result with Found == false. The context is
// checked between steps.
func Search(ctx context.Context, grid *Grid, options ...Option) (Result, error) {
	ctx, span := tracer.Start(ctx, "gridastar.Search")
	defer span.End()

	engine, err := NewEngine(grid, options...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	span.SetAttributes(
		attribute.Int("grid.rows", grid.Rows()),
		attribute.Int("grid.cols", grid.Cols()),
	)

	for status := Running; status == Running; {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return Result{}, err
		}
		status = engine.Step()
	}

	snapshot := engine.Snapshot()
	result := Result{
		Path:          snapshot.Path,
		TotalCost:     snapshot.Cost,
		ExpandedNodes: snapshot.StepIndex,
		Found:         snapshot.Status == Succeeded,
	}
	span.SetAttributes(
		attribute.String("search.status", snapshot.Status.String()),
		attribute.Int("search.expanded", result.ExpandedNodes),
		attribute.Int("search.path_len", len(result.Path)),
	)
	return result, nil
}
