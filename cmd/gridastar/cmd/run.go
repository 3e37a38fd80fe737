package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/driver"
	"github.com/pdrpinto/gridastar/render"
)

type runOpts struct {
	animate   bool
	framesDir string
}

var exampleForRunCmd = `
  gridastar run --rows 20 --cols 40 --seed 7
  gridastar run --scenario detour.yaml --animate --tick 200ms
  gridastar run --seed 7 --frames-dir ./frames --cell-size 12
`

func newRunCmd(a *app) *cobra.Command {
	var opts runOpts
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "solve one grid and print the result",
		Example: exampleForRunCmd,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	addGridFlags(runCmd.Flags())
	runCmd.Flags().String("scenario", "", "YAML scenario file to solve instead of a random grid")
	runCmd.Flags().Duration("tick", driver.DefaultTick, "delay between animated steps")
	runCmd.Flags().Int("cell-size", render.DefaultCellSize, "cell size in pixels of written frames")
	runCmd.Flags().BoolVar(&opts.animate, "animate", false, "print every step at the driver tick")
	runCmd.Flags().StringVar(&opts.framesDir, "frames-dir", "", "write one PNG per step into this directory")
	return runCmd
}

// frameSink receives every frame of a run in order.
type frameSink func(frame driver.Frame) error

func (a *app) run(ctx context.Context, out, errOut io.Writer, opts runOpts) error {
	grid, name, err := a.loadGrid()
	if err != nil {
		return err
	}
	engine, err := gridastar.NewEngine(grid, gridastar.WithLogger(a.logger))
	if err != nil {
		return err
	}

	var sinks []frameSink
	if opts.animate {
		sinks = append(sinks, func(frame driver.Frame) error {
			_, err := fmt.Fprintf(out, "step %d (%s)\n%s\n", frame.Snapshot.StepIndex, frame.Snapshot.Status,
				render.ASCII(frame.Grid, frame.Snapshot))
			return err
		})
	}
	if opts.framesDir != "" {
		sink, finish, err := a.pngSink(opts.framesDir, grid, errOut)
		if err != nil {
			return err
		}
		defer finish()
		sinks = append(sinks, sink)
	}
	emit := func(frame driver.Frame) error {
		for _, sink := range sinks {
			if err := sink(frame); err != nil {
				return err
			}
		}
		return nil
	}

	if opts.animate {
		err = a.animate(ctx, engine, grid.FreeCount(), emit)
	} else {
		err = stepAll(ctx, engine, emit)
	}
	if err != nil {
		return err
	}

	snapshot := engine.Snapshot()
	if !opts.animate {
		fmt.Fprintln(out, render.ASCII(grid, snapshot))
	}
	writeRunSummary(out, name, grid, snapshot)
	return nil
}

// stepAll steps engine to completion without pacing.
func stepAll(ctx context.Context, engine *gridastar.Engine, emit frameSink) error {
	frame := func() driver.Frame { return driver.Frame{Grid: engine.Grid(), Snapshot: engine.Snapshot()} }
	if err := emit(frame()); err != nil {
		return err
	}
	for !engine.Status().Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		engine.Step()
		if err := emit(frame()); err != nil {
			return err
		}
	}
	return nil
}

// animate paces engine with a driver at the configured tick. The subscriber
// buffer holds every frame a search can produce so none is dropped.
func (a *app) animate(ctx context.Context, engine *gridastar.Engine, free int, emit frameSink) error {
	d := driver.New(engine, a.cfg.Driver.Tick, a.logger)
	frames, unsubscribe := d.Subscribe(free + 2)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	for frame := range frames {
		if err := emit(frame); err != nil {
			cancel()
			<-done
			return err
		}
	}
	return <-done
}

// pngSink writes frames as numbered PNG files under dir with a progress bar
// sized for the longest possible search.
func (a *app) pngSink(dir string, grid *gridastar.Grid, errOut io.Writer) (frameSink, func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, errors.Wrapf(err, "create frames dir %s", dir)
	}
	bar := progressbar.NewOptions(grid.FreeCount()+2,
		progressbar.OptionSetWriter(errOut),
		progressbar.OptionSetDescription("writing frames"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
	)
	written := 0
	sink := func(frame driver.Frame) error {
		path := filepath.Join(dir, fmt.Sprintf("frame-%04d.png", frame.Snapshot.StepIndex))
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "create %s", path)
		}
		if err := render.PNG(f, frame.Grid, frame.Snapshot, a.cfg.Server.CellSize); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, "render %s", path)
		}
		if err := f.Close(); err != nil {
			return errors.Wrapf(err, "close %s", path)
		}
		written++
		_ = bar.Add(1)
		return nil
	}
	finish := func() {
		_ = bar.Finish()
		fmt.Fprintln(errOut)
		a.logger.Info("frames written", zap.String("dir", dir), zap.Int("count", written))
	}
	return sink, finish, nil
}

func writeRunSummary(out io.Writer, name string, grid *gridastar.Grid, snapshot gridastar.Snapshot) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"grid", "status", "steps", "visited", "path", "cost", "chebyshev"})
	pathLen, cost := "-", "-"
	if snapshot.Status == gridastar.Succeeded {
		pathLen = strconv.Itoa(len(snapshot.Path) - 1)
		cost = strconv.FormatFloat(snapshot.Cost, 'f', -1, 64)
	}
	table.Append([]string{
		name,
		snapshot.Status.String(),
		strconv.Itoa(snapshot.StepIndex),
		strconv.Itoa(len(snapshot.Visited)),
		pathLen,
		cost,
		strconv.Itoa(gridastar.Chebyshev(grid.Start(), grid.Goal())),
	})
	table.Render()
}
