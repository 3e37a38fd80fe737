package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/gridgen"
	"github.com/pdrpinto/gridastar/internal/config"
	"github.com/pdrpinto/gridastar/internal/logging"
)

type rootOpts struct {
	cfgFile string
	debug   bool
	logFile string
	trace   bool
}

// app is the state shared by every subcommand once the root pre-run has
// loaded the configuration.
type app struct {
	opts   rootOpts
	viper  *viper.Viper
	cfg    config.Config
	logger *zap.Logger

	cleanups []func()
}

var longRootCmdDescription = `gridastar runs an incremental A* search on an 8-connected grid one
expansion at a time, so every step of the frontier can be printed, rendered
or streamed to a browser.
`

// flagKeys maps command-line flags onto configuration keys. Only the flags
// defined on the executing command are bound.
var flagKeys = map[string]string{
	"rows":      "grid.rows",
	"cols":      "grid.cols",
	"density":   "grid.density",
	"seed":      "grid.seed",
	"start-row": "grid.start_row",
	"start-col": "grid.start_col",
	"scenario":  "grid.scenario",
	"tick":      "driver.tick",
	"addr":      "server.addr",
	"cell-size": "server.cell_size",
	"autoplay":  "server.autoplay",
	"max-cells": "server.max_cells",
	"log-file":  "log.file",
	"debug":     "log.debug",
}

// Execute runs the gridastar command line and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := newApp()
	err := newRootCmd(a).ExecuteContext(ctx)
	stop()
	if err != nil {
		if a.cfg.Log.Console {
			a.logger.Error("command failed", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "gridastar: %v\n", err)
		}
	}
	a.close()
	if err != nil {
		os.Exit(1)
	}
}

func newApp() *app {
	return &app{viper: viper.New(), logger: zap.NewNop()}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gridastar",
		Short:         "Step-by-step A* path search on grids.",
		Long:          longRootCmdDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.opts.cfgFile, "config", "", "config file (yaml or json)")
	rootCmd.PersistentFlags().BoolVarP(&a.opts.debug, "debug", "d", false, "turn on debug logging")
	rootCmd.PersistentFlags().StringVar(&a.opts.logFile, "log-file", "", "write logs to this rotating file")
	rootCmd.PersistentFlags().BoolVar(&a.opts.trace, "trace", false, "print OpenTelemetry spans to stderr")

	rootCmd.AddCommand(newRunCmd(a), newServeCmd(a), newBenchCmd(a))
	return rootCmd
}

// init loads the configuration, then builds the logger and, with --trace,
// the tracer provider.
func (a *app) init(cmd *cobra.Command) error {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			_ = a.viper.BindPFlag(key, f)
		}
	})
	cfg, err := config.Load(a.viper, a.opts.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, cleanup, err := logging.New(logging.Options{
		FilePath: cfg.Log.File,
		Console:  cfg.Log.Console,
		Debug:    cfg.Log.Debug,
	})
	if err != nil {
		return err
	}
	a.logger = logger
	a.cleanups = append(a.cleanups, cleanup)

	if a.opts.trace {
		shutdown, err := setupTracing(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		a.cleanups = append(a.cleanups, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				a.logger.Warn("flush traces", zap.Error(err))
			}
		})
	}
	a.logger.Debug("configuration loaded",
		zap.String("config", a.opts.cfgFile),
		zap.Any("grid", cfg.Grid),
		zap.Duration("tick", cfg.Driver.Tick))
	return nil
}

// close runs cleanups in reverse order so the logger is flushed last.
func (a *app) close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	a.cleanups = nil
}

// gridOptions converts the grid settings for gridgen, drawing a seed from
// the clock when none is configured.
func (a *app) gridOptions() gridgen.Options {
	seed := a.cfg.Grid.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
		a.logger.Info("generated seed", zap.Int64("seed", seed))
	}
	return gridgen.Options{
		Rows:    a.cfg.Grid.Rows,
		Cols:    a.cfg.Grid.Cols,
		Density: a.cfg.Grid.Density,
		Seed:    seed,
		Start:   gridastar.Coord{Row: a.cfg.Grid.StartRow, Col: a.cfg.Grid.StartCol},
	}
}

// loadGrid returns the configured scenario, or a random grid when none is set,
// along with a name for reports.
func (a *app) loadGrid() (*gridastar.Grid, string, error) {
	if path := a.cfg.Grid.Scenario; path != "" {
		grid, scenario, err := gridgen.LoadScenario(path)
		if err != nil {
			return nil, "", err
		}
		name := scenario.Name
		if name == "" {
			name = path
		}
		return grid, name, nil
	}
	options := a.gridOptions()
	grid, err := gridgen.Random(options)
	if err != nil {
		return nil, "", errors.Wrap(err, "generate grid")
	}
	return grid, fmt.Sprintf("random %dx%d seed %d", options.Rows, options.Cols, options.Seed), nil
}

func addGridFlags(flags *pflag.FlagSet) {
	flags.Int("rows", 30, "grid rows")
	flags.Int("cols", 30, "grid columns")
	flags.Float64("density", 0.3, "probability that a cell is blocked")
	flags.Int64("seed", 0, "random seed, 0 picks one from the clock")
	flags.Int("start-row", 0, "start row of generated grids")
	flags.Int("start-col", 0, "start column of generated grids")
}
