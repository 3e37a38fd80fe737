package cmd

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/gridgen"
)

type benchOpts struct {
	count   int
	workers int
}

func newBenchCmd(a *app) *cobra.Command {
	var opts benchOpts
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "solve many random grids in parallel and tabulate the results",
		Long: `bench generates --count random grids with consecutive seeds starting at
--seed and solves them concurrently on --workers goroutines.`,
		Example: "  gridastar bench --count 64 --rows 100 --cols 100 --seed 1 --workers 8",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.bench(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	addGridFlags(benchCmd.Flags())
	benchCmd.Flags().IntVarP(&opts.count, "count", "n", 16, "number of grids")
	benchCmd.Flags().IntVarP(&opts.workers, "workers", "w", runtime.NumCPU(), "concurrent searches")
	return benchCmd
}

func (a *app) bench(ctx context.Context, out io.Writer, opts benchOpts) error {
	if opts.count < 1 {
		return errors.Errorf("count %d must be positive", opts.count)
	}

	base := a.gridOptions()
	seeds := make([]int64, opts.count)
	grids := make([]*gridastar.Grid, opts.count)
	for i := range grids {
		options := base
		options.Seed = base.Seed + int64(i)
		grid, err := gridgen.Random(options)
		if err != nil {
			return errors.Wrapf(err, "generate grid %d", i)
		}
		seeds[i], grids[i] = options.Seed, grid
	}

	started := time.Now()
	results, err := gridastar.SearchAll(ctx, grids, gridastar.WithWorkers(opts.workers), gridastar.WithLogger(a.logger))
	if err != nil {
		return err
	}
	elapsed := time.Since(started)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"seed", "goal", "found", "path", "cost", "expanded", "chebyshev"})
	found, expanded := 0, 0
	for i, result := range results {
		grid := grids[i]
		row := []string{
			strconv.FormatInt(seeds[i], 10),
			grid.Goal().String(),
			"no", "-", "-",
			strconv.Itoa(result.ExpandedNodes),
			strconv.Itoa(gridastar.Chebyshev(grid.Start(), grid.Goal())),
		}
		if result.Found {
			found++
			row[2], row[3] = "yes", strconv.Itoa(len(result.Path)-1)
			row[4] = strconv.FormatFloat(result.TotalCost, 'f', -1, 64)
		}
		expanded += result.ExpandedNodes
		table.Append(row)
	}
	table.SetFooter([]string{"", "", fmt.Sprintf("%d/%d", found, len(results)), "", "", strconv.Itoa(expanded), ""})
	table.Render()

	a.logger.Info("bench finished",
		zap.Int("grids", len(results)),
		zap.Int("found", found),
		zap.Int("workers", opts.workers),
		zap.Duration("elapsed", elapsed))
	return nil
}
