package cmd

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdrpinto/gridastar/driver"
	"github.com/pdrpinto/gridastar/internal/metrics"
	"github.com/pdrpinto/gridastar/render"
	"github.com/pdrpinto/gridastar/server"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the web visualizer",
		Long: `serve starts an HTTP server with a browser visualizer, a JSON API to
create and step searches, a websocket stream of frames and Prometheus metrics.
A scenario given with --scenario is loaded as the first session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context(), nil)
		},
	}
	addGridFlags(serveCmd.Flags())
	serveCmd.Flags().String("scenario", "", "YAML scenario to load at startup")
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Duration("tick", driver.DefaultTick, "delay between steps while playing")
	serveCmd.Flags().Int("cell-size", render.DefaultCellSize, "cell size in pixels of /api/frame.png")
	serveCmd.Flags().Bool("autoplay", false, "start new searches unpaused")
	serveCmd.Flags().Int("max-cells", 250_000, "largest rows*cols a client may request")
	return serveCmd
}

// serve blocks until ctx is done, then shuts the HTTP server down. ready, when
// not nil, receives the bound address once the listener is open.
func (a *app) serve(ctx context.Context, ready chan<- string) error {
	if !a.cfg.Log.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return err
	}

	viz := server.New(server.Options{
		Logger:   a.logger,
		Metrics:  collector,
		Tick:     a.cfg.Driver.Tick,
		CellSize: a.cfg.Server.CellSize,
		Autoplay: a.cfg.Server.Autoplay,
		Grid:     a.gridOptions(),
		MaxCells: a.cfg.Server.MaxCells,
	})
	defer viz.Close()

	if a.cfg.Grid.Scenario != "" {
		grid, _, err := a.loadGrid()
		if err != nil {
			return err
		}
		if _, err := viz.Init(grid, a.cfg.Server.Autoplay); err != nil {
			return err
		}
	}

	ln, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", a.cfg.Server.Addr)
	}
	srv := &http.Server{Handler: viz.Handler(), ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	a.logger.Info("gridastar listening", zap.String("addr", ln.Addr().String()))
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
