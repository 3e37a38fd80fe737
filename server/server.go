// Package server exposes a search session over HTTP and websocket so a
// browser can watch the frontier grow step by step.
package server

import (
	"context"
	_ "embed"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/driver"
	"github.com/pdrpinto/gridastar/gridgen"
	"github.com/pdrpinto/gridastar/internal/metrics"
	"github.com/pdrpinto/gridastar/render"
)

//go:embed static/index.html
var indexHTML []byte

// DefaultMaxCells caps grids created through /api/init at 500x500.
const DefaultMaxCells = 250_000

// DefaultReadWait is how long a websocket may stay silent, pongs included,
// before it is dropped.
const DefaultReadWait = 60 * time.Second

// Options configures a Server.
type Options struct {
	Logger   *zap.Logger
	Metrics  *metrics.Collector
	Tick     time.Duration
	CellSize int
	// Autoplay starts new sessions unpaused.
	Autoplay bool
	// Grid holds the generation defaults for /api/init.
	Grid gridgen.Options
	// MaxCells bounds rows*cols of grids requested through /api/init.
	MaxCells int
	// ReadWait is the websocket read deadline; pings go out at 9/10 of it.
	ReadWait time.Duration
}

// InitRequest is the optional body of POST /api/init. Map, when present,
// replaces random generation.
type InitRequest struct {
	Rows     *int     `json:"rows"`
	Cols     *int     `json:"cols"`
	Density  *float64 `json:"density"`
	Seed     *int64   `json:"seed"`
	Map      []string `json:"map"`
	Autoplay *bool    `json:"autoplay"`
}

type session struct {
	driver *driver.Driver
	cancel context.CancelFunc
	done   chan struct{}
}

// Server owns at most one search session at a time.
type Server struct {
	options Options
	logger  *zap.Logger
	router  *gin.Engine

	mu      sync.Mutex
	session *session
}

// New builds the server and its routes. No session exists until Init is
// called or POST /api/init is received.
func New(options Options) *Server {
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.CellSize <= 0 {
		options.CellSize = render.DefaultCellSize
	}
	if options.Grid.Rows <= 0 || options.Grid.Cols <= 0 {
		options.Grid = gridgen.DefaultOptions()
	}
	if options.MaxCells <= 0 {
		options.MaxCells = DefaultMaxCells
	}
	if options.ReadWait <= 0 {
		options.ReadWait = DefaultReadWait
	}

	s := &Server{options: options, logger: options.Logger}
	router := gin.New()
	router.Use(gin.Recovery(), s.logRequests())

	api := router.Group("/api")
	api.POST("/init", s.handleInit)
	api.POST("/next", s.handleNext)
	api.POST("/play", s.handlePlay)
	api.POST("/pause", s.handlePause)
	api.GET("/snapshot", s.handleSnapshot)
	api.GET("/frame.png", s.handlePNG)
	router.GET("/", func(c *gin.Context) { c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML) })
	router.GET("/ws", s.handleWS)
	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if options.Metrics != nil {
		router.GET("/metrics", gin.WrapH(options.Metrics.Handler()))
	}

	s.router = router
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.router }

// Init replaces the current session with a new search over grid.
func (s *Server) Init(grid *gridastar.Grid, autoplay bool) (driver.Frame, error) {
	options := []gridastar.Option{gridastar.WithLogger(s.logger)}
	if s.options.Metrics != nil {
		options = append(options, gridastar.WithRecorder(s.options.Metrics))
	}
	engine, err := gridastar.NewEngine(grid, options...)
	if err != nil {
		return driver.Frame{}, err
	}

	d := driver.New(engine, s.options.Tick, s.logger)
	if !autoplay {
		d.Pause()
	}
	ctx, cancel := context.WithCancel(context.Background())
	next := &session{driver: d, cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	previous := s.session
	s.session = next
	s.mu.Unlock()
	if previous != nil {
		previous.stop()
	}

	go func() {
		defer close(next.done)
		if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("driver stopped", zap.Error(err))
		}
	}()

	s.logger.Info("search session started",
		zap.Int("rows", grid.Rows()),
		zap.Int("cols", grid.Cols()),
		zap.Stringer("start", grid.Start()),
		zap.Stringer("goal", grid.Goal()),
		zap.Bool("autoplay", autoplay))
	return d.Frame(), nil
}

// Close stops the current session.
func (s *Server) Close() {
	s.mu.Lock()
	current := s.session
	s.session = nil
	s.mu.Unlock()
	if current != nil {
		current.stop()
	}
}

func (ss *session) stop() {
	ss.cancel()
	<-ss.done
}

func (s *Server) currentDriver() *driver.Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	return s.session.driver
}

func (s *Server) gridFromRequest(req InitRequest) (*gridastar.Grid, error) {
	if len(req.Map) > 0 {
		grid, err := gridgen.ParseLines(req.Map, nil, nil)
		if err != nil {
			return nil, err
		}
		if err := s.checkSize(grid.Rows(), grid.Cols()); err != nil {
			return nil, err
		}
		return grid, nil
	}
	options := s.options.Grid
	if req.Rows != nil {
		options.Rows = *req.Rows
	}
	if req.Cols != nil {
		options.Cols = *req.Cols
	}
	if req.Density != nil {
		options.Density = *req.Density
	}
	if req.Seed != nil {
		options.Seed = *req.Seed
	} else {
		options.Seed = time.Now().UnixNano()
	}
	if err := s.checkSize(options.Rows, options.Cols); err != nil {
		return nil, err
	}
	return gridgen.Random(options)
}

// checkSize rejects grids above MaxCells before anything is allocated.
func (s *Server) checkSize(rows, cols int) error {
	limit := s.options.MaxCells
	if rows > limit || cols > limit || rows*cols > limit {
		return errors.Wrapf(gridastar.ErrInvalidGrid, "grid %dx%d exceeds %d cells", rows, cols, limit)
	}
	return nil
}

func (s *Server) handleInit(c *gin.Context) {
	var req InitRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	grid, err := s.gridFromRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	autoplay := s.options.Autoplay
	if req.Autoplay != nil {
		autoplay = *req.Autoplay
	}
	frame, err := s.Init(grid, autoplay)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, newFrameJSON(frame, !autoplay))
}

// withDriver runs fn with the session driver or answers 409 when there is none.
func (s *Server) withDriver(c *gin.Context, fn func(d *driver.Driver)) {
	d := s.currentDriver()
	if d == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "search not initialized"})
		return
	}
	fn(d)
}

func (s *Server) handleNext(c *gin.Context) {
	s.withDriver(c, func(d *driver.Driver) {
		c.JSON(http.StatusOK, newFrameJSON(d.StepOnce(), d.Paused()))
	})
}

func (s *Server) handlePlay(c *gin.Context) {
	s.withDriver(c, func(d *driver.Driver) {
		d.Resume()
		c.JSON(http.StatusOK, newFrameJSON(d.Frame(), false))
	})
}

func (s *Server) handlePause(c *gin.Context) {
	s.withDriver(c, func(d *driver.Driver) {
		d.Pause()
		c.JSON(http.StatusOK, newFrameJSON(d.Frame(), true))
	})
}

func (s *Server) handleSnapshot(c *gin.Context) {
	s.withDriver(c, func(d *driver.Driver) {
		c.JSON(http.StatusOK, newFrameJSON(d.Frame(), d.Paused()))
	})
}

func (s *Server) handlePNG(c *gin.Context) {
	s.withDriver(c, func(d *driver.Driver) {
		frame := d.Frame()
		c.Header("Content-Type", "image/png")
		c.Status(http.StatusOK)
		if err := render.PNG(c.Writer, frame.Grid, frame.Snapshot, s.options.CellSize); err != nil {
			s.logger.Warn("render frame", zap.Error(err))
		}
	})
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
