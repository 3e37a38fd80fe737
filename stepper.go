package gridastar

import (
	"container/heap"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pdrpinto/gridastar/internal"
)

// stepCost is the cost of every move, orthogonal or diagonal.
const stepCost = 1.0

// Status is the state of an Engine.
type Status int

const (
	// Running means the frontier is non-empty and the goal has not been popped.
	Running Status = iota
	// Succeeded means the goal was popped and the path reconstructed.
	Succeeded
	// Failed means the frontier ran out before the goal was reached.
	Failed
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status as its name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a status name written by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	for _, status := range []Status{Running, Succeeded, Failed} {
		if string(text) == status.String() {
			*s = status
			return nil
		}
	}
	return errors.Errorf("unknown status %q", text)
}

// Done reports whether s is terminal.
func (s Status) Done() bool { return s != Running }

// Snapshot exposes the state of the search between two steps.
type Snapshot struct {
	Current   Coord
	Frontier  map[Coord]bool
	Visited   map[Coord]bool
	CameFrom  map[Coord]Coord
	Path      []Coord
	Cost      float64
	Status    Status
	StepIndex int
}

// Recorder observes engine progress. Implementations shared by several
// engines (see SearchAll) must be safe for concurrent use.
type Recorder interface {
	// ObserveStep is called once per popped node with its f value, the number
	// of neighbors relaxed and the frontier size (stale entries included).
	ObserveStep(current Coord, f float64, relaxed int, frontier int)
	// ObserveStale is called for every outdated frontier entry that is skipped.
	ObserveStale(node Coord)
	// ObserveOutcome is called once when the engine reaches a terminal status.
	ObserveOutcome(status Status, steps int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveStep(Coord, float64, int, int) {}
func (nopRecorder) ObserveStale(Coord)                   {}
func (nopRecorder) ObserveOutcome(Status, int)           {}

// Engine runs A* over a Grid one node expansion per Step call.
// All methods are safe for concurrent use; a Snapshot never observes a
// partially applied step.
type Engine struct {
	mu       sync.Mutex
	grid     *Grid
	logger   *zap.Logger
	recorder Recorder

	openSet   priorityQueue
	closedSet map[Coord]bool
	cameFrom  map[Coord]Coord
	gScore    map[Coord]float64
	sequence  uint64

	neighborBuf []Coord
	current     Coord
	path        []Coord
	cost        float64
	stepCount   int
	status      Status
}

// NewEngine creates an engine in the Running state with the start cell seeded
// into the frontier. It fails with ErrInvalidGrid for a nil or invalid grid.
func NewEngine(grid *Grid, options ...Option) (*Engine, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	opts := applyOptions(options)

	e := &Engine{
		grid:        grid,
		logger:      opts.Logger,
		recorder:    opts.Recorder,
		neighborBuf: make([]Coord, 0, len(directions)),
	}
	e.reset()
	return e, nil
}

// Grid returns the grid being searched.
func (e *Engine) Grid() *Grid { return e.grid }

// Reset discards all progress and reseeds the frontier with the start cell.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
	e.logger.Debug("search reset", zap.Stringer("start", e.grid.start), zap.Stringer("goal", e.grid.goal))
}

func (e *Engine) reset() {
	start := e.grid.start
	e.openSet = make(priorityQueue, 0, e.grid.rows+e.grid.cols)
	e.closedSet = make(map[Coord]bool)
	e.cameFrom = make(map[Coord]Coord)
	e.gScore = map[Coord]float64{start: 0}
	e.sequence = 0
	e.current = start
	e.path = nil
	e.cost = 0
	e.stepCount = 0
	e.status = Running

	heap.Init(&e.openSet)
	e.push(start, 0)
}

// Status returns the current status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Step pops the best frontier node and expands it. Once the engine is
// terminal, Step changes nothing and returns the terminal status.
func (e *Engine) Step() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status.Done() {
		return e.status
	}

	currentItem := e.popLive()
	if currentItem == nil {
		e.finish(Failed)
		return e.status
	}
	current := currentItem.Node
	e.stepCount++
	e.current = current

	if current == e.grid.goal {
		e.path = internal.ReconstructPath(e.cameFrom, current)
		e.cost = currentItem.GScore
		e.recorder.ObserveStep(current, currentItem.FCost, 0, e.openSet.Len())
		e.finish(Succeeded)
		return e.status
	}

	e.closedSet[current] = true
	relaxed := 0
	e.neighborBuf = e.grid.neighbors(current, e.neighborBuf[:0])
	for _, neighbor := range e.neighborBuf {
		if e.closedSet[neighbor] {
			continue
		}
		tentativeG := currentItem.GScore + stepCost
		if gPrev, ok := e.gScore[neighbor]; !ok || tentativeG < gPrev {
			e.gScore[neighbor] = tentativeG
			e.cameFrom[neighbor] = current
			e.push(neighbor, tentativeG)
			relaxed++
		}
	}

	e.recorder.ObserveStep(current, currentItem.FCost, relaxed, e.openSet.Len())
	e.logger.Debug("expanded node",
		zap.Stringer("node", current),
		zap.Float64("g", currentItem.GScore),
		zap.Float64("f", currentItem.FCost),
		zap.Int("relaxed", relaxed),
		zap.Int("step", e.stepCount))
	return Running
}

// Snapshot returns deep copies of the frontier membership, visited set,
// parent links and path. Frontier only lists nodes not yet visited.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	open := make(map[Coord]bool, len(e.openSet))
	for _, item := range e.openSet {
		if !e.closedSet[item.Node] {
			open[item.Node] = true
		}
	}
	var path []Coord
	if len(e.path) > 0 {
		path = append(make([]Coord, 0, len(e.path)), e.path...)
	}
	return Snapshot{
		Current:   e.current,
		Frontier:  open,
		Visited:   copyBoolMap(e.closedSet),
		CameFrom:  copyCameFrom(e.cameFrom),
		Path:      path,
		Cost:      e.cost,
		Status:    e.status,
		StepIndex: e.stepCount,
	}
}

// popLive pops entries until one whose node is not yet visited comes up.
// It returns nil when the frontier runs out.
func (e *Engine) popLive() *queueItem {
	for e.openSet.Len() > 0 {
		item := heap.Pop(&e.openSet).(*queueItem)
		if !e.closedSet[item.Node] {
			return item
		}
		e.recorder.ObserveStale(item.Node)
	}
	return nil
}

func (e *Engine) push(node Coord, g float64) {
	heap.Push(&e.openSet, &queueItem{
		Node:     node,
		GScore:   g,
		FCost:    g + Euclidean(node, e.grid.goal),
		Sequence: e.sequence,
	})
	e.sequence++
}

func (e *Engine) finish(status Status) {
	e.status = status
	e.recorder.ObserveOutcome(status, e.stepCount)
	e.logger.Info("search finished",
		zap.Stringer("status", status),
		zap.Int("steps", e.stepCount),
		zap.Int("visited", len(e.closedSet)),
		zap.Int("path_len", len(e.path)),
		zap.Float64("cost", e.cost))
}

func copyBoolMap[T comparable](m map[T]bool) map[T]bool {
	c := make(map[T]bool, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func copyCameFrom[T comparable](m map[T]T) map[T]T {
	c := make(map[T]T, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
