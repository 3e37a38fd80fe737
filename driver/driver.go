// Package driver paces an engine on a fixed tick and fans the resulting
// frames out to subscribers, the way a renderer consumes them.
package driver

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/pdrpinto/gridastar"
)

// DefaultTick is one step every 500ms, slow enough to follow by eye.
const DefaultTick = 500 * time.Millisecond

// Frame is what a renderer needs to draw one step.
type Frame struct {
	Grid     *gridastar.Grid
	Snapshot gridastar.Snapshot
}

// Driver calls Step on its engine once per tick.
type Driver struct {
	engine *gridastar.Engine
	tick   time.Duration
	logger *zap.Logger
	paused atomic.Bool

	// stepMu keeps step, snapshot and publish of one StepOnce together so
	// frames reach subscribers in step order.
	stepMu sync.Mutex

	mu          sync.Mutex
	subscribers map[int]chan Frame
	nextID      int
	closed      bool
}

// New creates a driver. A non-positive tick means DefaultTick.
func New(engine *gridastar.Engine, tick time.Duration, logger *zap.Logger) *Driver {
	if tick <= 0 {
		tick = DefaultTick
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		engine:      engine,
		tick:        tick,
		logger:      logger,
		subscribers: make(map[int]chan Frame),
	}
}

// Engine returns the driven engine.
func (d *Driver) Engine() *gridastar.Engine { return d.engine }

// Frame returns the current frame without stepping.
func (d *Driver) Frame() Frame {
	return Frame{Grid: d.engine.Grid(), Snapshot: d.engine.Snapshot()}
}

// Subscribe returns a channel receiving every published frame and a func
// that unsubscribes. Frames are dropped for a subscriber whose buffer is
// full, so a slow reader never holds up the tick. The channel is closed when
// Run returns or on unsubscribe.
func (d *Driver) Subscribe(buffer int) (<-chan Frame, func()) {
	ch := make(chan Frame, max(buffer, 1))

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		close(ch)
		return ch, func() {}
	}
	id := d.nextID
	d.nextID++
	d.subscribers[id] = ch

	return ch, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if sub, ok := d.subscribers[id]; ok {
			delete(d.subscribers, id)
			close(sub)
		}
	}
}

// Pause stops Run from stepping; StepOnce still works.
func (d *Driver) Pause() { d.paused.Store(true) }

// Resume lets Run step again.
func (d *Driver) Resume() { d.paused.Store(false) }

// Paused reports whether Run is paused.
func (d *Driver) Paused() bool { return d.paused.Load() }

// StepOnce advances the engine by one step and publishes the frame.
func (d *Driver) StepOnce() Frame {
	d.stepMu.Lock()
	defer d.stepMu.Unlock()
	d.engine.Step()
	frame := d.Frame()
	d.publish(frame)
	return frame
}

// Run steps the engine every tick until it is terminal or ctx is done, then
// closes all subscriber channels. It returns ctx.Err() on cancellation.
func (d *Driver) Run(ctx context.Context) error {
	defer d.closeSubscribers()

	ticker := time.NewTicker(d.tick)
	defer ticker.Stop()

	d.publish(d.Frame())
	for {
		if d.engine.Status().Done() {
			d.logger.Debug("driver stopped", zap.Stringer("status", d.engine.Status()))
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if d.Paused() {
				continue
			}
			d.StepOnce()
		}
	}
}

func (d *Driver) publish(frame Frame) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, ch := range d.subscribers {
		select {
		case ch <- frame:
		default:
			// drop rather than stall the tick
		}
	}
}

func (d *Driver) closeSubscribers() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for id, ch := range d.subscribers {
		delete(d.subscribers, id)
		close(ch)
	}
}
