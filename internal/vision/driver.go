package vision

import (
	"context"
	"log/slog"
	"sync"

	"chosenoffset.com/fogofwar/internal/render/mask"
)

// State of a Driver
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Source supplies the scene as it is right now.
type Source interface {
	Snapshot() Snapshot
}

// Sink displays computed frames. Both methods are called with the driver
// locked and must not call back into it.
type Sink interface {
	Present(frame *Frame)
	Clear()
}

// Driver keeps one map's fog current: while running it rebuilds the mask
// once per scheduled tick. Each map view owns its own Driver.
type Driver struct {
	engine *Engine
	source Source
	sink   Sink
	sched  Scheduler
	memory *Memory

	mu         sync.Mutex
	state      State
	generation uint64
	cancelTick func()
	cancelCtx  context.CancelFunc
	ctx        context.Context
	lit        bool // Last presented frame had lights
}

// DriverOption configures optional Driver behaviour.
type DriverOption func(*Driver)

// WithMemory keeps an explored-area memory while the driver runs.
func WithMemory(m *Memory) DriverOption {
	return func(d *Driver) { d.memory = m }
}

// NewDriver creates a stopped driver.
func NewDriver(engine *Engine, source Source, sink Sink, sched Scheduler, opts ...DriverOption) *Driver {
	d := &Driver{
		engine: engine,
		source: source,
		sink:   sink,
		sched:  sched,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns whether the driver is running.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Start schedules the first tick. Starting a running driver does nothing.
func (d *Driver) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Running {
		return
	}

	d.state = Running
	d.generation++
	d.lit = false
	d.ctx, d.cancelCtx = context.WithCancel(context.Background())
	d.scheduleLocked()

	Logger().Info("vision driver started")
}

// Stop cancels the pending tick and any frame in flight, then clears the
// sink. No frame is presented after Stop returns.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Stopped {
		return
	}

	d.state = Stopped
	d.generation++
	if d.cancelTick != nil {
		d.cancelTick()
		d.cancelTick = nil
	}
	d.cancelCtx()
	d.lit = false
	if d.memory != nil {
		d.memory.Reset()
	}
	d.sink.Clear()

	Logger().Info("vision driver stopped")
}

func (d *Driver) scheduleLocked() {
	gen := d.generation
	d.cancelTick = d.sched.Schedule(func() { d.tick(gen) })
}

func (d *Driver) tick(gen uint64) {
	d.mu.Lock()
	if d.state != Running || d.generation != gen {
		d.mu.Unlock()
		return
	}
	ctx := d.ctx
	d.mu.Unlock()

	snap := d.source.Snapshot()

	var frame *Frame
	var err error
	if len(snap.Lights) > 0 {
		frame, err = d.engine.Compute(ctx, snap)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Running || d.generation != gen {
		return
	}

	switch {
	case err != nil:
		Logger().Warn("vision frame failed", slog.Any("err", err))
	case frame != nil:
		d.lit = true
		d.present(frame)
	case d.lit && snap.Width > 0 && snap.Height > 0:
		// Last light gone: hide the old reveal once
		d.lit = false
		d.present(&Frame{Mask: mask.New(snap.Width, snap.Height)})
	}

	d.scheduleLocked()
}

func (d *Driver) present(frame *Frame) {
	if d.memory != nil {
		d.memory.Apply(frame.Mask)
	}
	d.sink.Present(frame)
}
