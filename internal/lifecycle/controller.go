// Package lifecycle runs the in-thread simulation: it measures content into
// home positions, pins bodies there, and moves between free physics and
// settling on user command, ticking once per frame.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/saintsjh/PortfolioWebsite/internal/input"
	"github.com/saintsjh/PortfolioWebsite/internal/layout"
	"github.com/saintsjh/PortfolioWebsite/internal/physics"
	"github.com/saintsjh/PortfolioWebsite/internal/physics/spatial"
)

// State is the lifecycle state of one simulation.
type State string

const (
	Measuring State = "measuring"
	Settled   State = "settled"
	Active    State = "active"
	Settling  State = "settling"
)

// ErrNotSettled is returned when activation is requested before the bodies
// have come to rest.
var ErrNotSettled = errors.New("lifecycle: physics can only be activated from settled")

// Mode selects what a body represents.
type Mode int

const (
	ModeCharacters Mode = iota // one body per character
	ModeBlocks                 // one body per content block
)

// Options configure a controller.
type Options struct {
	FPS            int
	Mode           Mode
	Params         func(compact bool) physics.Params
	Greeting       string // empty picks a random greeting
	HintDuration   time.Duration
	MeasureTimeout time.Duration
	Seed           int64

	// Hooks, called with the controller lock held; they must not call back
	// into the controller.
	OnTransition func(from, to State)
	OnTick       func(state State, bodies int, elapsed time.Duration)
	OnMeasure    func(units int, err error, elapsed time.Duration)

	now func() time.Time
}

// DefaultOptions returns options for the character view at 60 FPS.
func DefaultOptions() Options {
	return Options{
		FPS:            60,
		Mode:           ModeCharacters,
		Params:         physics.Characters,
		HintDuration:   4 * time.Second,
		MeasureTimeout: 50 * time.Millisecond,
		Seed:           time.Now().UnixNano(),
	}
}

// Frame is an immutable snapshot handed to renderers.
type Frame struct {
	Sequence  uint64
	State     State
	Viewport  layout.Viewport
	Bodies    []physics.Body
	ShowHint  bool
	Timestamp time.Time
}

// Status summarizes the controller for UI affordances.
type Status struct {
	State        State           `json:"state"`
	Bodies       int             `json:"bodies"`
	CanActivate  bool            `json:"canActivate"`
	CanStop      bool            `json:"canStop"`
	ShowHint     bool            `json:"showHint"`
	Viewport     layout.Viewport `json:"viewport"`
	Measurements int             `json:"measurements"`
}

// Controller owns one engine and moves it through
// measuring → settled → active → settling → settled.
type Controller struct {
	mu   sync.Mutex
	opts Options

	state    State
	engine   *physics.Engine
	measurer *layout.Measurer
	tracker  *input.Tracker
	active   atomic.Bool

	content      []layout.Block
	greeting     string
	viewport     layout.Viewport
	measurements int
	notReadyLogs int

	hasActivated bool
	hintUntil    time.Time

	frame   atomic.Pointer[Frame]
	seq     uint64
	changed bool

	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}
	done     chan struct{}
}

// NewController creates a controller in the measuring state. Nothing
// happens until content and a viewport are set and the controller ticks.
func NewController(measurer *layout.Measurer, opts Options) *Controller {
	def := DefaultOptions()
	if opts.FPS <= 0 {
		opts.FPS = def.FPS
	}
	if opts.Params == nil {
		opts.Params = def.Params
	}
	if opts.HintDuration <= 0 {
		opts.HintDuration = def.HintDuration
	}
	if opts.MeasureTimeout <= 0 {
		opts.MeasureTimeout = def.MeasureTimeout
	}
	if opts.now == nil {
		opts.now = time.Now
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	greeting := opts.Greeting
	if greeting == "" {
		greeting = layout.RandomGreeting(rng)
	}

	c := &Controller{
		opts:     opts,
		state:    Measuring,
		measurer: measurer,
		greeting: greeting,
		engine:   physics.NewEngine(opts.Params(false), 0, 0, rng.Int63()),
	}
	c.tracker = input.NewTracker(c.active.Load)
	c.changed = true
	c.publish()
	return c
}

// Tracker returns the input tracker feeding this controller.
func (c *Controller) Tracker() *input.Tracker {
	return c.tracker
}

// Greeting returns the session greeting.
func (c *Controller) Greeting() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.greeting
}

// SetContent replaces the content. The bodies are discarded and the
// content is measured again on the next tick.
func (c *Controller) SetContent(content []layout.Block) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content = content
	c.remeasure()
}

// SetViewport updates the viewport and breakpoint. Any change invalidates
// the measured home positions.
func (c *Controller) SetViewport(vp layout.Viewport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if vp == c.viewport {
		return
	}
	c.viewport = vp
	c.remeasure()
}

func (c *Controller) remeasure() {
	c.notReadyLogs = 0
	c.transition(Measuring)
}

// ActivatePhysics starts free physics. It is a no-op while already active.
func (c *Controller) ActivatePhysics() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Active:
		return nil
	case Settled:
		c.engine.Activate()
		if c.viewport.Compact && !c.hasActivated {
			c.hintUntil = c.opts.now().Add(c.opts.HintDuration)
		}
		c.hasActivated = true
		c.tracker.Reset()
		c.transition(Active)
		return nil
	default:
		return fmt.Errorf("%w: state is %s", ErrNotSettled, c.state)
	}
}

// StopPhysics returns the bodies home. It always goes through settling;
// in any state other than active it does nothing.
func (c *Controller) StopPhysics() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Active {
		c.transition(Settling)
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status returns the UI-facing summary.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:        c.state,
		Bodies:       c.engine.Len(),
		CanActivate:  c.state == Settled,
		CanStop:      c.state == Active,
		ShowHint:     c.showHint(),
		Viewport:     c.viewport,
		Measurements: c.measurements,
	}
}

// Frame returns the latest published frame.
func (c *Controller) Frame() *Frame {
	return c.frame.Load()
}

// Energy returns the kinetic energy of the current bodies.
func (c *Controller) Energy() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Energy()
}

// GridStats reports broad-phase occupancy from the last active tick.
func (c *Controller) GridStats() spatial.GridStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.GridStats()
}

// Tick advances the controller by one frame.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	switch c.state {
	case Measuring:
		c.measure()
	case Active:
		c.engine.Step(c.tracker.Read())
		c.changed = true
	case Settling:
		if c.engine.Settle() {
			c.transition(Settled)
		}
		c.changed = true
	}

	if c.opts.OnTick != nil {
		c.opts.OnTick(c.state, c.engine.Len(), time.Since(start))
	}
	c.publish()
}

// measure builds bodies from measured home positions. Not-ready results
// leave the controller measuring until a later tick.
func (c *Controller) measure() {
	if len(c.content) == 0 || c.viewport.Width <= 0 || c.viewport.Height <= 0 {
		return
	}
	if !c.measurer.Ready() {
		return
	}

	var units []layout.Unit
	if c.opts.Mode == ModeBlocks {
		units = layout.DeconstructBlocks(c.content)
	} else {
		units = layout.Deconstruct(c.content, layout.Options{
			Greeting: c.greeting,
			Compact:  c.viewport.Compact,
		})
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.MeasureTimeout)
	boxes, err := c.measurer.Measure(ctx, units, c.viewport)
	cancel()
	if c.opts.OnMeasure != nil {
		c.opts.OnMeasure(len(units), err, time.Since(start))
	}
	if err != nil {
		if !errors.Is(err, layout.ErrNotReady) || c.notReadyLogs == 0 {
			log.Printf("⏳ Measurement not ready: %v", err)
		}
		c.notReadyLogs++
		return
	}

	bodies := make([]physics.Body, len(units))
	for i, u := range units {
		bodies[i] = physics.Body{
			HomeX:   boxes[i].X,
			HomeY:   boxes[i].Y,
			Payload: u,
		}
		if c.opts.Mode == ModeBlocks {
			bodies[i].Radius = math.Max(1, math.Min(boxes[i].W, boxes[i].H)/2)
		}
	}

	c.engine.SetParams(c.opts.Params(c.viewport.Compact))
	c.engine.Resize(c.viewport.Width, c.viewport.Height)
	c.engine.Load(bodies)
	c.engine.Pin()
	c.measurements++
	c.transition(Settled)
}

func (c *Controller) transition(to State) {
	from := c.state
	if from == to {
		return
	}
	c.state = to
	c.active.Store(to == Active)
	c.changed = true
	log.Printf("🔄 Physics %s → %s", from, to)
	if c.opts.OnTransition != nil {
		c.opts.OnTransition(from, to)
	}
}

func (c *Controller) showHint() bool {
	return c.opts.now().Before(c.hintUntil)
}

// publish stores a fresh frame when anything changed since the last one.
func (c *Controller) publish() {
	hint := c.showHint()
	if prev := c.frame.Load(); !c.changed && prev != nil && prev.ShowHint == hint {
		return
	}
	c.changed = false
	c.seq++

	var bodies []physics.Body
	if c.state != Measuring {
		bodies = c.engine.Snapshot(nil)
	}
	c.frame.Store(&Frame{
		Sequence:  c.seq,
		State:     c.state,
		Viewport:  c.viewport,
		Bodies:    bodies,
		ShowHint:  hint,
		Timestamp: c.opts.now(),
	})
}

// Start begins ticking at the configured frame rate.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.ticker = time.NewTicker(time.Second / time.Duration(c.opts.FPS))
	c.stopChan = make(chan struct{})
	c.done = make(chan struct{})
	ticker, stop, done := c.ticker, c.stopChan, c.done
	c.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case <-ticker.C:
				c.Tick()
			case <-stop:
				return
			}
		}
	}()

	log.Printf("🎬 Physics loop started at %d FPS", c.opts.FPS)
}

// Stop cancels the frame loop and waits for the in-flight tick to finish.
// Stopping twice is safe.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.ticker.Stop()
	close(c.stopChan)
	done := c.done
	c.mu.Unlock()

	<-done
	log.Println("🛑 Physics loop stopped")
}

// Running reports whether the frame loop is active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
