// Package worker runs the particle field off the caller's goroutine. The
// worker owns its engine; callers talk to it only through messages, and the
// render buffer travels between the two by ownership transfer.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/saintsjh/PortfolioWebsite/internal/physics"
	"github.com/saintsjh/PortfolioWebsite/internal/protocol"
)

// ErrTerminated is returned when posting to a worker that has stopped.
var ErrTerminated = errors.New("worker: terminated")

// Render carries one packed frame. The receiver owns Particles until it
// hands the buffer back with Return.
type Render struct {
	Sequence  uint64
	Particles *physics.Buffer
}

// Options configure a worker.
type Options struct {
	Params  physics.Params
	Density physics.FieldDensity
	Seed    int64
	Inbox   int // inbox capacity
}

// DefaultOptions returns the field preset at the default density.
func DefaultOptions() Options {
	return Options{
		Params:  physics.Field(),
		Density: physics.DefaultFieldDensity(),
		Seed:    1,
		Inbox:   64,
	}
}

type message struct {
	msg    protocol.Message
	buffer *physics.Buffer
}

// Worker owns one field engine.
type Worker struct {
	opts  Options
	inbox chan message
	out   chan Render

	// Owned by the run goroutine
	engine *physics.Engine
	buffer *physics.Buffer
	input  physics.Input

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	renders atomic.Uint64
	dropped atomic.Uint64
}

// New creates a worker. Call Start to run it.
func New(opts Options) *Worker {
	if opts.Inbox <= 0 {
		opts.Inbox = DefaultOptions().Inbox
	}
	if opts.Density == (physics.FieldDensity{}) {
		opts.Density = physics.DefaultFieldDensity()
	}
	return &Worker{
		opts:  opts,
		inbox: make(chan message, opts.Inbox),
		out:   make(chan Render, 1),
		done:  make(chan struct{}),
	}
}

// Start runs the worker until ctx is cancelled or Terminate is called.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	go w.run(ctx)
}

// Post delivers a control message. bufferBack must go through Return.
func (w *Worker) Post(msg protocol.Message) error {
	if _, ok := msg.(protocol.BufferBack); ok {
		return fmt.Errorf("bufferBack needs a buffer; use Return")
	}
	return w.send(message{msg: msg})
}

// Return hands a render buffer back. The caller's handle is emptied.
func (w *Worker) Return(buf *physics.Buffer) error {
	moved, err := buf.Transfer()
	if err != nil {
		return err
	}
	return w.send(message{msg: protocol.BufferBack{}, buffer: moved})
}

func (w *Worker) send(m message) error {
	select {
	case <-w.done:
		return ErrTerminated
	default:
	}
	select {
	case w.inbox <- m:
		return nil
	case <-w.done:
		return ErrTerminated
	}
}

// Renders delivers frames. The channel is closed when the worker stops.
func (w *Worker) Renders() <-chan Render {
	return w.out
}

// Done is closed once the worker has stopped.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Terminate stops the worker and waits for it. Safe to call repeatedly,
// and on a worker that was never started.
func (w *Worker) Terminate() {
	w.once.Do(func() {
		if w.cancel == nil {
			close(w.out)
			close(w.done)
			return
		}
		w.cancel()
	})
	<-w.done
}

// Stats returns the number of renders produced and messages dropped.
func (w *Worker) Stats() (renders, dropped uint64) {
	return w.renders.Load(), w.dropped.Load()
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	defer close(w.out)

	for {
		select {
		case <-ctx.Done():
			return
		case m := <-w.inbox:
			if err := w.handle(ctx, m); err != nil {
				w.dropped.Add(1)
				log.Printf("⚠️ Field worker: %s: %v", m.msg.Type(), err)
			}
		}
	}
}

func (w *Worker) handle(ctx context.Context, m message) error {
	switch msg := m.msg.(type) {
	case protocol.Init:
		if msg.Width <= 0 || msg.Height <= 0 {
			return fmt.Errorf("invalid size %.0fx%.0f", msg.Width, msg.Height)
		}
		// A repeat init while the last frame is still out only swaps the
		// field; the returned buffer carries the first render of it.
		outstanding := w.engine != nil && !w.buffer.Owned()
		w.engine = physics.NewEngine(w.opts.Params, msg.Width, msg.Height, w.opts.Seed)
		n := w.opts.Density.Count(msg.Width, msg.Height, msg.IsMobile)
		w.engine.Seed(n)
		w.input = physics.Input{X: msg.Width / 2, Y: msg.Height / 2}
		log.Printf("✨ Field worker initialized: %d particles at %.0fx%.0f", n, msg.Width, msg.Height)
		if outstanding {
			return nil
		}
		w.buffer = physics.NewBuffer(n)
		return w.render(ctx)

	case protocol.Resize:
		if w.engine == nil {
			return fmt.Errorf("resize before init")
		}
		w.engine.Resize(msg.Width, msg.Height)
		return nil

	case protocol.UpdateMouse:
		w.input = physics.Input{X: msg.MousePos.X, Y: msg.MousePos.Y, Engaged: msg.IsMouseDown}
		return nil

	case protocol.UpdateSettings:
		if w.engine == nil {
			return fmt.Errorf("settings before init")
		}
		settings := physics.Settings{
			PullStrength: msg.PullStrength,
			BaseColor:    w.engine.Params().BaseColor,
		}
		hex := strings.TrimPrefix(strings.TrimSpace(msg.BaseColor), "#")
		if hex == "" {
			w.engine.ApplySettings(settings)
			return nil
		}
		color, err := protocol.ParseColor(hex)
		if err != nil {
			w.engine.ApplySettings(settings)
			return err
		}
		if len(hex) != 8 {
			color.A = w.opts.Params.BaseColor.A
		}
		settings.BaseColor = color
		w.engine.ApplySettings(settings)
		return nil

	case protocol.BufferBack:
		if w.engine == nil {
			return fmt.Errorf("buffer returned before init")
		}
		if w.buffer.Owned() {
			return fmt.Errorf("buffer returned while one is held")
		}
		w.buffer = m.buffer
		return w.render(ctx)
	}
	return fmt.Errorf("%w: %T", protocol.ErrUnknownMessage, m.msg)
}

// render steps once, packs, and transfers the buffer out. The worker holds
// no buffer until it comes back.
func (w *Worker) render(ctx context.Context) error {
	w.engine.Step(w.input)
	if err := w.engine.Pack(w.buffer); err != nil {
		return err
	}
	particles, err := w.buffer.Transfer()
	if err != nil {
		return err
	}
	w.buffer = nil

	seq := w.renders.Add(1)
	select {
	case w.out <- Render{Sequence: seq, Particles: particles}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
