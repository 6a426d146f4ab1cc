// Package input tracks the pointer/touch reading the simulation samples
// once per tick.
package input

import (
	"strings"
	"sync"

	"github.com/saintsjh/PortfolioWebsite/internal/physics"
)

// EventType names a pointer or touch event.
type EventType string

const (
	PointerMove EventType = "pointermove"
	PointerDown EventType = "pointerdown"
	PointerUp   EventType = "pointerup"
	TouchStart  EventType = "touchstart"
	TouchMove   EventType = "touchmove"
	TouchEnd    EventType = "touchend"
)

// Event is one pointer or touch event in client (page) coordinates.
type Event struct {
	Type   EventType `json:"type"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Target string    `json:"target,omitempty"` // tag of the element under the pointer
}

// DefaultInteractive lists targets whose touches are never suppressed.
var DefaultInteractive = []string{"button", "a", "input", "select", "textarea"}

// Tracker keeps the latest cursor reading. Every event overwrites the
// previous one; there is no queue and no history.
type Tracker struct {
	mu      sync.RWMutex
	state   physics.Input
	originX float64
	originY float64

	active      func() bool
	interactive map[string]bool
}

// NewTracker creates a tracker. active reports whether free physics is
// running; it decides whether touches suppress scrolling.
func NewTracker(active func() bool) *Tracker {
	t := &Tracker{
		active:      active,
		interactive: make(map[string]bool, len(DefaultInteractive)),
	}
	for _, tag := range DefaultInteractive {
		t.interactive[tag] = true
	}
	return t
}

// SetOrigin sets the client position of the simulation container. Event
// coordinates are converted relative to it.
func (t *Tracker) SetOrigin(x, y float64) {
	t.mu.Lock()
	t.originX, t.originY = x, y
	t.mu.Unlock()
}

// Handle records ev and reports whether the host should suppress the
// event's default action (scrolling or zooming).
func (t *Tracker) Handle(ev Event) (preventDefault bool) {
	interactive := t.interactive[strings.ToLower(ev.Target)]

	t.mu.Lock()
	t.state.X = ev.X - t.originX
	t.state.Y = ev.Y - t.originY
	switch ev.Type {
	case PointerDown, TouchStart:
		t.state.Engaged = true
	case PointerUp, TouchEnd:
		t.state.Engaged = false
	}
	t.mu.Unlock()

	switch ev.Type {
	case TouchStart, TouchMove:
		return !interactive && t.active != nil && t.active()
	default:
		return false
	}
}

// Read returns the latest reading in simulation coordinates.
func (t *Tracker) Read() physics.Input {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Reset clears the reading back to the origin, not engaged.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.state = physics.Input{}
	t.mu.Unlock()
}
