package input

import (
	"sync"
	"testing"

	"github.com/saintsjh/PortfolioWebsite/internal/physics"
)

// TestTrackerLastWriteWins verifies each event overwrites the reading
func TestTrackerLastWriteWins(t *testing.T) {
	tr := NewTracker(func() bool { return true })
	tr.SetOrigin(100, 50)

	events := []struct {
		ev   Event
		want physics.Input
	}{
		{Event{Type: PointerMove, X: 150, Y: 70}, physics.Input{X: 50, Y: 20}},
		{Event{Type: PointerDown, X: 160, Y: 80}, physics.Input{X: 60, Y: 30, Engaged: true}},
		{Event{Type: PointerMove, X: 170, Y: 90}, physics.Input{X: 70, Y: 40, Engaged: true}},
		{Event{Type: PointerUp, X: 170, Y: 90}, physics.Input{X: 70, Y: 40}},
		{Event{Type: TouchStart, X: 100, Y: 50}, physics.Input{X: 0, Y: 0, Engaged: true}},
		{Event{Type: TouchMove, X: 90, Y: 40}, physics.Input{X: -10, Y: -10, Engaged: true}},
		{Event{Type: TouchEnd, X: 90, Y: 40}, physics.Input{X: -10, Y: -10}},
	}

	for i, step := range events {
		tr.Handle(step.ev)
		if got := tr.Read(); got != step.want {
			t.Errorf("Event %d (%s): expected %+v, got %+v", i, step.ev.Type, step.want, got)
		}
	}
}

// TestTrackerPreventDefault verifies touch suppression rules
func TestTrackerPreventDefault(t *testing.T) {
	tests := []struct {
		name   string
		active bool
		ev     Event
		want   bool
	}{
		{"touch start while active", true, Event{Type: TouchStart}, true},
		{"touch move while active", true, Event{Type: TouchMove}, true},
		{"touch on button while active", true, Event{Type: TouchStart, Target: "BUTTON"}, false},
		{"touch move on link while active", true, Event{Type: TouchMove, Target: "a"}, false},
		{"touch while settled", false, Event{Type: TouchMove}, false},
		{"touch end", true, Event{Type: TouchEnd}, false},
		{"mouse move", true, Event{Type: PointerMove}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			active := tt.active
			tr := NewTracker(func() bool { return active })
			if got := tr.Handle(tt.ev); got != tt.want {
				t.Errorf("Expected preventDefault=%v, got %v", tt.want, got)
			}
		})
	}
}

// TestTrackerButtonTouchStillRecorded verifies unsuppressed touches update the reading
func TestTrackerButtonTouchStillRecorded(t *testing.T) {
	tr := NewTracker(func() bool { return true })
	tr.Handle(Event{Type: TouchStart, X: 12, Y: 34, Target: "button"})

	if got := tr.Read(); got.X != 12 || got.Y != 34 || !got.Engaged {
		t.Errorf("Expected reading (12, 34, engaged), got %+v", got)
	}

	tr.Reset()
	if got := tr.Read(); got != (physics.Input{}) {
		t.Errorf("Expected zero reading after reset, got %+v", got)
	}
}

// TestTrackerConcurrentAccess verifies concurrent writers and a reader do not race
func TestTrackerConcurrentAccess(t *testing.T) {
	tr := NewTracker(nil)
	var wg sync.WaitGroup

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				tr.Handle(Event{Type: PointerMove, X: float64(w), Y: float64(i)})
			}
		}(w)
	}
	for i := 0; i < 500; i++ {
		_ = tr.Read()
	}
	wg.Wait()

	if got := tr.Read(); got.X < 0 || got.X > 3 {
		t.Errorf("Unexpected final reading %+v", got)
	}
}
