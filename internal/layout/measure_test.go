package layout

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func newTestMeasurer(t *testing.T) *Measurer {
	t.Helper()
	fonts := LoadFonts("")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fonts.Wait(ctx); err != nil {
		t.Fatalf("Fonts failed to load: %v", err)
	}
	return NewMeasurer(fonts)
}

// TestMeasureIndexAligned verifies one box per unit in reading order
func TestMeasureIndexAligned(t *testing.T) {
	m := newTestMeasurer(t)
	units := Deconstruct(HomeContent(), Options{Greeting: "Hello"})

	boxes, err := m.Measure(context.Background(), units, Viewport{Width: 1440, Height: 900})
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	if len(boxes) != len(units) {
		t.Fatalf("Expected %d boxes, got %d", len(units), len(boxes))
	}

	for i := 1; i < len(units); i++ {
		a, b := boxes[i-1], boxes[i]
		if b.Y < a.Y {
			t.Fatalf("Unit %d (%q) is above unit %d", i, units[i].Char, i-1)
		}
		if b.Y == a.Y && b.X < a.X {
			t.Fatalf("Unit %d (%q) is left of unit %d on the same line", i, units[i].Char, i-1)
		}
		if units[i].Group != units[i-1].Group && b.Y == a.Y {
			t.Fatalf("Group change at unit %d did not start a new line", i)
		}
	}
	if boxes[0].X != DefaultFrame(false).Left || boxes[0].Y != DefaultFrame(false).Top {
		t.Errorf("Expected first box at container padding, got %+v", boxes[0])
	}
}

// TestMeasureWrapsToColumn verifies words wrap inside the text column
func TestMeasureWrapsToColumn(t *testing.T) {
	m := newTestMeasurer(t)
	content := []Block{Section{Para: &Paragraph{Segments: []string{
		"the quick brown fox jumps over the lazy dog again and again and again",
	}}}}
	units := Deconstruct(content, Options{})

	vp := Viewport{Width: 500, Height: 800}
	boxes, err := m.Measure(context.Background(), units, vp)
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}

	frame := DefaultFrame(false)
	right := vp.Width*frame.ColumnFraction - frame.Left
	lines := map[float64]bool{}
	for i, b := range boxes {
		lines[b.Y] = true
		if units[i].Char != ' ' && b.X+b.W > right+0.5 {
			t.Errorf("Unit %d (%q) overflows column: %v > %v", i, units[i].Char, b.X+b.W, right)
		}
	}
	if len(lines) < 2 {
		t.Errorf("Expected paragraph to wrap, got %d line(s)", len(lines))
	}
}

// TestMeasureCompactOffsets verifies compact frame offsets and newline markers
func TestMeasureCompactOffsets(t *testing.T) {
	m := newTestMeasurer(t)
	content := []Block{Section{Para: &Paragraph{CompactLines: []string{"ab", "cd"}}}}
	units := Deconstruct(content, Options{Compact: true})

	boxes, err := m.Measure(context.Background(), units, Viewport{Width: 390, Height: 844, Compact: true})
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}

	frame := DefaultFrame(true)
	if boxes[0].X != frame.Left+frame.OffsetX || boxes[0].Y != frame.Top+frame.OffsetY {
		t.Errorf("Expected first box at padding plus offset, got %+v", boxes[0])
	}
	// a b \n c d
	if boxes[3].Y <= boxes[0].Y {
		t.Errorf("Expected text after newline on a new line, got %v vs %v", boxes[3].Y, boxes[0].Y)
	}
	if boxes[3].X != boxes[0].X {
		t.Errorf("Expected new line to start at the left edge, got %v vs %v", boxes[3].X, boxes[0].X)
	}
}

// TestMeasureBreakpointChangesLayout verifies positions depend on the breakpoint
func TestMeasureBreakpointChangesLayout(t *testing.T) {
	m := newTestMeasurer(t)

	wide, err := m.Measure(context.Background(),
		Deconstruct(HomeContent(), Options{Greeting: "Hello"}), Viewport{Width: 1440, Height: 900})
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	narrow, err := m.Measure(context.Background(),
		Deconstruct(HomeContent(), Options{Greeting: "Hello", Compact: true}), Viewport{Width: 390, Height: 844, Compact: true})
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	if wide[0] == narrow[0] {
		t.Error("Expected different home positions across breakpoints")
	}
}

// TestMeasureBlocks verifies whole blocks are stacked without overlap
func TestMeasureBlocks(t *testing.T) {
	m := newTestMeasurer(t)
	content := append(HomeContent(), Image{Src: "/imgs/me.jpeg", Width: 4000, Height: 2000})
	units := DeconstructBlocks(content)

	vp := Viewport{Width: 1200, Height: 900}
	boxes, err := m.Measure(context.Background(), units, vp)
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	for i := 1; i < len(boxes); i++ {
		if boxes[i].Y < boxes[i-1].Y+boxes[i-1].H {
			t.Errorf("Block %d overlaps block %d", i, i-1)
		}
		if boxes[i].W <= 0 || boxes[i].H <= 0 {
			t.Errorf("Block %d has empty box %+v", i, boxes[i])
		}
	}

	img := boxes[len(boxes)-1]
	frame := DefaultFrame(false)
	col := vp.Width*frame.ColumnFraction - 2*frame.Left
	if img.W > col+1e-9 || math.Abs(img.H-img.W/2) > 1e-6 {
		t.Errorf("Expected image scaled to column keeping aspect, got %+v", img)
	}
}

// TestMeasureNotReady verifies the not-ready conditions
func TestMeasureNotReady(t *testing.T) {
	m := newTestMeasurer(t)
	units := Deconstruct(HomeContent(), Options{})

	tests := []struct {
		name  string
		units []Unit
		vp    Viewport
	}{
		{"no units", nil, Viewport{Width: 800, Height: 600}},
		{"zero viewport", units, Viewport{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Measure(context.Background(), tt.units, tt.vp)
			if !errors.Is(err, ErrNotReady) {
				t.Errorf("Expected ErrNotReady, got %v", err)
			}
		})
	}
}

// TestMeasureWaitsForFonts verifies measuring never proceeds on unloaded fonts
func TestMeasureWaitsForFonts(t *testing.T) {
	pending := &FontSet{ready: make(chan struct{})}
	m := NewMeasurer(pending)
	if m.Ready() {
		t.Fatal("Measurer should not be ready before fonts load")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.Measure(ctx, Deconstruct(HomeContent(), Options{}), Viewport{Width: 800, Height: 600})
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("Expected ErrNotReady while fonts load, got %v", err)
	}
}
