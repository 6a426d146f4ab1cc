package render

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/saintsjh/PortfolioWebsite/internal/layout"
	"github.com/saintsjh/PortfolioWebsite/internal/physics"
)

func unitBody(id int, r rune, style layout.Style, x, y float64) physics.Body {
	return physics.Body{ID: id, X: x, Y: y, Payload: layout.Unit{Char: r, Style: style}}
}

// TestDOM verifies renderable bodies become positioned elements
func TestDOM(t *testing.T) {
	bodies := []physics.Body{
		unitBody(0, 'H', layout.StyleHeading, 10, 20),
		unitBody(1, layout.Newline, layout.StyleHeading, 0, 0),
		unitBody(2, 'P', layout.StyleSectionHeading, 30.5, 40.25),
		{ID: 3, Payload: layout.Unit{Style: layout.StyleBlock, Block: layout.Image{Src: "me.png"}}},
		{ID: 4},
	}
	bodies[2].Rotation = 45

	els := DOM(bodies, nil)
	if len(els) != 3 {
		t.Fatalf("Expected 3 elements, got %d", len(els))
	}

	if els[0].Text != "H" || els[0].Transform != "translate(10.00px, 20.00px) rotate(0.00deg)" {
		t.Errorf("Unexpected element %+v", els[0])
	}
	if els[1].ID != 2 || els[1].Color != Accent || els[1].Opacity != 0.7 {
		t.Errorf("Expected accented section heading, got %+v", els[1])
	}
	if els[1].Transform != "translate(30.50px, 40.25px) rotate(45.00deg)" {
		t.Errorf("Unexpected transform %q", els[1].Transform)
	}
	if !els[2].Block || els[2].Text != "" {
		t.Errorf("Expected block element, got %+v", els[2])
	}
}

// TestPalette verifies accent styles
func TestPalette(t *testing.T) {
	tests := []struct {
		style layout.Style
		color string
	}{
		{layout.StyleNumber, Accent},
		{layout.StyleGreeting, Accent},
		{layout.StyleSectionHeading, Accent},
		{layout.StyleParagraph, Foreground},
		{layout.StyleLink, Foreground},
	}
	for _, tt := range tests {
		t.Run(string(tt.style), func(t *testing.T) {
			if got := Palette[tt.style].Color; got != tt.color {
				t.Errorf("Expected %s, got %s", tt.color, got)
			}
		})
	}
}

// TestHex verifies colour formatting and clamping
func TestHex(t *testing.T) {
	if got := Hex(physics.Color{R: 255, G: 210, B: 128}); got != "#ffd280" {
		t.Errorf("Expected #ffd280, got %s", got)
	}
	if got := Hex(physics.Color{R: 300, G: -5, B: 0.4}); got != "#ff0000" {
		t.Errorf("Expected #ff0000, got %s", got)
	}
}

func particleBuffer(records ...float32) *physics.Buffer {
	buf, err := physics.WrapBuffer(records)
	if err != nil {
		panic(err)
	}
	return buf
}

// TestPainters verifies both painters draw particles and clear between frames
func TestPainters(t *testing.T) {
	painters := map[string]Painter{
		"canvas": NewCanvas(40, 30),
		"raster": NewRaster(40, 30),
	}

	for name, p := range painters {
		t.Run(name, func(t *testing.T) {
			if err := p.Draw(particleBuffer(10, 10, 4, 255, 0, 0, 1)); err != nil {
				t.Fatalf("Draw failed: %v", err)
			}
			if got := color.RGBAModel.Convert(p.Image().At(10, 10)).(color.RGBA); got.R != 255 || got.G != 0 {
				t.Errorf("Expected red at particle, got %+v", got)
			}
			if got := color.RGBAModel.Convert(p.Image().At(30, 25)).(color.RGBA); got != Background {
				t.Errorf("Expected background away from particle, got %+v", got)
			}

			if err := p.Draw(particleBuffer(30, 20, 3, 0, 255, 0, 1)); err != nil {
				t.Fatalf("Draw failed: %v", err)
			}
			if got := color.RGBAModel.Convert(p.Image().At(10, 10)).(color.RGBA); got != Background {
				t.Errorf("Expected previous frame cleared, got %+v", got)
			}
		})
	}
}

// TestPainterNotOwned verifies a transferred buffer cannot be drawn
func TestPainterNotOwned(t *testing.T) {
	buf := particleBuffer(1, 1, 1, 0, 0, 0, 1)
	if _, err := buf.Transfer(); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if err := NewCanvas(4, 4).Draw(buf); !errors.Is(err, physics.ErrNotOwned) {
		t.Errorf("Expected ErrNotOwned, got %v", err)
	}
	if err := NewRaster(4, 4).Draw(buf); !errors.Is(err, physics.ErrNotOwned) {
		t.Errorf("Expected ErrNotOwned, got %v", err)
	}
}

// TestRasterSubPixel verifies sub-pixel particles still mark their pixel
func TestRasterSubPixel(t *testing.T) {
	r := NewRaster(10, 10)
	_ = r.Draw(particleBuffer(5.2, 5.7, 0.1, 0, 0, 255, 1))
	if got := r.Image().At(5, 5).(color.RGBA); got.B != 255 {
		t.Errorf("Expected blue pixel, got %+v", got)
	}
}

// TestCanvasPNG verifies the canvas encodes as PNG
func TestCanvasPNG(t *testing.T) {
	c := NewCanvas(16, 8)
	_ = c.Draw(particleBuffer(4, 4, 2, 255, 255, 255, 0.5))

	var out bytes.Buffer
	if err := c.EncodePNG(&out); err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	img, err := png.Decode(&out)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Errorf("Expected 16x8, got %v", b)
	}
}

// TestTerminalBodies verifies characters land in their cells
func TestTerminalBodies(t *testing.T) {
	term := NewTerminal(10, 4)
	out := term.Bodies([]physics.Body{
		unitBody(0, 'A', layout.StyleParagraph, 0, 0),
		unitBody(1, 'Z', layout.StyleParagraph, 95, 35),
		unitBody(2, 'X', layout.StyleParagraph, 500, 500),
	}, 100, 40)

	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "A") || !strings.Contains(lines[3], "Z") {
		t.Errorf("Expected A on first and Z on last line, got %q", out)
	}
	if strings.Contains(out, "X") {
		t.Error("Expected off-screen body skipped")
	}
}

// TestTerminalParticles verifies cells shade by particle count
func TestTerminalParticles(t *testing.T) {
	term := NewTerminal(2, 1)
	out, err := term.Particles(particleBuffer(
		1, 1, 1, 255, 255, 255, 1,
		2, 2, 1, 255, 255, 255, 1,
		3, 3, 1, 255, 255, 255, 1,
	), 20, 10)
	if err != nil {
		t.Fatalf("Particles failed: %v", err)
	}
	if !strings.Contains(out, "*") {
		t.Errorf("Expected dense cell glyph, got %q", out)
	}
}
