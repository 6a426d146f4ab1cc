// Package render turns simulation state into something a viewer can show:
// positioned DOM elements for the in-thread view, and raster images for the
// particle field.
package render

import (
	"fmt"
	"math"

	"github.com/saintsjh/PortfolioWebsite/internal/layout"
	"github.com/saintsjh/PortfolioWebsite/internal/physics"
)

// Appearance is the colour and opacity a style is drawn with.
type Appearance struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

const (
	Accent     = "#ff8c00"
	Foreground = "#e8e8e8"
)

// Palette maps unit styles to their appearance.
var Palette = map[layout.Style]Appearance{
	layout.StyleHeading:        {Foreground, 1},
	layout.StyleParagraph:      {Foreground, 1},
	layout.StyleLink:           {Foreground, 1},
	layout.StyleNumber:         {Accent, 1},
	layout.StyleGreeting:       {Accent, 1},
	layout.StyleSectionHeading: {Accent, 0.7},
	layout.StyleBlock:          {Foreground, 1},
}

// Element is one absolutely positioned DOM node.
type Element struct {
	ID        int          `json:"id"`
	Text      string       `json:"text,omitempty"`
	Style     layout.Style `json:"style"`
	Href      string       `json:"href,omitempty"`
	Block     bool         `json:"block,omitempty"`
	Color     string       `json:"color"`
	Opacity   float64      `json:"opacity"`
	Transform string       `json:"transform"`
}

// Scene is one DOM frame as sent to a viewer.
type Scene struct {
	Type     string    `json:"type"`
	Sequence uint64    `json:"sequence"`
	State    string    `json:"state"`
	ShowHint bool      `json:"showHint"`
	Elements []Element `json:"elements"`
}

// Transform positions an element at the body's top-left corner.
func Transform(b *physics.Body) string {
	return fmt.Sprintf("translate(%.2fpx, %.2fpx) rotate(%.2fdeg)", b.X, b.Y, b.Rotation)
}

// DOM appends one element per renderable body to dst. Line-break markers
// and bodies without a unit payload are skipped.
func DOM(bodies []physics.Body, dst []Element) []Element {
	dst = dst[:0]
	for i := range bodies {
		b := &bodies[i]
		u, ok := b.Payload.(layout.Unit)
		if !ok || !u.Renderable() {
			continue
		}

		look, ok := Palette[u.Style]
		if !ok {
			look = Appearance{Foreground, 1}
		}
		el := Element{
			ID:        b.ID,
			Style:     u.Style,
			Href:      u.Href,
			Block:     u.Block != nil,
			Color:     look.Color,
			Opacity:   look.Opacity,
			Transform: Transform(b),
		}
		if u.Block == nil {
			el.Text = string(u.Char)
		}
		dst = append(dst, el)
	}
	return dst
}

// Hex formats a colour as #rrggbb, ignoring alpha.
func Hex(c physics.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float32) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(float64(v)))))
}
