package layout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"unicode"

	"golang.org/x/image/font"
)

// ErrNotReady means measurement cannot run yet: no units, an empty
// viewport, or fonts still loading. Callers keep their previous state and
// retry on the next pass.
var ErrNotReady = errors.New("layout: not ready")

// Viewport is the container size and responsive breakpoint.
type Viewport struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Compact bool    `json:"compact"`
}

// Box is a measured unit rectangle relative to the container origin.
type Box struct {
	X, Y, W, H float64
}

// Frame is the container geometry the content is flowed into.
type Frame struct {
	Left, Top      float64 // container padding
	ColumnFraction float64 // text column width as a fraction of the viewport
	OffsetX        float64 // added to every box
	OffsetY        float64
	GroupGap       float64 // extra space between line groups, in line heights
}

// DefaultFrame returns the container geometry for a breakpoint. Compact
// layouts use the full width and shift content by (15, 50).
func DefaultFrame(compact bool) Frame {
	if compact {
		return Frame{Left: 16, Top: 72, ColumnFraction: 1, OffsetX: 15, OffsetY: 50, GroupGap: 0.25}
	}
	return Frame{Left: 48, Top: 96, ColumnFraction: 0.75, GroupGap: 0.5}
}

// minColumn keeps a usable column on tiny viewports.
const minColumn = 120

// Measurer flows units into lines using real glyph metrics. Faces are not
// safe for concurrent use, so measurements are serialized.
type Measurer struct {
	mu    sync.Mutex
	fonts *FontSet
}

// NewMeasurer creates a measurer over a font set.
func NewMeasurer(fonts *FontSet) *Measurer {
	return &Measurer{fonts: fonts}
}

// Ready reports whether a measurement can run without waiting for fonts.
func (m *Measurer) Ready() bool {
	return m.fonts.Loaded()
}

// Measure returns one box per unit, index-aligned with units. It waits for
// fonts until ctx is done.
func (m *Measurer) Measure(ctx context.Context, units []Unit, vp Viewport) ([]Box, error) {
	if len(units) == 0 {
		return nil, fmt.Errorf("%w: no units to measure", ErrNotReady)
	}
	if vp.Width <= 0 || vp.Height <= 0 {
		return nil, fmt.Errorf("%w: empty viewport %vx%v", ErrNotReady, vp.Width, vp.Height)
	}
	if err := m.fonts.Wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	frame := DefaultFrame(vp.Compact)
	right := vp.Width*frame.ColumnFraction - frame.Left
	if right-frame.Left < minColumn {
		right = frame.Left + minColumn
	}

	f := &flow{
		fonts:   m.fonts,
		typo:    DefaultTypography(vp.Compact),
		compact: vp.Compact,
		left:    frame.Left,
		right:   right,
		y:       frame.Top,
		gap:     frame.GroupGap,
	}

	boxes := make([]Box, len(units))
	for i := 0; i < len(units); {
		j := i + 1
		for j < len(units) && units[j].Group == units[i].Group {
			j++
		}

		var err error
		if units[i].Block != nil {
			err = f.blocks(units[i:j], boxes[i:j])
		} else {
			err = f.text(units[i:j], boxes[i:j])
		}
		if err != nil {
			return nil, err
		}
		i = j
	}

	for i := range boxes {
		boxes[i].X += frame.OffsetX
		boxes[i].Y += frame.OffsetY
	}
	return boxes, nil
}

// flow is the cursor state of one measurement pass.
type flow struct {
	fonts   *FontSet
	typo    Typography
	compact bool

	left, right float64
	y           float64 // top of the next line group
	gap         float64
}

func (f *flow) typeSpec(style Style) TypeSpec {
	if ts, ok := f.typo[style]; ok {
		return ts
	}
	return f.typo[StyleParagraph]
}

// text lays out one line group with greedy word wrapping.
func (f *flow) text(units []Unit, boxes []Box) error {
	faces := make(map[Style]font.Face, 2)
	lineH := 0.0
	for _, u := range units {
		if _, ok := faces[u.Style]; ok {
			continue
		}
		ts := f.typeSpec(u.Style)
		face, err := f.fonts.Face(ts)
		if err != nil {
			return err
		}
		faces[u.Style] = face
		lineH = math.Max(lineH, ts.Size*ts.LineHeight)
	}

	advance := func(k int) float64 {
		face := faces[units[k].Style]
		r := units[k].Char
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			adv, _ = face.GlyphAdvance('?')
		}
		w := float64(adv) / 64
		if k > 0 && units[k-1].Style == units[k].Style {
			w += float64(face.Kern(units[k-1].Char, r)) / 64
		}
		return w
	}

	x, y := f.left, f.y
	for k := 0; k < len(units); {
		r := units[k].Char
		switch {
		case r == Newline:
			boxes[k] = Box{X: x, Y: y, H: lineH}
			x = f.left
			y += lineH
			k++
			continue
		case unicode.IsSpace(r):
			w := advance(k)
			boxes[k] = Box{X: x, Y: y, W: w, H: lineH}
			x += w
			k++
			continue
		}

		end, width := k, 0.0
		for end < len(units) && units[end].Char != Newline && !unicode.IsSpace(units[end].Char) {
			width += advance(end)
			end++
		}
		if x > f.left && x+width > f.right {
			x = f.left
			y += lineH
		}
		for q := k; q < end; q++ {
			w := advance(q)
			boxes[q] = Box{X: x, Y: y, W: w, H: lineH}
			x += w
		}
		k = end
	}

	f.y = y + lineH*(1+f.gap)
	return nil
}

// blocks lays out whole-block units, each on its own rows.
func (f *flow) blocks(units []Unit, boxes []Box) error {
	for k, u := range units {
		if img, ok := u.Block.(Image); ok {
			w, h := img.Width, img.Height
			if col := f.right - f.left; w > col && w > 0 {
				h *= col / w
				w = col
			}
			boxes[k] = Box{X: f.left, Y: f.y, W: w, H: h}
			f.y += h + f.gap*f.typeSpec(StyleParagraph).Size
			continue
		}

		inner := deconstructOne(u.Block, Options{Compact: f.compact})
		if len(inner) == 0 {
			boxes[k] = Box{X: f.left, Y: f.y}
			continue
		}
		innerBoxes := make([]Box, len(inner))
		for i := 0; i < len(inner); {
			j := i + 1
			for j < len(inner) && inner[j].Group == inner[i].Group {
				j++
			}
			if err := f.text(inner[i:j], innerBoxes[i:j]); err != nil {
				return err
			}
			i = j
		}
		boxes[k] = union(innerBoxes)
	}
	return nil
}

func union(boxes []Box) Box {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range boxes {
		minX = math.Min(minX, b.X)
		minY = math.Min(minY, b.Y)
		maxX = math.Max(maxX, b.X+b.W)
		maxY = math.Max(maxY, b.Y+b.H)
	}
	return Box{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
