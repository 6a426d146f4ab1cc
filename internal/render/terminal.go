package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/saintsjh/PortfolioWebsite/internal/layout"
	"github.com/saintsjh/PortfolioWebsite/internal/physics"
)

// density glyphs for particle counts per cell
var density = []rune{' ', '.', ':', '*', '#'}

type cell struct {
	r     rune
	color string
	count int
}

// Terminal renders simulation state as a grid of coloured cells.
type Terminal struct {
	Cols, Rows int
	styles     map[string]lipgloss.Style
}

// NewTerminal creates a cols x rows terminal view.
func NewTerminal(cols, rows int) *Terminal {
	return &Terminal{Cols: cols, Rows: rows, styles: make(map[string]lipgloss.Style)}
}

func (t *Terminal) grid() [][]cell {
	g := make([][]cell, t.Rows)
	for y := range g {
		g[y] = make([]cell, t.Cols)
		for x := range g[y] {
			g[y][x].r = ' '
		}
	}
	return g
}

func (t *Terminal) locate(x, y, width, height float64) (col, row int, ok bool) {
	if width <= 0 || height <= 0 || t.Cols <= 0 || t.Rows <= 0 {
		return 0, 0, false
	}
	col = int(x / width * float64(t.Cols))
	row = int(y / height * float64(t.Rows))
	if col < 0 || col >= t.Cols || row < 0 || row >= t.Rows {
		return 0, 0, false
	}
	return col, row, true
}

// Bodies draws character and block bodies in a width x height viewport.
func (t *Terminal) Bodies(bodies []physics.Body, width, height float64) string {
	g := t.grid()
	for i := range bodies {
		b := &bodies[i]
		u, ok := b.Payload.(layout.Unit)
		if !ok || !u.Renderable() {
			continue
		}
		col, row, ok := t.locate(b.X, b.Y, width, height)
		if !ok {
			continue
		}
		r := u.Char
		if u.Block != nil {
			r = '■'
		}
		if r == ' ' {
			continue
		}
		g[row][col] = cell{r: r, color: Palette[u.Style].Color}
	}
	return t.join(g)
}

// Particles draws a packed particle buffer, shading cells by how many
// particles fall in them.
func (t *Terminal) Particles(buf *physics.Buffer, width, height float64) (string, error) {
	data, err := buf.Data()
	if err != nil {
		return "", err
	}
	g := t.grid()
	for off := 0; off+physics.RecordSize <= len(data); off += physics.RecordSize {
		d := data[off : off+physics.RecordSize]
		col, row, ok := t.locate(float64(d[0]), float64(d[1]), width, height)
		if !ok {
			continue
		}
		c := &g[row][col]
		c.count++
		c.r = density[min(c.count, len(density)-1)]
		c.color = Hex(physics.Color{R: d[3], G: d[4], B: d[5]})
	}
	return t.join(g), nil
}

func (t *Terminal) join(g [][]cell) string {
	var sb strings.Builder
	for y, row := range g {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for _, c := range row {
			if c.color == "" || c.r == ' ' {
				sb.WriteRune(c.r)
				continue
			}
			sb.WriteString(t.style(c.color).Render(string(c.r)))
		}
	}
	return sb.String()
}

func (t *Terminal) style(color string) lipgloss.Style {
	s, ok := t.styles[color]
	if !ok {
		s = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		t.styles[color] = s
	}
	return s
}
