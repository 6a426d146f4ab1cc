package render

import (
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"

	"github.com/saintsjh/PortfolioWebsite/internal/physics"
)

// Painter draws one packed particle buffer per frame.
type Painter interface {
	Draw(buf *physics.Buffer) error
	Image() image.Image
	Resize(width, height int)
}

// Background is the clear colour of the particle canvas.
var Background = color.RGBA{12, 12, 28, 255}

// Canvas draws particles as antialiased filled circles using gg. Every
// frame starts from a cleared canvas.
type Canvas struct {
	dc         *gg.Context
	background color.RGBA
}

// NewCanvas creates a width x height canvas.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		dc:         gg.NewContext(width, height),
		background: Background,
	}
}

// Resize reallocates the canvas.
func (c *Canvas) Resize(width, height int) {
	if width == c.dc.Width() && height == c.dc.Height() {
		return
	}
	c.dc = gg.NewContext(width, height)
}

// Draw clears the canvas and draws every record. The buffer is only read;
// ownership stays with the caller.
func (c *Canvas) Draw(buf *physics.Buffer) error {
	data, err := buf.Data()
	if err != nil {
		return err
	}

	c.dc.SetColor(c.background)
	c.dc.Clear()
	for off := 0; off+physics.RecordSize <= len(data); off += physics.RecordSize {
		d := data[off : off+physics.RecordSize]
		c.dc.SetRGBA255(int(channel(d[3])), int(channel(d[4])), int(channel(d[5])), int(alpha(d[6])))
		c.dc.DrawCircle(float64(d[0]), float64(d[1]), float64(d[2]))
		c.dc.Fill()
	}
	return nil
}

// Image returns the current canvas contents.
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

// EncodePNG writes the canvas as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return c.dc.EncodePNG(w)
}

func alpha(a float32) uint8 {
	return channel(a * 255)
}
