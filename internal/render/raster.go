package render

import (
	"image"
	"image/color"
	"math"

	"github.com/saintsjh/PortfolioWebsite/internal/physics"
)

// Raster draws particles straight into an RGBA buffer. It skips gg's path
// machinery, which matters for tens of thousands of sub-pixel particles.
type Raster struct {
	img        *image.RGBA
	background color.RGBA
}

// NewRaster creates a width x height raster.
func NewRaster(width, height int) *Raster {
	return &Raster{
		img:        image.NewRGBA(image.Rect(0, 0, width, height)),
		background: Background,
	}
}

// Resize reallocates the pixel buffer.
func (r *Raster) Resize(width, height int) {
	if r.img.Rect.Dx() == width && r.img.Rect.Dy() == height {
		return
	}
	r.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Image returns the raster as an image.
func (r *Raster) Image() image.Image {
	return r.img
}

// Clear fills the buffer with a solid colour.
func (r *Raster) Clear(c color.RGBA) {
	pix := r.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = c.R
		pix[i+1] = c.G
		pix[i+2] = c.B
		pix[i+3] = c.A
	}
}

// Draw clears the raster and draws every record. Particles smaller than a
// pixel still cover the pixel they fall in.
func (r *Raster) Draw(buf *physics.Buffer) error {
	data, err := buf.Data()
	if err != nil {
		return err
	}

	r.Clear(r.background)
	for off := 0; off+physics.RecordSize <= len(data); off += physics.RecordSize {
		d := data[off : off+physics.RecordSize]
		c := color.RGBA{channel(d[3]), channel(d[4]), channel(d[5]), alpha(d[6])}
		r.FillCircle(float64(d[0]), float64(d[1]), math.Max(0.5, float64(d[2])), c)
	}
	return nil
}

// FillCircle draws a filled circle with alpha blending.
func (r *Raster) FillCircle(cx, cy, radius float64, c color.RGBA) {
	if c.A == 0 {
		return
	}
	w, h := r.img.Rect.Dx(), r.img.Rect.Dy()
	stride := r.img.Stride
	radSq := radius * radius
	srcA := float64(c.A) / 255.0
	invA := 1.0 - srcA

	y1 := max(0, int(math.Floor(cy-radius)))
	y2 := min(h, int(math.Ceil(cy+radius))+1)
	x1 := max(0, int(math.Floor(cx-radius)))
	x2 := min(w, int(math.Ceil(cx+radius))+1)

	for py := y1; py < y2; py++ {
		dy := float64(py) + 0.5 - cy
		rowStart := py * stride
		for px := x1; px < x2; px++ {
			dx := float64(px) + 0.5 - cx
			if dx*dx+dy*dy > radSq && !(px == int(cx) && py == int(cy)) {
				continue
			}
			idx := rowStart + px*4
			pix := r.img.Pix
			if c.A == 255 {
				pix[idx], pix[idx+1], pix[idx+2], pix[idx+3] = c.R, c.G, c.B, 255
				continue
			}
			pix[idx] = uint8(float64(c.R)*srcA + float64(pix[idx])*invA)
			pix[idx+1] = uint8(float64(c.G)*srcA + float64(pix[idx+1])*invA)
			pix[idx+2] = uint8(float64(c.B)*srcA + float64(pix[idx+2])*invA)
			pix[idx+3] = 255
		}
	}
}
