package physics

import (
	"errors"
	"fmt"
)

// RecordSize is the number of float32 values per body in a packed buffer:
// x, y, radius, r, g, b, a.
const RecordSize = 7

// ErrNotOwned is returned when a buffer handle is used after its contents
// were transferred to another party.
var ErrNotOwned = errors.New("physics: buffer not owned")

// Record is one decoded entry of a packed buffer.
type Record struct {
	X, Y       float32
	Radius     float32
	R, G, B, A float32
}

// Buffer is a packed render buffer with single ownership. Transfer moves
// the backing storage into a new handle and empties the old one, so the
// party that sent a buffer can no longer read or write it. The buffer is
// passed back and forth between simulation and renderer instead of being
// copied every frame.
type Buffer struct {
	data []float32
}

// NewBuffer allocates a buffer holding n records.
func NewBuffer(n int) *Buffer {
	return &Buffer{data: make([]float32, n*RecordSize)}
}

// WrapBuffer takes ownership of raw packed data, e.g. a decoded frame.
func WrapBuffer(data []float32) (*Buffer, error) {
	if len(data)%RecordSize != 0 {
		return nil, fmt.Errorf("packed length %d is not a multiple of %d", len(data), RecordSize)
	}
	return &Buffer{data: data}, nil
}

// Owned reports whether this handle still holds the storage.
func (b *Buffer) Owned() bool {
	return b != nil && b.data != nil
}

// Transfer moves ownership into a new handle. The receiver is left empty.
func (b *Buffer) Transfer() (*Buffer, error) {
	if !b.Owned() {
		return nil, ErrNotOwned
	}
	moved := &Buffer{data: b.data}
	b.data = nil
	return moved, nil
}

// Len returns the number of records, or 0 for a handle that was transferred away.
func (b *Buffer) Len() int {
	if !b.Owned() {
		return 0
	}
	return len(b.data) / RecordSize
}

// Data returns the raw packed values.
func (b *Buffer) Data() ([]float32, error) {
	if !b.Owned() {
		return nil, ErrNotOwned
	}
	return b.data, nil
}

// Record decodes record i.
func (b *Buffer) Record(i int) (Record, error) {
	if !b.Owned() {
		return Record{}, ErrNotOwned
	}
	off := i * RecordSize
	if i < 0 || off+RecordSize > len(b.data) {
		return Record{}, fmt.Errorf("record %d out of range [0, %d)", i, b.Len())
	}
	d := b.data[off : off+RecordSize]
	return Record{X: d[0], Y: d[1], Radius: d[2], R: d[3], G: d[4], B: d[5], A: d[6]}, nil
}

// Reserve grows the buffer to hold n records, reusing capacity when it can.
func (b *Buffer) Reserve(n int) error {
	if !b.Owned() {
		return ErrNotOwned
	}
	size := n * RecordSize
	if cap(b.data) >= size {
		b.data = b.data[:size]
		return nil
	}
	b.data = make([]float32, size)
	return nil
}

// Pack writes one record per body into buf, resizing it to the body count.
func (e *Engine) Pack(buf *Buffer) error {
	if err := buf.Reserve(len(e.bodies)); err != nil {
		return err
	}
	for i := range e.bodies {
		b := &e.bodies[i]
		d := buf.data[i*RecordSize : (i+1)*RecordSize]
		d[0] = float32(b.X)
		d[1] = float32(b.Y)
		d[2] = float32(b.Radius)
		d[3] = b.Color.R
		d[4] = b.Color.G
		d[5] = b.Color.B
		d[6] = b.Color.A
	}
	return nil
}
