// Package physics implements the simulation engine shared by the character,
// content-block and particle-field views.
//
// One Engine owns one body slice and its parameters. Views construct an
// engine when they mount and drop it when they unmount; nothing is global.
package physics

import "math"

// Payload is the renderable unit carried by a body. The engine never looks
// inside it except to ask whether it is drawn at all.
type Payload interface {
	Renderable() bool
}

// Color is an RGBA colour with 0-255 channels and alpha in [0, 1],
// matching the packed render record layout.
type Color struct {
	R float32 `yaml:"r"`
	G float32 `yaml:"g"`
	B float32 `yaml:"b"`
	A float32 `yaml:"a"`
}

// Body is one simulated entity.
type Body struct {
	ID     int
	X, Y   float64
	VX, VY float64

	// Home position from layout measurement. Immutable for the life of the
	// body set; content or breakpoint changes replace the whole set.
	HomeX, HomeY float64

	Mass   float64
	Radius float64

	// Degrees and degrees per tick. Only driven when Params.Rotation is set.
	Rotation        float64
	AngularVelocity float64

	Color   Color
	Payload Payload
}

// Renderable reports whether a renderer should emit this body.
func (b *Body) Renderable() bool {
	return b.Payload == nil || b.Payload.Renderable()
}

// Speed returns the magnitude of the body's velocity.
func (b *Body) Speed() float64 {
	return math.Hypot(b.VX, b.VY)
}

// DistanceHome returns the distance between the body and its home position.
func (b *Body) DistanceHome() float64 {
	return math.Hypot(b.X-b.HomeX, b.Y-b.HomeY)
}

// pin places the body exactly at home at rest.
func (b *Body) pin() {
	b.X, b.Y = b.HomeX, b.HomeY
	b.VX, b.VY = 0, 0
	b.Rotation, b.AngularVelocity = 0, 0
}

// Input is the cursor reading sampled at the start of a tick.
type Input struct {
	X, Y    float64
	Engaged bool
}
