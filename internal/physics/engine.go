package physics

import (
	"math"
	"math/rand"

	"github.com/saintsjh/PortfolioWebsite/internal/physics/spatial"
)

// minSeparation is the distance floor applied before dividing by a
// body-body or body-cursor distance.
const minSeparation = 1.0

// Engine advances one set of bodies. It is not safe for concurrent use:
// the owner (the lifecycle frame loop or a field worker) is the only caller,
// and renderers read copies made with Snapshot or Pack.
type Engine struct {
	params     Params
	configured Params // as passed in, before runtime settings
	bodies     []Body

	width, height float64

	// Broad phase, rebuilt lazily when bounds, params or bodies change
	grid   *spatial.Grid
	pairFn func(a, b uint32)

	rng         *rand.Rand
	ticks       uint64
	settleTicks int
}

// NewEngine creates an engine for a width x height viewport.
// seed drives activation scatter and particle seeding.
func NewEngine(p Params, width, height float64, seed int64) *Engine {
	e := &Engine{
		params:     p,
		configured: p,
		width:      width,
		height:     height,
		rng:        rand.New(rand.NewSource(seed)),
	}
	e.pairFn = e.resolvePair
	return e
}

// Params returns the engine parameters.
func (e *Engine) Params() Params {
	return e.params
}

// SetParams replaces the engine parameters.
func (e *Engine) SetParams(p Params) {
	e.params = p
	e.configured = p
	e.grid = nil
}

// Resize changes the viewport. Bodies are brought back inside the new
// bounds on the next step.
func (e *Engine) Resize(width, height float64) {
	e.width, e.height = width, height
	e.grid = nil
}

// Size returns the viewport dimensions.
func (e *Engine) Size() (width, height float64) {
	return e.width, e.height
}

// Bounds returns the far edges of the simulation rectangle, whose near
// edges are at zero.
func (e *Engine) Bounds() (maxX, maxY float64) {
	return e.width * e.params.ColumnFraction, e.height * e.params.FloorFraction
}

// Len returns the number of bodies.
func (e *Engine) Len() int {
	return len(e.bodies)
}

// Ticks returns the number of active steps taken.
func (e *Engine) Ticks() uint64 {
	return e.ticks
}

// Bodies returns the live body slice. It is mutated by every step.
func (e *Engine) Bodies() []Body {
	return e.bodies
}

// Snapshot copies the bodies into dst, reusing its capacity.
func (e *Engine) Snapshot(dst []Body) []Body {
	return append(dst[:0], e.bodies...)
}

// Load replaces the body set wholesale. IDs are reassigned to slice
// indices, missing mass/radius take the preset values, and home positions
// are moved inside the simulation rectangle so that settling can always
// converge.
func (e *Engine) Load(bodies []Body) {
	maxX, maxY := e.Bounds()
	for i := range bodies {
		b := &bodies[i]
		b.ID = i
		if b.Mass <= 0 {
			b.Mass = e.params.Mass
		}
		if b.Radius <= 0 {
			b.Radius = e.params.Radius
		}
		b.HomeX = clampAxis(b.HomeX, b.Radius, maxX)
		b.HomeY = clampAxis(b.HomeY, b.Radius, maxY)
	}
	e.bodies = bodies
	e.grid = nil
	e.settleTicks = 0
}

// Pin places every body exactly on its home position at rest.
func (e *Engine) Pin() {
	for i := range e.bodies {
		e.bodies[i].pin()
	}
	e.settleTicks = 0
}

// Activate prepares bodies for free physics. With Params.Scatter set the
// bodies are thrown to random positions with random velocity and spin.
func (e *Engine) Activate() {
	e.settleTicks = 0
	if !e.params.Scatter {
		return
	}
	maxX, maxY := e.Bounds()
	speed, spin := e.params.ScatterSpeed, e.params.ScatterSpin
	for i := range e.bodies {
		b := &e.bodies[i]
		b.X = clampAxis(e.rng.Float64()*maxX, b.Radius, maxX)
		b.Y = clampAxis(e.rng.Float64()*maxY, b.Radius, maxY)
		b.VX = (e.rng.Float64()*2 - 1) * speed
		b.VY = (e.rng.Float64()*2 - 1) * speed
		b.Rotation = e.rng.Float64()*360 - 180
		b.AngularVelocity = (e.rng.Float64()*2 - 1) * spin
	}
}

// Step advances every body by one frame of free physics. Each sub-step
// applies forces, resolves collisions, integrates positions and then
// clamps to the boundary, in that order.
func (e *Engine) Step(in Input) {
	p := &e.params
	steps := p.SubSteps
	if steps < 1 {
		steps = 1
	}
	dt := 1 / float64(steps)
	maxX, maxY := e.Bounds()

	for s := 0; s < steps; s++ {
		for i := range e.bodies {
			e.applyForces(&e.bodies[i], in, dt)
		}

		if p.Collisions {
			e.collide()
		}

		for i := range e.bodies {
			b := &e.bodies[i]
			b.X += b.VX * dt
			b.Y += b.VY * dt
			contain(b, maxX, maxY, p.Bounce)
		}
	}

	if p.Rotation {
		for i := range e.bodies {
			e.orient(&e.bodies[i])
		}
	}

	e.ticks++
}

// applyForces accumulates cursor, homing and gravity acceleration into the
// body's velocity, then damps and clamps it.
func (e *Engine) applyForces(b *Body, in Input, dt float64) {
	p := &e.params

	dx, dy := in.X-b.X, in.Y-b.Y
	dist := math.Hypot(dx, dy)
	if dist < minSeparation {
		dist = minSeparation
	}
	nx, ny := dx/dist, dy/dist

	radius := p.InfluenceRadius
	if in.Engaged && p.EngagedRadius > 0 {
		radius = p.EngagedRadius
	}
	falloff := 0.0
	if radius > 0 && dist < radius {
		falloff = 1 - dist/radius
	}

	invMass := 1 / b.Mass
	repelled := in.Engaged && dist < p.RepulsionRadius

	var ax, ay float64
	switch {
	case repelled:
		f := p.Repulsion * (1 - dist/p.RepulsionRadius) * invMass
		ax -= nx * f
		ay -= ny * f
	case falloff > 0:
		f := p.Attraction * falloff * invMass
		ax += nx * f
		ay += ny * f
	default:
		ay += p.Gravity
	}

	if homing := p.HomingBase + (1-falloff)*p.HomingIdle; homing > 0 {
		ax += (b.HomeX - b.X) * homing
		ay += (b.HomeY - b.Y) * homing
	}

	b.VX += ax * dt
	b.VY += ay * dt

	damping := p.Damping - (1-falloff)*p.IdleDamping
	b.VX *= damping
	b.VY *= damping
	clampSpeed(b, p.MaxVelocity)

	if p.Colorize {
		b.Color = e.tint(falloff, repelled)
	}
}

// tint colours a particle by its relation to the cursor: the repel colour
// inside the shield, a blend from the attract colour (edge of influence)
// to the base colour (at the cursor) inside the influence radius.
func (e *Engine) tint(falloff float64, repelled bool) Color {
	p := &e.params
	switch {
	case repelled:
		return p.RepelColor
	case falloff > 0:
		edge := p.AttractColor
		i := float32(falloff)
		return Color{
			R: edge.R + (p.BaseColor.R-edge.R)*i,
			G: edge.G + (p.BaseColor.G-edge.G)*i,
			B: edge.B + (p.BaseColor.B-edge.B)*i,
			A: edge.A,
		}
	default:
		return p.BaseColor
	}
}

// collide rebuilds the broad phase and resolves every overlapping pair.
func (e *Engine) collide() {
	if e.grid == nil {
		e.grid = e.newGrid()
	}
	e.grid.Clear()
	for i := range e.bodies {
		e.grid.Insert(uint32(i), e.bodies[i].X, e.bodies[i].Y)
	}
	e.grid.ForEachPair(e.pairFn)
}

func (e *Engine) resolvePair(a, b uint32) {
	Collide(&e.bodies[a], &e.bodies[b], e.params.Restitution)
}

// newGrid sizes cells so that any overlapping pair shares a cell or sits
// in adjacent cells.
func (e *Engine) newGrid() *spatial.Grid {
	maxRadius := e.params.Radius
	for i := range e.bodies {
		if r := e.bodies[i].Radius; r > maxRadius {
			maxRadius = r
		}
	}
	cell := e.params.CellSize
	if cell < 2*maxRadius {
		cell = 2 * maxRadius
	}
	maxX, maxY := e.Bounds()
	return spatial.NewGrid(maxX, maxY, cell, len(e.bodies))
}

// GridStats reports broad-phase occupancy from the last collision pass.
func (e *Engine) GridStats() spatial.GridStats {
	if e.grid == nil {
		return spatial.GridStats{}
	}
	return e.grid.Stats()
}

// orient turns the body toward its velocity heading.
func (e *Engine) orient(b *Body) {
	p := &e.params
	torque := 0.0
	if b.Speed() > 0.01 {
		heading := math.Atan2(b.VY, b.VX) * 180 / math.Pi
		torque = wrapAngle(heading-b.Rotation) * p.Torque
	}
	b.AngularVelocity = (b.AngularVelocity + torque) * p.AngularDamping
	b.Rotation = wrapAngle(b.Rotation + b.AngularVelocity)
}

// Energy returns the total kinetic energy of the body set.
func (e *Engine) Energy() float64 {
	var total float64
	for i := range e.bodies {
		b := &e.bodies[i]
		total += 0.5 * b.Mass * (b.VX*b.VX + b.VY*b.VY)
	}
	return total
}

// clampSpeed limits the velocity magnitude to max.
func clampSpeed(b *Body, max float64) {
	if max <= 0 {
		return
	}
	sq := b.VX*b.VX + b.VY*b.VY
	if sq > max*max {
		scale := max / math.Sqrt(sq)
		b.VX *= scale
		b.VY *= scale
	}
}

// contain clamps the body into [r, maxX-r] x [r, maxY-r], reflecting and
// attenuating the velocity component of every clamped axis.
func contain(b *Body, maxX, maxY, bounce float64) {
	if b.X < b.Radius {
		b.X = b.Radius
		b.VX = -b.VX * bounce
	} else if b.X > maxX-b.Radius {
		b.X = math.Max(b.Radius, maxX-b.Radius)
		b.VX = -b.VX * bounce
	}
	if b.Y < b.Radius {
		b.Y = b.Radius
		b.VY = -b.VY * bounce
	} else if b.Y > maxY-b.Radius {
		b.Y = math.Max(b.Radius, maxY-b.Radius)
		b.VY = -b.VY * bounce
	}
}

func clampAxis(v, r, max float64) float64 {
	if v > max-r {
		v = max - r
	}
	if v < r {
		v = r
	}
	return v
}

// wrapAngle maps degrees into [-180, 180).
func wrapAngle(a float64) float64 {
	a = math.Mod(a+180, 360)
	if a < 0 {
		a += 360
	}
	return a - 180
}
