package physics

// FieldDensity describes how many particles a field gets per viewport area.
type FieldDensity struct {
	AreaPerParticle float64 // px² of viewport per particle
	MobileFactor    float64 // density multiplier for mobile viewports
	Min, Max        int
}

// DefaultFieldDensity is one particle per 400 px², clamped to [500, 30000].
func DefaultFieldDensity() FieldDensity {
	return FieldDensity{
		AreaPerParticle: 400,
		MobileFactor:    0.5,
		Min:             500,
		Max:             30000,
	}
}

// Count returns the particle count for a viewport.
func (d FieldDensity) Count(width, height float64, mobile bool) int {
	area := width * height
	if mobile && d.MobileFactor > 0 {
		area *= d.MobileFactor
	}
	n := 0
	if d.AreaPerParticle > 0 {
		n = int(area / d.AreaPerParticle)
	}
	if n < d.Min {
		n = d.Min
	}
	if d.Max > 0 && n > d.Max {
		n = d.Max
	}
	return n
}

// Seed replaces the body set with n particles at random positions inside
// the viewport with random velocity in [-1, 1]. Field particles have no
// home semantics.
func (e *Engine) Seed(n int) {
	bodies := make([]Body, n)
	for i := range bodies {
		bodies[i] = Body{
			X:      e.rng.Float64() * e.width,
			Y:      e.rng.Float64() * e.height,
			VX:     e.rng.Float64()*2 - 1,
			VY:     e.rng.Float64()*2 - 1,
			Mass:   e.params.Mass,
			Radius: e.params.Radius,
			Color:  e.params.BaseColor,
		}
	}
	e.Load(bodies)
}

// Settings are the user-adjustable field settings.
type Settings struct {
	PullStrength float64 // attraction multiplier; <= 0 keeps the preset value
	BaseColor    Color
}

// ApplySettings derives attraction and base colour from the engine's
// configured parameters, so repeated updates do not compound.
func (e *Engine) ApplySettings(s Settings) {
	e.params.BaseColor = s.BaseColor
	e.params.Attraction = e.configured.Attraction
	if s.PullStrength > 0 {
		e.params.Attraction *= s.PullStrength
	}
}
