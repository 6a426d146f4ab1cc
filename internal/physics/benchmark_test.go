package physics

import "testing"

// BenchmarkCharacterStep measures one frame for a page of characters
func BenchmarkCharacterStep(b *testing.B) {
	e := NewEngine(Characters(false), 1440, 900, 1)
	bodies := make([]Body, 600)
	for i := range bodies {
		bodies[i] = homeBody(float64(20+(i%60)*17), float64(40+(i/60)*40))
	}
	e.Load(bodies)
	in := Input{X: 500, Y: 300}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Step(in)
	}
}

// BenchmarkFieldStep measures one frame for a full-HD particle field
func BenchmarkFieldStep(b *testing.B) {
	e := NewEngine(Field(), 1920, 1080, 1)
	e.Seed(DefaultFieldDensity().Count(1920, 1080, false))
	in := Input{X: 960, Y: 540, Engaged: true}
	buf := NewBuffer(e.Len())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Step(in)
		_ = e.Pack(buf)
	}
}
