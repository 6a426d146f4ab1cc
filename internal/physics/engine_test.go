package physics

import (
	"math"
	"math/rand"
	"testing"
)

// far is a cursor reading outside every preset's influence radius.
var far = Input{X: -10000, Y: -10000}

func homeBody(x, y float64) Body {
	return Body{X: x, Y: y, HomeX: x, HomeY: y}
}

// TestNewEngine verifies construction and bounds
func TestNewEngine(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		wantX  float64
		wantY  float64
	}{
		{"characters desktop", Characters(false), 750, 800},
		{"characters compact", Characters(true), 1000, 800},
		{"field", Field(), 1000, 680},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.params, 1000, 800, 1)
			if e == nil {
				t.Fatal("NewEngine returned nil")
			}
			maxX, maxY := e.Bounds()
			if maxX != tt.wantX || maxY != tt.wantY {
				t.Errorf("Expected bounds (%v, %v), got (%v, %v)", tt.wantX, tt.wantY, maxX, maxY)
			}
		})
	}
}

// TestLoadAssignsIdentity verifies ids, defaults and home clamping
func TestLoadAssignsIdentity(t *testing.T) {
	e := NewEngine(Characters(false), 400, 300, 1)
	e.Load([]Body{homeBody(10, 10), homeBody(-20, 50), homeBody(500, 500)})

	bodies := e.Bodies()
	for i, b := range bodies {
		if b.ID != i {
			t.Errorf("Expected id %d, got %d", i, b.ID)
		}
		if b.Mass != 1 || b.Radius != 8 {
			t.Errorf("Expected preset mass/radius, got %v/%v", b.Mass, b.Radius)
		}
	}
	if bodies[1].HomeX != 8 {
		t.Errorf("Expected home x clamped to radius, got %v", bodies[1].HomeX)
	}
	if bodies[2].HomeX != 300-8 || bodies[2].HomeY != 300-8 {
		t.Errorf("Expected home clamped to column, got (%v, %v)", bodies[2].HomeX, bodies[2].HomeY)
	}
}

// TestStepNoPersistentPenetration verifies approaching pairs end a tick apart
func TestStepNoPersistentPenetration(t *testing.T) {
	e := NewEngine(Characters(false), 1200, 800, 1)

	var bodies []Body
	for _, x := range []float64{100, 200, 300} {
		a := homeBody(x, 400)
		a.VX = 10
		b := homeBody(x+20, 400)
		b.VX = -10
		bodies = append(bodies, a, b)
	}
	e.Load(bodies)

	for tick := 0; tick < 10; tick++ {
		e.Step(far)
		assertNoPenetration(t, e.Bodies(), 0.5)
	}
}

// TestStepSeparatesOverlap verifies overlapping bodies are pushed apart
func TestStepSeparatesOverlap(t *testing.T) {
	e := NewEngine(Characters(false), 1200, 800, 1)
	e.Load([]Body{homeBody(400, 400), homeBody(404, 400), homeBody(402, 402)})

	for tick := 0; tick < 30; tick++ {
		e.Step(far)
	}
	assertNoPenetration(t, e.Bodies(), 0.5)
}

func assertNoPenetration(t *testing.T, bodies []Body, eps float64) {
	t.Helper()
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			a, b := bodies[i], bodies[j]
			d := math.Hypot(a.X-b.X, a.Y-b.Y)
			if d < a.Radius+b.Radius-eps {
				t.Fatalf("Bodies %d and %d penetrate: distance %v", i, j, d)
			}
		}
	}
}

// TestCursorForceDirection verifies attraction when idle and repulsion when engaged
func TestCursorForceDirection(t *testing.T) {
	tests := []struct {
		name     string
		engaged  bool
		wantAway bool
	}{
		{"engaged repels", true, true},
		{"idle attracts", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(Characters(false), 1000, 800, 1)
			e.Load([]Body{homeBody(300, 300)})

			e.Step(Input{X: 320, Y: 300, Engaged: tt.engaged})

			vx := e.Bodies()[0].VX
			if tt.wantAway && vx >= 0 {
				t.Errorf("Expected velocity away from cursor, got vx=%v", vx)
			}
			if !tt.wantAway && vx <= 0 {
				t.Errorf("Expected velocity toward cursor, got vx=%v", vx)
			}
		})
	}
}

// TestFieldRepulsionShield verifies the particle preset repels within its shield
func TestFieldRepulsionShield(t *testing.T) {
	e := NewEngine(Field(), 800, 600, 1)
	e.Load([]Body{{X: 400, Y: 300}})

	e.Step(Input{X: 400, Y: 310, Engaged: true})

	b := e.Bodies()[0]
	if b.VY >= 0 {
		t.Errorf("Expected velocity away from cursor (negative y), got %v", b.VY)
	}
	if b.Color != Field().RepelColor {
		t.Errorf("Expected repel colour, got %+v", b.Color)
	}
}

// TestGravityOutsideInfluence verifies gravity only acts away from the cursor
func TestGravityOutsideInfluence(t *testing.T) {
	e := NewEngine(Field(), 800, 600, 1)
	e.Load([]Body{{X: 400, Y: 100}, {X: 100, Y: 300}})

	e.Step(Input{X: 100, Y: 350})

	bodies := e.Bodies()
	if bodies[0].VY <= 0 {
		t.Errorf("Expected distant particle to fall, got vy=%v", bodies[0].VY)
	}
	if bodies[0].Color != Field().BaseColor {
		t.Errorf("Expected base colour for distant particle, got %+v", bodies[0].Color)
	}
	if bodies[1].VY <= 0 {
		t.Errorf("Expected attracted particle to move toward cursor below it, got vy=%v", bodies[1].VY)
	}
	if bodies[1].Color.A != Field().AttractColor.A {
		t.Errorf("Expected attract alpha, got %v", bodies[1].Color.A)
	}
}

// TestBoundaryContainment verifies bodies never leave the simulation rectangle
func TestBoundaryContainment(t *testing.T) {
	const width, height = 800.0, 600.0
	rng := rand.New(rand.NewSource(3))

	for _, params := range []Params{Characters(false), Characters(true), Field(), Blocks()} {
		e := NewEngine(params, width, height, 5)
		bodies := make([]Body, 60)
		for i := range bodies {
			bodies[i] = homeBody(rng.Float64()*width, rng.Float64()*height)
		}
		e.Load(bodies)
		e.Activate()

		maxX, maxY := e.Bounds()
		check := func(phase string, tick int) {
			for _, b := range e.Bodies() {
				if b.X < b.Radius-1e-9 || b.X > maxX-b.Radius+1e-9 ||
					b.Y < b.Radius-1e-9 || b.Y > maxY-b.Radius+1e-9 {
					t.Fatalf("%s tick %d: body %d escaped to (%v, %v)", phase, tick, b.ID, b.X, b.Y)
				}
			}
		}

		for tick := 0; tick < 200; tick++ {
			in := Input{X: rng.Float64() * width, Y: rng.Float64() * height, Engaged: tick%3 == 0}
			e.Step(in)
			check("active", tick)
		}
		for tick := 0; tick < 200; tick++ {
			done := e.Settle()
			check("settling", tick)
			if done {
				break
			}
		}
	}
}

// TestBlocksOrientTowardHeading verifies rotation turns toward velocity
func TestBlocksOrientTowardHeading(t *testing.T) {
	e := NewEngine(Blocks(), 2000, 2000, 1)
	e.Load([]Body{{X: 500, Y: 500, HomeX: 500, HomeY: 500, Rotation: 90, VX: 5}})

	e.Step(far)

	b := e.Bodies()[0]
	if b.AngularVelocity >= 0 {
		t.Errorf("Expected negative angular velocity toward heading 0, got %v", b.AngularVelocity)
	}
	if b.Rotation >= 90 {
		t.Errorf("Expected rotation to decrease from 90, got %v", b.Rotation)
	}
}

// TestActivateScatter verifies only scattering presets move bodies on activation
func TestActivateScatter(t *testing.T) {
	chars := NewEngine(Characters(false), 800, 600, 1)
	chars.Load([]Body{homeBody(100, 100)})
	chars.Pin()
	chars.Activate()
	if b := chars.Bodies()[0]; b.X != 100 || b.Y != 100 || b.VX != 0 {
		t.Errorf("Expected characters to stay home on activation, got %+v", b)
	}

	blocks := NewEngine(Blocks(), 800, 600, 1)
	blocks.Load([]Body{homeBody(100, 100), homeBody(200, 100)})
	blocks.Pin()
	blocks.Activate()
	moved := false
	for _, b := range blocks.Bodies() {
		if b.X != b.HomeX || b.Y != b.HomeY {
			moved = true
		}
		if math.Abs(b.VX) > 2.5 || math.Abs(b.AngularVelocity) > 10 {
			t.Errorf("Scatter exceeded limits: %+v", b)
		}
	}
	if !moved {
		t.Error("Expected blocks to scatter on activation")
	}
}

// TestWrapAngle verifies angle wrapping into [-180, 180)
func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{90, 90},
		{190, -170},
		{-190, 170},
		{540, -180},
		{-720, 0},
	}

	for _, tt := range tests {
		if got := wrapAngle(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("wrapAngle(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

// TestEnergyDissipates verifies damping removes energy without cursor input
func TestEnergyDissipates(t *testing.T) {
	e := NewEngine(Characters(false), 1000, 800, 1)
	bodies := make([]Body, 10)
	for i := range bodies {
		bodies[i] = homeBody(float64(60+i*60), 400)
		bodies[i].VX = 10
	}
	e.Load(bodies)

	before := e.Energy()
	for i := 0; i < 50; i++ {
		e.Step(far)
	}
	if after := e.Energy(); after >= before {
		t.Errorf("Expected energy to drop from %v, got %v", before, after)
	}
}
