package physics

import (
	"errors"
	"fmt"
	"sort"
)

// Params holds every tunable constant of the engine. The three views of the
// site differ only in their Params.
type Params struct {
	SubSteps int     `yaml:"sub_steps"`
	Radius   float64 `yaml:"radius"`
	Mass     float64 `yaml:"mass"`

	// Collisions
	Collisions  bool    `yaml:"collisions"`
	CellSize    float64 `yaml:"cell_size"` // 0 picks twice the largest radius
	Restitution float64 `yaml:"restitution"`
	MaxVelocity float64 `yaml:"max_velocity"`

	// Boundary: the simulation rectangle is
	// [0, width*ColumnFraction] x [0, height*FloorFraction].
	Bounce         float64 `yaml:"bounce"`
	ColumnFraction float64 `yaml:"column_fraction"`
	FloorFraction  float64 `yaml:"floor_fraction"`

	// Homing strength is HomingBase + (1-falloff)*HomingIdle, so bodies far
	// from the cursor are pulled home harder.
	HomingBase float64 `yaml:"homing_base"`
	HomingIdle float64 `yaml:"homing_idle"`

	// Cursor. Attraction falls off linearly inside InfluenceRadius, or
	// EngagedRadius while the pointer is down. While engaged, bodies inside
	// RepulsionRadius are pushed away instead.
	InfluenceRadius float64 `yaml:"influence_radius"`
	EngagedRadius   float64 `yaml:"engaged_radius"`
	Attraction      float64 `yaml:"attraction"`
	RepulsionRadius float64 `yaml:"repulsion_radius"`
	Repulsion       float64 `yaml:"repulsion"`

	// Gravity only acts outside the cursor's influence.
	Gravity float64 `yaml:"gravity"`

	// Damping is the per-step velocity factor under full cursor influence;
	// IdleDamping is subtracted in proportion to the missing influence.
	Damping     float64 `yaml:"damping"`
	IdleDamping float64 `yaml:"idle_damping"`

	// Orientation toward heading
	Rotation       bool    `yaml:"rotation"`
	Torque         float64 `yaml:"torque"`
	AngularDamping float64 `yaml:"angular_damping"`

	// Settling
	SettleHoming         float64 `yaml:"settle_homing"`
	SettleDamping        float64 `yaml:"settle_damping"`
	SettleTorque         float64 `yaml:"settle_torque"`
	SettleAngularDamping float64 `yaml:"settle_angular_damping"`
	SettleEpsilon        float64 `yaml:"settle_epsilon"`
	MaxSettleTicks       int     `yaml:"max_settle_ticks"`

	// Activation scatters bodies across the viewport.
	Scatter      bool    `yaml:"scatter"`
	ScatterSpeed float64 `yaml:"scatter_speed"`
	ScatterSpin  float64 `yaml:"scatter_spin"`

	// Proximity colouring (particle field)
	Colorize     bool  `yaml:"colorize"`
	BaseColor    Color `yaml:"base_color"`
	AttractColor Color `yaml:"attract_color"`
	RepelColor   Color `yaml:"repel_color"`
}

// Preset names.
const (
	PresetCharacters = "characters"
	PresetBlocks     = "blocks"
	PresetField      = "field"
)

// Characters returns the parameters for per-character text physics.
// compact selects the narrow-viewport layout, whose text column spans the
// full width.
func Characters(compact bool) Params {
	column := 0.75
	if compact {
		column = 1
	}
	return Params{
		SubSteps:    5,
		Radius:      8,
		Mass:        1,
		Collisions:  true,
		Restitution: 0.8,
		MaxVelocity: 15,

		Bounce:         0.5,
		ColumnFraction: column,
		FloorFraction:  1,

		HomingBase: 0.001,
		HomingIdle: 0.02,

		InfluenceRadius: 400,
		EngagedRadius:   400,
		Attraction:      5,
		RepulsionRadius: 80,
		Repulsion:       10,
		Gravity:         0.2,

		Damping:     0.98,
		IdleDamping: 0.25,

		SettleHoming:   0.1,
		SettleDamping:  0.9,
		SettleEpsilon:  0.5,
		MaxSettleTicks: 900,
	}
}

// Blocks returns the parameters for whole content blocks that tumble and
// orient toward their heading.
func Blocks() Params {
	return Params{
		SubSteps:    1,
		Radius:      40,
		Mass:        1,
		Restitution: 0.8,
		MaxVelocity: 15,

		Bounce:         0.5,
		ColumnFraction: 1,
		FloorFraction:  1,

		HomingBase: 0.001,

		InfluenceRadius: 600,
		EngagedRadius:   600,
		Attraction:      2,
		RepulsionRadius: 150,
		Repulsion:       4,

		Damping: 0.92,

		Rotation:       true,
		Torque:         0.1,
		AngularDamping: 0.92,

		SettleHoming:         0.1,
		SettleDamping:        0.9,
		SettleTorque:         0.2,
		SettleAngularDamping: 0.8,
		SettleEpsilon:        1,
		MaxSettleTicks:       900,

		Scatter:      true,
		ScatterSpeed: 2.5,
		ScatterSpin:  10,
	}
}

// Field returns the parameters for the free-floating particle field.
func Field() Params {
	return Params{
		SubSteps:    1,
		Radius:      0.75,
		Mass:        1,
		Collisions:  true,
		CellSize:    6,
		Restitution: 0.8,
		MaxVelocity: 8,

		Bounce:         0.8,
		ColumnFraction: 1,
		FloorFraction:  0.85,

		InfluenceRadius: 100,
		EngagedRadius:   300,
		Attraction:      0.6,
		RepulsionRadius: 30,
		Repulsion:       3,
		Gravity:         0.2,

		Damping: 0.99,

		SettleHoming:   0.1,
		SettleDamping:  0.9,
		SettleEpsilon:  0.5,
		MaxSettleTicks: 900,

		Colorize:     true,
		BaseColor:    Color{R: 255, G: 210, B: 128, A: 0.7},
		AttractColor: Color{R: 255, G: 128, B: 255, A: 0.9},
		RepelColor:   Color{R: 255, G: 50, B: 50, A: 1},
	}
}

// Presets returns the built-in presets keyed by name.
func Presets() map[string]Params {
	return map[string]Params{
		PresetCharacters: Characters(false),
		PresetBlocks:     Blocks(),
		PresetField:      Field(),
	}
}

// PresetNames returns the built-in preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, 3)
	for name := range Presets() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate reports parameters the engine cannot run with.
func (p Params) Validate() error {
	var errs []error
	if p.SubSteps < 1 {
		errs = append(errs, fmt.Errorf("sub_steps must be >= 1, got %d", p.SubSteps))
	}
	if p.Radius <= 0 {
		errs = append(errs, fmt.Errorf("radius must be > 0, got %v", p.Radius))
	}
	if p.Mass <= 0 {
		errs = append(errs, fmt.Errorf("mass must be > 0, got %v", p.Mass))
	}
	if p.Damping <= 0 || p.Damping > 1 {
		errs = append(errs, fmt.Errorf("damping must be in (0, 1], got %v", p.Damping))
	}
	if p.Damping-p.IdleDamping <= 0 {
		errs = append(errs, fmt.Errorf("idle_damping %v leaves no velocity", p.IdleDamping))
	}
	if p.MaxVelocity <= 0 {
		errs = append(errs, fmt.Errorf("max_velocity must be > 0, got %v", p.MaxVelocity))
	}
	if p.ColumnFraction <= 0 || p.FloorFraction <= 0 {
		errs = append(errs, errors.New("column_fraction and floor_fraction must be > 0"))
	}
	if p.SettleDamping <= 0 || p.SettleDamping >= 1 {
		errs = append(errs, fmt.Errorf("settle_damping must be in (0, 1), got %v", p.SettleDamping))
	}
	if p.SettleEpsilon <= 0 {
		errs = append(errs, fmt.Errorf("settle_epsilon must be > 0, got %v", p.SettleEpsilon))
	}
	return errors.Join(errs...)
}
