package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/saintsjh/PortfolioWebsite/internal/physics"
)

// TestDefaults verifies the default configuration
func TestDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Server.Port != 3000 {
		t.Errorf("Expected port 3000, got %d", cfg.Server.Port)
	}
	if cfg.Frame.FPS != 60 {
		t.Errorf("Expected 60 FPS, got %d", cfg.Frame.FPS)
	}
	if d := cfg.Field.Density(); d != physics.DefaultFieldDensity() {
		t.Errorf("Expected default density, got %+v", d)
	}
}

// TestFromEnv verifies environment overrides
func TestFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DEBUG_PORT", "0")
	t.Setenv("ALLOWED_ORIGINS", "https://a.dev, https://b.dev")
	t.Setenv("FPS", "30")
	t.Setenv("FIELD_MAX_PARTICLES", "1000")
	t.Setenv("PHYSICS_SUBSTEPS", "3")
	t.Setenv("MAX_CLIENTS", "not-a-number")

	cfg := Load()
	if cfg.Server.Port != 8080 || cfg.Server.DebugPort != 0 {
		t.Errorf("Expected ports 8080/0, got %d/%d", cfg.Server.Port, cfg.Server.DebugPort)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.dev" {
		t.Errorf("Unexpected origins %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Frame.FPS != 30 {
		t.Errorf("Expected 30 FPS, got %d", cfg.Frame.FPS)
	}
	if cfg.Field.MaxParticles != 1000 {
		t.Errorf("Expected max 1000 particles, got %d", cfg.Field.MaxParticles)
	}
	if cfg.Limits.MaxClients != DefaultLimits().MaxClients {
		t.Errorf("Expected invalid value ignored, got %d", cfg.Limits.MaxClients)
	}
	if p := cfg.Physics.Apply(physics.Field()); p.SubSteps != 3 {
		t.Errorf("Expected 3 sub-steps, got %d", p.SubSteps)
	}
}

// TestDecodePresets verifies partial overrides keep unspecified values
func TestDecodePresets(t *testing.T) {
	in := `
field:
  attraction: 1.2
  base_color: {r: 0, g: 255, b: 0, a: 1}
blocks:
  collisions: true
`
	presets, err := DecodePresets(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodePresets failed: %v", err)
	}

	field := presets[physics.PresetField]
	if field.Attraction != 1.2 {
		t.Errorf("Expected attraction 1.2, got %v", field.Attraction)
	}
	if field.BaseColor.G != 255 {
		t.Errorf("Expected green base colour, got %+v", field.BaseColor)
	}
	if field.InfluenceRadius != physics.Field().InfluenceRadius {
		t.Errorf("Expected influence radius kept, got %v", field.InfluenceRadius)
	}
	if !presets[physics.PresetBlocks].Collisions {
		t.Error("Expected blocks collisions enabled")
	}
	if presets[physics.PresetCharacters] != physics.Characters(false) {
		t.Error("Expected characters preset untouched")
	}
}

// TestDecodePresetsErrors verifies unknown names and invalid values are rejected
func TestDecodePresetsErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		unknown bool
	}{
		{"unknown preset", "gravity-well:\n  radius: 3\n", true},
		{"invalid value", "field:\n  sub_steps: 0\n", false},
		{"bad yaml", "field: [", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePresets(strings.NewReader(tt.in))
			if err == nil {
				t.Fatal("Expected error")
			}
			if errors.Is(err, ErrUnknownPreset) != tt.unknown {
				t.Errorf("Expected unknown=%v, got %v", tt.unknown, err)
			}
		})
	}
}

// TestLoadPresetsFile verifies file loading and environment overrides stack
func TestLoadPresetsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	if err := os.WriteFile(path, []byte("characters:\n  radius: 6\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	presets, err := PhysicsConfig{PresetsFile: path, Restitution: 0.5}.LoadPresets()
	if err != nil {
		t.Fatalf("LoadPresets failed: %v", err)
	}
	chars := presets.Characters(true)
	if chars.Radius != 6 || chars.Restitution != 0.5 {
		t.Errorf("Expected radius 6 and restitution 0.5, got %v/%v", chars.Radius, chars.Restitution)
	}
	if chars.ColumnFraction != 1 {
		t.Errorf("Expected full-width compact column, got %v", chars.ColumnFraction)
	}
	if presets.Characters(false).ColumnFraction != 0.75 {
		t.Errorf("Expected desktop column 0.75")
	}

	if _, err := (PhysicsConfig{PresetsFile: filepath.Join(t.TempDir(), "missing.yaml")}).LoadPresets(); err == nil {
		t.Error("Expected error for missing file")
	}
}

// TestPresetsEncode verifies presets print as YAML that decodes back
func TestPresetsEncode(t *testing.T) {
	presets := Presets(physics.Presets())
	var out bytes.Buffer
	if err := presets.Encode(&out); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	back, err := DecodePresets(&out)
	if err != nil {
		t.Fatalf("DecodePresets failed: %v", err)
	}
	if back[physics.PresetField] != physics.Field() {
		t.Error("Expected field preset to survive encoding")
	}

	if _, err := presets.Get("nope"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("Expected ErrUnknownPreset, got %v", err)
	}
	if names := presets.Names(); len(names) != 3 || names[0] != physics.PresetBlocks {
		t.Errorf("Unexpected names %v", names)
	}
}

// TestLoadPresetsValidatesOverrides verifies environment overrides cannot produce invalid presets
func TestLoadPresetsValidatesOverrides(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PhysicsConfig
		wantErr bool
	}{
		{"no overrides", PhysicsConfig{}, false},
		{"valid damping", PhysicsConfig{Damping: 0.95}, false},
		{"damping above one", PhysicsConfig{Damping: 1.5}, true},
		{"damping below idle damping", PhysicsConfig{Damping: 0.2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.LoadPresets()
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestPhysicsFromEnvInvalidDamping verifies PHYSICS_DAMPING is checked when presets load
func TestPhysicsFromEnvInvalidDamping(t *testing.T) {
	t.Setenv("PHYSICS_DAMPING", "1.5")
	if _, err := PhysicsFromEnv().LoadPresets(); err == nil {
		t.Error("Expected PHYSICS_DAMPING=1.5 to be rejected")
	}
}
