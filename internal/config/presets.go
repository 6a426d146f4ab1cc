package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/saintsjh/PortfolioWebsite/internal/physics"
)

// ErrUnknownPreset is returned for preset names the engine does not have.
var ErrUnknownPreset = errors.New("config: unknown preset")

// Presets is a resolved set of named parameter presets.
type Presets map[string]physics.Params

// DecodePresets reads YAML preset overrides. Each top-level key names a
// built-in preset; fields it leaves out keep their built-in values.
func DecodePresets(r io.Reader) (Presets, error) {
	presets := Presets(physics.Presets())

	var doc map[string]yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode presets: %w", err)
	}

	for name, node := range doc {
		p, ok := presets[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
		}
		if err := node.Decode(&p); err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
		presets[name] = p
	}
	return presets, nil
}

// LoadPresets resolves presets: built-ins, then the presets file if one is
// configured, then the environment overrides.
func (c PhysicsConfig) LoadPresets() (Presets, error) {
	presets := Presets(physics.Presets())
	if c.PresetsFile != "" {
		f, err := os.Open(c.PresetsFile)
		if err != nil {
			return nil, fmt.Errorf("open presets: %w", err)
		}
		defer f.Close()

		if presets, err = DecodePresets(f); err != nil {
			return nil, err
		}
		log.Printf("📄 Loaded presets from %s", c.PresetsFile)
	}

	for name, p := range presets {
		p = c.Apply(p)
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("preset %s with PHYSICS_* overrides: %w", name, err)
		}
		presets[name] = p
	}
	return presets, nil
}

// Get returns a preset by name.
func (ps Presets) Get(name string) (physics.Params, error) {
	p, ok := ps[name]
	if !ok {
		return physics.Params{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p, nil
}

// Characters returns the character preset for a breakpoint. Compact
// layouts span the full width.
func (ps Presets) Characters(compact bool) physics.Params {
	p, ok := ps[physics.PresetCharacters]
	if !ok {
		p = physics.Characters(false)
	}
	if compact {
		p.ColumnFraction = physics.Characters(true).ColumnFraction
	}
	return p
}

// Names returns the preset names in sorted order.
func (ps Presets) Names() []string {
	names := make([]string, 0, len(ps))
	for name := range ps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Encode writes the presets as YAML.
func (ps Presets) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]physics.Params(ps)); err != nil {
		return fmt.Errorf("encode presets: %w", err)
	}
	return enc.Close()
}
