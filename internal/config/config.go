// Package config provides centralized configuration management.
// Every tunable of the server and CLI is read here, from defaults, the
// environment and an optional YAML presets file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/saintsjh/PortfolioWebsite/internal/physics"
)

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int
	DebugPort      int // 0 disables the debug server
	AllowedOrigins []string
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:           3000,
		DebugPort:      6060,
		AllowedOrigins: []string{"*"},
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if p := getEnvInt("DEBUG_PORT", -1); p >= 0 {
		cfg.DebugPort = p
	}
	if origins := getEnvList("ALLOWED_ORIGINS"); len(origins) > 0 {
		cfg.AllowedOrigins = origins
	}

	return cfg
}

// =============================================================================
// FRAME CONFIGURATION
// =============================================================================

// FrameConfig holds the frame loop rate and the canvas size used for
// offline renders.
type FrameConfig struct {
	FPS          int
	Width        int
	Height       int
	HintDuration time.Duration // compact first-activation hint
	FontPath     string        // optional TTF/OTF replacing the regular face
}

// DefaultFrame returns the default frame configuration.
func DefaultFrame() FrameConfig {
	return FrameConfig{
		FPS:          60,
		Width:        1280,
		Height:       720,
		HintDuration: 4 * time.Second,
	}
}

// FrameFromEnv returns frame configuration with environment variable overrides.
func FrameFromEnv() FrameConfig {
	cfg := DefaultFrame()

	if fps := getEnvInt("FPS", 0); fps > 0 {
		cfg.FPS = fps
	}
	if w := getEnvInt("WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvInt("HEIGHT", 0); h > 0 {
		cfg.Height = h
	}
	cfg.FontPath = os.Getenv("FONT_PATH")

	return cfg
}

// =============================================================================
// PARTICLE FIELD CONFIGURATION
// =============================================================================

// FieldConfig controls how many particles a field session gets.
type FieldConfig struct {
	AreaPerParticle float64 // px² per particle
	MobileFactor    float64 // density multiplier on mobile
	MinParticles    int
	MaxParticles    int
}

// DefaultField returns the default field configuration.
func DefaultField() FieldConfig {
	d := physics.DefaultFieldDensity()
	return FieldConfig{
		AreaPerParticle: d.AreaPerParticle,
		MobileFactor:    d.MobileFactor,
		MinParticles:    d.Min,
		MaxParticles:    d.Max,
	}
}

// FieldFromEnv returns field configuration with environment variable overrides.
func FieldFromEnv() FieldConfig {
	cfg := DefaultField()

	if a := getEnvFloat("FIELD_AREA_PER_PARTICLE", 0); a > 0 {
		cfg.AreaPerParticle = a
	}
	if f := getEnvFloat("FIELD_MOBILE_FACTOR", 0); f > 0 {
		cfg.MobileFactor = f
	}
	if n := getEnvInt("FIELD_MIN_PARTICLES", 0); n > 0 {
		cfg.MinParticles = n
	}
	if n := getEnvInt("FIELD_MAX_PARTICLES", 0); n > 0 {
		cfg.MaxParticles = n
	}

	return cfg
}

// Density converts the configuration to the engine's density rule.
func (c FieldConfig) Density() physics.FieldDensity {
	return physics.FieldDensity{
		AreaPerParticle: c.AreaPerParticle,
		MobileFactor:    c.MobileFactor,
		Min:             c.MinParticles,
		Max:             c.MaxParticles,
	}
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// LimitsConfig controls DoS protection.
type LimitsConfig struct {
	MaxClients        int     // character frame websocket clients
	MaxFieldSessions  int     // concurrent field workers
	RequestsPerSecond float64 // per-IP HTTP rate
	Burst             int
	InputPerSecond    float64 // per-connection websocket input rate
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() LimitsConfig {
	return LimitsConfig{
		MaxClients:        200,
		MaxFieldSessions:  32,
		RequestsPerSecond: 10,
		Burst:             20,
		InputPerSecond:    240,
	}
}

// LimitsFromEnv returns limits with environment variable overrides.
func LimitsFromEnv() LimitsConfig {
	cfg := DefaultLimits()

	if n := getEnvInt("MAX_CLIENTS", 0); n > 0 {
		cfg.MaxClients = n
	}
	if n := getEnvInt("MAX_FIELD_SESSIONS", 0); n > 0 {
		cfg.MaxFieldSessions = n
	}
	if r := getEnvFloat("RATE_LIMIT_RPS", 0); r > 0 {
		cfg.RequestsPerSecond = r
	}
	if b := getEnvInt("RATE_LIMIT_BURST", 0); b > 0 {
		cfg.Burst = b
	}

	return cfg
}

// =============================================================================
// PHYSICS CONFIGURATION
// =============================================================================

// PhysicsConfig overrides shared constants across every preset. Zero
// values keep the preset's own value.
type PhysicsConfig struct {
	Restitution float64
	MaxVelocity float64
	Damping     float64
	SubSteps    int
	PresetsFile string
}

// PhysicsFromEnv returns physics overrides from the environment.
func PhysicsFromEnv() PhysicsConfig {
	return PhysicsConfig{
		Restitution: getEnvFloat("PHYSICS_RESTITUTION", 0),
		MaxVelocity: getEnvFloat("PHYSICS_MAX_VELOCITY", 0),
		Damping:     getEnvFloat("PHYSICS_DAMPING", 0),
		SubSteps:    getEnvInt("PHYSICS_SUBSTEPS", 0),
		PresetsFile: os.Getenv("PRESETS_FILE"),
	}
}

// Apply returns p with the configured overrides.
func (c PhysicsConfig) Apply(p physics.Params) physics.Params {
	if c.Restitution > 0 {
		p.Restitution = c.Restitution
	}
	if c.MaxVelocity > 0 {
		p.MaxVelocity = c.MaxVelocity
	}
	if c.Damping > 0 {
		p.Damping = c.Damping
	}
	if c.SubSteps > 0 {
		p.SubSteps = c.SubSteps
	}
	return p
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Server  ServerConfig
	Frame   FrameConfig
	Field   FieldConfig
	Limits  LimitsConfig
	Physics PhysicsConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Server:  ServerFromEnv(),
		Frame:   FrameFromEnv(),
		Field:   FieldFromEnv(),
		Limits:  LimitsFromEnv(),
		Physics: PhysicsFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvList(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
