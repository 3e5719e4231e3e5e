package config

// Presets name the well-studied regimes of the Thomas family.
var Presets = map[string]*Config{
	"chaotic": {
		B: 0.19, Dt: 0.02, Steps: 20000, TransientSteps: 1000,
		Seed: SeedConfig{X: 0.1, Z: -0.1},
	},
	"edge": {
		// Just below the chaos onset near b=0.2089.
		B: 0.2, Dt: 0.02, Steps: 30000, TransientSteps: 2000,
		Seed: SeedConfig{X: 0.1, Z: -0.1},
	},
	"limit_cycle": {
		B: 0.33, Dt: 0.02, Steps: 10000, TransientSteps: 2000,
		Seed: SeedConfig{X: 0.1, Z: -0.1},
	},
	"stable": {
		// Strong dissipation; trajectories spiral into a fixed point.
		B: 1.2, Dt: 0.02, Steps: 5000, TransientSteps: 0,
		Seed: SeedConfig{X: 0.1, Z: -0.1},
	},
	"labyrinth": {
		// Near-zero dissipation; long wandering walks across cells.
		B: 0.01, Dt: 0.01, Steps: 40000, TransientSteps: 1000,
		Seed: SeedConfig{X: 0.1, Z: -0.1},
	},
}

// Preset returns a full config with the named regime applied over
// defaults; ok is false for an unknown name.
func Preset(name string) (*Config, bool) {
	p, ok := Presets[name]
	if !ok {
		return nil, false
	}
	cfg := Default()
	cfg.B = p.B
	cfg.Dt = p.Dt
	cfg.Steps = p.Steps
	cfg.TransientSteps = p.TransientSteps
	cfg.Seed = p.Seed
	return cfg, true
}
