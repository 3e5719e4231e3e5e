package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/thomaslab/internal/dynamo"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.B = 0.21
	cfg.Grid.N = 16
	cfg.Projection.Plane = "yz"
	cfg.Rhodonea.K = 3.5
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.B != cfg.B || got.Grid.N != cfg.Grid.N {
		t.Errorf("round trip mismatch: got b=%v n=%d", got.B, got.Grid.N)
	}
	if got.Projection.Plane != "yz" || got.Rhodonea.K != 3.5 {
		t.Errorf("round trip mismatch: plane=%q k=%v", got.Projection.Plane, got.Rhodonea.K)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("b: 0.33\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.B != 0.33 {
		t.Errorf("b = %v, want 0.33", cfg.B)
	}
	if cfg.Dt != DefaultDt || cfg.Grid.N != DefaultGridN {
		t.Errorf("unset fields must come from defaults: dt=%v n=%d", cfg.Dt, cfg.Grid.N)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("b: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("Load with b=-1: err = %v, want parameter bounds", err)
	}

	if err := os.WriteFile(path, []byte("{not yaml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load must reject malformed yaml")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load must report a missing file")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"zero steps", func(c *Config) { c.Steps = 0 }},
		{"negative transient", func(c *Config) { c.TransientSteps = -1 }},
		{"tiny grid", func(c *Config) { c.Grid.N = 1 }},
		{"zero half range", func(c *Config) { c.Grid.HalfRange = 0 }},
		{"zero bandwidth", func(c *Config) { c.KDEBandwidth = 0 }},
		{"bad plane", func(c *Config) { c.Projection.Plane = "xw" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate must reject the config")
			}
		})
	}
}

func TestEngineConfigMapping(t *testing.T) {
	cfg := Default()
	cfg.B = 0.25
	cfg.Seed = SeedConfig{X: 0.1, Y: 0.2, Z: 0.3}
	cfg.Grid = GridConfig{N: 12, HalfRange: 5}
	cfg.Approx = true

	ec := cfg.EngineConfig()
	if ec.B != 0.25 {
		t.Errorf("B = %v", ec.B)
	}
	if ec.Seed != (dynamo.Vec3{X: 0.1, Y: 0.2, Z: 0.3}) {
		t.Errorf("Seed = %+v", ec.Seed)
	}
	if ec.Field.Grid.N != 12 || ec.Field.Grid.HalfRange != 5 {
		t.Errorf("Grid = %+v", ec.Field.Grid)
	}
	if !ec.Field.Approx {
		t.Error("Approx flag must carry over")
	}
}

func TestPresets(t *testing.T) {
	for name := range Presets {
		cfg, ok := Preset(name)
		if !ok {
			t.Fatalf("Preset(%q) not found", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %q must validate: %v", name, err)
		}
		// Regime values come from the preset, ambient settings from defaults.
		if cfg.Grid.N != DefaultGridN {
			t.Errorf("preset %q grid n = %d", name, cfg.Grid.N)
		}
	}

	if cfg, ok := Preset("stable"); !ok || cfg.B != 1.2 {
		t.Errorf("Preset(stable) = %+v, %v", cfg, ok)
	}
	if _, ok := Preset("nope"); ok {
		t.Error("unknown preset must report not found")
	}
}
