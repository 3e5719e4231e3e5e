package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/thomaslab/internal/dynamo"
	"github.com/san-kum/thomaslab/internal/engine"
	"github.com/san-kum/thomaslab/internal/field"
	"github.com/san-kum/thomaslab/internal/flower"
)

const (
	DefaultB         = 0.19
	DefaultDt        = 0.02
	DefaultSteps     = 20000
	DefaultTransient = 1000
	DefaultGridN     = 24
	DefaultHalfRange = 4.0
	DefaultBandwidth = 0.35
)

type Config struct {
	B              float64          `yaml:"b"`
	Dt             float64          `yaml:"dt"`
	Steps          int              `yaml:"steps"`
	TransientSteps int              `yaml:"transient_steps"`
	Seed           SeedConfig       `yaml:"seed"`
	RandSeed       int64            `yaml:"rand_seed"`
	StoreCapacity  int              `yaml:"store_capacity"`
	Grid           GridConfig       `yaml:"grid"`
	KDEBandwidth   float64          `yaml:"kde_bandwidth"`
	Approx         bool             `yaml:"approx"`
	Projection     ProjectionConfig `yaml:"projection"`
	Rhodonea       RhodoneaConfig   `yaml:"rhodonea"`
}

type SeedConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type GridConfig struct {
	N         int     `yaml:"n"`
	HalfRange float64 `yaml:"half_range"`
}

type ProjectionConfig struct {
	Plane         string  `yaml:"plane"`
	RotationAxis  string  `yaml:"rotation_axis"`
	RotationAngle float64 `yaml:"rotation_angle_rad"`
}

type RhodoneaConfig struct {
	K   float64 `yaml:"k"`
	M   float64 `yaml:"m"`
	Phi float64 `yaml:"phi"`
	A   float64 `yaml:"a"`
}

func Default() *Config {
	return &Config{
		B:              DefaultB,
		Dt:             DefaultDt,
		Steps:          DefaultSteps,
		TransientSteps: DefaultTransient,
		Seed:           SeedConfig{X: 0.1, Z: -0.1},
		RandSeed:       1,
		StoreCapacity:  20000,
		Grid:           GridConfig{N: DefaultGridN, HalfRange: DefaultHalfRange},
		KDEBandwidth:   DefaultBandwidth,
		Projection:     ProjectionConfig{Plane: "xy", RotationAxis: "z"},
		Rhodonea:       RhodoneaConfig{K: 2, M: 1},
	}
}

// Load reads a yaml config, filling unset fields from defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects invalid configuration at the boundary, before any
// computation starts.
func (c *Config) Validate() error {
	if c.B <= 0 {
		return fmt.Errorf("%w: b=%v", dynamo.ErrParameterBounds, c.B)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt=%v", dynamo.ErrInvalidTimestep, c.Dt)
	}
	if c.Steps < 1 {
		return fmt.Errorf("%w: steps=%d", dynamo.ErrParameterBounds, c.Steps)
	}
	if c.TransientSteps < 0 {
		return fmt.Errorf("%w: transient_steps=%d", dynamo.ErrParameterBounds, c.TransientSteps)
	}
	if c.Grid.N < 2 || c.Grid.HalfRange <= 0 {
		return fmt.Errorf("%w: grid n=%d half_range=%v", dynamo.ErrParameterBounds, c.Grid.N, c.Grid.HalfRange)
	}
	if c.KDEBandwidth <= 0 {
		return fmt.Errorf("%w: kde_bandwidth=%v", dynamo.ErrParameterBounds, c.KDEBandwidth)
	}
	switch c.Projection.Plane {
	case "", "xy", "yz", "zx":
	default:
		return fmt.Errorf("%w: projection plane %q", dynamo.ErrParameterBounds, c.Projection.Plane)
	}
	return nil
}

// EngineConfig maps the file config onto the engine.
func (c *Config) EngineConfig() engine.Config {
	fc := field.DefaultConfig()
	fc.Grid = field.GridSpec{N: c.Grid.N, HalfRange: c.Grid.HalfRange}
	fc.Bandwidth = c.KDEBandwidth
	fc.Approx = c.Approx

	ec := engine.DefaultConfig()
	ec.B = c.B
	ec.Dt = c.Dt
	ec.Seed = dynamo.Vec3{X: c.Seed.X, Y: c.Seed.Y, Z: c.Seed.Z}
	ec.StoreCapacity = c.StoreCapacity
	ec.RandSeed = c.RandSeed
	ec.Field = fc
	return ec
}

// FlowerProjection maps the projection section.
func (c *Config) FlowerProjection() flower.Projection {
	return flower.Projection{
		Plane:         c.Projection.Plane,
		RotationAxis:  c.Projection.RotationAxis,
		RotationAngle: c.Projection.RotationAngle,
	}
}

// FlowerGuess maps the rhodonea initial guess.
func (c *Config) FlowerGuess() flower.Rhodonea {
	return flower.Rhodonea{K: c.Rhodonea.K, M: c.Rhodonea.M, Phi: c.Rhodonea.Phi, A: c.Rhodonea.A}
}
