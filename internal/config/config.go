package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/orbsim/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt         = 3600.0
	DefaultDuration   = 365.0 * 24 * 3600
	DefaultScenario   = "sun_earth"
	DefaultIntegrator = "pc"
)

var ErrNoBodies = errors.New("config: no bodies and no known scenario")

// Config describes one run. Explicit Bodies take precedence over Scenario.
type Config struct {
	Scenario     string       `yaml:"scenario,omitempty"`
	Integrator   string       `yaml:"integrator"`
	Dt           float64      `yaml:"dt"`
	Duration     float64      `yaml:"duration"`
	HistoryLimit int          `yaml:"history_limit,omitempty"`
	Center       string       `yaml:"center,omitempty"`
	Description  string       `yaml:"description,omitempty"`
	Bodies       []BodyConfig `yaml:"bodies,omitempty"`
}

type BodyConfig struct {
	Name     string    `yaml:"name"`
	Mass     float64   `yaml:"mass"`
	Position []float64 `yaml:"position,flow"`
	Velocity []float64 `yaml:"velocity,flow"`
	Radius   float64   `yaml:"radius,omitempty"`
	Color    string    `yaml:"color,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:   DefaultScenario,
		Integrator: DefaultIntegrator,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = make([]BodyConfig, len(c.Bodies))
	for i, b := range c.Bodies {
		b.Position = append([]float64(nil), b.Position...)
		b.Velocity = append([]float64(nil), b.Velocity...)
		out.Bodies[i] = b
	}
	return &out
}

// BuildBodies turns the configured or preset body list into validated bodies.
func (c *Config) BuildBodies() ([]*dynamo.Body, error) {
	specs := c.Bodies
	if len(specs) == 0 {
		p, ok := Presets[c.Scenario]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoBodies, c.Scenario)
		}
		specs = p.Bodies
	}

	bodies := make([]*dynamo.Body, 0, len(specs))
	for _, s := range specs {
		b, err := s.Build()
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

func (b BodyConfig) Build() (*dynamo.Body, error) {
	var opts []dynamo.BodyOption
	if b.Radius > 0 {
		opts = append(opts, dynamo.WithRadius(b.Radius))
	}
	if b.Color != "" {
		opts = append(opts, dynamo.WithColor(b.Color))
	}
	return dynamo.NewBody(b.Name, b.Mass, b.Position, b.Velocity, opts...)
}

// FromBodies is the inverse of BodyConfig.Build, used to write scenarios back out.
func FromBodies(bodies []dynamo.Body) []BodyConfig {
	out := make([]BodyConfig, len(bodies))
	for i, b := range bodies {
		pos := []float64{b.Position.X, b.Position.Y, b.Position.Z}
		vel := []float64{b.Velocity.X, b.Velocity.Y, b.Velocity.Z}
		if b.Planar {
			pos = pos[:2]
			if b.Velocity.Z == 0 {
				vel = vel[:2]
			}
		}
		out[i] = BodyConfig{Name: b.Name, Mass: b.Mass, Position: pos, Velocity: vel, Radius: b.Radius, Color: b.Color}
	}
	return out
}

// Validate checks run parameters without building bodies.
func (c *Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 1) {
		return fmt.Errorf("config: %w (got %g)", dynamo.ErrInvalidStep, c.Dt)
	}
	if c.Duration < 0 || math.IsNaN(c.Duration) {
		return fmt.Errorf("config: %w (got %g)", dynamo.ErrNegativeDuration, c.Duration)
	}
	if math.IsInf(c.Duration, 1) || math.Floor(c.Duration/c.Dt) >= math.MaxInt {
		return fmt.Errorf("config: %w (got %g at dt %g)", dynamo.ErrInvalidDuration, c.Duration, c.Dt)
	}
	if len(c.Bodies) == 0 {
		if _, ok := Presets[c.Scenario]; !ok {
			return fmt.Errorf("%w: %q", ErrNoBodies, c.Scenario)
		}
	}
	return nil
}
