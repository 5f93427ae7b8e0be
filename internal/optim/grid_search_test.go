package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/orbsim/internal/config"
)

func shortSunEarth() *config.Config {
	cfg := config.GetPreset("sun_earth")
	cfg.Duration = 60 * 24 * 3600
	return cfg
}

func TestApply(t *testing.T) {
	base := shortSunEarth()
	cfg, err := Apply(base, map[string]float64{"dt": 600, "speed:Earth": 2, "mass:Sun": 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dt != 600 {
		t.Errorf("dt = %v", cfg.Dt)
	}
	if cfg.Bodies[1].Velocity[1] != 2*base.Bodies[1].Velocity[1] {
		t.Errorf("speed not scaled: %v", cfg.Bodies[1].Velocity)
	}
	if cfg.Bodies[0].Mass != base.Bodies[0].Mass/2 {
		t.Errorf("mass not scaled: %v", cfg.Bodies[0].Mass)
	}
	if base.Bodies[1].Velocity[1] == cfg.Bodies[1].Velocity[1] {
		t.Error("base config mutated")
	}

	tests := map[string]map[string]float64{
		"unknown param": {"spin": 1},
		"unknown body":  {"speed:Pluto": 1},
	}
	for name, params := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Apply(base, params); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGridSearchFindsCircularSpeed(t *testing.T) {
	g := NewGridSearch([]string{"speed:Earth"}, [][]float64{Linspace(0.9, 1.1, 5)}, nil)

	best, val, err := g.Search(context.Background(), shortSunEarth(), "radius_deviation:Earth")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(best["speed:Earth"]-1) > 1e-9 {
		t.Errorf("best speed scale = %v (deviation %v)", best["speed:Earth"], val)
	}
	if val > 0.01 {
		t.Errorf("best deviation = %v", val)
	}
}

func TestGridSearchErrors(t *testing.T) {
	g := NewGridSearch([]string{"dt"}, nil, nil)
	if _, _, err := g.Search(context.Background(), shortSunEarth(), "energy_drift"); err == nil {
		t.Error("expected error for mismatched grid")
	}

	g = NewGridSearch([]string{"dt"}, [][]float64{{3600}}, nil)
	if _, _, err := g.Search(context.Background(), shortSunEarth(), "no_such_metric"); err == nil {
		t.Error("expected error when no run reports the metric")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := g.Search(ctx, shortSunEarth(), "energy_drift"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(1, 2, 3)
	if len(got) != 3 || got[0] != 1 || got[1] != 1.5 || got[2] != 2 {
		t.Errorf("Linspace = %v", got)
	}
	if got := Linspace(4, 9, 1); len(got) != 1 || got[0] != 4 {
		t.Errorf("single point = %v", got)
	}
}
