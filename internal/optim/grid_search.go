package optim

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/experiment"
	"gonum.org/v1/gonum/floats"
)

// Parameter names accepted by GridSearch. Body-scoped ones take the body
// name after the colon, e.g. "speed:Earth".
const (
	ParamDt    = "dt"
	ParamSpeed = "speed" // scales the body's initial velocity
	ParamMass  = "mass"  // scales the body's mass
)

// GridSearch runs every combination of parameter values and keeps the one
// with the smallest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	logger     log.Logger
}

func NewGridSearch(params []string, ranges [][]float64, logger log.Logger) *GridSearch {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &GridSearch{paramNames: params, ranges: ranges, logger: logger}
}

// Search evaluates the grid against base. Runs that fail to set up or
// finish count as misses; the search only fails when no run succeeds or ctx
// is done.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("grid has %d names for %d ranges", len(g.paramNames), len(g.ranges))
	}
	if len(base.Bodies) == 0 {
		p := config.GetPreset(base.Scenario)
		if p == nil {
			return nil, 0, fmt.Errorf("%w: %q", config.ErrNoBodies, base.Scenario)
		}
		base = base.Clone()
		base.Bodies = p.Bodies
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, metricName, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, fmt.Errorf("no run reported metric %q", metricName)
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		cfg, err := Apply(base, current)
		if err != nil {
			return err
		}
		exp := experiment.New(cfg)
		if err := exp.Setup(); err != nil {
			level.Warn(g.logger).Log("msg", "grid point skipped", "params", fmt.Sprint(current), "err", err)
			return nil
		}
		result, err := exp.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			level.Warn(g.logger).Log("msg", "grid point failed", "params", fmt.Sprint(current), "err", err)
			return nil
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			return nil
		}
		level.Debug(g.logger).Log("msg", "grid point", "params", fmt.Sprint(current), metricName, val)
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// Apply returns a copy of base with params applied. base must carry
// explicit bodies for body-scoped parameters.
func Apply(base *config.Config, params map[string]float64) (*config.Config, error) {
	cfg := base.Clone()
	for name, v := range params {
		kind, body, _ := strings.Cut(name, ":")
		switch kind {
		case ParamDt:
			cfg.Dt = v
		case ParamSpeed, ParamMass:
			i := bodyIndex(cfg, body)
			if i < 0 {
				return nil, fmt.Errorf("parameter %q: unknown body %q", name, body)
			}
			b := &cfg.Bodies[i]
			if kind == ParamMass {
				b.Mass *= v
				continue
			}
			for k := range b.Velocity {
				b.Velocity[k] *= v
			}
		default:
			return nil, fmt.Errorf("unknown parameter %q", name)
		}
	}
	return cfg, nil
}

func bodyIndex(cfg *config.Config, name string) int {
	for i, b := range cfg.Bodies {
		if b.Name == name {
			return i
		}
	}
	return -1
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}
