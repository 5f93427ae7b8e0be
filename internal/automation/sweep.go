package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/experiment"
	"github.com/san-kum/orbsim/internal/metrics"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DtSweep runs one scenario at several step sizes.
type DtSweep struct {
	Base   *config.Config
	DtMin  float64
	DtMax  float64
	Points int
	// Log spaces the step sizes geometrically instead of linearly.
	Log bool
}

type SweepResult struct {
	Dt             float64
	Steps          int
	EnergyDrift    float64
	AngularDrift   float64
	RadiusDrift    float64 // largest radius deviation over all bodies
	ElapsedSeconds float64
}

func (s *DtSweep) values() ([]float64, error) {
	if s.Points < 1 || !(s.DtMin > 0) || s.DtMax < s.DtMin {
		return nil, fmt.Errorf("invalid sweep: %d points over [%g, %g]", s.Points, s.DtMin, s.DtMax)
	}
	if s.Points == 1 {
		return []float64{s.DtMin}, nil
	}

	out := make([]float64, s.Points)
	if s.Log {
		return floats.LogSpan(out, s.DtMin, s.DtMax), nil
	}
	return floats.Span(out, s.DtMin, s.DtMax), nil
}

func RunSweep(ctx context.Context, sweep *DtSweep, logger log.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	dts, err := sweep.values()
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, 0, len(dts))
	for i, dt := range dts {
		cfg := sweep.Base.Clone()
		cfg.Dt = dt

		exp := experiment.New(cfg, experiment.WithLogger(logger))
		if err := exp.Setup(); err != nil {
			return results, err
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return results, err
		}

		r := SweepResult{
			Dt:             dt,
			Steps:          res.Steps,
			EnergyDrift:    res.Metrics["energy_drift"],
			AngularDrift:   res.Metrics["angular_momentum_drift"],
			ElapsedSeconds: res.Elapsed.Seconds(),
		}
		for name, v := range res.Metrics {
			if strings.HasPrefix(name, "radius_deviation:") {
				r.RadiusDrift = math.Max(r.RadiusDrift, v)
			}
		}
		results = append(results, r)

		level.Info(logger).Log("msg", "sweep point", "n", i+1, "of", len(dts), "dt", dt, "energy_drift", r.EnergyDrift)
	}

	return results, nil
}

// MonteCarlo perturbs every initial velocity component with Gaussian noise
// of relative size Perturbation and reports which bodies stay bound to Center.
type MonteCarlo struct {
	Base         *config.Config
	Perturbation float64
	Trials       int
	Seed         uint64
}

type MonteCarloResult struct {
	Trial       int
	EnergyDrift float64
	// Bound maps each non-center body to whether its final orbital energy
	// relative to the center is negative.
	Bound map[string]bool
}

func RunMonteCarlo(ctx context.Context, mc *MonteCarlo, logger log.Logger) ([]MonteCarloResult, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if mc.Base.Center == "" {
		return nil, fmt.Errorf("monte carlo needs a center body")
	}

	noise := distuv.Normal{Mu: 0, Sigma: mc.Perturbation, Src: rand.NewPCG(mc.Seed, mc.Seed^0x9e3779b97f4a7c15)}
	results := make([]MonteCarloResult, 0, mc.Trials)

	for trial := 0; trial < mc.Trials; trial++ {
		cfg := mc.Base.Clone()
		if len(cfg.Bodies) == 0 {
			p := config.GetPreset(cfg.Scenario)
			if p == nil {
				return nil, fmt.Errorf("%w: %q", config.ErrNoBodies, cfg.Scenario)
			}
			cfg.Bodies = p.Bodies
		}
		for i := range cfg.Bodies {
			for k := range cfg.Bodies[i].Velocity {
				cfg.Bodies[i].Velocity[k] *= 1 + noise.Rand()
			}
		}

		exp := experiment.New(cfg, experiment.WithLogger(logger))
		if err := exp.Setup(); err != nil {
			return results, err
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return results, err
		}

		results = append(results, MonteCarloResult{
			Trial:       trial,
			EnergyDrift: res.Metrics["energy_drift"],
			Bound:       boundBodies(exp, cfg.Center),
		})

		if (trial+1)%10 == 0 {
			level.Info(logger).Log("msg", "monte carlo", "done", trial+1, "of", mc.Trials)
		}
	}

	return results, nil
}

// boundBodies checks the two-body energy of each body against the center.
func boundBodies(exp *experiment.Experiment, center string) map[string]bool {
	sim := exp.Simulation()
	c, _ := sim.Body(center)
	out := make(map[string]bool)
	for _, b := range sim.Bodies() {
		if b.Name == center {
			continue
		}
		rel := b
		rel.Velocity = r3.Sub(b.Velocity, c.Velocity)
		e := metrics.KineticEnergy(rel) + sim.Model().Potential(&b, &c)
		out[b.Name] = e < 0
	}
	return out
}

// BoundFraction is the share of trials in which name stayed bound, with the
// mean and standard deviation of energy drift across trials.
func BoundFraction(results []MonteCarloResult, name string) (frac, meanDrift, stdDrift float64) {
	if len(results) == 0 {
		return 0, 0, 0
	}
	drifts := make([]float64, len(results))
	bound := 0
	for i, r := range results {
		if r.Bound[name] {
			bound++
		}
		drifts[i] = r.EnergyDrift
	}
	meanDrift, stdDrift = stat.MeanStdDev(drifts, nil)
	return float64(bound) / float64(len(results)), meanDrift, stdDrift
}
