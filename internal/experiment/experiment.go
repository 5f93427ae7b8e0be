package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/metrics"
)

// progressChunks is how many progress lines a run logs.
const progressChunks = 10

type Result struct {
	Scenario   string
	Integrator string
	Dt         float64
	Steps      int
	Time       float64
	Elapsed    time.Duration
	Metrics    map[string]float64
	EnergyTime []float64
	Energy     []float64
	Final      []dynamo.Body
}

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	logger   log.Logger

	simulator *dynamo.Simulation
	series    *metrics.EnergySeries
}

type Option func(*Experiment)

func WithLogger(l log.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) { e.registry = r }
}

func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Setup builds the force model, integrator, bodies and default metrics.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	model, err := e.registry.GetModel("gravity")
	if err != nil {
		return err
	}
	integ, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}
	bodies, err := e.cfg.BuildBodies()
	if err != nil {
		return fmt.Errorf("scenario %q: %w", e.cfg.Scenario, err)
	}

	ms := e.registry.DefaultMetrics(model, e.cfg.Center, bodies)
	for _, m := range ms {
		if s, ok := m.(*metrics.EnergySeries); ok {
			e.series = s
		}
	}

	e.simulator, err = dynamo.New(model, integ, e.cfg.Dt, bodies,
		dynamo.WithHistoryLimit(e.cfg.HistoryLimit),
		dynamo.WithMetrics(ms...))
	if err != nil {
		return err
	}

	level.Debug(e.logger).Log("msg", "experiment ready", "scenario", e.cfg.Scenario,
		"integrator", e.cfg.Integrator, "bodies", len(bodies), "dt", e.cfg.Dt)
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	total, err := e.simulator.StepsFor(e.cfg.Duration)
	if err != nil {
		return nil, err
	}
	chunk := total / progressChunks
	if chunk < 1 {
		chunk = 1
	}

	start := time.Now()
	logger := log.With(e.logger, "scenario", e.cfg.Scenario, "integrator", e.cfg.Integrator)
	level.Info(logger).Log("msg", "run started", "steps", total, "dt", e.cfg.Dt)

	for done := 0; done < total; {
		n := min(chunk, total-done)
		ran, err := e.simulator.RunSteps(ctx, n)
		done += ran
		if err != nil {
			level.Error(logger).Log("msg", "run aborted", "step", e.simulator.Steps(), "err", err)
			return e.result(time.Since(start)), err
		}
		level.Debug(logger).Log("msg", "progress", "step", done, "of", total,
			"t", e.simulator.Time(), "energy_drift", e.simulator.MetricValues()["energy_drift"])
	}

	res := e.result(time.Since(start))
	level.Info(logger).Log("msg", "run finished", "steps", res.Steps, "elapsed", res.Elapsed,
		"energy_drift", res.Metrics["energy_drift"], "angular_momentum_drift", res.Metrics["angular_momentum_drift"])
	return res, nil
}

func (e *Experiment) result(elapsed time.Duration) *Result {
	res := &Result{
		Scenario:   e.cfg.Scenario,
		Integrator: e.cfg.Integrator,
		Dt:         e.cfg.Dt,
		Steps:      e.simulator.Steps(),
		Time:       e.simulator.Time(),
		Elapsed:    elapsed,
		Metrics:    e.simulator.MetricValues(),
		Final:      e.simulator.Bodies(),
	}
	if e.series != nil {
		res.EnergyTime = e.series.Times()
		res.Energy = e.series.Values()
	}
	return res
}

// Simulation exposes the underlying simulation for trajectory access.
func (e *Experiment) Simulation() *dynamo.Simulation {
	return e.simulator
}

func (e *Experiment) Config() *config.Config {
	return e.cfg
}
