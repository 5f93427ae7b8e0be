package dynamo

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Simulation owns a body set, a time cursor and the trajectory history, and
// drives an Integrator one fixed step at a time.
type Simulation struct {
	model      ForceModel
	integrator Integrator
	bodies     []*Body
	dt         float64
	time       float64
	steps      int
	history    *History
	metrics    []Metric

	pre  []r3.Vec
	view []Body
}

type Option func(*Simulation)

// WithHistoryLimit caps retained trajectory entries per body. Zero keeps all.
func WithHistoryLimit(n int) Option {
	return func(s *Simulation) { s.history = NewHistory(n) }
}

// WithStartTime sets the initial time cursor.
func WithStartTime(t float64) Option {
	return func(s *Simulation) { s.time = t }
}

func WithMetrics(ms ...Metric) Option {
	return func(s *Simulation) { s.metrics = append(s.metrics, ms...) }
}

// New builds a simulation over copies of bodies. Order of bodies is kept and
// fixes the summation order of every diagnostic.
func New(model ForceModel, integ Integrator, dt float64, bodies []*Body, opts ...Option) (*Simulation, error) {
	if model == nil || integ == nil {
		return nil, ErrMissingComponent
	}
	if err := checkDt(dt); err != nil {
		return nil, err
	}
	owned, err := adopt(bodies)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		model:      model,
		integrator: integ,
		bodies:     owned,
		dt:         dt,
		history:    NewHistory(0),
		metrics:    make([]Metric, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	if math.IsNaN(s.time) || math.IsInf(s.time, 0) {
		return nil, fmt.Errorf("start time: %w", ErrNonFinite)
	}
	s.resize()
	s.observe()
	return s, nil
}

// FromState rebuilds a simulation from a persisted record.
func FromState(model ForceModel, integ Integrator, rec StateRecord, opts ...Option) (*Simulation, error) {
	bodies, err := rec.BodySet()
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithStartTime(rec.Time)}, opts...)
	return New(model, integ, rec.Dt, bodies, opts...)
}

func checkDt(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w (got %g)", ErrInvalidStep, dt)
	}
	return nil
}

// adopt validates a body set and returns owned clones.
func adopt(bodies []*Body) ([]*Body, error) {
	seen := make(map[string]struct{}, len(bodies))
	owned := make([]*Body, 0, len(bodies))
	for i, b := range bodies {
		if err := b.validate(); err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		if _, dup := seen[b.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, b.Name)
		}
		seen[b.Name] = struct{}{}
		owned = append(owned, b.Clone())
	}
	return owned, nil
}

func (s *Simulation) resize() {
	s.pre = make([]r3.Vec, len(s.bodies))
	s.view = make([]Body, len(s.bodies))
}

func (s *Simulation) AddMetric(m Metric) {
	s.metrics = append(s.metrics, m)
	s.copyView()
	m.Observe(s.view, s.time)
}

// Step records every body's pre-step position, advances all bodies by dt and
// moves the time cursor. A failed step leaves state and history unchanged.
func (s *Simulation) Step() error {
	for i, b := range s.bodies {
		s.pre[i] = b.Position
	}

	if err := s.integrator.Step(s.model, s.bodies, s.dt); err != nil {
		se := &SimulationError{Step: s.steps, Time: s.time, Wrapped: err}
		var be *BodyError
		if errors.As(err, &be) {
			se.Body = be.Name
		}
		return se
	}

	s.history.record(s.bodies, s.pre)
	s.time += s.dt
	s.steps++
	s.observe()
	return nil
}

// StepsFor is the number of whole steps Run performs for duration.
func (s *Simulation) StepsFor(duration float64) (int, error) {
	if duration < 0 || math.IsNaN(duration) {
		return 0, fmt.Errorf("%w (got %g)", ErrNegativeDuration, duration)
	}
	n := math.Floor(duration / s.dt)
	if math.IsInf(duration, 0) || n >= math.MaxInt {
		return 0, fmt.Errorf("%w (got %g at dt %g)", ErrInvalidDuration, duration, s.dt)
	}
	return int(n), nil
}

// Run performs floor(duration/dt) steps; any remainder is not simulated.
func (s *Simulation) Run(duration float64) (int, error) {
	return s.RunContext(context.Background(), duration)
}

// RunContext is Run with cancellation checked between steps, never inside one.
func (s *Simulation) RunContext(ctx context.Context, duration float64) (int, error) {
	n, err := s.StepsFor(duration)
	if err != nil {
		return 0, err
	}
	return s.RunSteps(ctx, n)
}

// RunSteps performs exactly n steps, stopping early on error or cancellation.
func (s *Simulation) RunSteps(ctx context.Context, n int) (int, error) {
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return i, fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}
		if err := s.Step(); err != nil {
			return i, err
		}
	}
	return n, nil
}

// Stream runs like RunContext and publishes a Snapshot every `every` steps
// and after the final step. It closes out when it returns. The caller owns
// the simulation for the whole call; readers only see the snapshots.
func (s *Simulation) Stream(ctx context.Context, duration float64, every int, out chan<- Snapshot) error {
	defer close(out)

	n, err := s.StepsFor(duration)
	if err != nil {
		return err
	}
	if every <= 0 {
		every = 1
	}
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}
		if err := s.Step(); err != nil {
			return err
		}
		if (i+1)%every != 0 && i != n-1 {
			continue
		}
		select {
		case out <- s.Snapshot():
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		}
	}
	return nil
}

// Reset replaces the body set and clears history and metric accumulation.
// The time cursor and step count are zeroed only when keepTime is false.
func (s *Simulation) Reset(bodies []*Body, keepTime bool) error {
	owned, err := adopt(bodies)
	if err != nil {
		return err
	}
	s.bodies = owned
	s.history.Clear()
	if !keepTime {
		s.time = 0
		s.steps = 0
	}
	s.resize()
	for _, m := range s.metrics {
		m.Reset()
	}
	s.observe()
	return nil
}

// SetDt changes the step used by subsequent calls.
func (s *Simulation) SetDt(dt float64) error {
	if err := checkDt(dt); err != nil {
		return err
	}
	s.dt = dt
	return nil
}

func (s *Simulation) observe() {
	if len(s.metrics) == 0 {
		return
	}
	s.copyView()
	for _, m := range s.metrics {
		m.Observe(s.view, s.time)
	}
}

func (s *Simulation) copyView() {
	for i, b := range s.bodies {
		s.view[i] = *b
	}
}

func (s *Simulation) Time() float64     { return s.time }
func (s *Simulation) Dt() float64       { return s.dt }
func (s *Simulation) Steps() int        { return s.steps }
func (s *Simulation) Len() int          { return len(s.bodies) }
func (s *Simulation) Model() ForceModel { return s.model }

// Bodies returns copies of the current bodies in simulation order.
func (s *Simulation) Bodies() []Body {
	out := make([]Body, len(s.bodies))
	for i, b := range s.bodies {
		out[i] = *b
	}
	return out
}

func (s *Simulation) Body(name string) (Body, bool) {
	for _, b := range s.bodies {
		if b.Name == name {
			return *b, true
		}
	}
	return Body{}, false
}

// Trajectory returns the retained pre-step positions of name, oldest first.
func (s *Simulation) Trajectory(name string) ([]r3.Vec, bool) {
	if _, ok := s.Body(name); !ok {
		return nil, false
	}
	pts, ok := s.history.Positions(name)
	if !ok {
		return []r3.Vec{}, true
	}
	return pts, true
}

func (s *Simulation) TrajectoryLen(name string) int { return s.history.Len(name) }

// HistoryLimit is the per-body retention cap; zero means unbounded.
func (s *Simulation) HistoryLimit() int { return s.history.Limit() }

func (s *Simulation) Snapshot() Snapshot {
	return Snapshot{Step: s.steps, Time: s.time, Bodies: s.Bodies()}
}

func (s *Simulation) State() StateRecord {
	rec := StateRecord{Dt: s.dt, Time: s.time, Bodies: make([]BodyRecord, len(s.bodies))}
	for i, b := range s.bodies {
		rec.Bodies[i] = recordOf(b)
	}
	return rec
}

// MetricValues reports each metric's current value by name.
func (s *Simulation) MetricValues() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}
