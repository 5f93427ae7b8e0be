package metrics

import (
	"math"

	"github.com/san-kum/orbsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// EnergyDrift tracks the largest relative departure of total energy from
// its first observed value.
type EnergyDrift struct {
	name          string
	model         dynamo.ForceModel
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(model dynamo.ForceModel) *EnergyDrift {
	return &EnergyDrift{
		name:  "energy_drift",
		model: model,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(bodies []dynamo.Body, t float64) {
	energy := TotalEnergy(e.model, bodies)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Current() float64 { return e.currentEnergy }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// AngularMomentumDrift is the largest |L(t) - L(0)| / |L(0)| seen so far.
type AngularMomentumDrift struct {
	name     string
	initial  r3.Vec
	maxDrift float64
	samples  int
}

func NewAngularMomentumDrift() *AngularMomentumDrift {
	return &AngularMomentumDrift{name: "angular_momentum_drift"}
}

func (a *AngularMomentumDrift) Name() string { return a.name }

func (a *AngularMomentumDrift) Observe(bodies []dynamo.Body, t float64) {
	l := TotalAngularMomentum(bodies)
	if a.samples == 0 {
		a.initial = l
	}
	a.samples++

	if n := r3.Norm(a.initial); n != 0 {
		a.maxDrift = math.Max(a.maxDrift, r3.Norm(r3.Sub(l, a.initial))/n)
	}
}

func (a *AngularMomentumDrift) Value() float64 { return a.maxDrift }

func (a *AngularMomentumDrift) Reset() {
	a.initial = r3.Vec{}
	a.maxDrift = 0
	a.samples = 0
}

// EnergySeries records total energy at every observation.
type EnergySeries struct {
	model  dynamo.ForceModel
	times  []float64
	values []float64
}

func NewEnergySeries(model dynamo.ForceModel) *EnergySeries {
	return &EnergySeries{model: model}
}

func (s *EnergySeries) Name() string { return "energy" }

func (s *EnergySeries) Observe(bodies []dynamo.Body, t float64) {
	s.times = append(s.times, t)
	s.values = append(s.values, TotalEnergy(s.model, bodies))
}

// Value is the most recent total energy, or zero before any observation.
func (s *EnergySeries) Value() float64 {
	if len(s.values) == 0 {
		return 0
	}
	return s.values[len(s.values)-1]
}

func (s *EnergySeries) Reset() {
	s.times = s.times[:0]
	s.values = s.values[:0]
}

func (s *EnergySeries) Times() []float64 {
	return append([]float64(nil), s.times...)
}

func (s *EnergySeries) Values() []float64 {
	return append([]float64(nil), s.values...)
}

// Relative returns each value's relative drift from the first.
func (s *EnergySeries) Relative() []float64 {
	out := make([]float64, len(s.values))
	if len(s.values) == 0 || s.values[0] == 0 {
		return out
	}
	e0 := s.values[0]
	for i, v := range s.values {
		out[i] = (v - e0) / math.Abs(e0)
	}
	return out
}
