package integrators

import (
	"github.com/san-kum/orbsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// PredictorCorrector is the engine's default stepper.
//
//	a0 = a(x)
//	x' = x + (v + a0·dt)·dt      drift with the once-kicked velocity
//	a1 = a(x')
//	v' = v + ½(a0 + a1)·dt       corrected from the pre-step velocity
//
// The kicked velocity only drives the drift and is then discarded. This is
// not textbook velocity-Verlet (see [VelocityVerlet]); energy and radius
// tolerances in this repository are calibrated against this ordering.
type PredictorCorrector struct {
	scratch
}

func NewPredictorCorrector() *PredictorCorrector {
	return &PredictorCorrector{}
}

func (p *PredictorCorrector) Step(model dynamo.ForceModel, bodies []*dynamo.Body, dt float64) error {
	p.ensure(len(bodies))

	if err := model.Accelerations(bodies, p.a0); err != nil {
		return err
	}

	for i, b := range bodies {
		t := p.trial[i]
		*t = *b
		kicked := r3.Add(b.Velocity, r3.Scale(dt, p.a0[i]))
		t.Position = r3.Add(b.Position, r3.Scale(dt, kicked))
	}

	if err := model.Accelerations(p.trial, p.a1); err != nil {
		return err
	}

	for i, b := range bodies {
		avg := r3.Scale(0.5, r3.Add(p.a0[i], p.a1[i]))
		p.trial[i].Velocity = r3.Add(b.Velocity, r3.Scale(dt, avg))
	}

	return p.commit(bodies)
}
