package integrators

import (
	"github.com/san-kum/orbsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// SemiImplicitEuler kicks then drifts with a single force evaluation.
type SemiImplicitEuler struct {
	scratch
}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Step(model dynamo.ForceModel, bodies []*dynamo.Body, dt float64) error {
	e.ensure(len(bodies))

	if err := model.Accelerations(bodies, e.a0); err != nil {
		return err
	}

	for i, b := range bodies {
		t := e.trial[i]
		*t = *b
		t.Velocity = r3.Add(b.Velocity, r3.Scale(dt, e.a0[i]))
		t.Position = r3.Add(b.Position, r3.Scale(dt, t.Velocity))
	}

	return e.commit(bodies)
}
