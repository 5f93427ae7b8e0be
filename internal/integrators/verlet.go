package integrators

import (
	"github.com/san-kum/orbsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// VelocityVerlet is the classical scheme, kept for comparison runs.
type VelocityVerlet struct {
	scratch
}

func NewVelocityVerlet() *VelocityVerlet {
	return &VelocityVerlet{}
}

func (v *VelocityVerlet) Step(model dynamo.ForceModel, bodies []*dynamo.Body, dt float64) error {
	v.ensure(len(bodies))

	if err := model.Accelerations(bodies, v.a0); err != nil {
		return err
	}

	halfDt2 := 0.5 * dt * dt
	for i, b := range bodies {
		t := v.trial[i]
		*t = *b
		t.Position = r3.Add(b.Position, r3.Add(r3.Scale(dt, b.Velocity), r3.Scale(halfDt2, v.a0[i])))
	}

	if err := model.Accelerations(v.trial, v.a1); err != nil {
		return err
	}

	halfDt := 0.5 * dt
	for i, b := range bodies {
		v.trial[i].Velocity = r3.Add(b.Velocity, r3.Scale(halfDt, r3.Add(v.a0[i], v.a1[i])))
	}

	return v.commit(bodies)
}
