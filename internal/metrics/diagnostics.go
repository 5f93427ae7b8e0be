package metrics

import (
	"fmt"

	"github.com/san-kum/orbsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// KineticEnergy is ½ m |v|².
func KineticEnergy(b dynamo.Body) float64 {
	return 0.5 * b.Mass * r3.Norm2(b.Velocity)
}

// PotentialEnergy sums the pair potential of bodies[i] against every other
// body, in collection order.
func PotentialEnergy(model dynamo.ForceModel, bodies []dynamo.Body, i int) float64 {
	var u float64
	for j := range bodies {
		if j == i {
			continue
		}
		u += model.Potential(&bodies[i], &bodies[j])
	}
	return u
}

// OrbitalEnergy is the kinetic energy of bodies[i] plus its potential against
// all other bodies.
func OrbitalEnergy(model dynamo.ForceModel, bodies []dynamo.Body, i int) float64 {
	return KineticEnergy(bodies[i]) + PotentialEnergy(model, bodies, i)
}

// AngularMomentum is m (x × v) about the origin.
func AngularMomentum(b dynamo.Body) r3.Vec {
	return r3.Scale(b.Mass, r3.Cross(b.Position, b.Velocity))
}

// TotalEnergy adds per-body orbital energies left to right. Each pair
// potential is therefore counted once per member of the pair.
func TotalEnergy(model dynamo.ForceModel, bodies []dynamo.Body) float64 {
	var e float64
	for i := range bodies {
		e += OrbitalEnergy(model, bodies, i)
	}
	return e
}

func TotalAngularMomentum(bodies []dynamo.Body) r3.Vec {
	var l r3.Vec
	for _, b := range bodies {
		l = r3.Add(l, AngularMomentum(b))
	}
	return l
}

func LinearMomentum(bodies []dynamo.Body) r3.Vec {
	var p r3.Vec
	for _, b := range bodies {
		p = r3.Add(p, r3.Scale(b.Mass, b.Velocity))
	}
	return p
}

// Diagnostics reads conserved quantities off a simulation between steps.
type Diagnostics struct {
	sim *dynamo.Simulation
}

func NewDiagnostics(sim *dynamo.Simulation) *Diagnostics {
	return &Diagnostics{sim: sim}
}

func (d *Diagnostics) index(bodies []dynamo.Body, name string) (int, error) {
	for i := range bodies {
		if bodies[i].Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", dynamo.ErrUnknownBody, name)
}

func (d *Diagnostics) OrbitalEnergy(name string) (float64, error) {
	bodies := d.sim.Bodies()
	i, err := d.index(bodies, name)
	if err != nil {
		return 0, err
	}
	return OrbitalEnergy(d.sim.Model(), bodies, i), nil
}

func (d *Diagnostics) AngularMomentum(name string) (r3.Vec, error) {
	b, ok := d.sim.Body(name)
	if !ok {
		return r3.Vec{}, fmt.Errorf("%w: %q", dynamo.ErrUnknownBody, name)
	}
	return AngularMomentum(b), nil
}

func (d *Diagnostics) TotalEnergy() float64 {
	return TotalEnergy(d.sim.Model(), d.sim.Bodies())
}

func (d *Diagnostics) TotalAngularMomentum() r3.Vec {
	return TotalAngularMomentum(d.sim.Bodies())
}

func (d *Diagnostics) LinearMomentum() r3.Vec {
	return LinearMomentum(d.sim.Bodies())
}

// Separation is the distance between two named bodies.
func (d *Diagnostics) Separation(a, b string) (float64, error) {
	ba, ok := d.sim.Body(a)
	if !ok {
		return 0, fmt.Errorf("%w: %q", dynamo.ErrUnknownBody, a)
	}
	bb, ok := d.sim.Body(b)
	if !ok {
		return 0, fmt.Errorf("%w: %q", dynamo.ErrUnknownBody, b)
	}
	return r3.Norm(r3.Sub(ba.Position, bb.Position)), nil
}
