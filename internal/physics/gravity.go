package physics

import (
	"math"

	"github.com/san-kum/orbsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// G is the gravitational constant in m^3 kg^-1 s^-2.
	G = 6.67430e-11

	// DistanceFloor is the separation in meters below which a pair exerts
	// no force and has no potential energy.
	DistanceFloor = 1e6
)

// Gravity is pairwise Newtonian gravity with a hard distance cut-off.
//
// The cut-off is an absolute floor, not a softening kernel: pairs closer
// than Floor simply do not interact. It exists only to keep coincident
// bodies away from the 1/r² singularity.
//
// The zero value is ready to use: a zero G or Floor means the package
// defaults G and DistanceFloor.
type Gravity struct {
	G     float64
	Floor float64

	// Workers bounds the goroutines used by Accelerations for large
	// systems. Zero means GOMAXPROCS; one forces the serial loop.
	Workers int
}

func NewGravity() *Gravity {
	return &Gravity{G: G, Floor: DistanceFloor}
}

// Force is the force on a due to b.
func (g *Gravity) Force(a, b *dynamo.Body) r3.Vec {
	d := r3.Sub(b.Position, a.Position)
	r := r3.Norm(d)
	if r < g.floor() {
		return r3.Vec{}
	}
	mag := g.constant() * a.Mass * b.Mass / (r * r)
	return r3.Scale(mag/r, d)
}

// NetForce sums Force on bodies[i] from every other body, in order.
func (g *Gravity) NetForce(bodies []*dynamo.Body, i int) r3.Vec {
	var f r3.Vec
	for j, other := range bodies {
		if j == i {
			continue
		}
		f = r3.Add(f, g.Force(bodies[i], other))
	}
	return f
}

// Acceleration is the net force on bodies[i] divided by its mass.
func (g *Gravity) Acceleration(bodies []*dynamo.Body, i int) (r3.Vec, error) {
	b := bodies[i]
	if !(b.Mass > 0) {
		return r3.Vec{}, &dynamo.BodyError{Name: b.Name, Err: dynamo.ErrZeroMass}
	}
	a := r3.Scale(1/b.Mass, g.NetForce(bodies, i))
	if !dynamo.IsFinite(a) {
		return r3.Vec{}, &dynamo.BodyError{Name: b.Name, Err: dynamo.ErrNonFinite}
	}
	return a, nil
}

// Accelerations fills out[i] for every body from one consistent read of
// positions. It is O(n²) and writes nothing but out.
func (g *Gravity) Accelerations(bodies []*dynamo.Body, out []r3.Vec) error {
	if w := g.workers(); w > 1 && len(bodies) >= parallelThreshold {
		return g.accelerationsParallel(bodies, out, w)
	}
	for i := range bodies {
		a, err := g.Acceleration(bodies, i)
		if err != nil {
			return err
		}
		out[i] = a
	}
	return nil
}

// Potential is -G·ma·mb/r, or zero when the pair is inside the floor.
func (g *Gravity) Potential(a, b *dynamo.Body) float64 {
	r := r3.Norm(r3.Sub(b.Position, a.Position))
	if r < g.floor() {
		return 0
	}
	return -g.constant() * a.Mass * b.Mass / r
}

func (g *Gravity) constant() float64 {
	if g.G == 0 {
		return G
	}
	return g.G
}

func (g *Gravity) floor() float64 {
	if g.Floor == 0 {
		return DistanceFloor
	}
	return g.Floor
}

// CircularSpeed is the speed of a circular orbit of radius r around a
// central mass m, sqrt(G·m/r).
func CircularSpeed(m, r float64) float64 {
	return math.Sqrt(G * m / r)
}
