package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Body is a point mass. Name and Mass identify it for the lifetime of a
// simulation; Position and Velocity are advanced in place by the integrator.
type Body struct {
	Name     string
	Mass     float64 // kg
	Position r3.Vec  // m
	Velocity r3.Vec  // m/s

	// Planar marks bodies built from 2-component input. Integration is
	// always three dimensional; consumers may use it to hide Z.
	Planar bool

	// Radius and Color are passed through to renderers untouched.
	Radius float64
	Color  string
}

type BodyOption func(*Body)

func WithRadius(r float64) BodyOption { return func(b *Body) { b.Radius = r } }
func WithColor(c string) BodyOption   { return func(b *Body) { b.Color = c } }

// NewBody validates and builds a body. Position and velocity may have two or
// three components; two-component input is zero-extended and the body is
// tagged Planar when its position was planar.
func NewBody(name string, mass float64, position, velocity []float64, opts ...BodyOption) (*Body, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if !(mass > 0) || math.IsInf(mass, 0) {
		return nil, fmt.Errorf("%s: %w (got %g)", name, ErrInvalidMass, mass)
	}
	pos, err := toVec(position)
	if err != nil {
		return nil, fmt.Errorf("%s position: %w", name, err)
	}
	vel, err := toVec(velocity)
	if err != nil {
		return nil, fmt.Errorf("%s velocity: %w", name, err)
	}

	b := &Body{
		Name:     name,
		Mass:     mass,
		Position: pos,
		Velocity: vel,
		Planar:   len(position) == 2,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// MustBody is NewBody for fixed, known-good initial conditions such as presets.
func MustBody(name string, mass float64, position, velocity []float64, opts ...BodyOption) *Body {
	b, err := NewBody(name, mass, position, velocity, opts...)
	if err != nil {
		panic(err)
	}
	return b
}

func toVec(c []float64) (r3.Vec, error) {
	var v r3.Vec
	switch len(c) {
	case 3:
		v.Z = c[2]
		fallthrough
	case 2:
		v.X, v.Y = c[0], c[1]
	default:
		return r3.Vec{}, fmt.Errorf("%w (got %d)", ErrDimension, len(c))
	}
	if !IsFinite(v) {
		return r3.Vec{}, ErrNonFinite
	}
	return v, nil
}

func (b *Body) Clone() *Body {
	c := *b
	return &c
}

// validate re-checks the invariants NewBody enforces, for bodies built as
// struct literals or mutated after construction.
func (b *Body) validate() error {
	if b == nil {
		return ErrNilBody
	}
	if b.Name == "" {
		return ErrEmptyName
	}
	if !(b.Mass > 0) || math.IsInf(b.Mass, 0) {
		return &BodyError{Name: b.Name, Err: ErrInvalidMass}
	}
	if !IsFinite(b.Position) || !IsFinite(b.Velocity) {
		return &BodyError{Name: b.Name, Err: ErrNonFinite}
	}
	return nil
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// ForceModel computes per-body accelerations and pair potentials from a
// consistent body snapshot. Implementations must not mutate bodies.
type ForceModel interface {
	// Accelerations writes the net acceleration of bodies[i] into out[i].
	Accelerations(bodies []*Body, out []r3.Vec) error
	// Potential is the pair potential energy of a due to b.
	Potential(a, b *Body) float64
}

// Integrator advances every body by one fixed step. On error the bodies
// must be left exactly as they were.
type Integrator interface {
	Step(model ForceModel, bodies []*Body, dt float64) error
}

// Metric observes the body set after every step. Bodies are copies.
type Metric interface {
	Name() string
	Observe(bodies []Body, t float64)
	Value() float64
	Reset()
}
