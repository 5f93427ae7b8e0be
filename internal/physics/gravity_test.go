package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/orbsim/internal/dynamo"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func body(name string, mass float64, pos r3.Vec) *dynamo.Body {
	return &dynamo.Body{Name: name, Mass: mass, Position: pos}
}

func TestForceMagnitudeAndDirection(t *testing.T) {
	g := NewGravity()
	a := body("a", 1e24, r3.Vec{})
	b := body("b", 2e24, r3.Vec{X: 3e8, Y: 4e8})

	f := g.Force(a, b)
	want := G * 1e24 * 2e24 / (5e8 * 5e8)
	if !scalar.EqualWithinRel(r3.Norm(f), want, 1e-12) {
		t.Errorf("|F| = %g, want %g", r3.Norm(f), want)
	}
	unit := r3.Unit(f)
	if !scalar.EqualWithinAbs(unit.X, 0.6, 1e-12) || !scalar.EqualWithinAbs(unit.Y, 0.8, 1e-12) {
		t.Errorf("direction = %v, want (0.6, 0.8, 0)", unit)
	}

	back := g.Force(b, a)
	if r3.Norm(r3.Add(f, back)) > 1e-12*r3.Norm(f) {
		t.Errorf("forces not equal and opposite: %v vs %v", f, back)
	}
}

func TestForceBelowFloor(t *testing.T) {
	g := NewGravity()
	tests := []struct {
		name string
		sep  float64
		zero bool
	}{
		{"coincident", 0, true},
		{"just inside floor", DistanceFloor * 0.999, true},
		{"a few km", 5e3, true},
		{"at floor", DistanceFloor, false},
		{"outside floor", DistanceFloor * 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := body("a", 5.972e24, r3.Vec{})
			b := body("b", 7.342e22, r3.Vec{X: tt.sep})
			f := g.Force(a, b)
			if got := f == (r3.Vec{}); got != tt.zero {
				t.Errorf("zero force = %v, want %v (F=%v)", got, tt.zero, f)
			}
			if got := g.Potential(a, b) == 0; got != tt.zero {
				t.Errorf("zero potential = %v, want %v", got, tt.zero)
			}
		})
	}
}

func TestAccelerationsClosePairIsZero(t *testing.T) {
	g := NewGravity()
	bodies := []*dynamo.Body{
		body("a", 1e30, r3.Vec{}),
		body("b", 1e30, r3.Vec{X: 5e5, Y: 5e5}),
	}
	out := make([]r3.Vec, 2)
	if err := g.Accelerations(bodies, out); err != nil {
		t.Fatalf("accelerations: %v", err)
	}
	for i, a := range out {
		if a != (r3.Vec{}) {
			t.Errorf("body %d acceleration = %v, want zero", i, a)
		}
	}
}

func TestAccelerationsSumPairs(t *testing.T) {
	g := NewGravity()
	sun := body("sun", 1.989e30, r3.Vec{})
	earth := body("earth", 5.972e24, r3.Vec{X: 1.496e11})
	mars := body("mars", 6.39e23, r3.Vec{Y: 2.279e11})
	bodies := []*dynamo.Body{sun, earth, mars}

	out := make([]r3.Vec, 3)
	if err := g.Accelerations(bodies, out); err != nil {
		t.Fatalf("accelerations: %v", err)
	}

	want := r3.Scale(1/earth.Mass, r3.Add(g.Force(earth, sun), g.Force(earth, mars)))
	if out[1] != want {
		t.Errorf("earth acceleration = %v, want %v", out[1], want)
	}

	// Newton's third law: net internal force vanishes.
	var net r3.Vec
	for i, b := range bodies {
		net = r3.Add(net, r3.Scale(b.Mass, out[i]))
	}
	if r3.Norm(net) > 1e-6*r3.Norm(g.Force(earth, sun)) {
		t.Errorf("net internal force = %v", net)
	}
}

func TestAccelerationsZeroMass(t *testing.T) {
	g := NewGravity()
	bodies := []*dynamo.Body{
		body("a", 1e24, r3.Vec{}),
		body("ghost", 0, r3.Vec{X: 1e9}),
	}
	out := make([]r3.Vec, 2)
	err := g.Accelerations(bodies, out)
	if !errors.Is(err, dynamo.ErrZeroMass) {
		t.Fatalf("expected ErrZeroMass, got %v", err)
	}
	var be *dynamo.BodyError
	if !errors.As(err, &be) || be.Name != "ghost" {
		t.Errorf("expected body error for ghost, got %v", err)
	}
}

func TestAccelerationsNonFinite(t *testing.T) {
	g := NewGravity()
	bodies := []*dynamo.Body{
		body("a", 1e24, r3.Vec{}),
		body("b", 1e24, r3.Vec{X: math.Inf(1)}),
	}
	out := make([]r3.Vec, 2)
	if err := g.Accelerations(bodies, out); !errors.Is(err, dynamo.ErrNonFinite) {
		t.Errorf("expected ErrNonFinite, got %v", err)
	}
}

func TestCircularSpeed(t *testing.T) {
	v := CircularSpeed(1.989e30, 1.496e11)
	if math.Abs(v-29785) > 10 {
		t.Errorf("earth circular speed = %.1f, want ~29785", v)
	}
}

func cluster(n int) []*dynamo.Body {
	bodies := make([]*dynamo.Body, n)
	for i := range bodies {
		f := float64(i)
		bodies[i] = body(string(rune('a'+i%26)), 1e24*(1+f), r3.Vec{X: 1e9 * math.Cos(f), Y: 1e9 * math.Sin(f), Z: 1e7 * f})
	}
	return bodies
}

func TestAccelerationsParallelMatchesSerial(t *testing.T) {
	for _, n := range []int{parallelThreshold, 37, 100} {
		bodies := cluster(n)

		serial := &Gravity{G: G, Floor: DistanceFloor, Workers: 1}
		want := make([]r3.Vec, n)
		if err := serial.Accelerations(bodies, want); err != nil {
			t.Fatal(err)
		}

		parallel := &Gravity{G: G, Floor: DistanceFloor, Workers: 4}
		got := make([]r3.Vec, n)
		if err := parallel.Accelerations(bodies, got); err != nil {
			t.Fatal(err)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("n=%d body %d: parallel %v, serial %v", n, i, got[i], want[i])
			}
		}
	}
}

func TestAccelerationsParallelFirstError(t *testing.T) {
	bodies := cluster(40)
	bodies[7].Mass = 0
	bodies[31].Mass = 0

	g := &Gravity{G: G, Floor: DistanceFloor, Workers: 4}
	err := g.Accelerations(bodies, make([]r3.Vec, len(bodies)))
	var be *dynamo.BodyError
	if !errors.As(err, &be) || !errors.Is(err, dynamo.ErrZeroMass) {
		t.Fatalf("expected zero mass body error, got %v", err)
	}
	if be.Name != bodies[7].Name {
		t.Errorf("error names %q, want the lowest index body %q", be.Name, bodies[7].Name)
	}
}

func TestZeroValueGravityUsesDefaults(t *testing.T) {
	var zero Gravity
	g := NewGravity()

	far := [2]*dynamo.Body{body("a", 5.972e24, r3.Vec{}), body("b", 7.342e22, r3.Vec{X: 3.844e8})}
	if got, want := zero.Force(far[0], far[1]), g.Force(far[0], far[1]); got != want || got == (r3.Vec{}) {
		t.Errorf("zero value force %v, want %v", got, want)
	}
	if got, want := zero.Potential(far[0], far[1]), g.Potential(far[0], far[1]); got != want {
		t.Errorf("zero value potential %g, want %g", got, want)
	}

	near := body("c", 1e20, r3.Vec{X: DistanceFloor / 2})
	if f := zero.Force(far[0], near); f != (r3.Vec{}) {
		t.Errorf("zero value ignores the distance floor: %v", f)
	}

	custom := Gravity{G: 2 * G}
	if got, want := custom.Potential(far[0], far[1]), 2*g.Potential(far[0], far[1]); !scalar.EqualWithinRel(got, want, 1e-15) {
		t.Errorf("explicit G ignored: %g, want %g", got, want)
	}
}
