package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// ring places n light bodies on circular orbits around one heavy body.
func ring(n int) []*dynamo.Body {
	bodies := []*dynamo.Body{{Name: "center", Mass: sunMass}}
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		r := au * (1 + 0.1*float64(i))
		v := physics.CircularSpeed(sunMass, r)
		bodies = append(bodies, &dynamo.Body{
			Name:     string(rune('a' + i%26)) + string(rune('0'+i/26)),
			Mass:     earthMass,
			Position: r3.Vec{X: r * math.Cos(angle), Y: r * math.Sin(angle)},
			Velocity: r3.Vec{X: -v * math.Sin(angle), Y: v * math.Cos(angle)},
		})
	}
	return bodies
}

func benchmarkStep(b *testing.B, integ dynamo.Integrator, n int) {
	model := physics.NewGravity()
	bodies := ring(n)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := integ.Step(model, bodies, 3600); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPredictorCorrector(b *testing.B) {
	benchmarkStep(b, NewPredictorCorrector(), 1)
}

func BenchmarkVelocityVerlet(b *testing.B) {
	benchmarkStep(b, NewVelocityVerlet(), 1)
}

func BenchmarkSemiImplicitEuler(b *testing.B) {
	benchmarkStep(b, NewSemiImplicitEuler(), 1)
}

func BenchmarkPredictorCorrector_Bodies10(b *testing.B) {
	benchmarkStep(b, NewPredictorCorrector(), 9)
}

func BenchmarkPredictorCorrector_Bodies100(b *testing.B) {
	benchmarkStep(b, NewPredictorCorrector(), 99)
}

func BenchmarkVelocityVerlet_Bodies100(b *testing.B) {
	benchmarkStep(b, NewVelocityVerlet(), 99)
}
