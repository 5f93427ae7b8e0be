package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/orbsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// renormFactor is how far the shadow trajectory may drift, as a multiple
// of the initial separation, before it is pulled back.
const renormFactor = 1e3

// LyapunovExponent estimates the largest Lyapunov exponent, in 1/s, of a
// body set by following a shadow copy whose body named body starts offset
// by perturbation meters along X. Whenever the position separation grows
// past renormFactor times the offset, the shadow is pulled back along the
// separation direction and the log of the growth is accumulated.
// A clearly positive value indicates chaos.
func LyapunovExponent(
	model dynamo.ForceModel,
	newInteg func() dynamo.Integrator,
	bodies []dynamo.Body,
	body string,
	dt, duration float64,
	perturbation float64,
) (float64, error) {
	if !(perturbation > 0) {
		return 0, fmt.Errorf("perturbation must be positive, got %g", perturbation)
	}

	shadow := pointers(bodies)
	found := false
	for _, b := range shadow {
		if b.Name == body {
			b.Position.X += perturbation
			found = true
		}
	}
	if !found {
		return 0, fmt.Errorf("%w: %q", dynamo.ErrUnknownBody, body)
	}

	ref, err := dynamo.New(model, newInteg(), dt, pointers(bodies), dynamo.WithHistoryLimit(1))
	if err != nil {
		return 0, err
	}
	pert, err := dynamo.New(model, newInteg(), dt, shadow, dynamo.WithHistoryLimit(1))
	if err != nil {
		return 0, err
	}

	n, err := ref.StepsFor(duration)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	d0 := perturbation
	sumLog := 0.0
	for i := 0; i < n; i++ {
		if err := ref.Step(); err != nil {
			return 0, err
		}
		if err := pert.Step(); err != nil {
			return 0, err
		}

		a, b := ref.Bodies(), pert.Bodies()
		sep := separation(a, b)
		if sep > renormFactor*d0 {
			sumLog += math.Log(sep / d0)
			if err := pert.Reset(rescale(a, b, d0/sep), true); err != nil {
				return 0, err
			}
		}
	}

	if sep := separation(ref.Bodies(), pert.Bodies()); sep > 0 {
		sumLog += math.Log(sep / d0)
	}
	return sumLog / ref.Time(), nil
}

func pointers(bodies []dynamo.Body) []*dynamo.Body {
	out := make([]*dynamo.Body, len(bodies))
	for i := range bodies {
		b := bodies[i]
		out[i] = &b
	}
	return out
}

// separation is the norm of the stacked position differences.
func separation(a, b []dynamo.Body) float64 {
	var sum float64
	for i := range a {
		sum += r3.Norm2(r3.Sub(b[i].Position, a[i].Position))
	}
	return math.Sqrt(sum)
}

// rescale moves each body of b toward a so every position and velocity
// difference shrinks by scale.
func rescale(a, b []dynamo.Body, scale float64) []*dynamo.Body {
	out := make([]*dynamo.Body, len(b))
	for i := range b {
		nb := b[i]
		nb.Position = r3.Add(a[i].Position, r3.Scale(scale, r3.Sub(b[i].Position, a[i].Position)))
		nb.Velocity = r3.Add(a[i].Velocity, r3.Scale(scale, r3.Sub(b[i].Velocity, a[i].Velocity)))
		out[i] = &nb
	}
	return out
}
