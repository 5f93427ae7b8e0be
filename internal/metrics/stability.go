package metrics

import (
	"math"

	"github.com/san-kum/orbsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// RadiusDeviation tracks how far the separation between a body and its
// center strays from the initial separation, as a fraction of it.
type RadiusDeviation struct {
	name    string
	body    string
	center  string
	initial float64
	maxDev  float64
	last    float64
	samples int
}

func NewRadiusDeviation(body, center string) *RadiusDeviation {
	return &RadiusDeviation{
		name:   "radius_deviation:" + body,
		body:   body,
		center: center,
	}
}

func (r *RadiusDeviation) Name() string {
	return r.name
}

func (r *RadiusDeviation) Observe(bodies []dynamo.Body, t float64) {
	var b, c *dynamo.Body
	for i := range bodies {
		switch bodies[i].Name {
		case r.body:
			b = &bodies[i]
		case r.center:
			c = &bodies[i]
		}
	}
	if b == nil || c == nil {
		return
	}

	d := r3.Norm(r3.Sub(b.Position, c.Position))
	if r.samples == 0 {
		r.initial = d
	}
	r.last = d
	r.samples++

	if r.initial > 0 {
		r.maxDev = math.Max(r.maxDev, math.Abs(d-r.initial)/r.initial)
	}
}

func (r *RadiusDeviation) Value() float64 {
	return r.maxDev
}

// Final is the relative deviation at the latest observation.
func (r *RadiusDeviation) Final() float64 {
	if r.initial == 0 {
		return 0
	}
	return math.Abs(r.last-r.initial) / r.initial
}

func (r *RadiusDeviation) Reset() {
	r.initial = 0
	r.maxDev = 0
	r.last = 0
	r.samples = 0
}
