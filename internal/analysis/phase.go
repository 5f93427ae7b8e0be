package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/viz"
	"gonum.org/v1/gonum/spatial/r3"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D is a body's radial phase trajectory about a center:
// X is the separation in meters, Y the radial velocity in m/s. A bound
// orbit traces a closed loop.
type PhasePortrait2D struct {
	Body, Center string
	Points       []Point
}

func relative(sim *dynamo.Simulation, body, center string) (r3.Vec, r3.Vec, error) {
	b, ok := sim.Body(body)
	if !ok {
		return r3.Vec{}, r3.Vec{}, fmt.Errorf("%w: %q", dynamo.ErrUnknownBody, body)
	}
	c, ok := sim.Body(center)
	if !ok {
		return r3.Vec{}, r3.Vec{}, fmt.Errorf("%w: %q", dynamo.ErrUnknownBody, center)
	}
	return r3.Sub(b.Position, c.Position), r3.Sub(b.Velocity, c.Velocity), nil
}

// GeneratePhasePortrait steps sim for duration, recording body's radial
// phase point after every step.
func GeneratePhasePortrait(sim *dynamo.Simulation, body, center string, duration float64) (*PhasePortrait2D, error) {
	if _, _, err := relative(sim, body, center); err != nil {
		return nil, err
	}
	n, err := sim.StepsFor(duration)
	if err != nil {
		return nil, err
	}

	portrait := &PhasePortrait2D{Body: body, Center: center, Points: make([]Point, 0, n)}
	for i := 0; i < n; i++ {
		if err := sim.Step(); err != nil {
			return portrait, err
		}
		r, v, _ := relative(sim, body, center)
		d := r3.Norm(r)
		vr := 0.0
		if d > 0 {
			vr = r3.Dot(r, v) / d
		}
		portrait.Points = append(portrait.Points, Point{X: d, Y: vr})
	}
	return portrait, nil
}

// PoincareSection holds body's in-plane position about a center each time
// it crosses the center's XZ plane moving toward +Y.
type PoincareSection struct {
	Points []Point
}

// GeneratePoincareSection steps sim for duration and records the X
// separation and X relative velocity at every upward crossing of Y = 0,
// linearly interpolated to the crossing.
func GeneratePoincareSection(sim *dynamo.Simulation, body, center string, duration float64) (*PoincareSection, error) {
	prevR, prevV, err := relative(sim, body, center)
	if err != nil {
		return nil, err
	}
	n, err := sim.StepsFor(duration)
	if err != nil {
		return nil, err
	}

	section := &PoincareSection{}
	for i := 0; i < n; i++ {
		if err := sim.Step(); err != nil {
			return section, err
		}
		r, v, _ := relative(sim, body, center)

		// Detect positive-going crossing
		if prevR.Y < 0 && r.Y >= 0 {
			frac := -prevR.Y / (r.Y - prevR.Y)
			if math.IsNaN(frac) || math.IsInf(frac, 0) {
				frac = 0.5
			}
			section.Points = append(section.Points, Point{
				X: prevR.X + frac*(r.X-prevR.X),
				Y: prevV.X + frac*(v.X-prevV.X),
			})
		}
		prevR, prevV = r, v
	}
	return section, nil
}

// PlotPoints draws points on a braille canvas of width x height cells,
// scaled to their bounding box with 10% padding.
func PlotPoints(points []Point, width, height int) string {
	if len(points) == 0 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = math.Max(math.Abs(minX), 1)
	}
	if rangeY == 0 {
		rangeY = math.Max(math.Abs(minY), 1)
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	cv := viz.NewCanvas(width, height)
	sw, sh := cv.SubWidth(), cv.SubHeight()
	for _, p := range points {
		x := int((p.X - minX) / rangeX * float64(sw-1))
		y := sh - 1 - int((p.Y-minY)/rangeY*float64(sh-1))
		cv.Set(x, y)
	}
	return cv.String()
}
