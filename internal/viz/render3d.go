package viz

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera projects world positions, in meters, onto a canvas. Scale is the
// world distance shown between the canvas center and its nearer edge.
type Camera struct {
	Center     r3.Vec
	Scale      float64
	RotX, RotZ float64
	Zoom       float64
	// Perspective adds depth foreshortening; off gives a plain rotated
	// orthographic view.
	Perspective bool
}

func NewCamera(scale float64) *Camera {
	if !(scale > 0) {
		scale = 1
	}
	return &Camera{Scale: scale, Zoom: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(1e3, c.Zoom*1.25) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(1e-3, c.Zoom/1.25) }
func (c *Camera) ResetView()        { c.RotX, c.RotZ, c.Zoom = 0, 0, 1 }

// rotate turns p about Z (spin) and then X (tilt).
func (c *Camera) rotate(p r3.Vec) r3.Vec {
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	return p
}

// Project maps p to dot coordinates on a sw x sh dot canvas. It returns the
// depth (larger is nearer) and whether the point landed on the canvas.
func (c *Camera) Project(p r3.Vec, sw, sh int) (int, int, float64, bool) {
	rel := c.rotate(r3.Sub(p, c.Center))
	unit := c.Scale / c.Zoom
	x, y, z := rel.X/unit, rel.Y/unit, rel.Z/unit

	if c.Perspective {
		const eye = 4.0
		if z >= eye-0.1 {
			return 0, 0, z, false
		}
		f := eye / (eye - z)
		x, y = x*f, y*f
	}

	// Braille dots are close to square, so one factor serves both axes.
	half := float64(min(sw, sh)) / 2
	sx := int(math.Round(x*half)) + sw/2
	sy := int(math.Round(-y*half)) + sh/2
	return sx, sy, z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

// FitScale returns a camera scale that keeps every position on screen.
func FitScale(center r3.Vec, positions []r3.Vec) float64 {
	var far float64
	for _, p := range positions {
		far = math.Max(far, r3.Norm(r3.Sub(p, center)))
	}
	if far == 0 {
		return 1
	}
	return far * 1.1
}

type marker struct {
	x, y  int
	depth float64
	glyph rune
	tag   int
}

// RenderBodies draws trails as lines and labels each body with its glyph,
// nearer bodies over farther ones.
func RenderBodies(cv *Canvas, cam *Camera, positions []r3.Vec, glyphs []rune, trails [][]r3.Vec) {
	if cv == nil || cam == nil {
		return
	}
	sw, sh := cv.SubWidth(), cv.SubHeight()

	for _, trail := range trails {
		px, py, _, pok := 0, 0, 0.0, false
		for _, p := range trail {
			x, y, _, ok := cam.Project(p, sw, sh)
			if ok && pok && absInt(x-px)+absInt(y-py) < sw/2 {
				cv.DrawLine(px, py, x, y)
			} else if ok {
				cv.Set(x, y)
			}
			px, py, pok = x, y, ok
		}
	}

	marks := make([]marker, 0, len(positions))
	for i, p := range positions {
		x, y, d, ok := cam.Project(p, sw, sh)
		if !ok {
			continue
		}
		g := '●'
		if i < len(glyphs) {
			g = glyphs[i]
		}
		marks = append(marks, marker{x, y, d, g, i})
	}
	sort.Slice(marks, func(i, j int) bool { return marks[i].depth < marks[j].depth })
	for _, m := range marks {
		cv.Label(m.x, m.y, m.glyph, m.tag)
	}
}
