package export

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/viz"
	"gonum.org/v1/gonum/spatial/r3"
)

const background = "#0a0a0a"

// Track is one body's path for plotting.
type Track struct {
	Name   string
	Color  colorful.Color
	Points []r3.Vec
}

// TracksFromSimulation collects the retained history of every body, with
// the current position appended so each track ends where the body is.
func TracksFromSimulation(sim *dynamo.Simulation) []Track {
	bodies := sim.Bodies()
	colors := viz.Palette(bodies)
	tracks := make([]Track, len(bodies))
	for i, b := range bodies {
		pts, _ := sim.Trajectory(b.Name)
		tracks[i] = Track{Name: b.Name, Color: colors[i], Points: append(pts, b.Position)}
	}
	return tracks
}

// TracksFromRecord builds tracks from stored trajectories, ordered and
// colored by the bodies of a state record. Bodies with no samples are skipped.
func TracksFromRecord(paths map[string][]r3.Vec, rec dynamo.StateRecord) []Track {
	bodies := make([]dynamo.Body, len(rec.Bodies))
	for i, br := range rec.Bodies {
		bodies[i] = dynamo.Body{Name: br.Name, Color: br.Color}
	}
	colors := viz.Palette(bodies)
	tracks := make([]Track, 0, len(bodies))
	for i, b := range bodies {
		pts := paths[b.Name]
		if len(pts) == 0 {
			continue
		}
		tracks = append(tracks, Track{Name: b.Name, Color: colors[i], Points: pts})
	}
	return tracks
}

// CanvasToSVG converts a Braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64, fill colorful.Color) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.SubWidth()) * scale
	height := float64(canvas.SubHeight()) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, background, fill.Hex())

	// Braille dot-to-bit mapping
	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r < 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// bounds is the XY box around every track point, padded and squared so
// circular orbits stay circular.
func bounds(tracks []Track) (minX, minY, span float64, ok bool) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, tr := range tracks {
		for _, p := range tr.Points {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return 0, 0, 0, false
	}

	span = math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	span *= 1.2
	return cx - span/2, cy - span/2, span, true
}

// WriteTrajectoriesSVG plots the XY projection of every track on a shared,
// equal-aspect frame: a polyline per path, a dot at its last point and a
// legend. It writes nothing and returns an error when no track has points.
func WriteTrajectoriesSVG(w io.Writer, tracks []Track, size int) error {
	minX, minY, span, ok := bounds(tracks)
	if !ok {
		return fmt.Errorf("no trajectory points to plot")
	}
	s := float64(size)
	project := func(p r3.Vec) (float64, float64) {
		return (p.X - minX) / span * s, s - (p.Y-minY)/span*s
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, size, size, size, size, background)

	bg, _ := colorful.Hex(background)
	for _, tr := range tracks {
		if len(tr.Points) == 0 {
			continue
		}
		stroke := viz.Dim(tr.Color, bg).Hex()
		if len(tr.Points) > 1 {
			fmt.Fprintf(&sb, `<polyline fill="none" stroke="%s" stroke-width="1.2" points="`, stroke)
			for i, p := range tr.Points {
				x, y := project(p)
				if i > 0 {
					sb.WriteByte(' ')
				}
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			}
			sb.WriteString("\"/>\n")
		}
		x, y := project(tr.Points[len(tr.Points)-1])
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"/>\n", x, y, tr.Color.Hex())
	}

	sb.WriteString(`<g font-family="monospace" font-size="12">` + "\n")
	row := 0
	for _, tr := range tracks {
		if len(tr.Points) == 0 {
			continue
		}
		row++
		fmt.Fprintf(&sb, "<text x=\"8\" y=\"%d\" fill=\"%s\">%s</text>\n", row*16, tr.Color.Hex(), html.EscapeString(tr.Name))
	}
	sb.WriteString("</g>\n</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
