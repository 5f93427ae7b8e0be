package viz

import (
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/orbsim/internal/dynamo"
)

// BodyColor is the body's own hex color when it parses, otherwise a hue
// spread by index so neighbours stay distinguishable.
func BodyColor(b dynamo.Body, i int) colorful.Color {
	if b.Color != "" {
		if c, err := colorful.Hex(b.Color); err == nil {
			return c
		}
	}
	hue := math.Mod(float64(i)*137.508, 360)
	return colorful.Hcl(hue, 0.7, 0.75).Clamped()
}

// Palette returns one color per body, in order.
func Palette(bodies []dynamo.Body) []colorful.Color {
	out := make([]colorful.Color, len(bodies))
	for i, b := range bodies {
		out[i] = BodyColor(b, i)
	}
	return out
}

// Dim blends c toward the background for trails.
func Dim(c colorful.Color, bg colorful.Color) colorful.Color {
	return c.BlendLab(bg, 0.55).Clamped()
}

func lipColor(c colorful.Color) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}

// Glyph picks a marker for a body from its name.
func Glyph(name string) rune {
	switch name {
	case "Sun":
		return '☉'
	case "Earth":
		return '♁'
	case "Moon":
		return '☾'
	case "Mars":
		return '♂'
	case "Venus":
		return '♀'
	case "Mercury":
		return '☿'
	case "Jupiter":
		return '♃'
	case "Saturn":
		return '♄'
	}
	for _, r := range name {
		return r
	}
	return '●'
}
