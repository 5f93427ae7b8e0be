package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/integrators"
	"github.com/san-kum/orbsim/internal/physics"
	"github.com/san-kum/orbsim/internal/viz"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 2, colorful.Color{}) != "" {
		t.Error("nil canvas should give empty output")
	}

	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	out := CanvasToSVG(c, 2, colorful.Color{R: 0, G: 1, B: 0})

	if got := strings.Count(out, "<circle"); got != 2 {
		t.Errorf("expected 2 dots, got %d", got)
	}
	if !strings.Contains(out, `width="8" height="8"`) || !strings.Contains(out, `fill="#00ff00"`) {
		t.Errorf("unexpected header: %s", out[:200])
	}
}

func TestWriteTrajectoriesSVG(t *testing.T) {
	tracks := []Track{
		{Name: "a", Color: colorful.Color{R: 1}, Points: []r3.Vec{{X: 0}, {X: 1}, {X: 1, Y: 1}}},
		{Name: "<b>", Color: colorful.Color{B: 1}, Points: []r3.Vec{{X: 0.5, Y: 0.5}}},
		{Name: "empty"},
	}

	var buf bytes.Buffer
	if err := WriteTrajectoriesSVG(&buf, tracks, 400); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if strings.Count(out, "<polyline") != 1 {
		t.Error("single point track should have no line")
	}
	if strings.Count(out, "<circle") != 2 || strings.Count(out, "<text") != 2 {
		t.Errorf("markers or legend wrong:\n%s", out)
	}
	if !strings.Contains(out, "&lt;b&gt;") {
		t.Error("legend names should be escaped")
	}
	if strings.Contains(out, "empty") {
		t.Error("empty track should be skipped")
	}
	// A 1x1 box padded by 20% maps (0, 0) to (1/12 of 400) from the edge.
	if !strings.Contains(out, "33.3,366.7") {
		t.Errorf("first point misplaced:\n%s", out)
	}
}

func TestWriteTrajectoriesSVGEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTrajectoriesSVG(&buf, []Track{{Name: "x"}}, 100); err == nil {
		t.Error("expected error with no points")
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written on error")
	}
}

func TestTracksFromSimulation(t *testing.T) {
	bodies, err := config.GetPreset("earth_moon").BuildBodies()
	if err != nil {
		t.Fatal(err)
	}
	sim, err := dynamo.New(physics.NewGravity(), integrators.NewPredictorCorrector(), 60, bodies)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sim.Run(600); err != nil {
		t.Fatal(err)
	}

	tracks := TracksFromSimulation(sim)
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}
	for _, tr := range tracks {
		if len(tr.Points) != 11 {
			t.Errorf("%s: %d points, want history plus current", tr.Name, len(tr.Points))
		}
		b, _ := sim.Body(tr.Name)
		if tr.Points[len(tr.Points)-1] != b.Position {
			t.Errorf("%s track should end at the current position", tr.Name)
		}
	}

	paths := map[string][]r3.Vec{"Moon": tracks[1].Points}
	fromRec := TracksFromRecord(paths, sim.State())
	if len(fromRec) != 1 || fromRec[0].Name != "Moon" || fromRec[0].Color != tracks[1].Color {
		t.Errorf("record tracks = %+v", fromRec)
	}
}
