package dynamo

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestHistoryUnbounded(t *testing.T) {
	h := NewHistory(0)
	bodies := []*Body{{Name: "a"}, {Name: "b"}}

	for i := 0; i < 5; i++ {
		h.record(bodies, []r3.Vec{{X: float64(i)}, {Y: float64(i)}})
	}

	if h.Total() != 5 {
		t.Errorf("Total() = %d, want 5", h.Total())
	}
	pts, ok := h.Positions("a")
	if !ok || len(pts) != 5 {
		t.Fatalf("Positions(a) = %v, %v", pts, ok)
	}
	for i, p := range pts {
		if p.X != float64(i) {
			t.Errorf("entry %d = %v, want X=%d", i, p, i)
		}
	}
	if h.Len("b") != 5 {
		t.Errorf("Len(b) = %d, want 5", h.Len("b"))
	}
}

func TestHistoryRingEvictsOldest(t *testing.T) {
	h := NewHistory(3)
	bodies := []*Body{{Name: "a"}}

	for i := 0; i < 7; i++ {
		h.record(bodies, []r3.Vec{{X: float64(i)}})
	}

	pts, _ := h.Positions("a")
	want := []float64{4, 5, 6}
	if len(pts) != len(want) {
		t.Fatalf("len = %d, want %d", len(pts), len(want))
	}
	for i, p := range pts {
		if p.X != want[i] {
			t.Errorf("entry %d = %g, want %g", i, p.X, want[i])
		}
	}
	if h.Total() != 7 {
		t.Errorf("Total() = %d, want 7", h.Total())
	}
}

func TestHistoryPositionsIsCopy(t *testing.T) {
	h := NewHistory(2)
	bodies := []*Body{{Name: "a"}}
	h.record(bodies, []r3.Vec{{X: 1}})

	pts, _ := h.Positions("a")
	pts[0].X = 99

	again, _ := h.Positions("a")
	if again[0].X != 1 {
		t.Error("Positions returned shared storage")
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(0)
	h.record([]*Body{{Name: "a"}}, []r3.Vec{{}})
	h.Clear()

	if _, ok := h.Positions("a"); ok {
		t.Error("expected no track after Clear")
	}
	if h.Total() != 0 {
		t.Errorf("Total() = %d after Clear", h.Total())
	}
}

func TestNegativeLimitMeansUnbounded(t *testing.T) {
	if NewHistory(-4).Limit() != 0 {
		t.Error("negative limit should be treated as unbounded")
	}
}
