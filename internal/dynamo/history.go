package dynamo

import "gonum.org/v1/gonum/spatial/r3"

// track is a position ring. With limit 0 it grows without bound.
type track struct {
	buf   []r3.Vec
	start int
	limit int
}

func (t *track) push(p r3.Vec) {
	if t.limit <= 0 || len(t.buf) < t.limit {
		t.buf = append(t.buf, p)
		return
	}
	t.buf[t.start] = p
	t.start = (t.start + 1) % t.limit
}

func (t *track) len() int { return len(t.buf) }

// points returns a copy, oldest first.
func (t *track) points() []r3.Vec {
	out := make([]r3.Vec, 0, len(t.buf))
	out = append(out, t.buf[t.start:]...)
	return append(out, t.buf[:t.start]...)
}

// History holds one position track per body, keyed by name.
//
// The simulation appends every step; Limit caps the number of retained
// entries per body, evicting the oldest. Total counts appends regardless
// of eviction.
type History struct {
	limit  int
	tracks map[string]*track
	total  int
}

func NewHistory(limit int) *History {
	if limit < 0 {
		limit = 0
	}
	return &History{limit: limit, tracks: make(map[string]*track)}
}

func (h *History) Limit() int { return h.limit }

// Total is the number of steps recorded since the last Clear.
func (h *History) Total() int { return h.total }

// record appends pos[i] to the track of bodies[i].
func (h *History) record(bodies []*Body, pos []r3.Vec) {
	for i, b := range bodies {
		t, ok := h.tracks[b.Name]
		if !ok {
			t = &track{limit: h.limit}
			h.tracks[b.Name] = t
		}
		t.push(pos[i])
	}
	h.total++
}

// Len is the number of retained entries for name.
func (h *History) Len(name string) int {
	if t, ok := h.tracks[name]; ok {
		return t.len()
	}
	return 0
}

// Positions returns the retained track for name, oldest first.
func (h *History) Positions(name string) ([]r3.Vec, bool) {
	t, ok := h.tracks[name]
	if !ok {
		return nil, false
	}
	return t.points(), true
}

func (h *History) Clear() {
	h.tracks = make(map[string]*track)
	h.total = 0
}
