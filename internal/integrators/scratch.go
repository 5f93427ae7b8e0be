package integrators

import (
	"github.com/san-kum/orbsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// scratch holds per-step buffers reused across calls. Trial bodies carry the
// predicted state so the force model can be evaluated at new positions
// without touching the live bodies.
type scratch struct {
	a0, a1 []r3.Vec
	trial  []*dynamo.Body
}

func (s *scratch) ensure(n int) {
	if len(s.a0) == n {
		return
	}
	s.a0 = make([]r3.Vec, n)
	s.a1 = make([]r3.Vec, n)
	s.trial = make([]*dynamo.Body, n)
	for i := range s.trial {
		s.trial[i] = &dynamo.Body{}
	}
}

// commit copies trial state onto bodies in one write pass, after checking
// every trial value is finite.
func (s *scratch) commit(bodies []*dynamo.Body) error {
	for i, t := range s.trial[:len(bodies)] {
		if !dynamo.IsFinite(t.Position) || !dynamo.IsFinite(t.Velocity) {
			return &dynamo.BodyError{Name: bodies[i].Name, Err: dynamo.ErrNonFinite}
		}
	}
	for i, b := range bodies {
		b.Position = s.trial[i].Position
		b.Velocity = s.trial[i].Velocity
	}
	return nil
}
