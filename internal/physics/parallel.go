package physics

import (
	"runtime"

	"github.com/san-kum/orbsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
	"golang.org/x/sync/errgroup"
)

// parallelThreshold is the body count at which Accelerations splits the
// work across goroutines. Below it the scheduling costs more than the loop.
const parallelThreshold = 16

// accelerationsParallel computes out in contiguous chunks of bodies. Each
// body's force is still summed over the others in body order, so the result
// matches the serial loop bit for bit. On failure the error of the lowest
// failing index is returned, as the serial loop would.
func (g *Gravity) accelerationsParallel(bodies []*dynamo.Body, out []r3.Vec, workers int) error {
	n := len(bodies)
	chunk := (n + workers - 1) / workers
	errs := make([]error, workers)

	var eg errgroup.Group
	for w := range workers {
		start := w * chunk
		end := min(start+chunk, n)
		if start >= end {
			break
		}
		eg.Go(func() error {
			for i := start; i < end; i++ {
				a, err := g.Acceleration(bodies, i)
				if err != nil {
					errs[w] = err
					return nil
				}
				out[i] = a
			}
			return nil
		})
	}
	_ = eg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (g *Gravity) workers() int {
	if g.Workers > 0 {
		return g.Workers
	}
	return runtime.GOMAXPROCS(0)
}
