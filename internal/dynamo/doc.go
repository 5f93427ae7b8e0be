// Package dynamo provides the core primitives of the gravity engine.
//
//   - [Body]: a point mass with position and velocity state
//   - [ForceModel]: accelerations and pair potentials over a body set
//   - [Integrator]: advances every body by one fixed step
//   - [Simulation]: owns bodies, time cursor and trajectory history
//   - [Snapshot], [StateRecord]: immutable copies for readers and storage
//
// # Example
//
//	sun, _ := dynamo.NewBody("Sun", 1.989e30, []float64{0, 0}, []float64{0, 0})
//	earth, _ := dynamo.NewBody("Earth", 5.972e24, []float64{1.496e11, 0}, []float64{0, 29780})
//	s, _ := dynamo.New(physics.NewGravity(), integrators.NewPredictorCorrector(), 3600, []*dynamo.Body{sun, earth})
//	s.Run(365 * 24 * 3600)
//
// # Thread Safety
//
// A Simulation is NOT thread-safe and does no locking. Exactly one goroutine
// may call Step, Run or Reset at a time. Other goroutines read state only
// through snapshots: either call [Simulation.Snapshot] between steps under
// the caller's own lock, or consume [Simulation.Stream]. Integrators update
// all bodies in a single write pass after every acceleration has been read,
// so a snapshot is always a whole-step state.
//
// Floating-point sums in diagnostics follow body order, so two simulations
// built from the same ordered body set reproduce bit-identical results.
package dynamo
