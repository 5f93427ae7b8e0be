// Package analysis characterises orbits beyond the running diagnostics.
//
//   - [LyapunovExponent]: largest Lyapunov exponent from a renormalised
//     shadow trajectory
//   - [DominantPeriod]: orbital period from the spectrum of a sampled
//     coordinate
//   - [GeneratePhasePortrait]: separation against radial velocity
//   - [GeneratePoincareSection]: crossings of the center's XZ plane
//
// # Chaos Detection
//
// A clearly positive largest Lyapunov exponent indicates chaotic motion:
//
//	lambda, err := analysis.LyapunovExponent(model, newInteg, bodies, "Earth", dt, duration, 1e3)
//	if err == nil && lambda > 0 {
//	    // nearby orbits diverge exponentially
//	}
package analysis
