// Package physics provides the gravitational force model.
//
// [Gravity] implements [dynamo.ForceModel]: every body attracts every other
// body with F = G·mA·mB/r², summed pairwise in body order (O(n²), meant for
// tens of bodies). Pairs closer than [DistanceFloor] contribute neither
// force nor potential. That floor is a deliberate approximation that avoids
// the singularity at r → 0; it is not a physically derived softening and
// does not scale with mass or system size.
package physics
