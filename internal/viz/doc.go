// Package viz draws orbits in the terminal.
//
// Bodies are projected through a rotatable [Camera] onto a braille [Canvas],
// two by four dots per cell, with recent positions drawn as trails. The live
// view is a Bubble Tea [Model] that reads [dynamo.Snapshot] values from a
// channel fed by [dynamo.Simulation.Stream]; it never steps the simulation
// itself.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	+ -   - Zoom
//	x X   - Tilt
//	z Z   - Spin
//	p     - Perspective
//	c     - Follow next body
//	f     - Fit all bodies
//	0     - Reset view
//	t     - Cycle color themes
//	?     - Show help overlay
package viz
