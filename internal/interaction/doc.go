// Package interaction layers pointer input on top of a running force simulation.
//
// A [Controller] turns drag, hover and click gestures into simulation events queued on a
// [force.Scheduler], so node records are only ever touched between steps. It also tracks which node is
// hovered so the render adapter can dim everything outside its neighbourhood.
//
// A [Viewport] holds the pan/zoom transform between world coordinates, where the simulation lives, and
// screen coordinates, where the pointer lives.
package interaction
