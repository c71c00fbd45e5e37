// Package force lays out graph snapshots with a velocity Verlet force simulation.
//
// A [Simulation] owns the position and velocity of its nodes. Each [Simulation.Step] cools alpha toward
// alpha target, lets every registered [Force] adjust velocities, then integrates positions. Pinned nodes
// are snapped to their pin after every step but still push and pull on everything else.
//
// Forces:
//   - [Center] translates the layout so its mean sits on a point
//   - [Position] pulls each node toward a target x or y
//   - [ManyBody] applies pairwise inverse-square charge (negative repels)
//   - [Collide] keeps circles from overlapping
//   - [Link] springs connected nodes toward a rest distance
//
// [Relationship] and [Bubbles] assemble the two stock layouts.
//
// A [Scheduler] drives a simulation frame by frame: queued interaction events first, then one step, then
// the render callback.
package force
