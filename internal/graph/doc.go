// Package graph builds the node/edge snapshots the force simulation lays out.
//
// Two builders share one snapshot type:
//   - [Builder.Build] produces the relationship graph: track nodes linked to the artist nodes that perform on
//     them, restricted to tracks with at least one performer in the exploration set.
//   - [Builder.BuildBubbles] produces the artist overview: one bubble per enriched artist, sized by how many
//     playlist tracks feature it, with no edges.
//
// Nodes are plain records owned by the snapshot. When a snapshot supersedes an earlier one, nodes whose id
// appears in both keep their position and velocity; new nodes start at the viewport center.
//
// [Selection] holds the exploration set and the focused artist the relationship graph is built from.
package graph
