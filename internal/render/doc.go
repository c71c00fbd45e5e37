// Package render turns a running simulation into drawable frames.
//
// [Adapter.Frame] reads node positions after each step and produces a [Frame]: node and edge views in
// screen coordinates with fill, hover dimming and focus already resolved. A [Canvas] rasterizes frames
// onto a grid of terminal cells with lipgloss colours.
//
// Artist images become solid fills: a [FillResolver] downloads an image once, averages it to a single
// colour, and caches the result. Lookups never block a frame; until an image resolves, or if it fails,
// the node keeps its kind's default fill.
package render
