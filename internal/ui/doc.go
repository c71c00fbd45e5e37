// Package ui implements the interactive playlist graph using bubbletea's Elm architecture.
//
// Two views share one canvas:
//  1. [BubbleView] : every enriched artist as a bubble sized by its track count
//  2. [GraphView] : tracks linked to the artists being explored, with an artist sidebar
//
// Clicking a bubble or choosing an artist in the sidebar starts a new exploration; clicking an artist in the
// graph adds it to the current one. Each change rebuilds the snapshot and hands a new simulation to the
// scheduler, carrying node positions over.
//
// Frames are driven by [tea.Tick] messages, so Update is the only goroutine that touches node records.
// Image fills resolve in commands and never block a frame.
//
// Mouse: drag nodes, drag empty space to pan, wheel to zoom, hover to highlight a neighbourhood.
// Keys: arrows/hjkl pan, +/- zoom, 0 resets the view, r reheats, tab focuses the sidebar, b returns to the
// overview, q quits.
package ui
