// Package metrics declares the Prometheus metrics for the layout engine and catalog plumbing.
//
// Metrics are registered on the default registry with promauto. [FrameObserver] adapts them to
// [force.Scheduler.Observe]; [Handler] exposes them for scraping:
//
//	mux.Handle("/metrics", metrics.Handler())
//
// Simulation metrics:
//   - playgraph_frames_total: frames run, by layout
//   - playgraph_frame_events_total: interaction events applied, by layout
//   - playgraph_step_duration_seconds: time spent in one simulation step
//   - playgraph_simulation_alpha: current alpha, by layout
//   - playgraph_simulation_nodes: node count, by layout
//   - playgraph_simulation_moving: 1 while forces are running, by layout
//
// Catalog metrics:
//   - playgraph_catalog_fetches_total: catalog loads, by source and status
//   - playgraph_image_fills_total: image fill resolutions, by status
package metrics
