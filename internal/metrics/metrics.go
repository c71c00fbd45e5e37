package metrics

import (
	"net/http"

	"github.com/desertthunder/playgraph/internal/force"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Simulation metrics
var (
	FramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playgraph_frames_total",
			Help: "Total number of simulation frames run",
		},
		[]string{"layout"},
	)

	FrameEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playgraph_frame_events_total",
			Help: "Total number of interaction events applied between steps",
		},
		[]string{"layout"},
	)

	StepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "playgraph_step_duration_seconds",
			Help:    "Time spent in one simulation step",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.016, 0.05},
		},
	)

	SimulationAlpha = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "playgraph_simulation_alpha",
			Help: "Current simulation alpha",
		},
		[]string{"layout"},
	)

	SimulationNodes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "playgraph_simulation_nodes",
			Help: "Number of nodes in the running simulation",
		},
		[]string{"layout"},
	)

	SimulationMoving = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "playgraph_simulation_moving",
			Help: "Whether the last frame ran forces (1) or the layout was settled (0)",
		},
		[]string{"layout"},
	)
)

// Catalog metrics
var (
	CatalogFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playgraph_catalog_fetches_total",
			Help: "Total number of catalog loads",
		},
		[]string{"source", "status"},
	)

	ImageFillsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playgraph_image_fills_total",
			Help: "Total number of artist image fill resolutions",
		},
		[]string{"status"},
	)
)

// FrameObserver returns a scheduler observer recording frames under the given layout label.
func FrameObserver(layout string) func(force.FrameStats) {
	frames := FramesTotal.WithLabelValues(layout)
	events := FrameEventsTotal.WithLabelValues(layout)
	alpha := SimulationAlpha.WithLabelValues(layout)
	nodes := SimulationNodes.WithLabelValues(layout)
	moving := SimulationMoving.WithLabelValues(layout)

	return func(s force.FrameStats) {
		frames.Inc()
		events.Add(float64(s.Events))
		alpha.Set(s.Alpha)
		nodes.Set(float64(s.Nodes))
		if s.Moved {
			moving.Set(1)
			StepDuration.Observe(s.StepTime.Seconds())
		} else {
			moving.Set(0)
		}
	}
}

// RecordCatalogFetch counts a catalog load from source.
func RecordCatalogFetch(source string, err error) {
	CatalogFetchesTotal.WithLabelValues(source, status(err)).Inc()
}

// RecordImageFill counts an image fill resolution.
func RecordImageFill(err error) {
	ImageFillsTotal.WithLabelValues(status(err)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
