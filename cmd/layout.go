package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/playgraph/internal/force"
	"github.com/desertthunder/playgraph/internal/formatter"
	"github.com/desertthunder/playgraph/internal/graph"
	"github.com/desertthunder/playgraph/internal/metrics"
	"github.com/desertthunder/playgraph/internal/models"
	"github.com/desertthunder/playgraph/internal/render"
	"github.com/desertthunder/playgraph/internal/shared"
	"github.com/urfave/cli/v3"
)

// LayoutResult is the JSON document printed by `playgraph layout`.
type LayoutResult struct {
	Playlist string       `json:"playlist"`
	Mode     string       `json:"mode"`
	Explored []string     `json:"explored,omitempty"`
	Ticks    int          `json:"ticks"`
	Frames   int          `json:"frames"`
	Settled  bool         `json:"settled"`
	Elapsed  string       `json:"elapsed"`
	Frame    render.Frame `json:"frame"`
}

// Layout settles a graph or bubble layout without a terminal and prints the last frame.
func (r *Runner) Layout(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	if format != formatter.FormatJSON && format != formatter.FormatCSV {
		return fmt.Errorf("%w: format must be json or csv, got %q", shared.ErrInvalidFlag, format)
	}
	width, height := cmd.Float("width"), cmd.Float("height")
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width and height must be positive", shared.ErrInvalidFlag)
	}

	c, _, err := r.loadCatalog(ctx, cmd)
	if err != nil {
		return err
	}

	geo := graph.GeometryFromConfig(r.config.Graph)
	builder := graph.NewBuilder(geo, r.logger)
	in := graph.BuildInput{Tracks: c.Tracks, Artists: c.Artists, Width: width, Height: height}

	var snap *graph.Snapshot
	switch cmd.String("mode") {
	case "graph":
		in.Explored = knownArtists(c, cmd.StringSlice("artist"), r.logger)
		if len(in.Explored) == 0 {
			in.Explored = defaultExplored(c)
		}
		if len(in.Explored) > 0 {
			in.Focused = in.Explored[len(in.Explored)-1]
		}
		snap = builder.Build(in)
	case "bubbles":
		snap = builder.BuildBubbles(in)
	default:
		return fmt.Errorf("%w: mode must be graph or bubbles, got %q", shared.ErrInvalidFlag, cmd.String("mode"))
	}
	if snap.Empty() {
		return fmt.Errorf("%w: nothing to lay out for %s", shared.ErrEmptyCatalog, c.Playlist.Name)
	}

	var filler render.Filler
	if cmd.Bool("images") {
		fills := render.NewFillResolver(render.WithHTTPClient(r.httpClient), render.WithFillLogger(r.logger))
		for _, url := range fills.Missing(snap.Nodes) {
			_, err := fills.Resolve(ctx, url)
			metrics.RecordImageFill(err)
		}
		filler = fills
	}

	sim := force.ForSnapshot(snap, geo.Narrow(width), force.ConfigOptions(r.config.Simulation)...)
	adapter := render.NewAdapter(nil, filler, nil)

	var last render.Frame
	sched := force.NewScheduler(sim, func(s *force.Simulation) { last = adapter.Frame(s) })
	defer sched.Stop()

	maxTicks := cmd.Int("ticks")
	if maxTicks <= 0 {
		maxTicks = r.config.Simulation.MaxTicks
	}

	observe := metrics.FrameObserver("headless")
	start := time.Now()
	if d := cmd.Duration("realtime"); d > 0 {
		runCtx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		sched.Observe(func(st force.FrameStats) {
			observe(st)
			if sim.Settled() || sim.Ticks() >= maxTicks {
				cancel()
			}
		})
		if err := sched.Run(runCtx, r.config.Simulation.FrameInterval.Duration); err != nil &&
			!errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	} else {
		sched.Observe(observe)
		for !sim.Settled() && sim.Ticks() < maxTicks {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !sched.Frame() {
				break
			}
		}
		// One frame even when the snapshot starts settled so there is something to print.
		if sched.Frames() == 0 {
			sched.Frame()
		}
	}

	r.logger.Debug("layout finished", "ticks", sim.Ticks(), "frames", sched.Frames(), "settled", sim.Settled())

	if format == formatter.FormatCSV {
		data, err := formatter.LayoutToCSV(last)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	return r.writeJSON(LayoutResult{
		Playlist: c.Playlist.ID,
		Mode:     cmd.String("mode"),
		Explored: in.Explored,
		Ticks:    sim.Ticks(),
		Frames:   sched.Frames(),
		Settled:  sim.Settled(),
		Elapsed:  time.Since(start).Round(time.Millisecond).String(),
		Frame:    last,
	}, cmd.Bool("pretty"))
}

// defaultExplored picks the artist with the most tracks.
func defaultExplored(c *models.Catalog) []string {
	rows := formatter.ArtistRows(c)
	if len(rows) == 0 {
		return nil
	}
	return []string{rows[0].ID}
}
