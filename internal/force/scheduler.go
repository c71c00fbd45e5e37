package force

import (
	"context"
	"sync"
	"time"
)

// Event mutates simulation state between steps, e.g. a drag moving a pin.
type Event func(*Simulation)

// RenderFunc draws the simulation after a step.
type RenderFunc func(*Simulation)

// FrameStats describes one completed frame.
type FrameStats struct {
	Alpha    float64
	Nodes    int
	Events   int
	Moved    bool
	StepTime time.Duration
}

// Scheduler runs frames against the current simulation: drain queued events, step, render.
//
// The simulation and render callback are swapped together through [Scheduler.Reconfigure], so a frame
// never pairs a new simulation with a stale callback. After [Scheduler.Stop] returns no render callback
// runs again. Stop must not be called from inside the render callback.
type Scheduler struct {
	frameMu sync.Mutex
	sim     *Simulation
	render  RenderFunc
	stopped bool

	queueMu sync.Mutex
	queue   []Event

	observe func(FrameStats)
	frames  int
	done    chan struct{}
	once    sync.Once
}

// NewScheduler creates a scheduler for sim. render may be nil.
func NewScheduler(sim *Simulation, render RenderFunc) *Scheduler {
	return &Scheduler{sim: sim, render: render, done: make(chan struct{})}
}

// Observe registers fn to receive stats after every frame.
func (s *Scheduler) Observe(fn func(FrameStats)) {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	s.observe = fn
}

// Enqueue queues ev for the next frame. It reports false once the scheduler is stopped.
func (s *Scheduler) Enqueue(ev Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	s.queue = append(s.queue, ev)
	return true
}

// Frame runs one frame. It reports false when the scheduler is stopped.
func (s *Scheduler) Frame() bool {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	if s.stopped || s.sim == nil {
		return false
	}

	s.queueMu.Lock()
	events := s.queue
	s.queue = nil
	s.queueMu.Unlock()

	for _, ev := range events {
		ev(s.sim)
	}

	start := time.Now()
	moved := s.sim.Step()
	elapsed := time.Since(start)

	if s.render != nil {
		s.render(s.sim)
	}
	s.frames++
	if s.observe != nil {
		s.observe(FrameStats{
			Alpha:    s.sim.Alpha(),
			Nodes:    len(s.sim.Nodes()),
			Events:   len(events),
			Moved:    moved,
			StepTime: elapsed,
		})
	}
	return true
}

// Run calls Frame every interval until ctx is done or the scheduler is stopped.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case <-ticker.C:
			if !s.Frame() {
				return nil
			}
		}
	}
}

// Reconfigure stops the current simulation and continues with sim and render. Pending events are
// dropped since they target the old node set.
func (s *Scheduler) Reconfigure(sim *Simulation, render RenderFunc) {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	if s.sim != nil && s.sim != sim {
		s.sim.Stop()
	}
	s.sim = sim
	s.render = render

	s.queueMu.Lock()
	s.queue = nil
	s.queueMu.Unlock()
}

// Simulation returns the current simulation.
func (s *Scheduler) Simulation() *Simulation {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	return s.sim
}

// Frames returns the number of completed frames.
func (s *Scheduler) Frames() int {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	return s.frames
}

// Stop tears down the scheduler and its simulation, waiting for an in-flight frame to finish.
// Calling Stop again is a no-op.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.done) })

	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if s.sim != nil {
		s.sim.Stop()
	}
	s.render = nil

	s.queueMu.Lock()
	s.queue = nil
	s.queueMu.Unlock()
}

// Done is closed once Stop has been called.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}
