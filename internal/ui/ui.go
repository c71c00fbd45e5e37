package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/playgraph/internal/force"
	"github.com/desertthunder/playgraph/internal/graph"
	"github.com/desertthunder/playgraph/internal/interaction"
	"github.com/desertthunder/playgraph/internal/metrics"
	"github.com/desertthunder/playgraph/internal/models"
	"github.com/desertthunder/playgraph/internal/render"
	"github.com/desertthunder/playgraph/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	BubbleView ViewState = iota
	GraphView
)

const (
	sidebarWidth    = 32
	minSidebarWidth = 80
	chromeRows      = 2
	zoomStep        = 1.2
	panCells        = 4
	resizeDebounce  = 100 * time.Millisecond
)

// Options configures a [Model].
type Options struct {
	Geometry   graph.Geometry
	Simulation shared.SimulationConfig
	CellWidth  float64
	CellHeight float64
	// Fills resolves artist images. Nil keeps every node on its default fill.
	Fills *render.FillResolver
	// Explored opens the relationship graph on these artists instead of the overview.
	Explored []string
	Observe  func(force.FrameStats)
	Logger   *log.Logger
}

// pointer tracks a mouse gesture from press to release.
type pointer struct {
	down     bool
	node     string
	moved    bool
	col, row int
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	logger    *log.Logger
	catalog   *models.Catalog
	builder   *graph.Builder
	selection *graph.Selection
	simCfg    shared.SimulationConfig
	observe   func(force.FrameStats)

	view   ViewState
	width  int
	height int
	// pending is the newest window size not yet applied; resizeSeq tags its debounce tick.
	pending   tea.WindowSizeMsg
	resizeSeq int
	cellW  float64
	cellH  float64

	canvas  *render.Canvas
	fills   *render.FillResolver
	sched   *force.Scheduler
	ctrl    *interaction.Controller
	adapter *render.Adapter
	snap    *graph.Snapshot
	prev    map[ViewState]*graph.Snapshot
	frame   render.Frame

	sidebar        list.Model
	sidebarFocused bool
	help           help.Model
	keys           keyMap

	ptr      pointer
	selected string
	err      error
}

// NewModel creates a new TUI model over catalog.
func NewModel(ctx context.Context, catalog *models.Catalog, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.CellWidth <= 0 {
		opts.CellWidth = 10
	}
	if opts.CellHeight <= 0 {
		opts.CellHeight = 20
	}
	if opts.Simulation.FrameInterval.Duration <= 0 {
		opts.Simulation.FrameInterval.Duration = 16 * time.Millisecond
	}

	m := &Model{
		ctx:       ctx,
		logger:    logger,
		catalog:   catalog,
		builder:   graph.NewBuilder(opts.Geometry, logger),
		selection: graph.NewSelection(opts.Explored...),
		simCfg:    opts.Simulation,
		observe:   opts.Observe,
		cellW:     opts.CellWidth,
		cellH:     opts.CellHeight,
		canvas:    render.NewCanvas(0, 0, opts.CellWidth, opts.CellHeight),
		fills:     opts.Fills,
		prev:      make(map[ViewState]*graph.Snapshot),
		help:      help.New(),
		keys:      newKeyMap(),
	}
	if m.selection.Len() > 0 {
		m.view = GraphView
	}

	m.sidebar = list.New(artistItems(catalog), list.NewDefaultDelegate(), 0, 0)
	m.sidebar.Title = "Artists"
	m.sidebar.SetShowHelp(false)
	return m
}

// Init starts the frame loop. The first layout is built on the first window size message.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if m.width == 0 {
			m.width, m.height = msg.Width, msg.Height
			return m, m.resize()
		}
		m.pending = msg
		m.resizeSeq++
		seq := m.resizeSeq
		return m, tea.Tick(resizeDebounce, func(time.Time) tea.Msg { return resizeMsg(seq) })

	case resizeMsg:
		if int(msg) != m.resizeSeq {
			return m, nil
		}
		if m.pending.Width == m.width && m.pending.Height == m.height {
			return m, nil
		}
		m.width, m.height = m.pending.Width, m.pending.Height
		return m, m.resize()

	case frameMsg:
		if m.sched == nil {
			return m, m.tick()
		}
		if !m.sched.Frame() {
			return m, nil
		}
		return m, m.tick()

	case fillResolvedMsg:
		metrics.RecordImageFill(msg.err)
		if msg.err != nil {
			m.logger.Debug("using default fill", "url", msg.url, "error", msg.err)
		}
		return m, nil

	case CatalogMsg:
		if msg.Err != nil {
			m.logger.Warn("catalog reload failed", "error", msg.Err)
			return m, nil
		}
		m.catalog = msg.Catalog
		m.sidebar.SetItems(artistItems(msg.Catalog))
		return m, m.rebuild()

	case tea.MouseMsg:
		cmd := m.handleMouse(msg)
		return m, tea.Batch(cmd, m.applySelection())

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	body := m.canvas.String()
	if m.sidebarVisible() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, styles.sidebar.Render(m.sidebar.View()))
	}
	return fmt.Sprintf("%s\n%s\n%s", header, body, m.renderHelp())
}

// Close stops the simulation. It is safe to call more than once.
func (m *Model) Close() {
	if m.sched != nil {
		m.sched.Stop()
	}
}

// ViewState returns the active view.
func (m *Model) ViewState() ViewState {
	return m.view
}

// Selection returns the exploration state.
func (m *Model) Selection() *graph.Selection {
	return m.selection
}

// Snapshot returns the snapshot on screen.
func (m *Model) Snapshot() *graph.Snapshot {
	return m.snap
}

// Frame returns the last rendered frame.
func (m *Model) Frame() render.Frame {
	return m.frame
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.simCfg.FrameInterval.Duration, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *Model) sidebarVisible() bool {
	return m.view == GraphView && m.width >= minSidebarWidth
}

// resize fits the canvas and sidebar to the window and rebuilds the layout at the new size.
func (m *Model) resize() tea.Cmd {
	cols := m.width
	if m.sidebarVisible() {
		cols -= sidebarWidth
		m.sidebar.SetSize(sidebarWidth-2, max(m.height-chromeRows, 0))
	}
	m.canvas.Resize(max(cols, 0), max(m.height-chromeRows, 0))
	return m.rebuild()
}

// rebuild replaces the snapshot and simulation from the current catalog, selection and size. Nodes
// present in the previous snapshot of the same view keep their positions.
func (m *Model) rebuild() tea.Cmd {
	if m.catalog == nil {
		return nil
	}
	w, h := m.canvas.ScreenSize()
	in := graph.BuildInput{
		Tracks:   m.catalog.Tracks,
		Artists:  m.catalog.Artists,
		Explored: m.selection.Explored(),
		Focused:  m.selection.Focused(),
		Width:    w,
		Height:   h,
		Previous: m.prev[m.view],
	}

	var snap *graph.Snapshot
	if m.view == BubbleView {
		snap = m.builder.BuildBubbles(in)
	} else {
		snap = m.builder.Build(in)
	}
	m.snap = snap
	m.prev[m.view] = snap

	sim := force.ForSnapshot(snap, m.builder.Geometry().Narrow(w), force.ConfigOptions(m.simCfg)...)
	if m.sched == nil {
		m.sched = force.NewScheduler(sim, m.draw)
		if m.observe != nil {
			m.sched.Observe(m.observe)
		}
	} else {
		m.sched.Reconfigure(sim, m.draw)
	}

	if m.ctrl == nil {
		opts := []interaction.Option{
			interaction.WithArtistSelected(m.selectArtist),
			interaction.WithHitSlop(m.cellW / 2),
			interaction.WithLogger(m.logger),
		}
		if m.simCfg.DragAlphaTarget > 0 {
			opts = append(opts, interaction.WithDragAlphaTarget(m.simCfg.DragAlphaTarget))
		}
		m.ctrl = interaction.NewController(snap, m.sched, opts...)
	} else {
		m.ctrl.Reconfigure(snap)
	}
	m.applyScaleExtent()

	var fills render.Filler
	if m.fills != nil {
		fills = m.fills
	}
	m.adapter = render.NewAdapter(m.ctrl, fills, m.ctrl.Viewport())

	m.logger.Debug("layout rebuilt", "view", m.view, "nodes", len(snap.Nodes), "edges", len(snap.Edges))
	return m.resolveFills()
}

// draw is the scheduler's render callback.
func (m *Model) draw(sim *force.Simulation) {
	m.frame = m.adapter.Frame(sim)
	m.canvas.Draw(m.frame)
}

func (m *Model) applyScaleExtent() {
	v := m.ctrl.Viewport()
	if m.view == BubbleView {
		v.MinScale, v.MaxScale = interaction.BubbleMinScale, interaction.BubbleMaxScale
	} else {
		v.MinScale, v.MaxScale = interaction.GraphMinScale, interaction.GraphMaxScale
	}
	v.Scale = max(v.MinScale, min(v.Scale, v.MaxScale))
}

func (m *Model) resolveFills() tea.Cmd {
	if m.fills == nil || m.snap == nil {
		return nil
	}
	var cmds []tea.Cmd
	for _, url := range m.fills.Missing(m.snap.Nodes) {
		cmds = append(cmds, func() tea.Msg {
			_, err := m.fills.Resolve(m.ctx, url)
			return fillResolvedMsg{url: url, err: err}
		})
	}
	return tea.Batch(cmds...)
}

// selectArtist is the controller's click callback. The selection is applied after the gesture finishes.
func (m *Model) selectArtist(id string) {
	m.selected = id
}

// applySelection acts on a pending artist click: a bubble starts a new exploration in the graph view, a
// graph artist expands the current one.
func (m *Model) applySelection() tea.Cmd {
	id := m.selected
	if id == "" {
		return nil
	}
	m.selected = ""

	if m.view == BubbleView {
		return m.explore(id)
	}
	if !m.selection.Expand(id) {
		m.logger.Debug("artist already explored", "artist", id)
	}
	return m.rebuild()
}

// explore resets the selection to id and shows the relationship graph.
func (m *Model) explore(id string) tea.Cmd {
	m.selection.Reset(id)
	m.sidebarFocused = false
	if m.view != GraphView {
		m.view = GraphView
		m.ctrl.Viewport().Reset()
		return m.resize()
	}
	return m.rebuild()
}

func (m *Model) overview() tea.Cmd {
	if m.view == BubbleView {
		return nil
	}
	m.view = BubbleView
	m.sidebarFocused = false
	m.ctrl.HoverLeave()
	m.ctrl.Viewport().Reset()
	return m.resize()
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) && !(m.sidebarFocused && m.sidebar.FilterState() == list.Filtering) {
		m.Close()
		return m, tea.Quit
	}

	if m.sidebarFocused {
		return m.handleSidebarKeys(msg)
	}
	if m.ctrl == nil {
		return m, nil
	}

	view := m.ctrl.Viewport()
	w, h := m.canvas.ScreenSize()
	dx, dy := m.cellW*panCells, m.cellH*panCells/2

	switch {
	case key.Matches(msg, m.keys.up):
		view.Pan(0, dy)
	case key.Matches(msg, m.keys.down):
		view.Pan(0, -dy)
	case key.Matches(msg, m.keys.left):
		view.Pan(dx, 0)
	case key.Matches(msg, m.keys.right):
		view.Pan(-dx, 0)
	case key.Matches(msg, m.keys.zoomIn):
		view.ZoomAt(zoomStep, w/2, h/2)
	case key.Matches(msg, m.keys.zoomOut):
		view.ZoomAt(1/zoomStep, w/2, h/2)
	case key.Matches(msg, m.keys.reset):
		view.Reset()
	case key.Matches(msg, m.keys.reheat):
		m.sched.Enqueue(func(sim *force.Simulation) { sim.SetAlpha(1) })
	case key.Matches(msg, m.keys.back):
		return m, m.overview()
	case key.Matches(msg, m.keys.sidebar):
		if m.sidebarVisible() {
			m.sidebarFocused = true
		}
	}
	return m, nil
}

func (m *Model) handleSidebarKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.sidebar.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.sidebar), msg.String() == "esc":
			m.sidebarFocused = false
			return m, nil
		case key.Matches(msg, m.keys.enter):
			if item, ok := m.sidebar.SelectedItem().(artistItem); ok {
				return m, m.explore(item.artist.ID)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.sidebar, cmd = m.sidebar.Update(msg)
	return m, cmd
}

// handleMouse maps terminal mouse events onto the controller: press on a node starts a drag, press on empty
// space pans, a release without movement is a click, the wheel zooms at the pointer, and bare motion hovers.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	col, row := msg.X, msg.Y-1
	cols, rows := m.canvas.Size()
	onCanvas := col >= 0 && col < cols && row >= 0 && row < rows
	sx, sy := m.canvas.CellToScreen(col, row)
	view := m.ctrl.Viewport()

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		if onCanvas {
			view.ZoomAt(zoomStep, sx, sy)
		}

	case msg.Button == tea.MouseButtonWheelDown:
		if onCanvas {
			view.ZoomAt(1/zoomStep, sx, sy)
		}

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if !onCanvas {
			return m.forwardToSidebar(msg)
		}
		m.sidebarFocused = false
		m.ptr = pointer{down: true, col: col, row: row}
		if n := m.ctrl.HitTest(sx, sy); n != nil {
			if err := m.ctrl.DragStart(n.ID); err != nil {
				m.logger.Warn("drag start failed", "error", err)
				return nil
			}
			m.ptr.node = n.ID
		}

	case msg.Action == tea.MouseActionMotion && m.ptr.down:
		if col == m.ptr.col && row == m.ptr.row {
			return nil
		}
		m.ptr.moved = true
		if m.ptr.node != "" {
			wx, wy := view.ToWorld(sx, sy)
			m.ctrl.DragMove(wx, wy)
		} else {
			px, py := m.canvas.CellToScreen(m.ptr.col, m.ptr.row)
			view.Pan(sx-px, sy-py)
		}
		m.ptr.col, m.ptr.row = col, row

	case msg.Action == tea.MouseActionMotion:
		if n := m.ctrl.HitTest(sx, sy); onCanvas && n != nil {
			m.ctrl.HoverEnter(n.ID)
		} else {
			m.ctrl.HoverLeave()
		}

	case msg.Action == tea.MouseActionRelease:
		ptr := m.ptr
		m.ptr = pointer{}
		if ptr.node == "" {
			return nil
		}
		m.ctrl.DragEnd()
		if !ptr.moved {
			m.ctrl.Click(ptr.node)
		}
	}
	return nil
}

func (m *Model) forwardToSidebar(msg tea.MouseMsg) tea.Cmd {
	if !m.sidebarVisible() {
		return nil
	}
	m.sidebarFocused = true
	var cmd tea.Cmd
	m.sidebar, cmd = m.sidebar.Update(msg)
	return cmd
}

func (m *Model) renderHeader() string {
	var title, subtitle string
	switch {
	case m.view == BubbleView:
		title, subtitle = "Artist Overview", "PICK AN ARTIST"
	case m.selection.Focused() != "":
		title, subtitle = m.artistName(m.selection.Focused()), "FOCUSED UNIVERSE"
	default:
		title, subtitle = "Relationship Graph", "ECOSYSTEM OVERVIEW"
	}
	if m.catalog != nil && m.catalog.Playlist.Name != "" {
		title = fmt.Sprintf("%s · %s", m.catalog.Playlist.Name, title)
	}

	header := fmt.Sprintf("%s  %s", styles.title.Render(title), styles.subtitle.Render(subtitle))
	if id := m.ctrlHovered(); id != "" {
		if n := m.snap.Node(id); n != nil {
			header += "  " + styles.help.Render(fmt.Sprintf("%s (%s)", n.Label, n.Kind))
		}
	}
	if m.snap.Empty() {
		header += "  " + styles.warn.Render("nothing to show")
	}
	return header
}

func (m *Model) renderHelp() string {
	bindings := []key.Binding{m.keys.zoomIn, m.keys.zoomOut, m.keys.reset, m.keys.reheat}
	if m.view == GraphView {
		bindings = append(bindings, m.keys.sidebar, m.keys.back)
	}
	if m.sidebarFocused {
		bindings = []key.Binding{m.keys.enter, m.keys.sidebar}
	}
	return m.help.ShortHelpView(append(bindings, m.keys.quit))
}

func (m *Model) ctrlHovered() string {
	if m.ctrl == nil {
		return ""
	}
	return m.ctrl.Hovered()
}

func (m *Model) artistName(id string) string {
	if m.catalog != nil {
		if a, ok := m.catalog.ArtistByID()[id]; ok {
			return a.Name
		}
	}
	return id
}
