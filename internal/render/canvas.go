package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/playgraph/internal/graph"
)

const (
	EdgeColor    = DefaultArtistFill
	OutlineColor = "#E0E0E0"
	FocusColor   = "#FFFFFF"
	LabelColor   = "#FFFFFF"

	// DimmedOpacity is how much of a dimmed node's colour survives.
	DimmedOpacity = 0.2

	edgeRune  = '·'
	discRune  = '█'
	trackRune = '♪'
	dotRune   = '●'
)

type cell struct {
	r     rune
	fg    string
	bold  bool
	faint bool
}

type cellStyle struct {
	fg    string
	bold  bool
	faint bool
}

// Canvas rasterizes frames onto a grid of terminal cells. Each cell covers cellW x cellH screen units.
type Canvas struct {
	cols, rows   int
	cellW, cellH float64
	cells        []cell
	styles       map[cellStyle]lipgloss.Style
}

// NewCanvas creates a cols x rows canvas.
func NewCanvas(cols, rows int, cellW, cellH float64) *Canvas {
	if cellW <= 0 {
		cellW = 1
	}
	if cellH <= 0 {
		cellH = 1
	}
	c := &Canvas{cellW: cellW, cellH: cellH, styles: make(map[cellStyle]lipgloss.Style)}
	c.Resize(cols, rows)
	return c
}

// Resize changes the grid size and clears it.
func (c *Canvas) Resize(cols, rows int) {
	c.cols, c.rows = max(cols, 0), max(rows, 0)
	c.cells = make([]cell, c.cols*c.rows)
	c.clear()
}

// Size returns the grid size in cells.
func (c *Canvas) Size() (int, int) {
	return c.cols, c.rows
}

// ScreenSize returns the grid size in screen units.
func (c *Canvas) ScreenSize() (float64, float64) {
	return float64(c.cols) * c.cellW, float64(c.rows) * c.cellH
}

// CellToScreen returns the screen point at the center of a cell.
func (c *Canvas) CellToScreen(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * c.cellW, (float64(row) + 0.5) * c.cellH
}

// ScreenToCell returns the cell containing a screen point. The result may lie outside the grid.
func (c *Canvas) ScreenToCell(x, y float64) (int, int) {
	return int(math.Floor(x / c.cellW)), int(math.Floor(y / c.cellH))
}

// At returns the rune drawn at a cell, or a space outside the grid.
func (c *Canvas) At(col, row int) rune {
	if !c.inside(col, row) {
		return ' '
	}
	return c.cells[row*c.cols+col].r
}

// Draw replaces the canvas contents with f: edges first, then nodes with dimmed ones underneath, then labels.
func (c *Canvas) Draw(f Frame) {
	c.clear()

	for _, e := range f.Edges {
		c.line(e, Shade(EdgeColor, e.Opacity))
	}

	for _, layer := range []func(NodeView) bool{
		func(n NodeView) bool { return n.Dimmed },
		func(n NodeView) bool { return !n.Dimmed && !n.Highlighted },
		func(n NodeView) bool { return n.Highlighted },
	} {
		for _, n := range f.Nodes {
			if layer(n) {
				c.node(n)
			}
		}
	}

	for _, n := range f.Nodes {
		c.label(n)
	}
}

// String renders the grid with lipgloss colours, one line per row.
func (c *Canvas) String() string {
	var b strings.Builder
	for row := range c.rows {
		if row > 0 {
			b.WriteByte('\n')
		}
		line := c.cells[row*c.cols : (row+1)*c.cols]
		for start := 0; start < len(line); {
			end := start + 1
			for end < len(line) && sameStyle(line[start], line[end]) {
				end++
			}
			run := make([]rune, 0, end-start)
			for _, cl := range line[start:end] {
				run = append(run, cl.r)
			}
			if line[start].fg == "" {
				b.WriteString(string(run))
			} else {
				b.WriteString(c.style(line[start]).Render(string(run)))
			}
			start = end
		}
	}
	return b.String()
}

func (c *Canvas) clear() {
	for i := range c.cells {
		c.cells[i] = cell{r: ' '}
	}
}

func (c *Canvas) inside(col, row int) bool {
	return col >= 0 && col < c.cols && row >= 0 && row < c.rows
}

func (c *Canvas) set(col, row int, cl cell) {
	if c.inside(col, row) {
		c.cells[row*c.cols+col] = cl
	}
}

func (c *Canvas) style(cl cell) lipgloss.Style {
	key := cellStyle{fg: cl.fg, bold: cl.bold, faint: cl.faint}
	if s, ok := c.styles[key]; ok {
		return s
	}
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(cl.fg)).Bold(cl.bold).Faint(cl.faint)
	c.styles[key] = s
	return s
}

func sameStyle(a, b cell) bool {
	return a.fg == b.fg && a.bold == b.bold && a.faint == b.faint
}

// line draws an edge with Bresenham's algorithm, clipped to the grid.
func (c *Canvas) line(e EdgeView, fg string) {
	w, h := c.ScreenSize()
	x1, y1, x2, y2, ok := clip(e.X1, e.Y1, e.X2, e.Y2, w, h)
	if !ok {
		return
	}
	c0, r0 := c.ScreenToCell(x1, y1)
	c1, r1 := c.ScreenToCell(x2, y2)

	dx, dy := abs(c1-c0), -abs(r1-r0)
	sx, sy := 1, 1
	if c0 > c1 {
		sx = -1
	}
	if r0 > r1 {
		sy = -1
	}
	for err := dx + dy; ; {
		c.set(c0, r0, cell{r: edgeRune, fg: fg})
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			c0 += sx
		}
		if e2 <= dx {
			err += dx
			r0 += sy
		}
	}
}

// clip trims a segment to the rectangle [0, w] x [0, h] (Liang-Barsky). ok is false when nothing is visible.
func clip(x1, y1, x2, y2, w, h float64) (float64, float64, float64, float64, bool) {
	for _, v := range []float64{x1, y1, x2, y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, 0, 0, false
		}
	}
	t0, t1 := 0.0, 1.0
	dx, dy := x2-x1, y2-y1
	for _, edge := range [4][2]float64{{-dx, x1}, {dx, w - x1}, {-dy, y1}, {dy, h - y1}} {
		p, q := edge[0], edge[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = math.Max(t0, t)
		} else {
			t1 = math.Min(t1, t)
		}
		if t0 > t1 {
			return 0, 0, 0, 0, false
		}
	}
	return x1 + t0*dx, y1 + t0*dy, x1 + t1*dx, y1 + t1*dy, true
}

// visible reports whether a point lies within margin screen units of the grid. Anything farther out is skipped
// before cell arithmetic so huge coordinates never reach an int conversion.
func (c *Canvas) visible(x, y, margin float64) bool {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsNaN(margin) || math.IsInf(margin, 0) {
		return false
	}
	w, h := c.ScreenSize()
	return x >= -margin && x <= w+margin && y >= -margin && y <= h+margin
}

func (c *Canvas) node(n NodeView) {
	if !c.visible(n.X, n.Y, n.Radius) {
		return
	}
	fill := n.Fill
	outline := OutlineColor
	if n.Kind == graph.KindTrack {
		outline = Shade(OutlineColor, 0.2)
	}
	if n.Focused {
		outline = DefaultArtistFill
	}
	if n.Highlighted {
		outline = FocusColor
	}
	if n.Dimmed {
		fill, outline = Shade(fill, DimmedOpacity), Shade(outline, DimmedOpacity)
	}

	col, row := c.ScreenToCell(n.X, n.Y)
	rx, ry := n.Radius/c.cellW, n.Radius/c.cellH
	if rx < 0.75 && ry < 0.75 {
		r, fg := dotRune, fill
		if n.Kind == graph.KindTrack {
			r, fg = trackRune, DefaultArtistFill
			if n.Dimmed {
				fg = Shade(fg, DimmedOpacity)
			}
		}
		c.set(col, row, cell{r: r, fg: fg, bold: n.Highlighted || n.Focused})
		return
	}

	inDisc := func(cc, rr int) bool {
		x, y := c.CellToScreen(cc, rr)
		dx, dy := x-n.X, y-n.Y
		return dx*dx+dy*dy <= n.Radius*n.Radius
	}
	top, bottom := max(row-int(math.Ceil(ry)), 0), min(row+int(math.Ceil(ry)), c.rows-1)
	left, right := max(col-int(math.Ceil(rx)), 0), min(col+int(math.Ceil(rx)), c.cols-1)
	for rr := top; rr <= bottom; rr++ {
		for cc := left; cc <= right; cc++ {
			if !inDisc(cc, rr) {
				continue
			}
			fg := fill
			if !inDisc(cc-1, rr) || !inDisc(cc+1, rr) || !inDisc(cc, rr-1) || !inDisc(cc, rr+1) {
				fg = outline
			}
			c.set(cc, rr, cell{r: discRune, fg: fg, bold: n.Highlighted})
		}
	}
	if !inDisc(col, row) {
		c.set(col, row, cell{r: dotRune, fg: fill})
	}
}

// label writes the node's label centred on the row beneath it.
func (c *Canvas) label(n NodeView) {
	text := []rune(n.Label)
	if len(text) == 0 || !c.visible(n.X, n.Y, n.Radius+float64(len(text))*c.cellW+c.cellH) {
		return
	}
	if len(text) > c.cols {
		text = text[:c.cols]
	}
	col, _ := c.ScreenToCell(n.X, n.Y)
	_, row := c.ScreenToCell(n.X, n.Y+n.Radius)
	row++

	fg := LabelColor
	if n.Dimmed {
		fg = Shade(fg, DimmedOpacity)
	}
	cl := cell{fg: fg, bold: n.Kind != graph.KindTrack, faint: n.LabelOpacity < 1}
	start := col - len(text)/2
	for i, r := range text {
		cl.r = r
		c.set(start+i, row, cl)
	}
}

// Shade scales a #rrggbb colour toward black by alpha. Unparseable colours are returned as is.
func Shade(hex string, alpha float64) string {
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return hex
	}
	alpha = math.Max(0, math.Min(1, alpha))
	scale := func(v uint8) uint8 { return uint8(math.Round(float64(v) * alpha)) }
	return fmt.Sprintf("#%02X%02X%02X", scale(r), scale(g), scale(b))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
