package layout

import (
	"maps"
	"slices"
)

// Marker is the content of a single grid cell.
type Marker uint8

const (
	// Free is an empty cell. It is never stored.
	Free Marker = iota
	// EdgePassage marks a cell some edge path runs through.
	EdgePassage
	// NodeBody marks a cell holding a placed node.
	NodeBody
)

func (m Marker) String() string {
	switch m {
	case EdgePassage:
		return "edge"
	case NodeBody:
		return "node"
	default:
		return "free"
	}
}

// Pos addresses a grid cell. Row is the rank; Col may be negative.
type Pos struct {
	Row int
	Col int
}

// Grid is a sparse map from (row, column) to [Marker].
//
// Columns are unbounded in both directions. The grid tracks the leftmost and
// rightmost columns ever passed to [Grid.Add]; both start at 0 and only move
// outward. Paths written by [Grid.Fill] do not widen the bounds.
//
// The zero value is not usable - use NewGrid.
type Grid struct {
	cells map[int]map[int]Marker
	left  int
	right int
}

// NewGrid returns an empty grid with bounds [0, 0].
func NewGrid() *Grid {
	return &Grid{cells: make(map[int]map[int]Marker)}
}

// Add stores m at p, overwriting whatever was there, and widens the bounds
// if p lies outside them. Adding [Free] has no effect.
func (g *Grid) Add(p Pos, m Marker) {
	if m == Free {
		return
	}
	g.row(p.Row)[p.Col] = m
	if p.Col < g.left {
		g.left = p.Col
	} else if p.Col > g.right {
		g.right = p.Col
	}
}

// Get returns the marker at p, or [Free].
func (g *Grid) Get(p Pos) Marker {
	return g.cells[p.Row][p.Col]
}

// Fill marks the axis-aligned path between two cells as [EdgePassage].
// It first runs vertically along to.Col over every row between to.Row and
// from.Row inclusive, then horizontally along from.Row over every column
// between to.Col and from.Col inclusive. Each run is skipped when its two
// ends coincide. Occupied cells are left untouched, so Fill is idempotent.
func (g *Grid) Fill(from, to Pos) {
	if from.Row != to.Row {
		lo, hi := min(from.Row, to.Row), max(from.Row, to.Row)
		for r := lo; r <= hi; r++ {
			g.mark(Pos{Row: r, Col: to.Col})
		}
	}
	if from.Col != to.Col {
		lo, hi := min(from.Col, to.Col), max(from.Col, to.Col)
		for c := lo; c <= hi; c++ {
			g.mark(Pos{Row: from.Row, Col: c})
		}
	}
}

// Bounds returns the leftmost and rightmost columns touched by Add.
func (g *Grid) Bounds() (left, right int) { return g.left, g.right }

// Rows returns the indices of rows holding at least one marker, ascending.
func (g *Grid) Rows() []int {
	var rows []int
	for r, cols := range g.cells {
		if len(cols) > 0 {
			rows = append(rows, r)
		}
	}
	slices.Sort(rows)
	return rows
}

// Cells returns a copy of the markers stored in row, keyed by column.
func (g *Grid) Cells(row int) map[int]Marker {
	return maps.Clone(g.cells[row])
}

// Len returns the number of stored cells.
func (g *Grid) Len() int {
	n := 0
	for _, cols := range g.cells {
		n += len(cols)
	}
	return n
}

func (g *Grid) mark(p Pos) {
	row := g.row(p.Row)
	if _, ok := row[p.Col]; !ok {
		row[p.Col] = EdgePassage
	}
}

func (g *Grid) row(r int) map[int]Marker {
	cols, ok := g.cells[r]
	if !ok {
		cols = make(map[int]Marker)
		g.cells[r] = cols
	}
	return cols
}
