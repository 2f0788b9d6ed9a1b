package layout

import "github.com/matzehuels/flowgrid/pkg/dag"

// positionNodes converts every node's (rank, column) into pixel coordinates
// and returns the extent of the resulting frame.
//
// Each rank is as tall as its tallest node and each column as wide as its
// widest node; a column holding no node has zero width. Nodes are centred
// inside their cell. Sums are accumulated left to right and top to bottom,
// one term at a time, so results do not depend on map iteration.
func positionNodes(g *dag.Graph, left int, opts Options) (width, height float64, err error) {
	rowHeight := make(map[int]float64)
	colWidth := make(map[int]float64)

	nodes := g.Nodes()
	for _, n := range nodes {
		if h, ok := rowHeight[n.Rank]; !ok || n.Height > h {
			rowHeight[n.Rank] = n.Height
		}
		if w, ok := colWidth[n.Col]; !ok || n.Width > w {
			colWidth[n.Col] = n.Width
		}
	}

	for _, n := range nodes {
		x, y := opts.MarginX, opts.MarginY
		for r := 0; r < n.Rank; r++ {
			y += rowHeight[r] + opts.RankSep
		}
		for c := left; c < n.Col; c++ {
			x += colWidth[c] + opts.NodeSep
		}
		x += (colWidth[n.Col] - n.Width) / 2
		y += (rowHeight[n.Rank] - n.Height) / 2

		if err := g.SetPosition(n.ID, x, y); err != nil {
			return 0, 0, err
		}
		width = max(width, x+n.Width)
		height = max(height, y+n.Height)
	}

	if len(nodes) > 0 {
		width += opts.MarginX
		height += opts.MarginY
	}
	return width, height, nil
}
