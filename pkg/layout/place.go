package layout

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowgrid/pkg/dag"
)

// Blocked is the crossing cost of a candidate whose edge path would run
// through another node's body. It compares greater than any finite cost.
const Blocked = math.MaxInt

// placer assigns a column to every node, rank by rank, greedily minimising
// the number of edge passages each new node's incoming paths must cross.
type placer struct {
	g      *dag.Graph
	grid   *Grid
	strict bool
	logger *log.Logger
	stats  *Stats
}

// placeRank places the nodes of one rank level in level order. Order matters:
// each placement writes to the grid and changes the cost of the next.
func (p *placer) placeRank(rank int, level []dag.NodeID) error {
	for _, id := range level {
		col, cost, err := p.bestColumn(id, rank)
		if err != nil {
			return err
		}
		if err := p.commit(id, Pos{Row: rank, Col: col}); err != nil {
			return err
		}

		if cost == Blocked {
			p.stats.Blocked++
			p.logger.Warn("every column blocked, falling back to column 0",
				"node", id, "rank", rank)
		} else {
			p.stats.Crossings += cost
		}
	}
	return nil
}

// bestColumn evaluates candidate columns in a fixed order: the columns left
// of 0 from the outermost free one inward, the columns right of 0 from the
// outermost free one inward, then column 0. A later candidate replaces the
// best so far on an equal cost, so column 0 wins every tie. If every
// candidate is Blocked the result is column 0.
func (p *placer) bestColumn(id dag.NodeID, rank int) (col, cost int, err error) {
	left, right := p.grid.Bounds()
	if left > 0 || right < 0 {
		return 0, 0, fmt.Errorf("%w: grid bounds [%d, %d] exclude column 0",
			ErrInternalInvariant, left, right)
	}

	first := true
	consider := func(j int) error {
		c, err := p.crossing(id, Pos{Row: rank, Col: j})
		if err != nil {
			return err
		}
		if first || c <= cost {
			col, cost, first = j, c, false
		}
		return nil
	}

	for j := left - 1; j < 0; j++ {
		if err := consider(j); err != nil {
			return 0, 0, err
		}
	}
	for j := right + 1; j > 0; j-- {
		if err := consider(j); err != nil {
			return 0, 0, err
		}
	}
	if err := consider(0); err != nil {
		return 0, 0, err
	}
	return col, cost, nil
}

// crossing returns the number of edge passages crossed by the paths from
// every predecessor of id to pos, or Blocked when a path meets a node body.
//
// Each path runs vertically along pos.Col from pos.Row toward the
// predecessor's row (pos.Row included, predecessor row excluded), then
// horizontally along the predecessor's row from its column toward pos.Col
// (predecessor column excluded, corner cell included).
func (p *placer) crossing(id dag.NodeID, pos Pos) (int, error) {
	count := 0
	for _, ref := range p.g.Referrers(id) {
		n, ok := p.g.Node(ref)
		if !ok || !n.IsPlaced() {
			return 0, fmt.Errorf("%w: predecessor %s of %s has no position",
				ErrInternalInvariant, ref, id)
		}
		from := Pos{Row: n.Rank, Col: n.Col}

		if pos.Row > from.Row {
			for r := pos.Row; r > from.Row; r-- {
				if !p.visit(Pos{Row: r, Col: pos.Col}, &count) {
					return Blocked, nil
				}
			}
		} else if pos.Row < from.Row {
			for r := pos.Row; r < from.Row; r++ {
				if !p.visit(Pos{Row: r, Col: pos.Col}, &count) {
					return Blocked, nil
				}
			}
		}

		if pos.Col > from.Col {
			for c := from.Col + 1; c <= pos.Col; c++ {
				if !p.visit(Pos{Row: from.Row, Col: c}, &count) {
					return Blocked, nil
				}
			}
		} else if pos.Col < from.Col {
			for c := from.Col - 1; c >= pos.Col; c-- {
				if !p.visit(Pos{Row: from.Row, Col: c}, &count) {
					return Blocked, nil
				}
			}
		}
	}
	return count, nil
}

// visit inspects one path cell. It reports false if the cell holds a node.
func (p *placer) visit(pos Pos, count *int) bool {
	switch p.grid.Get(pos) {
	case NodeBody:
		return false
	case EdgePassage:
		*count++
	}
	return true
}

// commit records the node's cell, marks it in the grid and draws the paths
// from each predecessor in referrer order.
func (p *placer) commit(id dag.NodeID, pos Pos) error {
	if p.strict && p.grid.Get(pos) == NodeBody {
		return fmt.Errorf("%w: %s at rank %d column %d", ErrCellOccupied, id, pos.Row, pos.Col)
	}
	if err := p.g.Place(id, pos.Row, pos.Col); err != nil {
		return fmt.Errorf("%w: %v", ErrInternalInvariant, err)
	}
	p.grid.Add(pos, NodeBody)

	for _, ref := range p.g.Referrers(id) {
		n, _ := p.g.Node(ref)
		p.grid.Fill(Pos{Row: n.Rank, Col: n.Col}, pos)
	}
	return nil
}
