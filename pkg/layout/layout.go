package layout

import (
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/flowgrid/pkg/dag"
	"github.com/matzehuels/flowgrid/pkg/dag/transform"
)

var (
	// ErrInternalInvariant reports a broken engine invariant, such as a
	// predecessor without a position. It indicates a bug, not bad input.
	ErrInternalInvariant = errors.New("internal layout invariant violated")

	// ErrCellOccupied is returned in strict mode when a node would be placed
	// on a cell that already holds another node.
	ErrCellOccupied = errors.New("cell already occupied by a node")

	// ErrAlreadyLaidOut is returned by Compute for a graph that has already
	// been laid out (or otherwise frozen).
	ErrAlreadyLaidOut = errors.New("graph already laid out")
)

// Stats summarises a layout run.
type Stats struct {
	Ranks     int           `json:"ranks"`
	Columns   int           `json:"columns"`   // right - left + 1
	Crossings int           `json:"crossings"` // sum of the chosen crossing costs
	Blocked   int           `json:"blocked"`   // nodes for which every column was Blocked
	Duration  time.Duration `json:"-"`
}

// Result holds the output of [Compute]. Node ranks, columns and coordinates
// are written into the graph itself; Result carries the structure around
// them.
type Result struct {
	Ranks  [][]dag.NodeID
	Grid   *Grid
	Left   int // leftmost column
	Right  int // rightmost column
	Width  float64
	Height float64
	Stats  Stats
}

// Compute lays out g in three phases: rank assignment, column placement and
// coordinate calculation. Every node ends up with exactly one (rank, column)
// and one (x, y), readable through g.Node.
//
// Compute freezes g before doing any work, so it runs at most once per graph;
// later calls fail with ErrAlreadyLaidOut. A cyclic graph fails with an error
// matching [dag.ErrCycleDetected].
//
// Placement cost grows with ranks × grid width × predecessors × rank span.
// There is no internal limit.
func Compute(g *dag.Graph, opts Options) (*Result, error) {
	if g.Frozen() {
		return nil, ErrAlreadyLaidOut
	}
	g.Freeze()

	logger := opts.logger()
	start := time.Now()

	levels, err := transform.AssignRanks(g)
	if err != nil {
		return nil, fmt.Errorf("assign ranks: %w", err)
	}
	logger.Debug("assigned ranks", "nodes", g.NodeCount(), "ranks", len(levels))

	res := &Result{
		Ranks: levels,
		Grid:  NewGrid(),
	}
	p := &placer{
		g:      g,
		grid:   res.Grid,
		strict: opts.Strict,
		logger: logger,
		stats:  &res.Stats,
	}
	for i, level := range levels {
		if err := p.placeRank(i, level); err != nil {
			return nil, fmt.Errorf("place rank %d: %w", i, err)
		}
		left, right := res.Grid.Bounds()
		logger.Debug("placed rank", "rank", i, "nodes", len(level), "left", left, "right", right)
	}

	res.Left, res.Right = res.Grid.Bounds()
	res.Width, res.Height, err = positionNodes(g, res.Left, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalInvariant, err)
	}

	res.Stats.Ranks = len(levels)
	res.Stats.Columns = res.Right - res.Left + 1
	res.Stats.Duration = time.Since(start)
	return res, nil
}
