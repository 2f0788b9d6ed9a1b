// Package layout computes layered drawing coordinates for a [dag.Graph].
//
// # Overview
//
// [Compute] runs three phases over a populated graph:
//
//  1. Rank assignment: nodes are grouped into levels so that every edge
//     points to a higher rank (see transform.AssignRanks).
//  2. Column placement: nodes are visited level by level, in level order,
//     and dropped into the column whose incoming edge paths cross the fewest
//     existing paths. Cells are tracked in a sparse [Grid].
//  3. Coordinates: each rank is as tall as its tallest node, each column as
//     wide as its widest node, and nodes are centred inside their cell.
//
// The placement is greedy and deterministic. The same graph, built in the
// same order, always produces the same layout.
//
// # Usage
//
//	g := dag.New(nil)
//	_ = g.AddNode(dag.Node{ID: dag.ID("a"), Width: 100, Height: 60})
//	_ = g.AddNode(dag.Node{ID: dag.ID("b"), Width: 100, Height: 60})
//	_ = g.AddEdge(dag.ID("a"), dag.ID("b"))
//
//	res, err := layout.Compute(g, layout.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	b, _ := g.Node(dag.ID("b"))
//	fmt.Println(b.X, b.Y, res.Width, res.Height)
//
// # Column search
//
// For a node on rank i the candidates are, in order, the columns from one
// past the left bound up to -1, the columns from one past the right bound
// down to 1, and finally column 0. A candidate replaces the current best
// when its cost is lower or equal, which makes column 0 the winner of every
// tie. The cost of a candidate is the number of [EdgePassage] cells its
// incoming paths traverse, or [Blocked] if a path meets a [NodeBody].
//
// Root nodes have no incoming paths, cost nothing anywhere and therefore all
// land on column 0 of rank 0. Set [Options.Strict] to reject such stacking.
//
// [dag.Graph]: github.com/matzehuels/flowgrid/pkg/dag.Graph
package layout
