package transform

import "github.com/matzehuels/flowgrid/pkg/dag"

// AssignRanks partitions the nodes of g into ordered rank levels.
//
// AssignRanks runs Kahn's algorithm in waves. Each wave collects, in node
// registration order, every unranked node whose referrers have all been
// ranked by earlier waves; the wave becomes the next level. Consequently:
//   - Nodes without referrers form level 0
//   - Every referrer of a node in level i sits in a level below i
//   - A node's level is one plus the maximum level of its referrers
//
// The order inside a level is significant: the column placer visits nodes in
// exactly this order and its tie-breaks depend on it.
//
// # Cycles
//
// When unranked nodes remain but none of them is a root, the graph contains a
// cycle. AssignRanks returns a [*CycleError] (matching [dag.ErrCycleDetected]
// under errors.Is) instead of looping.
//
// # Performance
//
// Each wave scans the remaining nodes and their referrers, so the cost is
// O(L × (V + E)) for L levels.
func AssignRanks(g *dag.Graph) ([][]dag.NodeID, error) {
	remaining := g.IDs()
	rank := make(map[dag.NodeID]int, len(remaining))
	var levels [][]dag.NodeID

	for len(remaining) > 0 {
		var level, rest []dag.NodeID
		for _, id := range remaining {
			if allRanked(g.Referrers(id), rank) {
				level = append(level, id)
			} else {
				rest = append(rest, id)
			}
		}

		if len(level) == 0 {
			return nil, &CycleError{Cycle: FindCycle(g, rest)}
		}

		for _, id := range level {
			rank[id] = len(levels)
		}
		levels = append(levels, level)
		remaining = rest
	}

	return levels, nil
}

func allRanked(ids []dag.NodeID, rank map[dag.NodeID]int) bool {
	for _, id := range ids {
		if _, ok := rank[id]; !ok {
			return false
		}
	}
	return true
}
