package transform

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/flowgrid/pkg/dag"
)

// CycleError is returned by [AssignRanks] when the graph is not acyclic.
// Cycle lists one offending cycle in edge direction; the first node is
// repeated at the end.
type CycleError struct {
	Cycle []dag.NodeID
}

func (e *CycleError) Error() string {
	if len(e.Cycle) == 0 {
		return dag.ErrCycleDetected.Error()
	}
	parts := make([]string, len(e.Cycle))
	for i, id := range e.Cycle {
		parts[i] = id.String()
	}
	return fmt.Sprintf("%s: %s", dag.ErrCycleDetected, strings.Join(parts, " -> "))
}

func (e *CycleError) Unwrap() error { return dag.ErrCycleDetected }

// FindCycle returns one cycle among the given candidate nodes, walking
// referrer links with a white/gray/black depth-first search. The result is
// ordered along edge direction and closes on its first node. It returns nil
// if the candidates contain no cycle.
func FindCycle(g *dag.Graph, candidates []dag.NodeID) []dag.NodeID {
	const (
		white = iota
		gray
		black
	)

	inScope := make(map[dag.NodeID]bool, len(candidates))
	for _, id := range candidates {
		inScope[id] = true
	}

	color := make(map[dag.NodeID]int, len(candidates))
	var stack, cycle []dag.NodeID

	var dfs func(id dag.NodeID) bool
	dfs = func(id dag.NodeID) bool {
		color[id] = gray
		stack = append(stack, id)
		for _, ref := range g.Referrers(id) {
			if !inScope[ref] {
				continue
			}
			switch color[ref] {
			case white:
				if dfs(ref) {
					return true
				}
			case gray:
				start := slices.Index(stack, ref)
				cycle = slices.Clone(stack[start:])
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for _, id := range candidates {
		if color[id] == white && dfs(id) {
			break
		}
	}
	if cycle == nil {
		return nil
	}

	// The walk followed referrers, i.e. edges backwards.
	slices.Reverse(cycle)
	return append(cycle, cycle[0])
}
