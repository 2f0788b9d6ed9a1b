// Package dag provides the graph model consumed by the flowgrid layout engine.
//
// # Overview
//
// A [Graph] is a registry of sized nodes plus, for every node, the ordered set
// of its predecessors ("referrers"). Only reverse adjacency is stored: the
// layout phases always ask "who points at this node?" and never the other way
// round. [Graph.Edges] rebuilds a forward edge list when a caller needs one
// for serialization.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	_ = g.AddNode(dag.Node{ID: dag.ID("start"), Width: 100, Height: 60})
//	_ = g.AddNode(dag.Node{ID: dag.ID("review"), Width: 100, Height: 60})
//	_ = g.AddNode(dag.Node{ID: dag.Sink, Width: 40, Height: 40})
//	_ = g.AddEdge(dag.ID("start"), dag.ID("review"))
//	_ = g.AddEdge(dag.ID("review"), dag.Sink)
//
// Nodes must be registered before any edge references them; an edge to an
// unregistered identity fails with [ErrUnknownNode] instead of creating a
// phantom node.
//
// # The Sink
//
// [Sink] is a distinguished [NodeID] representing flow that leaves the graph
// (a route without a target page, for example). It is a separate variant of
// the identifier type, so no named node can ever collide with it. The sink
// may only appear as the target of an edge.
//
// # Ordering
//
// Every collection in this package iterates in insertion order: nodes in
// registration order, referrers in the order their edges were added. The
// layout engine's tie-breaks depend on it, so never replace these with
// map iteration.
//
// # Lifecycle
//
// Graphs have a mutation phase followed by a single layout pass. Once
// [Graph.Freeze] has been called (the layout engine does this), AddNode and
// AddEdge return [ErrGraphFrozen]. Rank, column and coordinates are
// write-once: [Graph.Place] rejects a second placement of the same node.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Hosts that share one graph
// between goroutines must serialize access around the layout call.
package dag
