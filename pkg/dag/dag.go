package dag

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when a named node has
	// an empty identifier.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrInvalidSize is returned by [Graph.AddNode] when a width or height
	// is NaN or infinite.
	ErrInvalidSize = errors.New("node size must be finite")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when the identity is
	// already registered.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNode is returned by [Graph.AddEdge] when either endpoint was
	// never registered with [Graph.AddNode]. It indicates a caller bug.
	ErrUnknownNode = errors.New("unknown node reference")

	// ErrSinkNotTerminal is returned by [Graph.AddEdge] when the sink is used
	// as the source of an edge. Flow can only leave the graph through it.
	ErrSinkNotTerminal = errors.New("sink cannot have outgoing edges")

	// ErrGraphFrozen is returned by mutating methods once the graph has been
	// handed to the layout engine.
	ErrGraphFrozen = errors.New("graph is frozen")

	// ErrAlreadyPlaced is returned by [Graph.Place] and [Graph.SetPosition]
	// when the node already holds a value. Layout outputs are write-once.
	ErrAlreadyPlaced = errors.New("node already placed")

	// ErrNotPlaced is returned by [Graph.SetPosition] for a node that has no
	// rank and column yet.
	ErrNotPlaced = errors.New("node not placed")

	// ErrCycleDetected reports that rank assignment ran out of root nodes
	// while unranked nodes remained.
	ErrCycleDetected = errors.New("graph contains a cycle")
)

// NodeID identifies a node. It is either a named identity created with [ID]
// or the distinguished [Sink]. The zero value is an invalid named identity.
type NodeID struct {
	name string
	sink bool
}

// Sink is the synthetic terminal identity representing flow exiting the graph.
var Sink = NodeID{sink: true}

// ID returns the named identity for name.
func ID(name string) NodeID { return NodeID{name: name} }

// IsSink reports whether id is the sink.
func (id NodeID) IsSink() bool { return id.sink }

// Name returns the node name. It is empty for the sink.
func (id NodeID) Name() string { return id.name }

// String returns the name, or "(sink)" for the sink.
func (id NodeID) String() string {
	if id.sink {
		return "(sink)"
	}
	return id.name
}

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
type Metadata map[string]any

// Node is a sized vertex. Width and Height are supplied by the caller; Rank,
// Col, X and Y are written once by the layout engine.
type Node struct {
	ID     NodeID
	Label  string // Display label (defaults to ID)
	Width  float64
	Height float64
	Meta   Metadata

	Rank int
	Col  int
	X    float64
	Y    float64

	placed     bool
	positioned bool
}

// IsPlaced reports whether the node has been assigned a rank and column.
func (n *Node) IsPlaced() bool { return n.placed }

// IsPositioned reports whether final coordinates have been computed.
func (n *Node) IsPositioned() bool { return n.positioned }

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID.String()
}

// Edge is a directed relation From -> To. Graphs store edges only as
// referrer sets; Edge exists for callers that need a flat list.
type Edge struct {
	From NodeID
	To   NodeID
}

// Graph is a node registry with reverse adjacency.
//
// The zero value is not usable - use New.
type Graph struct {
	nodes     map[NodeID]*Node
	order     []NodeID
	referrers map[NodeID][]NodeID
	edges     int
	meta      Metadata
	frozen    bool
}

// New creates an empty graph with optional graph-level metadata.
func New(meta Metadata) *Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return &Graph{
		nodes:     make(map[NodeID]*Node),
		referrers: make(map[NodeID][]NodeID),
		meta:      meta,
	}
}

// Meta returns the graph-level metadata map.
func (g *Graph) Meta() Metadata { return g.meta }

// AddNode registers a node. Layout fields on n are ignored and reset.
func (g *Graph) AddNode(n Node) error {
	if g.frozen {
		return ErrGraphFrozen
	}
	if !n.ID.sink && n.ID.name == "" {
		return ErrInvalidNodeID
	}
	if err := CheckSize(n.Width, n.Height); err != nil {
		return fmt.Errorf("%w (node %s)", err, n.ID)
	}
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	n.Rank, n.Col, n.X, n.Y = 0, 0, 0, 0
	n.placed, n.positioned = false, false

	node := &n
	g.nodes[n.ID] = node
	g.order = append(g.order, n.ID)
	g.referrers[n.ID] = nil
	return nil
}

// AddEdge records from as a referrer of to. Adding the same edge twice has
// no further effect.
func (g *Graph) AddEdge(from, to NodeID) error {
	if g.frozen {
		return ErrGraphFrozen
	}
	if from.sink {
		return ErrSinkNotTerminal
	}
	if _, ok := g.nodes[from]; !ok {
		return fmt.Errorf("%w: source %s", ErrUnknownNode, from)
	}
	if _, ok := g.nodes[to]; !ok {
		return fmt.Errorf("%w: target %s", ErrUnknownNode, to)
	}
	if slices.Contains(g.referrers[to], from) {
		return nil
	}
	g.referrers[to] = append(g.referrers[to], from)
	g.edges++
	return nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Has reports whether id is registered.
func (g *Graph) Has(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all nodes in registration order. The pointers refer to the
// graph's own nodes.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// IDs returns all node identities in registration order.
func (g *Graph) IDs() []NodeID { return slices.Clone(g.order) }

// Referrers returns the predecessors of id in edge insertion order.
// The returned slice should not be modified.
func (g *Graph) Referrers(id NodeID) []NodeID { return g.referrers[id] }

// Edges rebuilds the edge list: targets in registration order, then
// referrers in insertion order.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.edges)
	for _, to := range g.order {
		for _, from := range g.referrers[to] {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int { return g.edges }

// Freeze ends the mutation phase.
func (g *Graph) Freeze() { g.frozen = true }

// Frozen reports whether Freeze has been called.
func (g *Graph) Frozen() bool { return g.frozen }

// Place records the node's rank and column.
func (g *Graph) Place(id NodeID, rank, col int) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if n.placed {
		return fmt.Errorf("%w: %s", ErrAlreadyPlaced, id)
	}
	n.Rank, n.Col, n.placed = rank, col, true
	return nil
}

// SetPosition records the node's final coordinates.
func (g *Graph) SetPosition(id NodeID, x, y float64) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if !n.placed {
		return fmt.Errorf("%w: %s", ErrNotPlaced, id)
	}
	if n.positioned {
		return fmt.Errorf("%w: %s", ErrAlreadyPlaced, id)
	}
	n.X, n.Y, n.positioned = x, y, true
	return nil
}

// Sources returns nodes without referrers, in registration order.
func (g *Graph) Sources() []*Node {
	var sources []*Node
	for _, id := range g.order {
		if len(g.referrers[id]) == 0 {
			sources = append(sources, g.nodes[id])
		}
	}
	return sources
}

// CheckSize reports ErrInvalidSize when width or height is NaN or infinite.
func CheckSize(width, height float64) error {
	for _, v := range []float64{width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: got %vx%v", ErrInvalidSize, width, height)
		}
	}
	return nil
}
