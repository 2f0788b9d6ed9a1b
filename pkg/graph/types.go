package graph

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/matzehuels/flowgrid/pkg/dag"
	flowerrors "github.com/matzehuels/flowgrid/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

// Default node sizes used when a graph file omits width or height.
const (
	DefaultNodeWidth  = 100.0
	DefaultNodeHeight = 60.0
	DefaultSinkWidth  = 40.0
	DefaultSinkHeight = 40.0
)

// ErrInvalidGraph reports a structurally malformed graph document, such as
// an edge without a target.
var ErrInvalidGraph = errors.New("invalid graph")

// =============================================================================
// Graph - Flow Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for flow graphs.
//
// Node order is significant: it is the registration order the layout engine
// uses to break ties, so it is preserved on every conversion.
type Graph struct {
	Nodes []Node `json:"nodes" toml:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" toml:"edges" yaml:"edges"`

	// Options holds layout options in their loose key/value form
	// (see layout.ParseOptions). Optional.
	Options map[string]any `json:"options,omitempty" toml:"options,omitempty" yaml:"options,omitempty"`
}

// =============================================================================
// Node / Edge
// =============================================================================

// Node is a sized vertex. Exactly one of ID or Sink identifies it.
type Node struct {
	ID     string         `json:"id,omitempty" toml:"id,omitempty" yaml:"id,omitempty"`
	Sink   bool           `json:"sink,omitempty" toml:"sink,omitempty" yaml:"sink,omitempty"`
	Label  string         `json:"label,omitempty" toml:"label,omitempty" yaml:"label,omitempty"`
	Width  float64        `json:"width,omitempty" toml:"width,omitempty" yaml:"width,omitempty"`
	Height float64        `json:"height,omitempty" toml:"height,omitempty" yaml:"height,omitempty"`
	Meta   map[string]any `json:"meta,omitempty" toml:"meta,omitempty" yaml:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.key().String()
}

func (n *Node) key() dag.NodeID {
	if n.Sink {
		return dag.Sink
	}
	return dag.ID(n.ID)
}

// Edge is a directed edge From -> To. With Sink set the edge leaves the flow
// and To must be empty.
type Edge struct {
	From string `json:"from" toml:"from" yaml:"from"`
	To   string `json:"to,omitempty" toml:"to,omitempty" yaml:"to,omitempty"`
	Sink bool   `json:"sink,omitempty" toml:"sink,omitempty" yaml:"sink,omitempty"`
}

func (e Edge) target() string {
	if e.Sink {
		return dag.Sink.String()
	}
	return e.To
}

// UnknownReferenceError is returned by [ToDAG] for an edge endpoint that
// names no declared node. Suggestion holds the closest declared id, if any.
type UnknownReferenceError struct {
	Edge       Edge
	ID         string
	Suggestion string
}

func (e *UnknownReferenceError) Error() string {
	msg := fmt.Sprintf("%s: %q in edge %s -> %s", dag.ErrUnknownNode, e.ID, e.Edge.From, e.Edge.target())
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

func (e *UnknownReferenceError) Unwrap() error { return dag.ErrUnknownNode }

// =============================================================================
// DAG <-> Graph Conversion
// =============================================================================

// FromDAG converts a graph to its serialization format. Nodes keep their
// registration order and edges follow [dag.Graph.Edges].
func FromDAG(g *dag.Graph) Graph {
	nodes := g.Nodes()
	edges := g.Edges()
	out := Graph{
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, len(edges)),
	}
	for i, n := range nodes {
		out.Nodes[i] = nodeFromDAG(n)
	}
	for i, e := range edges {
		out.Edges[i] = edgeFromDAG(e)
	}
	return out
}

// ToDAG builds a [dag.Graph] from its serialization format.
//
// Missing sizes default to 100x60 for named nodes and 40x40 for the sink.
// An edge to the sink declares it implicitly when no sink node is listed.
// Node ids are validated, and edge endpoints must name declared nodes; an
// unknown endpoint fails with [*UnknownReferenceError], which suggests the
// closest declared id.
func ToDAG(gj Graph) (*dag.Graph, error) {
	d := dag.New(nil)

	declared := make([]string, 0, len(gj.Nodes))
	for i, nj := range gj.Nodes {
		n, err := nodeToDAG(nj)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		if err := d.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", n.ID, err)
		}
		if !nj.Sink {
			declared = append(declared, nj.ID)
		}
	}

	if !d.Has(dag.Sink) && slices.ContainsFunc(gj.Edges, func(e Edge) bool { return e.Sink }) {
		sink := dag.Node{ID: dag.Sink, Width: DefaultSinkWidth, Height: DefaultSinkHeight}
		if err := d.AddNode(sink); err != nil {
			return nil, err
		}
	}

	for i, ej := range gj.Edges {
		from, to, err := edgeToDAG(ej)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		for _, id := range []dag.NodeID{from, to} {
			if !d.Has(id) {
				return nil, &UnknownReferenceError{Edge: ej, ID: id.Name(), Suggestion: suggest(id.Name(), declared)}
			}
		}
		if err := d.AddEdge(from, to); err != nil {
			return nil, fmt.Errorf("add edge %s -> %s: %w", from, to, err)
		}
	}

	return d, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

func nodeFromDAG(n *dag.Node) Node {
	node := Node{
		ID:     n.ID.Name(),
		Sink:   n.ID.IsSink(),
		Label:  n.Label,
		Width:  n.Width,
		Height: n.Height,
	}
	if len(n.Meta) > 0 {
		node.Meta = maps.Clone(map[string]any(n.Meta))
	}
	return node
}

func edgeFromDAG(e dag.Edge) Edge {
	if e.To.IsSink() {
		return Edge{From: e.From.Name(), Sink: true}
	}
	return Edge{From: e.From.Name(), To: e.To.Name()}
}

func nodeToDAG(nj Node) (dag.Node, error) {
	n := dag.Node{
		Label:  nj.Label,
		Width:  nj.Width,
		Height: nj.Height,
		Meta:   dag.Metadata(maps.Clone(nj.Meta)),
	}

	if err := dag.CheckSize(nj.Width, nj.Height); err != nil {
		return n, fmt.Errorf("%w: %w", ErrInvalidGraph, err)
	}

	if nj.Sink {
		if nj.ID != "" {
			return n, fmt.Errorf("%w: sink node must not have an id (got %q)", ErrInvalidGraph, nj.ID)
		}
		n.ID = dag.Sink
		if n.Width <= 0 {
			n.Width = DefaultSinkWidth
		}
		if n.Height <= 0 {
			n.Height = DefaultSinkHeight
		}
		return n, nil
	}

	if err := flowerrors.ValidateNodeID(nj.ID); err != nil {
		return n, err
	}
	n.ID = dag.ID(nj.ID)
	if n.Width <= 0 {
		n.Width = DefaultNodeWidth
	}
	if n.Height <= 0 {
		n.Height = DefaultNodeHeight
	}
	return n, nil
}

func edgeToDAG(ej Edge) (from, to dag.NodeID, err error) {
	if ej.From == "" {
		return from, to, fmt.Errorf("%w: edge has no source", ErrInvalidGraph)
	}
	switch {
	case ej.Sink && ej.To != "":
		return from, to, fmt.Errorf("%w: edge from %q sets both to and sink", ErrInvalidGraph, ej.From)
	case ej.Sink:
		to = dag.Sink
	case ej.To == "":
		return from, to, fmt.Errorf("%w: edge from %q has no target", ErrInvalidGraph, ej.From)
	default:
		to = dag.ID(ej.To)
	}
	return dag.ID(ej.From), to, nil
}

// suggest returns the declared id closest to id: the best fuzzy subsequence
// match if there is one, otherwise the nearest id within a small edit
// distance.
func suggest(id string, declared []string) string {
	if id == "" || len(declared) == 0 {
		return ""
	}

	if ranks := fuzzy.RankFindFold(id, declared); len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", max(2, len(id)/3)+1
	for _, cand := range declared {
		if d := fuzzy.LevenshteinDistance(id, cand); d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best
}
