package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/flowgrid/pkg/dag"
	"github.com/matzehuels/flowgrid/pkg/layout"
)

// =============================================================================
// Layout - Computed Placement
// =============================================================================

// Layout is the serialization format for a computed layout. It is what the
// CLI writes, the API returns and the cache stores.
//
// Coordinates are the top-left corner of each node in a frame of Width x
// Height. LeftBound and RightBound are the extreme grid columns.
type Layout struct {
	ID         string         `json:"id"`
	Width      float64        `json:"width"`
	Height     float64        `json:"height"`
	LeftBound  int            `json:"left_bound"`
	RightBound int            `json:"right_bound"`
	Nodes      []PlacedNode   `json:"nodes"`
	Edges      []Edge         `json:"edges"`
	Stats      layout.Stats   `json:"stats"`
	Options    layout.Options `json:"options"`
}

// PlacedNode is a node with its grid cell and coordinates.
type PlacedNode struct {
	ID     string         `json:"id,omitempty"`
	Sink   bool           `json:"sink,omitempty"`
	Label  string         `json:"label,omitempty"`
	Rank   int            `json:"rank"`
	Col    int            `json:"col"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// Key returns the node identity.
func (n PlacedNode) Key() dag.NodeID {
	if n.Sink {
		return dag.Sink
	}
	return dag.ID(n.ID)
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n PlacedNode) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.Key().String()
}

// NewLayout exports a laid-out graph. g must have been passed to
// layout.Compute, which produced res.
func NewLayout(g *dag.Graph, res *layout.Result, opts layout.Options) Layout {
	gj := FromDAG(g)
	l := Layout{
		Width:      res.Width,
		Height:     res.Height,
		LeftBound:  res.Left,
		RightBound: res.Right,
		Nodes:      make([]PlacedNode, 0, len(gj.Nodes)),
		Edges:      gj.Edges,
		Stats:      res.Stats,
		Options:    opts,
	}
	l.Options.Logger = nil

	for _, n := range g.Nodes() {
		pn := nodeFromDAG(n)
		l.Nodes = append(l.Nodes, PlacedNode{
			ID:     pn.ID,
			Sink:   pn.Sink,
			Label:  pn.Label,
			Rank:   n.Rank,
			Col:    n.Col,
			X:      n.X,
			Y:      n.Y,
			Width:  n.Width,
			Height: n.Height,
			Meta:   pn.Meta,
		})
	}
	return l
}

// Node returns the placed node with the given identity.
func (l *Layout) Node(id dag.NodeID) (PlacedNode, bool) {
	for _, n := range l.Nodes {
		if n.Key() == id {
			return n, true
		}
	}
	return PlacedNode{}, false
}

// Grid rebuilds the occupancy grid of the layout. Node cells override edge
// passages and passages never override anything, so replaying every node
// and then every edge path yields the grid the engine finished with.
func (l *Layout) Grid() *layout.Grid {
	grid := layout.NewGrid()
	pos := make(map[dag.NodeID]layout.Pos, len(l.Nodes))
	for _, n := range l.Nodes {
		p := layout.Pos{Row: n.Rank, Col: n.Col}
		pos[n.Key()] = p
		grid.Add(p, layout.NodeBody)
	}
	for _, e := range l.Edges {
		from, okFrom := pos[dag.ID(e.From)]
		toID := dag.ID(e.To)
		if e.Sink {
			toID = dag.Sink
		}
		to, okTo := pos[toID]
		if okFrom && okTo {
			grid.Fill(from, to)
		}
	}
	return grid
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if len(l.Nodes) > 0 && l.Stats.Ranks == 0 {
		return Layout{}, fmt.Errorf("layout has nodes but no ranks")
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
