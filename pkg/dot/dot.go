package dot

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowgrid/pkg/dag"
	"github.com/matzehuels/flowgrid/pkg/graph"
)

// pointsPerInch converts layout units (points) to Graphviz inches.
const pointsPerInch = 72.0

// Options configures DOT generation.
type Options struct {
	// Detailed adds rank, column and metadata lines to node labels.
	Detailed bool
}

// FromLayout converts a computed layout to Graphviz DOT with every node
// pinned to its computed position. Graphviz puts the origin bottom-left,
// so y is flipped against the frame height; pos is the node centre.
//
// Nodes are named n0, n1, ... in layout order so that no user id can clash
// with the sink. Render the result with "neato -n2" (or any engine that
// honours pinned positions) to keep the placement.
func FromLayout(l graph.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  graph [bb=\"0,0,%s,%s\", splines=ortho];\n", num(l.Width), num(l.Height))
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true];\n")
	buf.WriteString("\n")

	names := make(map[dag.NodeID]string, len(l.Nodes))
	for i, n := range l.Nodes {
		name := "n" + strconv.Itoa(i)
		names[n.Key()] = name

		cx := n.X + n.Width/2
		cy := l.Height - (n.Y + n.Height/2)
		attrs := []string{
			"label=" + quote(fmtLabel(n, opts.Detailed)),
			fmt.Sprintf("pos=\"%s,%s!\"", num(cx), num(cy)),
			"width=" + num(n.Width/pointsPerInch),
			"height=" + num(n.Height/pointsPerInch),
		}
		if n.Sink {
			attrs = append(attrs, "shape=doublecircle", "style=filled", "fillcolor=lightgrey")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		to := dag.ID(e.To)
		if e.Sink {
			to = dag.Sink
		}
		from, okFrom := names[dag.ID(e.From)]
		target, okTo := names[to]
		if !okFrom || !okTo {
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s;\n", from, target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Validate parses DOT source with Graphviz and reports syntax errors.
func Validate(ctx context.Context, src string) error {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return fmt.Errorf("parse DOT: %w", err)
	}
	return g.Close()
}

func fmtLabel(n graph.PlacedNode, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed {
		return label
	}

	parts := []string{fmt.Sprintf("rank: %d, col: %d", n.Rank, n.Col)}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// quote renders s as a DOT string. Quotes and backslashes are escaped,
// newlines become the \n line break and other control characters become
// spaces.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
		case unicode.IsControl(r):
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
