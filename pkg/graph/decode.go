package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"gopkg.in/yaml.v3"
)

// Format is a graph file syntax.
type Format string

// Supported graph file formats.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// ErrUnsupportedFormat is returned for a file extension or format name that
// no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported graph format")

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Decode parses a graph document in the given format. filename is only used
// in diagnostics.
func Decode(data []byte, format Format, filename string) (Graph, error) {
	var (
		g   Graph
		err error
	)
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&g)
		if err == nil {
			g.Options = normalizeNumbers(g.Options)
			for i := range g.Nodes {
				g.Nodes[i].Meta = normalizeNumbers(g.Nodes[i].Meta)
			}
		}
	case FormatTOML:
		_, err = toml.Decode(string(data), &g)
	case FormatYAML:
		err = yaml.Unmarshal(data, &g)
	case FormatHCL:
		g, err = decodeHCL(data, filename)
	default:
		return Graph{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return Graph{}, fmt.Errorf("decode %s: %w", format, err)
	}
	return g, nil
}

// =============================================================================
// HCL
// =============================================================================

type hclFile struct {
	Options *hclOptions `hcl:"options,block"`
	Nodes   []hclNode   `hcl:"node,block"`
	Sinks   []hclSink   `hcl:"sink,block"`
	Edges   []hclEdge   `hcl:"edge,block"`
}

type hclOptions struct {
	RankSep *float64 `hcl:"rank_sep,optional"`
	NodeSep *float64 `hcl:"node_sep,optional"`
	MarginX *float64 `hcl:"margin_x,optional"`
	MarginY *float64 `hcl:"margin_y,optional"`
	Strict  *bool    `hcl:"strict,optional"`
}

type hclNode struct {
	ID     string            `hcl:"id,label"`
	Label  string            `hcl:"label,optional"`
	Width  float64           `hcl:"width,optional"`
	Height float64           `hcl:"height,optional"`
	Meta   map[string]string `hcl:"meta,optional"`
}

type hclSink struct {
	Width  float64 `hcl:"width,optional"`
	Height float64 `hcl:"height,optional"`
}

type hclEdge struct {
	From string `hcl:"from"`
	To   string `hcl:"to,optional"`
	Sink bool   `hcl:"sink,optional"`
}

// sinkPosition returns how many node blocks precede the sink block, so the
// sink keeps its place in registration order.
func sinkPosition(body hcl.Body, nodes int) int {
	sb, ok := body.(*hclsyntax.Body)
	if !ok {
		return nodes
	}
	before := 0
	for _, b := range sb.Blocks {
		switch b.Type {
		case "node":
			before++
		case "sink":
			return before
		}
	}
	return nodes
}

func hclSinkNode(sinks []hclSink) []Node {
	var out []Node
	for _, s := range sinks {
		out = append(out, Node{Sink: true, Width: s.Width, Height: s.Height})
	}
	return out
}

func decodeHCL(src []byte, filename string) (Graph, error) {
	if filename == "" {
		filename = "graph.hcl"
	}
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Graph{}, diags
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return Graph{}, diags
	}
	if len(parsed.Sinks) > 1 {
		return Graph{}, fmt.Errorf("%w: more than one sink block", ErrInvalidGraph)
	}

	var g Graph
	sinkAt := sinkPosition(file.Body, len(parsed.Nodes))
	for i, n := range parsed.Nodes {
		if i == sinkAt {
			g.Nodes = append(g.Nodes, hclSinkNode(parsed.Sinks)...)
		}
		node := Node{ID: n.ID, Label: n.Label, Width: n.Width, Height: n.Height}
		if len(n.Meta) > 0 {
			node.Meta = make(map[string]any, len(n.Meta))
			for k, v := range n.Meta {
				node.Meta[k] = v
			}
		}
		g.Nodes = append(g.Nodes, node)
	}
	if sinkAt >= len(parsed.Nodes) {
		g.Nodes = append(g.Nodes, hclSinkNode(parsed.Sinks)...)
	}
	for _, e := range parsed.Edges {
		g.Edges = append(g.Edges, Edge{From: e.From, To: e.To, Sink: e.Sink})
	}

	if o := parsed.Options; o != nil {
		g.Options = map[string]any{}
		setIf(g.Options, "rankSep", o.RankSep)
		setIf(g.Options, "nodeSep", o.NodeSep)
		setIf(g.Options, "marginX", o.MarginX)
		setIf(g.Options, "marginY", o.MarginY)
		setIf(g.Options, "strict", o.Strict)
	}
	return g, nil
}

func setIf[T any](m map[string]any, key string, v *T) {
	if v != nil {
		m[key] = *v
	}
}

// normalizeNumbers converts json.Number values to int64 or float64 so that
// metadata round-trips as plain Go numbers.
func normalizeNumbers(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
	return m
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		return normalizeNumbers(x)
	case []any:
		for i := range x {
			x[i] = normalizeValue(x[i])
		}
		return x
	default:
		return v
	}
}
