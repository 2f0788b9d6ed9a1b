// Package dot hands computed layouts to Graphviz.
//
// # Overview
//
// flowgrid computes coordinates but does not draw. [FromLayout] turns a
// [graph.Layout] into DOT source where every node carries a pinned pos
// attribute, so Graphviz only has to draw boxes and route edges:
//
//	src := dot.FromLayout(l, dot.Options{})
//	if err := dot.Validate(ctx, src); err != nil {
//	    return err
//	}
//	// neato -n2 -Tsvg layout.dot > layout.svg
//
// # Coordinates
//
// Layout coordinates are top-left corners with y growing downward. DOT
// positions are node centres with y growing upward, in points; widths and
// heights are in inches. FromLayout converts between the two.
//
// # Dependencies
//
// [Validate] uses [github.com/goccy/go-graphviz] to parse the generated
// source in-process.
//
// [graph.Layout]: github.com/matzehuels/flowgrid/pkg/graph.Layout
package dot
