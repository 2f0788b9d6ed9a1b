// Package pkg provides the core libraries for flowgrid grid layouts.
//
// # Overview
//
// flowgrid places the nodes of a directed acyclic flow graph on an integer
// grid: one row per rank, columns growing outward from column 0 as edge
// paths need room. Every edge leaving the flow ends in a single shared sink
// drawn below the last rank. The pkg directory is organized into:
//
//  1. [dag] - Graph model with insertion-ordered nodes and the sink identity
//  2. [dag/transform] - Cycle detection and longest-path ranking
//  3. [layout] - Grid placement and coordinate assignment
//  4. [graph] - Serialization types for graphs and layouts
//  5. [pipeline] - Orchestration (decode → layout → export) with caching
//
// # Architecture
//
// The typical data flow:
//
//	graph file / page routing definition
//	         ↓
//	    [graph] or [adapter/forms] (decode into a dag.Graph)
//	         ↓
//	    [layout] package (rank, place, assign coordinates)
//	         ↓
//	    [graph.Layout] as JSON, or [dot] for Graphviz
//
// # Quick Start
//
//	g, _ := graph.ReadGraphFile("flow.yaml")
//	res, _ := layout.Compute(g, layout.DefaultOptions())
//	l := graph.NewLayout(g, res, layout.DefaultOptions())
//	graph.WriteLayoutFile(l, "flow.layout.json")
//
// # Supporting Packages
//
// [cache] - File, Redis and null caches for computed layouts and artifacts.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// [buildinfo] - Version information injected at build time.
//
// [dag]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/dag/transform
// [layout]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/layout
// [graph]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/graph
// [graph.Layout]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/graph#Layout
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/pipeline
// [adapter/forms]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/adapter/forms
// [dot]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/dot
// [cache]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/flowgrid/pkg/buildinfo
package pkg
