// Package graph provides serialization types for flow graphs and layouts.
//
// This package defines the wire format for flowgrid's graph data, used for
// graph files, API requests and responses, and cached layouts.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Graph], [Layout]: Serialization types (this package)
//   - pkg/dag.Graph: Internal graph representation
//   - pkg/layout.Result: Engine output (grid, bounds, stats)
//
// Use [FromDAG]/[ToDAG] and [NewLayout] to convert between them.
//
// # Graph Files
//
// Graph files list nodes in registration order, then edges. The sink is a
// node with "sink": true, and an edge leaving the flow sets "sink": true
// instead of "to":
//
//	{
//	  "nodes": [{"id": "a", "width": 100, "height": 60}, {"id": "b"}],
//	  "edges": [{"from": "a", "to": "b"}, {"from": "b", "sink": true}],
//	  "options": {"marginX": 30}
//	}
//
// The same document may be written in TOML, YAML or HCL; [FormatFromPath]
// chooses by extension. In HCL, nodes and edges are blocks:
//
//	options { margin_x = 30 }
//	node "a" {
//	  width  = 100
//	  height = 60
//	}
//	node "b" {}
//	edge {
//	  from = "a"
//	  to   = "b"
//	}
//	edge {
//	  from = "b"
//	  sink = true
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("flow.yaml")    // File -> DAG
//	graph.WriteGraphFile(g, "flow.json")        // DAG -> File
//	data, _ := graph.MarshalGraph(g)            // DAG -> []byte
//
// # Layout Serialization
//
// [Layout] carries every node's rank, column and coordinates, the frame
// size, the grid bounds, run statistics and the options used:
//
//	l := graph.NewLayout(g, res, opts)
//	data, _ := graph.MarshalLayout(l)
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
