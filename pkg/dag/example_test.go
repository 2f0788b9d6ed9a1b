package dag_test

import (
	"fmt"

	"github.com/matzehuels/flowgrid/pkg/dag"
)

func ExampleGraph_basic() {
	// A small flow: start -> review -> done
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: dag.ID("start"), Width: 100, Height: 60})
	_ = g.AddNode(dag.Node{ID: dag.ID("review"), Width: 100, Height: 60})
	_ = g.AddNode(dag.Node{ID: dag.ID("done"), Width: 100, Height: 60})
	_ = g.AddEdge(dag.ID("start"), dag.ID("review"))
	_ = g.AddEdge(dag.ID("review"), dag.ID("done"))

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Referrers of done:", g.Referrers(dag.ID("done")))
	// Output:
	// Nodes: 3
	// Edges: 2
	// Referrers of done: [review]
}

func ExampleGraph_sink() {
	// Flow leaving the graph is modelled as an edge to the sink.
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: dag.ID("form"), Width: 100, Height: 60})
	_ = g.AddNode(dag.Node{ID: dag.Sink, Width: 40, Height: 40})
	_ = g.AddEdge(dag.ID("form"), dag.Sink)

	err := g.AddEdge(dag.Sink, dag.ID("form"))
	fmt.Println("Edges:", g.Edges())
	fmt.Println("Error:", err)
	// Output:
	// Edges: [{form (sink)}]
	// Error: sink cannot have outgoing edges
}

func ExampleGraph_Sources() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: dag.ID("intake")})
	_ = g.AddNode(dag.Node{ID: dag.ID("upload")})
	_ = g.AddNode(dag.Node{ID: dag.ID("summary")})
	_ = g.AddEdge(dag.ID("intake"), dag.ID("summary"))
	_ = g.AddEdge(dag.ID("upload"), dag.ID("summary"))

	for _, n := range g.Sources() {
		fmt.Println(n.ID)
	}
	// Output:
	// intake
	// upload
}
