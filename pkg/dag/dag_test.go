package dag

import (
	"errors"
	"math"
	"testing"
)

func TestAddNode(t *testing.T) {
	g := New(nil)

	if err := g.AddNode(Node{ID: ID("a"), Width: 100, Height: 60}); err != nil {
		t.Fatalf("AddNode() error: %v", err)
	}
	if err := g.AddNode(Node{ID: ID("a")}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate AddNode() error = %v, want ErrDuplicateNodeID", err)
	}
	if err := g.AddNode(Node{ID: ID("")}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("empty AddNode() error = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: Sink}); err != nil {
		t.Errorf("sink AddNode() error: %v", err)
	}

	if g.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", g.NodeCount())
	}
	n, ok := g.Node(ID("a"))
	if !ok {
		t.Fatal("Node(a) not found")
	}
	if n.Width != 100 || n.Height != 60 {
		t.Errorf("size = %vx%v, want 100x60", n.Width, n.Height)
	}
	if n.Meta == nil {
		t.Error("Meta should be initialized")
	}
}

func TestAddNode_NonFiniteSize(t *testing.T) {
	g := New(nil)
	for _, n := range []Node{
		{ID: ID("nan"), Width: math.NaN(), Height: 60},
		{ID: ID("inf"), Width: 100, Height: math.Inf(1)},
		{ID: Sink, Width: math.Inf(-1), Height: 40},
	} {
		if err := g.AddNode(n); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("AddNode(%s) error = %v, want ErrInvalidSize", n.ID, err)
		}
	}
	if g.NodeCount() != 0 {
		t.Errorf("NodeCount() = %d, want 0", g.NodeCount())
	}
	if err := CheckSize(0, 60); err != nil {
		t.Errorf("CheckSize(0, 60) error: %v", err)
	}
}

func TestAddNode_ResetsLayoutFields(t *testing.T) {
	g := New(nil)
	g.AddNode(Node{ID: ID("a"), Rank: 3, Col: -2, X: 10, Y: 20})

	n, _ := g.Node(ID("a"))
	if n.Rank != 0 || n.Col != 0 || n.X != 0 || n.Y != 0 {
		t.Errorf("layout fields = (%d,%d,%v,%v), want zero", n.Rank, n.Col, n.X, n.Y)
	}
	if n.IsPlaced() || n.IsPositioned() {
		t.Error("new node should be neither placed nor positioned")
	}
}

func TestAddEdge(t *testing.T) {
	g := New(nil)
	g.AddNode(Node{ID: ID("a")})
	g.AddNode(Node{ID: ID("b")})
	g.AddNode(Node{ID: Sink})

	tests := []struct {
		name     string
		from, to NodeID
		wantErr  error
	}{
		{"Valid", ID("a"), ID("b"), nil},
		{"Duplicate", ID("a"), ID("b"), nil},
		{"ToSink", ID("b"), Sink, nil},
		{"FromSink", Sink, ID("a"), ErrSinkNotTerminal},
		{"UnknownSource", ID("x"), ID("a"), ErrUnknownNode},
		{"UnknownTarget", ID("a"), ID("x"), ErrUnknownNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.AddEdge(tt.from, tt.to)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddEdge(%s, %s) error = %v, want %v", tt.from, tt.to, err, tt.wantErr)
			}
		})
	}

	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
	if refs := g.Referrers(ID("b")); len(refs) != 1 || refs[0] != ID("a") {
		t.Errorf("Referrers(b) = %v, want [a]", refs)
	}
}

func TestAddEdge_UnknownMessages(t *testing.T) {
	g := New(nil)
	g.AddNode(Node{ID: ID("a")})

	err := g.AddEdge(ID("a"), ID("ghost"))
	if err == nil || err.Error() != "unknown node reference: target ghost" {
		t.Errorf("error = %v, want target message", err)
	}
	err = g.AddEdge(ID("ghost"), ID("a"))
	if err == nil || err.Error() != "unknown node reference: source ghost" {
		t.Errorf("error = %v, want source message", err)
	}
}

func TestEdges_Order(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(Node{ID: ID(id)})
	}
	g.AddEdge(ID("b"), ID("c"))
	g.AddEdge(ID("a"), ID("c"))
	g.AddEdge(ID("a"), ID("b"))

	want := []Edge{{ID("a"), ID("b")}, {ID("b"), ID("c")}, {ID("a"), ID("c")}}
	got := g.Edges()
	if len(got) != len(want) {
		t.Fatalf("Edges() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Edges()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFreeze(t *testing.T) {
	g := New(nil)
	g.AddNode(Node{ID: ID("a")})
	g.Freeze()

	if !g.Frozen() {
		t.Error("Frozen() = false after Freeze")
	}
	if err := g.AddNode(Node{ID: ID("b")}); !errors.Is(err, ErrGraphFrozen) {
		t.Errorf("AddNode() error = %v, want ErrGraphFrozen", err)
	}
	if err := g.AddEdge(ID("a"), ID("a")); !errors.Is(err, ErrGraphFrozen) {
		t.Errorf("AddEdge() error = %v, want ErrGraphFrozen", err)
	}
}

func TestPlaceAndPosition(t *testing.T) {
	g := New(nil)
	g.AddNode(Node{ID: ID("a")})

	if err := g.SetPosition(ID("a"), 1, 2); !errors.Is(err, ErrNotPlaced) {
		t.Errorf("SetPosition before Place error = %v, want ErrNotPlaced", err)
	}
	if err := g.Place(ID("a"), 2, -1); err != nil {
		t.Fatalf("Place() error: %v", err)
	}
	if err := g.Place(ID("a"), 0, 0); !errors.Is(err, ErrAlreadyPlaced) {
		t.Errorf("second Place() error = %v, want ErrAlreadyPlaced", err)
	}
	if err := g.SetPosition(ID("a"), 30, 190); err != nil {
		t.Fatalf("SetPosition() error: %v", err)
	}
	if err := g.SetPosition(ID("a"), 0, 0); !errors.Is(err, ErrAlreadyPlaced) {
		t.Errorf("second SetPosition() error = %v, want ErrAlreadyPlaced", err)
	}
	if err := g.Place(ID("missing"), 0, 0); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Place(missing) error = %v, want ErrUnknownNode", err)
	}

	n, _ := g.Node(ID("a"))
	if n.Rank != 2 || n.Col != -1 || n.X != 30 || n.Y != 190 {
		t.Errorf("node = (%d,%d,%v,%v), want (2,-1,30,190)", n.Rank, n.Col, n.X, n.Y)
	}
}

func TestNodeID(t *testing.T) {
	if ID("x").IsSink() {
		t.Error("ID(x).IsSink() = true")
	}
	if !Sink.IsSink() {
		t.Error("Sink.IsSink() = false")
	}
	if Sink == ID("") {
		t.Error("Sink must differ from the empty named identity")
	}
	if Sink.String() != "(sink)" {
		t.Errorf("Sink.String() = %q", Sink.String())
	}
	if ID("(sink)") == Sink {
		t.Error("a node named (sink) must not collide with Sink")
	}
}

func TestDisplayLabel(t *testing.T) {
	n := Node{ID: ID("page1")}
	if n.DisplayLabel() != "page1" {
		t.Errorf("DisplayLabel() = %q, want page1", n.DisplayLabel())
	}
	n.Label = "Welcome"
	if n.DisplayLabel() != "Welcome" {
		t.Errorf("DisplayLabel() = %q, want Welcome", n.DisplayLabel())
	}
}
