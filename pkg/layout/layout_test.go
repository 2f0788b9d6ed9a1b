package layout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowgrid/pkg/dag"
	"github.com/matzehuels/flowgrid/pkg/dag/transform"
)

type nodeSpec struct {
	id   string // empty for the sink
	w, h float64
}

func buildGraph(t *testing.T, nodes []nodeSpec, edges [][2]string) *dag.Graph {
	t.Helper()
	g := dag.New(nil)
	for _, n := range nodes {
		require.NoError(t, g.AddNode(dag.Node{ID: idOf(n.id), Width: n.w, Height: n.h}))
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(idOf(e[0]), idOf(e[1])))
	}
	return g
}

func idOf(s string) dag.NodeID {
	if s == "" {
		return dag.Sink
	}
	return dag.ID(s)
}

type placed struct {
	rank, col int
	x, y      float64
}

func assertPlaced(t *testing.T, g *dag.Graph, want map[string]placed) {
	t.Helper()
	for id, w := range want {
		n, ok := g.Node(idOf(id))
		require.True(t, ok, "node %q", id)
		assert.Equal(t, w.rank, n.Rank, "rank of %s", n.ID)
		assert.Equal(t, w.col, n.Col, "col of %s", n.ID)
		assert.Equal(t, w.x, n.X, "x of %s", n.ID)
		assert.Equal(t, w.y, n.Y, "y of %s", n.ID)
		assert.True(t, n.IsPlaced() && n.IsPositioned(), "%s fully laid out", n.ID)
	}
}

func TestCompute_TwoNodeChain(t *testing.T) {
	g := buildGraph(t,
		[]nodeSpec{{"A", 100, 60}, {"B", 100, 60}},
		[][2]string{{"A", "B"}})

	res, err := Compute(g, DefaultOptions())
	require.NoError(t, err)

	assertPlaced(t, g, map[string]placed{
		"A": {0, 0, 0, 0},
		"B": {1, 0, 0, 160},
	})
	assert.Equal(t, 0, res.Left)
	assert.Equal(t, 0, res.Right)
	assert.Equal(t, 100.0, res.Width)
	assert.Equal(t, 220.0, res.Height)
	assert.Equal(t, Stats{Ranks: 2, Columns: 1}, withoutDuration(res.Stats))
}

func TestCompute_FlowWithSink(t *testing.T) {
	g := buildGraph(t,
		[]nodeSpec{
			{"1", 100, 60}, {"2", 100, 60}, {"3", 100, 60},
			{"4", 100, 60}, {"5", 100, 60}, {"", 40, 40},
		},
		[][2]string{
			{"1", "2"}, {"2", "3"}, {"3", "4"}, {"4", "5"},
			{"1", "3"}, {"1", "4"}, {"1", "5"},
			{"2", "4"}, {"2", "5"}, {"2", ""},
			{"3", "5"}, {"3", ""}, {"4", ""},
		})

	opts := DefaultOptions()
	opts.MarginX, opts.MarginY = 30, 30
	res, err := Compute(g, opts)
	require.NoError(t, err)

	assertPlaced(t, g, map[string]placed{
		"1": {0, 0, 230, 30},
		"2": {1, 0, 230, 190},
		"3": {2, 1, 360, 350},
		"4": {3, -1, 100, 510},
		"5": {4, 2, 490, 670},
		"":  {4, -2, 30, 680},
	})

	assert.Equal(t, [][]dag.NodeID{
		{dag.ID("1")}, {dag.ID("2")}, {dag.ID("3")}, {dag.ID("4")}, {dag.ID("5"), dag.Sink},
	}, res.Ranks)
	assert.Equal(t, -2, res.Left)
	assert.Equal(t, 2, res.Right)
	assert.Equal(t, 620.0, res.Width)
	assert.Equal(t, 760.0, res.Height)
	assert.Equal(t, Stats{Ranks: 5, Columns: 5, Crossings: 5}, withoutDuration(res.Stats))
}

func TestCompute_CentresNarrowNode(t *testing.T) {
	g := buildGraph(t,
		[]nodeSpec{{"A", 100, 60}, {"B", 40, 60}},
		[][2]string{{"A", "B"}})

	_, err := Compute(g, DefaultOptions())
	require.NoError(t, err)

	assertPlaced(t, g, map[string]placed{
		"A": {0, 0, 0, 0},
		"B": {1, 0, 30, 160},
	})
}

func TestCompute_Diamond(t *testing.T) {
	g := buildGraph(t,
		[]nodeSpec{{"A", 100, 60}, {"B", 100, 60}, {"C", 100, 60}, {"D", 100, 60}},
		[][2]string{{"A", "B"}, {"A", "C"}, {"B", "D"}, {"C", "D"}})

	res, err := Compute(g, DefaultOptions())
	require.NoError(t, err)

	// Every column for D crosses a node body, so D falls back to column 0.
	assertPlaced(t, g, map[string]placed{
		"A": {0, 0, 0, 0},
		"B": {1, 0, 0, 160},
		"C": {1, 1, 130, 160},
		"D": {2, 0, 0, 320},
	})
	assert.Equal(t, 1, res.Stats.Blocked)
	assert.Equal(t, 0, res.Stats.Crossings)
	assert.Equal(t, 230.0, res.Width)
	assert.Equal(t, 380.0, res.Height)
}

func TestCompute_FanOut(t *testing.T) {
	g := buildGraph(t,
		[]nodeSpec{{"r", 100, 60}, {"a", 100, 60}, {"b", 100, 60}, {"c", 100, 60}},
		[][2]string{{"r", "a"}, {"r", "b"}, {"r", "c"}})

	_, err := Compute(g, DefaultOptions())
	require.NoError(t, err)

	assertPlaced(t, g, map[string]placed{
		"r": {0, 0, 130, 0},
		"a": {1, 0, 130, 160},
		"b": {1, 1, 260, 160},
		"c": {1, -1, 0, 160},
	})
}

func TestCompute_MixedSizesAndSpacing(t *testing.T) {
	g := buildGraph(t,
		[]nodeSpec{{"r", 80, 40}, {"a", 120, 60}, {"b", 60, 30}},
		[][2]string{{"r", "a"}, {"r", "b"}, {"a", "b"}})

	res, err := Compute(g, Options{MarginX: 10, MarginY: 20, RankSep: 50, NodeSep: 20})
	require.NoError(t, err)

	assertPlaced(t, g, map[string]placed{
		"r": {0, 0, 30, 20},
		"a": {1, 0, 10, 110},
		"b": {2, 1, 150, 220},
	})
	assert.Equal(t, 220.0, res.Width)
	assert.Equal(t, 270.0, res.Height)
}

func TestCompute_RootsShareColumnZero(t *testing.T) {
	g := buildGraph(t,
		[]nodeSpec{{"a", 100, 60}, {"b", 100, 60}, {"c", 100, 60}},
		nil)

	res, err := Compute(g, DefaultOptions())
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c"} {
		n, _ := g.Node(dag.ID(id))
		assert.Equal(t, 0, n.Rank)
		assert.Equal(t, 0, n.Col)
	}
	assert.Equal(t, 1, res.Stats.Columns)
}

func TestCompute_StrictRejectsStackedRoots(t *testing.T) {
	g := buildGraph(t,
		[]nodeSpec{{"a", 100, 60}, {"b", 100, 60}},
		nil)

	opts := DefaultOptions()
	opts.Strict = true
	_, err := Compute(g, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCellOccupied)
	assert.Contains(t, err.Error(), "b at rank 0 column 0")
}

func TestCompute_StrictAcceptsDisjointPlacement(t *testing.T) {
	g := buildGraph(t,
		[]nodeSpec{{"r", 100, 60}, {"a", 100, 60}, {"b", 100, 60}},
		[][2]string{{"r", "a"}, {"r", "b"}})

	opts := DefaultOptions()
	opts.Strict = true
	_, err := Compute(g, opts)
	assert.NoError(t, err)
}

func TestCompute_Cycle(t *testing.T) {
	g := buildGraph(t,
		[]nodeSpec{{"A", 100, 60}, {"B", 100, 60}},
		[][2]string{{"A", "B"}, {"B", "A"}})

	res, err := Compute(g, DefaultOptions())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, dag.ErrCycleDetected)

	var cerr *transform.CycleError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, []dag.NodeID{dag.ID("B"), dag.ID("A"), dag.ID("B")}, cerr.Cycle)
}

func TestCompute_OnlyOnce(t *testing.T) {
	g := buildGraph(t, []nodeSpec{{"A", 100, 60}}, nil)

	_, err := Compute(g, DefaultOptions())
	require.NoError(t, err)

	_, err = Compute(g, DefaultOptions())
	assert.ErrorIs(t, err, ErrAlreadyLaidOut)

	assert.ErrorIs(t, g.AddNode(dag.Node{ID: dag.ID("B")}), dag.ErrGraphFrozen)
}

func TestCompute_EmptyGraph(t *testing.T) {
	res, err := Compute(dag.New(nil), DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Ranks)
	assert.Zero(t, res.Width)
	assert.Zero(t, res.Height)
}

func TestCrossing_UnplacedPredecessor(t *testing.T) {
	g := buildGraph(t,
		[]nodeSpec{{"a", 100, 60}, {"b", 100, 60}},
		[][2]string{{"a", "b"}})

	p := &placer{g: g, grid: NewGrid(), stats: &Stats{}}
	_, err := p.crossing(dag.ID("b"), Pos{1, 0})
	assert.ErrorIs(t, err, ErrInternalInvariant)
}

func TestCrossing_Counts(t *testing.T) {
	g := buildGraph(t,
		[]nodeSpec{{"p", 100, 60}, {"n", 100, 60}},
		[][2]string{{"p", "n"}})
	require.NoError(t, g.Place(dag.ID("p"), 0, 0))

	grid := NewGrid()
	grid.Add(Pos{0, 0}, NodeBody)
	p := &placer{g: g, grid: grid, stats: &Stats{}}

	tests := []struct {
		name  string
		setup func(*Grid)
		pos   Pos
		want  int
	}{
		{"Empty", nil, Pos{2, 0}, 0},
		{"CandidateCellCounts", func(g *Grid) { g.Add(Pos{2, 3}, EdgePassage) }, Pos{2, 3}, 1},
		{"CornerCounts", func(g *Grid) { g.Add(Pos{0, -2}, EdgePassage) }, Pos{1, -2}, 1},
		{"VerticalAndHorizontal", func(g *Grid) {
			g.Add(Pos{1, 4}, EdgePassage)
			g.Add(Pos{0, 2}, EdgePassage)
		}, Pos{2, 4}, 2},
		{"BodyOnPathBlocks", func(g *Grid) { g.Add(Pos{1, 5}, NodeBody) }, Pos{2, 5}, Blocked},
		{"BodyOnCandidateBlocks", func(g *Grid) { g.Add(Pos{1, -6}, NodeBody) }, Pos{1, -6}, Blocked},
		{"OwnColumnBelowBody", func(g *Grid) { g.Add(Pos{1, 0}, NodeBody) }, Pos{2, 0}, Blocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup(grid)
			}
			got, err := p.crossing(dag.ID("n"), tt.pos)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCrossing_NoPredecessors(t *testing.T) {
	g := buildGraph(t, []nodeSpec{{"root", 100, 60}}, nil)
	grid := NewGrid()
	grid.Add(Pos{0, 0}, NodeBody)
	p := &placer{g: g, grid: grid, stats: &Stats{}}

	got, err := p.crossing(dag.ID("root"), Pos{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, got, "roots cost nothing, even on an occupied cell")
}

func TestBestColumn_BlockedLosesToFinite(t *testing.T) {
	g := buildGraph(t,
		[]nodeSpec{{"p", 100, 60}, {"n", 100, 60}},
		[][2]string{{"p", "n"}})
	require.NoError(t, g.Place(dag.ID("p"), 0, 0))

	grid := NewGrid()
	grid.Add(Pos{0, 0}, NodeBody)
	grid.Add(Pos{1, 0}, NodeBody) // column 0 of rank 1 is taken
	p := &placer{g: g, grid: grid, stats: &Stats{}}

	col, cost, err := p.bestColumn(dag.ID("n"), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, col, "ties between -1 and 1 go to the later candidate")
	assert.Equal(t, 0, cost)
}

func TestBestColumn_BrokenBounds(t *testing.T) {
	g := buildGraph(t, []nodeSpec{{"n", 100, 60}}, nil)
	grid := NewGrid()
	grid.left = 1
	p := &placer{g: g, grid: grid, stats: &Stats{}}

	_, _, err := p.bestColumn(dag.ID("n"), 0)
	assert.ErrorIs(t, err, ErrInternalInvariant)
}

func TestCompute_RanksRespectEdges(t *testing.T) {
	g := buildGraph(t,
		[]nodeSpec{{"a", 50, 50}, {"b", 50, 50}, {"c", 50, 50}, {"d", 50, 50}, {"e", 50, 50}, {"", 20, 20}},
		[][2]string{{"a", "c"}, {"b", "c"}, {"c", "d"}, {"a", "e"}, {"d", ""}, {"e", ""}, {"b", "d"}})

	_, err := Compute(g, DefaultOptions())
	require.NoError(t, err)

	for _, e := range g.Edges() {
		from, _ := g.Node(e.From)
		to, _ := g.Node(e.To)
		assert.Less(t, from.Rank, to.Rank, "%s -> %s", e.From, e.To)
	}
}

func withoutDuration(s Stats) Stats {
	s.Duration = 0
	return s
}
