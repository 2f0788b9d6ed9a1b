package forms

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowgrid/pkg/dag"
	"github.com/matzehuels/flowgrid/pkg/layout"
)

func demoFlow() *Flow {
	return &Flow{
		Pages: []Page{
			{ID: "1", FormElements: []FormElement{{ID: "1"}}, Width: 50},
			{ID: "2", FormElements: []FormElement{{ID: "2"}}},
			{ID: "3", FormElements: []FormElement{{ID: "3"}}},
			{ID: "4", FormElements: []FormElement{{ID: "4"}}},
			{ID: "5"},
		},
		Routing: map[string][]Route{
			"1": {{Target: "3"}, {Target: "4"}, {Target: "5"}},
			"2": {{Target: "4"}, {Target: "5"}, {}},
			"3": {{Target: "5"}, {}},
			"4": {{}},
		},
	}
}

func TestToDAG(t *testing.T) {
	g, err := demoFlow().ToDAG()
	require.NoError(t, err)

	assert.Equal(t, []dag.NodeID{
		dag.ID("1"), dag.ID("2"), dag.ID("3"), dag.ID("4"), dag.ID("5"), dag.Sink,
	}, g.IDs())
	assert.Equal(t, 9, g.EdgeCount())
	assert.Equal(t, []dag.NodeID{dag.ID("2"), dag.ID("3"), dag.ID("4")}, g.Referrers(dag.Sink))

	one, _ := g.Node(dag.ID("1"))
	assert.Equal(t, 50.0, one.Width)
	assert.Equal(t, DefaultPageHeight, one.Height)

	sink, _ := g.Node(dag.Sink)
	assert.Equal(t, DefaultSinkWidth, sink.Width)
	assert.Equal(t, DefaultSinkHeight, sink.Height)
}

func TestToDAG_NoSinkWithoutLeavingRoutes(t *testing.T) {
	f := &Flow{
		Pages: []Page{
			{ID: "start", FormElements: []FormElement{{ID: "next"}}},
			{ID: "end"},
		},
		Routing: map[string][]Route{"next": {{Target: "end"}}},
	}

	g, err := f.ToDAG()
	require.NoError(t, err)
	assert.False(t, g.Has(dag.Sink))
	assert.Equal(t, []dag.Edge{{From: dag.ID("start"), To: dag.ID("end")}}, g.Edges())
}

func TestToDAG_CustomSinkSize(t *testing.T) {
	f := &Flow{
		Pages:   []Page{{ID: "p", FormElements: []FormElement{{ID: "done"}}}},
		Routing: map[string][]Route{"done": {{}}},
		Sink:    &Size{Width: 40},
	}

	g, err := f.ToDAG()
	require.NoError(t, err)
	sink, ok := g.Node(dag.Sink)
	require.True(t, ok)
	assert.Equal(t, 40.0, sink.Width)
	assert.Equal(t, DefaultSinkHeight, sink.Height)
}

func TestToDAG_UnknownFormElement(t *testing.T) {
	f := demoFlow()
	f.Routing["ghost"] = []Route{{Target: "1"}}
	f.Routing["phantom"] = []Route{{}}

	_, err := f.ToDAG()
	assert.ErrorIs(t, err, ErrUnknownFormElement)
	assert.EqualError(t, err, "unknown form element: ghost, phantom")
}

func TestToDAG_NonFiniteSize(t *testing.T) {
	f := demoFlow()
	f.Pages[1].Width = math.Inf(1)
	_, err := f.ToDAG()
	assert.ErrorIs(t, err, dag.ErrInvalidSize)
	assert.Contains(t, err.Error(), `page "2"`)

	f = demoFlow()
	f.Sink = &Size{Width: 100, Height: math.NaN()}
	_, err = f.ToDAG()
	assert.ErrorIs(t, err, dag.ErrInvalidSize)
}

func TestToDAG_SharedFormElementRoutesFromLastPage(t *testing.T) {
	f := &Flow{
		Pages: []Page{
			{ID: "a", FormElements: []FormElement{{ID: "next"}}},
			{ID: "b", FormElements: []FormElement{{ID: "next"}}},
			{ID: "c"},
		},
		Routing: map[string][]Route{"next": {{Target: "c"}}},
	}

	g, err := f.ToDAG()
	require.NoError(t, err)
	assert.Equal(t, []dag.NodeID{dag.ID("b")}, g.Referrers(dag.ID("c")))
	assert.Equal(t, 1, g.EdgeCount())
}

func TestToDAG_UnknownTargetPage(t *testing.T) {
	f := demoFlow()
	f.Routing["4"] = []Route{{Target: "99"}}

	_, err := f.ToDAG()
	assert.ErrorIs(t, err, dag.ErrUnknownNode)
	assert.Contains(t, err.Error(), `form element "4"`)
}

func TestToDAG_DuplicatePage(t *testing.T) {
	f := &Flow{Pages: []Page{{ID: "a"}, {ID: "a"}}}

	_, err := f.ToDAG()
	assert.ErrorIs(t, err, dag.ErrDuplicateNodeID)
}

func TestLayout_RoutesOnly(t *testing.T) {
	g, err := demoFlow().ToDAG()
	require.NoError(t, err)

	_, err = layout.Compute(g, layout.DefaultOptions())
	require.NoError(t, err)

	// Pages 1 and 2 have no incoming routes and share the first cell.
	want := map[dag.NodeID][4]float64{
		dag.ID("1"): {0, 0, 155, 0},
		dag.ID("2"): {0, 0, 130, 0},
		dag.ID("3"): {1, 0, 130, 160},
		dag.ID("4"): {1, 1, 260, 160},
		dag.ID("5"): {2, -1, 0, 320},
		dag.Sink:    {2, 0, 130, 335},
	}
	for id, w := range want {
		n, _ := g.Node(id)
		assert.Equal(t, w, [4]float64{float64(n.Rank), float64(n.Col), n.X, n.Y}, "node %s", id)
	}
}

func TestLayout_ChainedPages(t *testing.T) {
	f := demoFlow()
	f.ChainPages = true
	g, err := f.ToDAG()
	require.NoError(t, err)

	res, err := layout.Compute(g, layout.DefaultOptions())
	require.NoError(t, err)

	want := map[dag.NodeID][4]float64{
		dag.ID("1"): {0, 0, 285, 0},
		dag.ID("2"): {1, 0, 260, 160},
		dag.ID("3"): {2, 1, 390, 320},
		dag.ID("4"): {3, -1, 130, 480},
		dag.ID("5"): {4, 2, 520, 640},
		dag.Sink:    {4, -2, 0, 655},
	}
	for id, w := range want {
		n, _ := g.Node(id)
		assert.Equal(t, w, [4]float64{float64(n.Rank), float64(n.Col), n.X, n.Y}, "node %s", id)
	}
	assert.Equal(t, 5, res.Stats.Ranks)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	yamlDoc := `pages:
  - id: welcome
    title: Welcome
    formElements:
      - id: start
  - id: details
routing:
  start:
    - target: details
    - {}
`
	jsonDoc := `{"pages":[{"id":"welcome","title":"Welcome","formElements":[{"id":"start"}]},{"id":"details"}],
"routing":{"start":[{"target":"details"},{}]}}`

	for name, doc := range map[string]string{"flow.yaml": yamlDoc, "flow.json": jsonDoc} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

			f, err := ReadFile(path)
			require.NoError(t, err)
			require.Len(t, f.Pages, 2)
			assert.Equal(t, "Welcome", f.Pages[0].Title)
			assert.Equal(t, []Route{{Target: "details"}, {}}, f.Routing["start"])

			g, err := f.ToDAG()
			require.NoError(t, err)
			assert.True(t, g.Has(dag.Sink))
			n, _ := g.Node(dag.ID("welcome"))
			assert.Equal(t, "Welcome", n.DisplayLabel())
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte("{"), ".json")
	assert.Error(t, err)
}
