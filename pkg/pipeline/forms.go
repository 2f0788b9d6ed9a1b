package pipeline

import (
	"context"

	"github.com/matzehuels/flowgrid/pkg/adapter/forms"
	flowerrors "github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/graph"
)

// ReadFlowFile reads a page/form routing definition and converts it to a
// graph document, so it can go through the same pipeline as a graph file.
func (r *Runner) ReadFlowFile(ctx context.Context, path string) (graph.Graph, error) {
	if err := flowerrors.ValidatePath(path); err != nil {
		return graph.Graph{}, err
	}
	f, err := forms.ReadFile(path)
	if err != nil {
		return graph.Graph{}, flowerrors.Wrap(flowerrors.ErrCodeInvalidInput, err, "read flow")
	}
	return FlowDocument(f)
}

// FlowDocument converts a decoded flow to a graph document.
func FlowDocument(f *forms.Flow) (graph.Graph, error) {
	g, err := f.ToDAG()
	if err != nil {
		return graph.Graph{}, classify(err, "convert flow")
	}
	return graph.FromDAG(g), nil
}
