package pipeline

import (
	"errors"

	"github.com/matzehuels/flowgrid/pkg/adapter/forms"
	"github.com/matzehuels/flowgrid/pkg/dag"
	flowerrors "github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/graph"
	"github.com/matzehuels/flowgrid/pkg/layout"
)

// classify wraps a library error into a coded error. Errors that already
// carry a code pass through unchanged.
func classify(err error, stage string) error {
	if err == nil {
		return nil
	}
	if flowerrors.GetCode(err) != "" {
		return err
	}

	code := flowerrors.ErrCodeInternal
	switch {
	case errors.Is(err, dag.ErrCycleDetected):
		code = flowerrors.ErrCodeCycleDetected
	case errors.Is(err, dag.ErrUnknownNode):
		code = flowerrors.ErrCodeUnknownReference
	case errors.Is(err, layout.ErrCellOccupied):
		code = flowerrors.ErrCodeLayoutConflict
	case errors.Is(err, graph.ErrUnsupportedFormat):
		code = flowerrors.ErrCodeInvalidFormat
	case errors.Is(err, dag.ErrInvalidNodeID):
		code = flowerrors.ErrCodeInvalidNodeID
	case errors.Is(err, dag.ErrDuplicateNodeID),
		errors.Is(err, dag.ErrSinkNotTerminal),
		errors.Is(err, dag.ErrInvalidSize),
		errors.Is(err, graph.ErrInvalidGraph),
		errors.Is(err, forms.ErrUnknownFormElement):
		code = flowerrors.ErrCodeInvalidInput
	}
	return flowerrors.Wrap(code, err, "%s", stage)
}
