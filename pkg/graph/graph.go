package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/flowgrid/pkg/dag"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a DAG to JSON bytes.
// Nodes keep their registration order, so equal graphs built in equal order
// marshal to equal bytes.
func MarshalGraph(g *dag.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(FromDAG(g), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a DAG to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g *dag.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(FromDAG(g), f)
}

// WriteGraph writes a DAG as JSON to an io.Writer.
// Use MarshalGraph for in-memory serialization or WriteGraphFile for files.
func WriteGraph(g *dag.Graph, w io.Writer) error {
	return writeGraphTo(FromDAG(g), w)
}

// ReadFile reads a graph document, picking the decoder from the extension
// (.json, .toml, .yaml/.yml, .hcl). It returns the decoded document without
// converting it, so callers can still read its options.
func ReadFile(path string) (Graph, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Graph{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Graph{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(data, format, path)
}

// ReadGraphFile reads a graph document and converts it to a DAG.
// Returns validation errors for malformed graphs or DAG constraint violations.
func ReadGraphFile(path string) (*dag.Graph, error) {
	gj, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ToDAG(gj)
}

// ReadGraph decodes a JSON graph from an io.Reader into a DAG.
func ReadGraph(r io.Reader) (*dag.Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	gj, err := Decode(data, FormatJSON, "")
	if err != nil {
		return nil, err
	}
	return ToDAG(gj)
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	return Decode(data, FormatJSON, "")
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(g Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
