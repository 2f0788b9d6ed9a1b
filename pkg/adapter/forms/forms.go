// Package forms translates a paged form flow into a layout graph.
//
// A flow is an ordered list of pages, each holding form elements, plus a
// routing table from form element to the routes it can take. A route either
// targets another page or, with an empty target, leaves the flow. Leaving
// routes point at [dag.Sink], which is only added to the graph when some
// route actually leaves.
//
// [dag.Sink]: github.com/matzehuels/flowgrid/pkg/dag.Sink
package forms

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flowgrid/pkg/dag"
)

// Default node sizes.
const (
	DefaultPageWidth  = 100.0
	DefaultPageHeight = 60.0
	DefaultSinkWidth  = 100.0
	DefaultSinkHeight = 30.0
)

// ErrUnknownFormElement is returned when the routing table names a form
// element that no page contains.
var ErrUnknownFormElement = errors.New("unknown form element")

// FormElement is an input on a page that can carry routes.
type FormElement struct {
	ID string `json:"id" yaml:"id"`
}

// Page is one screen of the flow.
type Page struct {
	ID           string        `json:"id" yaml:"id"`
	Title        string        `json:"title,omitempty" yaml:"title,omitempty"`
	FormElements []FormElement `json:"formElements,omitempty" yaml:"formElements,omitempty"`
	Width        float64       `json:"width,omitempty" yaml:"width,omitempty"`
	Height       float64       `json:"height,omitempty" yaml:"height,omitempty"`
}

// Route is one outgoing option of a form element. An empty Target leaves
// the flow.
type Route struct {
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Flow is a complete paged form definition.
type Flow struct {
	Pages   []Page             `json:"pages" yaml:"pages"`
	Routing map[string][]Route `json:"routing" yaml:"routing"`
	Sink    *Size              `json:"sink,omitempty" yaml:"sink,omitempty"`

	// ChainPages links every page to the one after it, so pages without
	// explicit routes still follow the page order.
	ChainPages bool `json:"chainPages,omitempty" yaml:"chainPages,omitempty"`
}

// ToDAG builds a graph with one node per page, in page order, and one edge
// per route from the page owning the form element to the route target. A
// form element listed on several pages belongs to the last of them.
// Form elements are visited in page order and routes in declaration order,
// so the resulting edge order is deterministic.
func (f *Flow) ToDAG() (*dag.Graph, error) {
	owner := make(map[string]string)
	for _, p := range f.Pages {
		for _, fe := range p.FormElements {
			owner[fe.ID] = p.ID
		}
	}

	var unknown []string
	for id := range f.Routing {
		if _, ok := owner[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormElement, strings.Join(unknown, ", "))
	}

	g := dag.New(dag.Metadata{"source": "forms"})
	for _, p := range f.Pages {
		w, h := p.Width, p.Height
		if err := dag.CheckSize(w, h); err != nil {
			return nil, fmt.Errorf("page %q: %w", p.ID, err)
		}
		if w <= 0 {
			w = DefaultPageWidth
		}
		if h <= 0 {
			h = DefaultPageHeight
		}
		if err := g.AddNode(dag.Node{ID: dag.ID(p.ID), Label: p.Title, Width: w, Height: h}); err != nil {
			return nil, fmt.Errorf("page %q: %w", p.ID, err)
		}
	}

	if f.leaves() {
		size := Size{Width: DefaultSinkWidth, Height: DefaultSinkHeight}
		if f.Sink != nil {
			if err := dag.CheckSize(f.Sink.Width, f.Sink.Height); err != nil {
				return nil, fmt.Errorf("sink: %w", err)
			}
			if f.Sink.Width > 0 {
				size.Width = f.Sink.Width
			}
			if f.Sink.Height > 0 {
				size.Height = f.Sink.Height
			}
		}
		if err := g.AddNode(dag.Node{ID: dag.Sink, Width: size.Width, Height: size.Height}); err != nil {
			return nil, err
		}
	}

	for _, p := range f.Pages {
		for _, fe := range p.FormElements {
			if owner[fe.ID] != p.ID {
				continue
			}
			for _, r := range f.Routing[fe.ID] {
				to := dag.Sink
				if r.Target != "" {
					to = dag.ID(r.Target)
				}
				if err := g.AddEdge(dag.ID(p.ID), to); err != nil {
					return nil, fmt.Errorf("form element %q: %w", fe.ID, err)
				}
			}
		}
	}

	if f.ChainPages {
		for i := 1; i < len(f.Pages); i++ {
			if err := g.AddEdge(dag.ID(f.Pages[i-1].ID), dag.ID(f.Pages[i].ID)); err != nil {
				return nil, err
			}
		}
	}

	return g, nil
}

func (f *Flow) leaves() bool {
	for _, routes := range f.Routing {
		for _, r := range routes {
			if r.Target == "" {
				return true
			}
		}
	}
	return false
}

// Decode parses a flow document. ext selects the syntax: ".yaml" and ".yml"
// are YAML, anything else is JSON.
func Decode(data []byte, ext string) (*Flow, error) {
	var f Flow
	var err error
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode flow: %w", err)
	}
	return &f, nil
}

// ReadFile reads and decodes a flow document from path.
func ReadFile(path string) (*Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, filepath.Ext(path))
}
