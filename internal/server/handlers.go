package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matzehuels/flowgrid/pkg/adapter/forms"
	"github.com/matzehuels/flowgrid/pkg/buildinfo"
	flowerrors "github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/graph"
	"github.com/matzehuels/flowgrid/pkg/pipeline"
)

// Content types of layout responses.
const (
	contentTypeJSON = "application/json"
	contentTypeDOT  = "text/vnd.graphviz; charset=utf-8"
)

// cacheHeader reports whether the layout came from the cache.
const cacheHeader = "X-Flowgrid-Cache"

// layoutRequest is the body of POST /v1/layout. Exactly one of Graph and
// Flow must be set.
type layoutRequest struct {
	Graph    json.RawMessage `json:"graph,omitempty"`
	Flow     *forms.Flow     `json:"flow,omitempty"`
	Options  map[string]any  `json:"options,omitempty"`
	Format   string          `json:"format,omitempty"`
	Detailed bool            `json:"detailed,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: buildinfo.Version,
		Commit:  buildinfo.Commit,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := s.decodeLayoutRequest(w, r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	var doc graph.Graph
	switch {
	case req.Flow != nil:
		doc, err = pipeline.FlowDocument(req.Flow)
	default:
		doc, err = s.cfg.Runner.Decode(ctx, req.Graph, graph.FormatJSON, "request")
	}
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	result, err := s.cfg.Runner.Execute(ctx, doc, pipeline.Options{
		Format:    req.Format,
		Overrides: req.Options,
		Detailed:  req.Detailed,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	contentType := contentTypeJSON
	if req.Format == pipeline.FormatDOT {
		contentType = contentTypeDOT
	}
	cacheStatus := "miss"
	if result.CacheInfo.LayoutHit {
		cacheStatus = "hit"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set(cacheHeader, cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifact)
}

// decodeLayoutRequest reads and checks the request body.
func (s *Server) decodeLayoutRequest(w http.ResponseWriter, r *http.Request) (layoutRequest, error) {
	var req layoutRequest

	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, flowerrors.New(flowerrors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return req, flowerrors.Wrap(flowerrors.ErrCodeInvalidInput, err, "decode request")
	}

	hasGraph := len(bytes.TrimSpace(req.Graph)) > 0 && !bytes.Equal(bytes.TrimSpace(req.Graph), []byte("null"))
	switch {
	case hasGraph && req.Flow != nil:
		return req, flowerrors.New(flowerrors.ErrCodeInvalidInput, "set either graph or flow, not both")
	case !hasGraph && req.Flow == nil:
		return req, flowerrors.New(flowerrors.ErrCodeInvalidInput, "request needs a graph or a flow")
	}

	if req.Format == "" {
		req.Format = pipeline.DefaultFormat
	}
	if err := flowerrors.ValidateFormat(req.Format, pipeline.ValidFormats...); err != nil {
		return req, err
	}
	return req, nil
}
