package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowgrid/pkg/cache"
	flowerrors "github.com/matzehuels/flowgrid/pkg/errors"
	"github.com/matzehuels/flowgrid/pkg/graph"
	"github.com/matzehuels/flowgrid/pkg/pipeline"
)

const flowGraph = `{
  "nodes": [
    {"id": "1"}, {"id": "2"}, {"id": "3"}, {"id": "4"}, {"id": "5"},
    {"sink": true}
  ],
  "edges": [
    {"from": "1", "to": "2"}, {"from": "2", "to": "3"}, {"from": "3", "to": "4"},
    {"from": "4", "to": "5"}, {"from": "1", "to": "3"}, {"from": "1", "to": "4"},
    {"from": "1", "to": "5"}, {"from": "2", "to": "4"}, {"from": "2", "to": "5"},
    {"from": "2", "sink": true}, {"from": "3", "to": "5"}, {"from": "3", "sink": true},
    {"from": "4", "sink": true}
  ]
}`

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	logger := log.NewWithOptions(&strings.Builder{}, log.Options{Level: log.FatalLevel})
	if cfg.Runner == nil {
		c, err := cache.NewFileCache(t.TempDir())
		require.NoError(t, err)
		cfg.Runner = pipeline.NewRunner(c, nil, logger)
	}
	cfg.Logger = logger
	return New(cfg)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body), rec.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Config{})
	rec := do(t, s, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body healthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.NotEmpty(t, body.Version)
}

func TestLayout(t *testing.T) {
	s := newTestServer(t, Config{})
	reqBody := `{"graph": ` + flowGraph + `, "options": {"marginX": 30, "margin_y": 30}}`

	rec := do(t, s, http.MethodPost, "/v1/layout", reqBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "miss", rec.Header().Get(cacheHeader))

	l, err := graph.UnmarshalLayout(rec.Body.Bytes())
	require.NoError(t, err)
	assert.NotEmpty(t, l.ID)
	assert.Equal(t, 620.0, l.Width)
	assert.Equal(t, 760.0, l.Height)
	assert.Len(t, l.Nodes, 6)

	rec = do(t, s, http.MethodPost, "/v1/layout", reqBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hit", rec.Header().Get(cacheHeader))
}

func TestLayoutDOT(t *testing.T) {
	s := newTestServer(t, Config{})
	rec := do(t, s, http.MethodPost, "/v1/layout", `{"graph": `+flowGraph+`, "format": "dot"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, contentTypeDOT, rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "digraph G {"))
}

func TestLayoutFlow(t *testing.T) {
	s := newTestServer(t, Config{})
	body := `{"flow": {
	  "pages": [
	    {"id": "start", "formElements": [{"id": "go"}]},
	    {"id": "end", "formElements": [{"id": "done"}]}
	  ],
	  "routing": {"go": [{"target": "end"}], "done": [{}]}
	}}`

	rec := do(t, s, http.MethodPost, "/v1/layout", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	l, err := graph.UnmarshalLayout(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, l.Nodes, 3)
	assert.Equal(t, 3, l.Stats.Ranks)
}

func TestLayoutErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   flowerrors.Code
		wantMsg    string
	}{
		{
			name:       "Cycle",
			body:       `{"graph": {"nodes": [{"id": "a"}, {"id": "b"}], "edges": [{"from": "a", "to": "b"}, {"from": "b", "to": "a"}]}}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   flowerrors.ErrCodeCycleDetected,
			wantMsg:    "cycle",
		},
		{
			name:       "UnknownReference",
			body:       `{"graph": {"nodes": [{"id": "start"}], "edges": [{"from": "start", "to": "strat"}]}}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   flowerrors.ErrCodeUnknownReference,
			wantMsg:    `did you mean "start"?`,
		},
		{
			name:       "StrictConflict",
			body:       `{"graph": {"nodes": [{"id": "a"}, {"id": "b"}]}, "options": {"strict": true}}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   flowerrors.ErrCodeLayoutConflict,
		},
		{
			name:       "MalformedJSON",
			body:       `{"graph": `,
			wantStatus: http.StatusBadRequest,
			wantCode:   flowerrors.ErrCodeInvalidInput,
		},
		{
			name:       "UnknownField",
			body:       `{"graph": {}, "colour": "red"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   flowerrors.ErrCodeInvalidInput,
		},
		{
			name:       "NoInput",
			body:       `{"options": {}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   flowerrors.ErrCodeInvalidInput,
			wantMsg:    "needs a graph or a flow",
		},
		{
			name:       "BothInputs",
			body:       `{"graph": {"nodes": []}, "flow": {"pages": []}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   flowerrors.ErrCodeInvalidInput,
		},
		{
			name:       "BadFormat",
			body:       `{"graph": {"nodes": []}, "format": "svg"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   flowerrors.ErrCodeInvalidFormat,
		},
		{
			name:       "BadOption",
			body:       `{"graph": {"nodes": []}, "options": {"rankSep": -5}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   flowerrors.ErrCodeInvalidOptions,
		},
	}

	s := newTestServer(t, Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/v1/layout", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			body := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, body.Code)
			if tt.wantMsg != "" {
				assert.Contains(t, body.Message, tt.wantMsg)
			}
		})
	}
}

func TestLayoutBodyLimit(t *testing.T) {
	s := newTestServer(t, Config{MaxBodyBytes: 32})
	rec := do(t, s, http.MethodPost, "/v1/layout", `{"graph": `+flowGraph+`}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "exceeds 32 bytes")
}

func TestRouting(t *testing.T) {
	s := newTestServer(t, Config{})

	rec := do(t, s, http.MethodGet, "/v2/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, flowerrors.ErrCodeNotFound, decodeError(t, rec).Code)

	rec = do(t, s, http.MethodGet, "/v1/layout", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNewRequiresRunner(t *testing.T) {
	assert.Panics(t, func() { New(Config{}) })
}

func TestServeShutdown(t *testing.T) {
	s := newTestServer(t, Config{Runner: pipeline.NewRunner(nil, nil, nil)})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
