package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	flowerrors "github.com/matzehuels/flowgrid/pkg/errors"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    flowerrors.Code `json:"code"`
	Message string          `json:"message"`
}

func notFound(path string) error {
	return flowerrors.New(flowerrors.ErrCodeNotFound, "no route for %s", path)
}

// writeError responds with the error's code and user message. Errors
// without a code are internal; their details stay in the log.
func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	code := flowerrors.GetCode(err)
	if code == "" {
		code = flowerrors.ErrCodeInternal
	}
	status := flowerrors.HTTPStatus(code)

	msg := flowerrors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", code, "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
