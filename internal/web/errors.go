package web

// Error responses carry a machine-readable code and a human-readable message.
// Technical detail stays in the server log, correlated by request id; the
// client only ever sees the mapped message.

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/biblioteca-dev/biblioteca/internal/logging"
	"github.com/biblioteca-dev/biblioteca/internal/model"
	"github.com/biblioteca-dev/biblioteca/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError maps a failure to its HTTP status:
//
//	ReferenceNotFound -> 404 (a foreign key named a nonexistent parent)
//	ValidationError   -> 400 (rejected candidate record)
//	anything else     -> 500 (generic persistence failure, detail logged only)
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context())

	var refErr *store.ReferenceNotFound
	if errors.As(err, &refErr) {
		logger.Info("reference not found",
			"path", r.URL.Path,
			"entity", refErr.Entity,
			"id", refErr.ID,
		)
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error: refErr.Error(),
			Code:  "reference_not_found",
		})
		return
	}

	var valErr *model.ValidationError
	if errors.As(err, &valErr) {
		logger.Info("invalid request body",
			"path", r.URL.Path,
			"error", valErr.Error(),
		)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: valErr.Error(),
			Code:  "invalid_record",
		})
		return
	}

	logger.Error("request failed",
		"path", r.URL.Path,
		"method", r.Method,
		"error", err.Error(),
	)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: "internal server error",
		Code:  "persistence_failure",
	})
}

// respondBadRequest reports a malformed request (undecodable body, missing or
// invalid query parameter) without touching the error taxonomy.
func (s *Server) respondBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	logging.FromContext(r.Context()).Info("bad request", "path", r.URL.Path, "reason", msg)
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Code: "bad_request"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
