package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mesh-intelligence/caseseam/pkg/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 16

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeJSON sends a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

// writeError maps err to a status code and error body. Internal errors are
// logged and their detail withheld from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := types.ErrorCode(err)
	status := statusFor(code)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()), "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

func statusFor(code string) int {
	switch code {
	case types.CodeNotFound:
		return http.StatusNotFound
	case types.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// readJSON decodes the request body into dst, rejecting trailing data.
func readJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
