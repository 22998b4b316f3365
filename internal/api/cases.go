package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/schema"

	"github.com/mesh-intelligence/caseseam/pkg/types"
)

// statusRequest is the body of PUT /cases/{id}/status.
type statusRequest struct {
	Status *string `json:"status"`
}

func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	q, err := s.decodeListQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.store.ListCases(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// decodeListQuery reads search, page, and pageSize from the query string.
// Absent values take the defaults; values that are not integers are
// reported as the matching validation error.
func (s *Server) decodeListQuery(r *http.Request) (types.ListQuery, error) {
	q := types.ListQuery{Page: 1, PageSize: types.DefaultPageSize}
	err := s.decoder.Decode(&q, r.URL.Query())
	if err == nil {
		return q, nil
	}

	var multi schema.MultiError
	if errors.As(err, &multi) {
		if _, ok := multi["page"]; ok {
			return q, types.ErrInvalidPage
		}
		if _, ok := multi["pageSize"]; ok {
			return q, types.ErrInvalidPageSize
		}
	}
	return q, types.ErrInvalidRequest
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, r, types.ErrInvalidRequest)
		return
	}

	var req statusRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, types.ErrInvalidRequest)
		return
	}
	if req.Status == nil {
		s.writeError(w, r, types.ErrStatusRequired)
		return
	}

	c, err := s.store.UpdateStatus(r.Context(), id, *req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
