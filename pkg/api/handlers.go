package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/crocdb/crocdb-api/pkg/catalog"
	"github.com/crocdb/crocdb-api/pkg/query"
)

// decodeBody unmarshals the request body into dst. Empty bodies and
// syntactically invalid JSON are tolerated and leave dst untouched, so a
// bare POST behaves like a request with default parameters. A body that is
// valid JSON but has wrong field types is a client error.
func decodeBody(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		// A failed read is a transport problem, not a malformed body.
		return catalog.InvalidArgumentf("Unable to read request body")
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return catalog.InvalidArgumentf("Field %q must be of type %s", typeErr.Field, typeErr.Type)
		}
		return nil
	}
	return nil
}

// writeEngineError maps the catalog error taxonomy onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	var catErr *catalog.Error
	switch {
	case errors.Is(err, catalog.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, "Catalog is not ready yet")
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "Entry not found")
	case errors.As(err, &catErr) && catErr.Code == catalog.ErrInvalidArgument.Code:
		msg := catErr.Message
		if catErr.Details != "" {
			msg = catErr.Details
		}
		writeError(w, http.StatusBadRequest, msg)
	default:
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var q query.Query
	if err := decodeBody(r, &q); err != nil {
		writeEngineError(w, err)
		return
	}

	results, err := s.engine.Search(q)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildResponse(nil, results))
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slug string `json:"slug"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeEngineError(w, err)
		return
	}
	if req.Slug == "" {
		writeError(w, http.StatusBadRequest, "Slug is required")
		return
	}

	entry, err := s.engine.Entry(req.Slug)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildResponse(nil, map[string]interface{}{"entry": entry}))
}

func (s *Server) handleRandomEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.engine.RandomEntry()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildResponse(nil, map[string]interface{}{"entry": entry}))
}

func (s *Server) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	platforms, err := s.engine.Platforms()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildResponse(nil, map[string]interface{}{"platforms": platforms}))
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := s.engine.Regions()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildResponse(nil, map[string]interface{}{"regions": regions}))
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.engine.Info()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildResponse(nil, info))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, fmt.Sprintf("The requested URL %s was not found", r.URL.Path))
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "The method is not allowed for the requested URL")
}
