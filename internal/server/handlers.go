package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/conceptbridge/conceptbridge/internal/graph"
)

func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeAPIError(w, http.StatusBadRequest, graph.CodeInvalidRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(req); err != nil {
		writeAPIError(w, http.StatusBadRequest, graph.CodeInvalidRequest, err.Error())
		return false
	}
	return true
}

// writeDiscoveryResult maps pipeline errors onto the API error taxonomy.
func (s *Server) writeDiscoveryResult(w http.ResponseWriter, result *graph.DiscoveryResult, err error) {
	switch {
	case err == nil:
		writeAPIJSON(w, result)
	case errors.Is(err, graph.ErrInvalidRequest):
		writeAPIError(w, http.StatusBadRequest, graph.CodeInvalidRequest, err.Error())
	case errors.Is(err, graph.ErrNoConcepts):
		writeAPIError(w, http.StatusNotFound, graph.CodeNoConcepts, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeAPIError(w, http.StatusGatewayTimeout, graph.CodeTimeout, "discovery timed out")
	default:
		s.logger.Error("discovery failed", "error", err)
		writeAPIError(w, http.StatusInternalServerError, graph.CodeInternal, "internal error")
	}
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	var req DiscoverRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	result, err := s.discovery.Discover(r.Context(), req.Concept)
	s.writeDiscoveryResult(w, result, err)
}

func (s *Server) handleDisciplined(w http.ResponseWriter, r *http.Request) {
	var req DisciplinedRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	result, err := s.discovery.DiscoverConstrained(r.Context(), req.Concept, req.Disciplines)
	s.writeDiscoveryResult(w, result, err)
}

func (s *Server) handleBridge(w http.ResponseWriter, r *http.Request) {
	var req BridgeRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	result, err := s.discovery.DiscoverBridge(r.Context(), req.Concepts)
	s.writeDiscoveryResult(w, result, err)
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	var req ExpandRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	result, err := s.discovery.Expand(r.Context(), req.Concept, req.ExistingConcepts)
	s.writeDiscoveryResult(w, result, err)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeAPIError(w, http.StatusBadRequest, graph.CodeInvalidRequest, "q is required")
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if s.store == nil {
		writeAPIError(w, http.StatusServiceUnavailable, graph.CodeStoreError, "store not configured")
		return
	}

	results, err := s.store.SearchConcepts(r.Context(), query, limit)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, graph.CodeStoreError, "search failed")
		return
	}
	writeAPIJSON(w, SearchResponse{Query: query, Results: results})
}

func (s *Server) handleDisciplines(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeAPIError(w, http.StatusServiceUnavailable, graph.CodeStoreError, "store not configured")
		return
	}
	disciplines, err := s.store.Disciplines(r.Context())
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, graph.CodeStoreError, "discipline listing failed")
		return
	}
	if disciplines == nil {
		disciplines = []string{}
	}
	writeAPIJSON(w, disciplines)
}

func (s *Server) handleRelationTypes(w http.ResponseWriter, r *http.Request) {
	writeAPIJSON(w, RelationTypesResponse{Types: graph.RelationTypes()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := StatsResponse{Version: Version}
	if s.store != nil {
		if disciplines, err := s.store.Disciplines(r.Context()); err == nil {
			stats.Disciplines = len(disciplines)
		}
	}
	writeAPIJSON(w, stats)
}

func (s *Server) handleInvalidateCache(w http.ResponseWriter, r *http.Request) {
	var req InvalidateRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	s.discovery.InvalidateCache(r.Context(), req.Concept)
	writeAPIJSON(w, map[string]any{"success": true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeAPIJSON(w, map[string]string{"status": "ok", "version": Version})
}
