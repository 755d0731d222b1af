package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conceptbridge/conceptbridge/internal/config"
	"github.com/conceptbridge/conceptbridge/internal/graph"
)

// stubDiscovery implements DiscoveryService with canned outputs.
type stubDiscovery struct {
	result      *graph.DiscoveryResult
	err         error
	invalidated []string
	lastSeed    string
	lastSeeds   []string
}

func (s *stubDiscovery) Discover(_ context.Context, seed string) (*graph.DiscoveryResult, error) {
	s.lastSeed = seed
	return s.result, s.err
}

func (s *stubDiscovery) DiscoverConstrained(_ context.Context, seed string, _ []string) (*graph.DiscoveryResult, error) {
	s.lastSeed = seed
	return s.result, s.err
}

func (s *stubDiscovery) DiscoverBridge(_ context.Context, seeds []string) (*graph.DiscoveryResult, error) {
	s.lastSeeds = seeds
	return s.result, s.err
}

func (s *stubDiscovery) Expand(_ context.Context, seed string, existing []string) (*graph.DiscoveryResult, error) {
	s.lastSeed = seed
	s.lastSeeds = existing
	return s.result, s.err
}

func (s *stubDiscovery) InvalidateCache(_ context.Context, seed string) {
	s.invalidated = append(s.invalidated, seed)
}

func newTestServer(svc DiscoveryService) *Server {
	cfg := config.ServerConfig{Port: 0, AllowedOrigins: []string{"http://localhost:3000"}}
	return New(cfg, svc, nil, nil)
}

func sampleResult() *graph.DiscoveryResult {
	return &graph.DiscoveryResult{
		Nodes:    []graph.ConceptNode{{ID: "root", Label: "entropy", Credibility: 0.95, Source: graph.SourceManual}},
		Metadata: graph.Metadata{TotalNodes: 1, Mode: graph.ModeAuto},
	}
}

func TestHandleDiscover(t *testing.T) {
	stub := &stubDiscovery{result: sampleResult()}
	srv := newTestServer(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/discover",
		strings.NewReader(`{"concept":"entropy"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "entropy", stub.lastSeed)

	var result graph.DiscoveryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Metadata.TotalNodes)
}

func TestHandleDiscoverValidation(t *testing.T) {
	srv := newTestServer(&stubDiscovery{result: sampleResult()})

	tests := []struct {
		name string
		path string
		body string
	}{
		{"missing concept", "/api/discover", `{}`},
		{"invalid json", "/api/discover", `{not json`},
		{"empty disciplines", "/api/discover/disciplined", `{"concept":"entropy","disciplines":[]}`},
		{"blank discipline entry", "/api/discover/disciplined", `{"concept":"entropy","disciplines":["physics",""]}`},
		{"single bridge concept", "/api/discover/bridge", `{"concepts":["entropy"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var apiErr APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
			assert.Equal(t, graph.CodeInvalidRequest, apiErr.Code)
		})
	}
}

func TestHandleDiscoverErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid request", graph.ErrInvalidRequest, http.StatusBadRequest, graph.CodeInvalidRequest},
		{"no concepts", graph.ErrNoConcepts, http.StatusNotFound, graph.CodeNoConcepts},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, graph.CodeTimeout},
		{"unclassified failure", errors.New("boom"), http.StatusInternalServerError, graph.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&stubDiscovery{err: tt.err})

			req := httptest.NewRequest(http.MethodPost, "/api/discover",
				strings.NewReader(`{"concept":"entropy"}`))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var apiErr APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
}

func TestHandleBridge(t *testing.T) {
	stub := &stubDiscovery{result: sampleResult()}
	srv := newTestServer(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/discover/bridge",
		strings.NewReader(`{"concepts":["entropy","least squares"]}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"entropy", "least squares"}, stub.lastSeeds)
}

func TestHandleExpand(t *testing.T) {
	stub := &stubDiscovery{result: sampleResult()}
	srv := newTestServer(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/expand",
		strings.NewReader(`{"concept":"entropy","existingConcepts":["Shannon entropy"]}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "entropy", stub.lastSeed)
	assert.Equal(t, []string{"Shannon entropy"}, stub.lastSeeds)
}

func TestHandleExpandRequiresConcept(t *testing.T) {
	srv := newTestServer(&stubDiscovery{result: sampleResult()})

	req := httptest.NewRequest(http.MethodPost, "/api/expand",
		strings.NewReader(`{"existingConcepts":["entropy"]}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRelationTypes(t *testing.T) {
	srv := newTestServer(&stubDiscovery{})

	req := httptest.NewRequest(http.MethodGet, "/api/relations", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body RelationTypesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Types, graph.RelationBridge)
}

func TestHandleInvalidateCache(t *testing.T) {
	stub := &stubDiscovery{}
	srv := newTestServer(stub)

	req := httptest.NewRequest(http.MethodDelete, "/api/cache",
		strings.NewReader(`{"concept":"entropy"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"entropy"}, stub.invalidated)
}

func TestHandleSearchWithoutStore(t *testing.T) {
	srv := newTestServer(&stubDiscovery{})

	req := httptest.NewRequest(http.MethodGet, "/api/concepts/search?q=entropy", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleSearchRequiresQuery(t *testing.T) {
	srv := newTestServer(&stubDiscovery{})

	req := httptest.NewRequest(http.MethodGet, "/api/concepts/search", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&stubDiscovery{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestCORSAllowedOrigin(t *testing.T) {
	srv := newTestServer(&stubDiscovery{})

	req := httptest.NewRequest(http.MethodOptions, "/api/discover", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRejectedOrigin(t *testing.T) {
	srv := newTestServer(&stubDiscovery{})

	req := httptest.NewRequest(http.MethodOptions, "/api/discover", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
