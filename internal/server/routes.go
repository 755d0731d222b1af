package server

import "net/http"

// registerRoutes sets up all API endpoints
func (s *Server) registerRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/discover", s.handleDiscover)
	mux.HandleFunc("POST /api/discover/disciplined", s.handleDisciplined)
	mux.HandleFunc("POST /api/discover/bridge", s.handleBridge)
	mux.HandleFunc("POST /api/expand", s.handleExpand)
	mux.HandleFunc("GET /api/concepts/search", s.handleSearch)
	mux.HandleFunc("GET /api/disciplines", s.handleDisciplines)
	mux.HandleFunc("GET /api/relations", s.handleRelationTypes)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("DELETE /api/cache", s.handleInvalidateCache)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	return s.corsMiddleware(mux)
}
