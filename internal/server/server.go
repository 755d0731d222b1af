// Package server exposes the discovery pipeline over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/conceptbridge/conceptbridge/internal/config"
	"github.com/conceptbridge/conceptbridge/internal/graph"
	"github.com/conceptbridge/conceptbridge/internal/store"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// DiscoveryService abstracts the pipeline for the HTTP layer.
type DiscoveryService interface {
	Discover(ctx context.Context, seed string) (*graph.DiscoveryResult, error)
	DiscoverConstrained(ctx context.Context, seed string, disciplines []string) (*graph.DiscoveryResult, error)
	DiscoverBridge(ctx context.Context, seeds []string) (*graph.DiscoveryResult, error)
	Expand(ctx context.Context, seed string, existing []string) (*graph.DiscoveryResult, error)
	InvalidateCache(ctx context.Context, seed string)
}

type Server struct {
	discovery DiscoveryService
	store     store.GraphStore
	validate  *validator.Validate
	origins   map[string]struct{}
	logger    *slog.Logger
	server    *http.Server
}

// New builds the server around an already-wired discovery service. graphStore
// may be nil; the search, disciplines, and stats endpoints then report the
// store as unavailable.
func New(cfg config.ServerConfig, svc DiscoveryService, graphStore store.GraphStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		origins[o] = struct{}{}
	}

	s := &Server{
		discovery: svc,
		store:     graphStore,
		validate:  validator.New(),
		origins:   origins,
		logger:    logger,
	}
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.registerRoutes(),
	}
	return s
}

// Start runs ListenAndServe on its own goroutine; errors other than a clean
// shutdown land on errChan.
func (s *Server) Start(wg *sync.WaitGroup, errChan chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.logger.Info("API server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func writeAPIJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIError{Code: code, Message: message})
}
