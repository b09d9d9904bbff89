package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"agentcanvas/internal/config"
	"agentcanvas/internal/project"

	"agentcanvas/pkg/logging"
)

// Server is the HTTP API of the engine. All project state is owned by the
// registry's managers; handlers translate requests into manager operations
// and typed errors into status codes.
type Server struct {
	registry   *project.Registry
	httpServer *http.Server
}

// New creates the HTTP server for the given registry.
func New(cfg config.ServerConfig, registry *project.Registry) *Server {
	s := &Server{registry: registry}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.Handler(),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the route table. Exposed separately so tests can drive the
// mux without a listening socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/projects", s.handleListProjects)
	mux.HandleFunc("POST /api/projects", s.handleCreateProject)

	mux.HandleFunc("GET /api/projects/{project}/agents", s.handleListAgents)
	mux.HandleFunc("POST /api/projects/{project}/agents", s.handleCreateAgent)
	mux.HandleFunc("GET /api/projects/{project}/agents/{file}", s.handleGetAgent)
	mux.HandleFunc("PUT /api/projects/{project}/agents/{file}", s.handlePutAgent)
	mux.HandleFunc("DELETE /api/projects/{project}/agents/{file}", s.handleDeleteAgent)

	mux.HandleFunc("POST /api/projects/{project}/connections", s.handleConnect)
	mux.HandleFunc("DELETE /api/projects/{project}/connections", s.handleDisconnect)
	mux.HandleFunc("PATCH /api/projects/{project}/connections", s.handleReorder)

	mux.HandleFunc("GET /api/projects/{project}/validate", s.handleValidate)
	mux.HandleFunc("POST /api/projects/{project}/execute-check", s.handleExecuteCheck)

	return requestLogging(mux)
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	logging.Info("HTTPServer", "Listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
