// Package server exposes the backtest engine over an HTTP API. Uploaded CSV
// series are held in memory per session so that multiple strategies can be
// run against the same data without re-uploading.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/alphaflow-lab/alphaflow/internal/backtest"
	"github.com/alphaflow-lab/alphaflow/internal/config"
	"github.com/alphaflow-lab/alphaflow/internal/logger"
)

// Server serves the backtest HTTP API.
type Server struct {
	log            *logger.Logger
	engine         *backtest.Engine
	sessions       *SessionStore
	maxUploadBytes int64

	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a server around the given engine.
func NewServer(log *logger.Logger, engine *backtest.Engine, cfg config.ServerConfig) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}

	maxUploadBytes := cfg.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = config.DefaultConfig().Server.MaxUploadBytes
	}

	return &Server{
		log:            log,
		engine:         engine,
		sessions:       NewSessionStore(),
		maxUploadBytes: maxUploadBytes,
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/load-data", s.handleLoadData).Methods("POST")
	router.HandleFunc("/get-data/{session_id}", s.handleGetData).Methods("GET")
	router.HandleFunc("/backtest", s.handleBacktest).Methods("POST")

	return router
}

// Start begins serving on the given address. If address is empty, the
// configured listen address is ":8080"; ":0" picks a random port.
func (s *Server) Start(address string) error {
	if address == "" {
		address = ":8080"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("server listening", zap.String("address", listener.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			s.log.Error("server stopped", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Address returns the address the server is listening on.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}
