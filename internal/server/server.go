// Package server exposes the workflow confirmation boundary over HTTP:
// start a run, inspect it, resume it with a confirmation. It is one of
// several possible drivers of the workflow engine, not the engine itself.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/sivakarthick08/kpi-insight-agent-sub001/internal/workflow"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP confirmation boundary.
type Server struct {
	httpServer *http.Server
	engine     *workflow.Engine
	store      workflow.DefinitionStore
	validate   *validator.Validate
	log        *logrus.Logger
}

// Config holds server configuration.
type Config struct {
	Port   int
	Engine *workflow.Engine
	Store  workflow.DefinitionStore
	Log    *logrus.Logger
}

// New creates a server over an engine with its workflows registered.
func New(cfg Config) *Server {
	log := cfg.Log
	if log == nil {
		log = logrus.New()
	}

	s := &Server{
		engine:   cfg.Engine,
		store:    cfg.Store,
		validate: validator.New(),
		log:      log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /runs", s.handleStartRun)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)
	mux.HandleFunc("POST /runs/{id}/resume", s.handleResumeRun)
	mux.HandleFunc("GET /kpis", s.handleListKPIs)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.logRequests(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the server's HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the server and blocks until SIGINT/SIGTERM, then shuts down
// gracefully.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.log.WithField("addr", ln.Addr().String()).Info("server listening")

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		s.log.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("request handled")
	})
}
