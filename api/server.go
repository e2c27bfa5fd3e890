// Package api exposes the analyzer over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	orchestratorx "github.com/tanpawarit/financial-document-analyzer/agent/agents/orchestrator"
)

const (
	serviceName    = "Financial Document Analyzer"
	serviceVersion = "1.0.0"
)

// Analyzer runs the task pipeline over one stored document.
type Analyzer interface {
	Run(ctx context.Context, query, documentPath string) (orchestratorx.Result, error)
}

type Server struct {
	analyzer Analyzer
	cfg      Config
}

func NewServer(analyzer Analyzer, cfg Config) (*Server, error) {
	if analyzer == nil {
		return nil, errors.New("analyzer is required")
	}
	if strings.TrimSpace(cfg.UploadDir) == "" {
		return nil, errors.New("upload dir is required")
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, errors.New("max upload bytes must be positive")
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, err
	}
	return &Server{analyzer: analyzer, cfg: cfg}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/analyze", s.handleAnalyze)
	return r
}

// HTTPServer wraps Routes with the configured address and timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
}
