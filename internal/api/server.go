package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/rlmproc/internal/config"
	"github.com/dgallion1/rlmproc/internal/oracle"
	"github.com/dgallion1/rlmproc/internal/pipeline"
)

// Server is the HTTP API server for the processing service.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	oracle       *oracle.Client
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, oc *oracle.Client, log *slog.Logger, cfg config.Config) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		orchestrator: orch,
		oracle:       oc,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/process", s.handleProcess)
		r.Post("/api/process/batch", s.handleBatchProcess)
		r.Get("/api/process/{jobID}/status", s.handleJobStatus)
		r.Get("/api/process/{jobID}/result", s.handleJobResult)

		r.Get("/api/jobs", s.handleListJobs)
		r.Delete("/api/jobs/{jobID}", s.handleDeleteJob)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
