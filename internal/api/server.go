package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docgrade/internal/config"
	"github.com/dgallion1/docgrade/internal/grader"
	"github.com/dgallion1/docgrade/internal/review"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docgrade.
type Server struct {
	router   chi.Router
	reviewer *review.Reviewer
	llm      *grader.Client
	log      *slog.Logger
	cfg      config.ServerConfig
}

// NewServer creates and configures the HTTP server. llm supplies the model
// name and latency stats for /api/stats/llm and may be nil.
func NewServer(reviewer *review.Reviewer, llm *grader.Client, log *slog.Logger, cfg config.ServerConfig) *Server {
	s := &Server{
		reviewer: reviewer,
		llm:      llm,
		log:      log,
		cfg:      cfg,
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

		r.Post("/api/extract", s.handleExtract)
		r.Post("/api/review", s.handleReview)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
