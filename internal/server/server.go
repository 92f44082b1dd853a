package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joseph-ayodele/post-advisor/internal/entity"
	"github.com/joseph-ayodele/post-advisor/internal/export"
	"github.com/joseph-ayodele/post-advisor/internal/ingest"
	"github.com/joseph-ayodele/post-advisor/internal/repository"
)

// Pipeline is satisfied by *processor.Processor.
type Pipeline interface {
	ProcessDocument(ctx context.Context, doc entity.Document) entity.PipelineResult
	Recommend(ctx context.Context, text string) entity.RecommendationSet
	Analyze(ctx context.Context, text string) entity.PipelineResult
}

// Pinger reports database liveness; *repository.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Ingestor ingest.Ingestor
	Pipeline Pipeline
	Exports  *export.Service
	Uploads  repository.UploadRepository // optional
	DB       Pinger                      // optional
}

type Config struct {
	MaxUploadBytes int64 // default 50 MiB
	MaxJSONBytes   int64 // default 4 MiB
	MaxTextChars   int   // default 100000 runes for /recommend and /analyze_post
}

// Server exposes the pipeline over HTTP.
type Server struct {
	deps   Deps
	cfg    Config
	logger *slog.Logger
}

func New(deps Deps, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 50 << 20
	}
	if cfg.MaxJSONBytes <= 0 {
		cfg.MaxJSONBytes = 4 << 20
	}
	if cfg.MaxTextChars <= 0 {
		cfg.MaxTextChars = 100000
	}
	if deps.Exports == nil {
		deps.Exports = export.NewService(logger)
	}
	return &Server{deps: deps, cfg: cfg, logger: logger}
}

// Routes builds the full handler with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	s.RegisterHTTP(r)
	return r
}

// RegisterHTTP mounts the endpoints on r.
func (s *Server) RegisterHTTP(r chi.Router) {
	r.Post("/upload", s.handleUpload)
	r.Post("/recommend", s.handleRecommend)
	r.Post("/analyze_post", s.handleAnalyzePost)
	r.Post("/export", s.handleExport)
	r.Get("/download/{filename}", s.handleDownload)
	r.Get("/uploads", s.handleListUploads)
	r.Get("/healthz", s.handleHealthz)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.deps.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.DB.PingContext(ctx); err != nil {
			s.logger.Warn("server.healthz.db_unavailable", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
