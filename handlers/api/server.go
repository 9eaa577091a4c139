package api

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-brief/config"
	"github.com/nijaru/yt-brief/middleware"
	"github.com/nijaru/yt-brief/services/summary"
	"github.com/nijaru/yt-brief/services/transcript"
	"github.com/nijaru/yt-brief/services/video"
	"github.com/nijaru/yt-brief/validation"
)

type Server struct {
	video      *VideoHandler
	transcript *TranscriptHandler
	summary    *SummaryHandler
	config     *config.Config
	logger     *logrus.Logger
	server     *http.Server
	startTime  time.Time
}

type ServerOption func(*Server)

func NewServer(cfg *config.Config, opts ...ServerOption) *Server {
	s := &Server{
		config:    cfg,
		logger:    logrus.StandardLogger(),
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// WithServices sets up the handlers with the provided services
func WithServices(
	videoSvc video.Service,
	transcriptSvc transcript.Service,
	summarySvc summary.Service,
	validator *validation.Validator,
) ServerOption {
	return func(s *Server) {
		s.video = NewVideoHandler(videoSvc, validator)
		s.transcript = NewTranscriptHandler(transcriptSvc)
		s.summary = NewSummaryHandler(summarySvc)
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func (s *Server) Start() error {
	s.logger.WithField("port", s.config.ServerPort).Info("Starting server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// Handler exposes the full middleware-wrapped router.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	const prefix = "/api/videos"

	mux.HandleFunc("POST "+prefix+"/downloads", s.video.HandleDownload)
	mux.HandleFunc("GET "+prefix, s.video.HandleList)
	mux.HandleFunc("GET "+prefix+"/{id}", s.video.HandleGet)
	mux.HandleFunc("DELETE "+prefix+"/{id}", s.video.HandleDelete)
	mux.HandleFunc("GET "+prefix+"/{id}/download", s.video.HandleFile)

	mux.HandleFunc("POST "+prefix+"/transcript", s.transcript.HandleCreate)
	mux.HandleFunc("GET "+prefix+"/{id}/transcript", s.transcript.HandleGet)

	mux.HandleFunc("POST "+prefix+"/summarize", s.summary.HandleCreate)
	mux.HandleFunc("GET "+prefix+"/{id}/summary", s.summary.HandleGet)

	mux.HandleFunc("GET /health", s.handleHealth)

	return s.middleware(mux)
}

func (s *Server) middleware(handler http.Handler) http.Handler {
	middlewares := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logging(s.logger),
		middleware.CORS(s.config.CORS),
		middleware.Timeout(s.config.RequestTimeout),
	}

	if s.config.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(
			s.config.RateLimit.RequestsPerMinute,
			s.config.RateLimit.BurstSize,
		)
		middlewares = append(middlewares, rateLimiter.Middleware)
	}

	return middleware.Chain(handler, middlewares...)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   s.config.Version,
		"uptime":    time.Since(s.startTime).String(),
	}

	if s.config.Debug {
		status["debug"] = true
		status["goroutines"] = runtime.NumGoroutine()
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		status["memory"] = map[string]interface{}{
			"allocated": m.Alloc,
			"total":     m.TotalAlloc,
			"system":    m.Sys,
			"gc_cycles": m.NumGC,
		}
	}

	respondJSON(w, r, http.StatusOK, status)
}
