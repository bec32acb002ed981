// Package server exposes the HTTP and WebSocket API: audio analysis
// jobs, synchronous transcription, the case library, and live
// transcription sessions.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nelsonlabs/morningreport/internal/analysis"
	"github.com/nelsonlabs/morningreport/internal/config"
	"github.com/nelsonlabs/morningreport/internal/jobs"
	"github.com/nelsonlabs/morningreport/internal/logging"
	"github.com/nelsonlabs/morningreport/internal/pipeline"
	"github.com/nelsonlabs/morningreport/internal/store"
	"github.com/nelsonlabs/morningreport/internal/transcriber"
)

// Analyzer is the pipeline surface the handlers need. It is an
// interface so handler tests can run without provider adapters.
type Analyzer interface {
	Transcribe(ctx context.Context, audio []byte) (analysis.TranscriptionResult, string, error)
	AnalyzeAudio(ctx context.Context, audio []byte) (pipeline.Result, error)
	AnalyzeTranscript(ctx context.Context, transcript, transcriptionProvider string) (pipeline.Result, error)
}

// DialerFactory builds the streaming dialer for a new realtime session.
// Built per session so config reloads take effect on the next session.
type DialerFactory func() (transcriber.StreamDialer, error)

// Server wires the API routes to the pipeline and stores.
type Server struct {
	cfg     *config.Manager
	pipe    Analyzer
	tracker *jobs.Tracker
	cases   *store.CaseStore
	dialers DialerFactory
	router  *gin.Engine
	log     zerolog.Logger
}

// New builds the server and its routes. cases may be nil when the case
// library is disabled.
func New(cfg *config.Manager, pipe Analyzer, tracker *jobs.Tracker, cases *store.CaseStore, dialers DialerFactory) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		cfg:     cfg,
		pipe:    pipe,
		tracker: tracker,
		cases:   cases,
		dialers: dialers,
		router:  gin.New(),
		log:     logging.WithComponent("server"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(gin.Recovery(), s.requestLogger())

	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/audio/analyze", s.handleAnalyzeAudio)
		v1.POST("/audio/transcribe", s.handleTranscribe)
		v1.POST("/transcripts/analyze", s.handleAnalyzeTranscript)
		v1.GET("/jobs/:id", s.handleGetJob)
		v1.GET("/cases", s.handleListCases)
		v1.GET("/cases/:id", s.handleGetCase)
		v1.GET("/providers", s.handleListProviders)
	}

	s.router.GET("/ws/realtime", s.handleRealtime)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Get().Server.ListenAddr
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Get().Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info().Msg("server stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
