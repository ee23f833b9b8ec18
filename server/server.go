// Package server exposes the translator as a JSON REST API.
//
// Endpoints:
//
//	POST /api/translate          body: {"text":"..."}
//	POST /api/analyze            body: {"text":"..."}
//	POST /api/listen             body: WAV or raw 16-bit PCM audio
//	GET  /api/dictionary
//	GET  /api/dictionary/lookup?phrase=<english>
//	GET  /api/grammar
//	GET  /api/automaton[?format=dot|mermaid]
//	GET  /api/history[?limit=N]
//	GET  /healthz
//	GET  /metrics
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/minios-linux/malaykit/automaton"
	"github.com/minios-linux/malaykit/dictionary"
	"github.com/minios-linux/malaykit/history"
	"github.com/minios-linux/malaykit/metrics"
	"github.com/minios-linux/malaykit/speech"
	"github.com/minios-linux/malaykit/translator"
)

// Config holds the server's collaborators. History and Speech are optional.
type Config struct {
	Addr        string
	CORSOrigins []string

	Translator *translator.Translator
	Dictionary *dictionary.Map
	Automaton  *automaton.Automaton
	History    *history.Store
	Speech     speech.Transcriber
	Metrics    *metrics.Metrics
	Logger     *zap.SugaredLogger
}

// Server serves the API. All handlers share one Translator, which is
// safe for concurrent use.
type Server struct {
	cfg     Config
	handler http.Handler
}

// ShutdownTimeout bounds graceful shutdown in Run.
const ShutdownTimeout = 5 * time.Second

// maxAudioBytes caps /api/listen uploads.
const maxAudioBytes = 10 << 20

// New builds a Server. Missing Automaton, Metrics and Logger are filled in
// with the sentence automaton, a fresh registry and a no-op logger.
func New(cfg Config) *Server {
	if cfg.Automaton == nil {
		cfg.Automaton = automaton.Sentence()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if cfg.Dictionary != nil {
		cfg.Metrics.SetDictionarySize(cfg.Dictionary.Len())
	}

	s := &Server{cfg: cfg}

	mux := http.NewServeMux()
	s.route(mux, "/api/translate", s.handleTranslate)
	s.route(mux, "/api/analyze", s.handleAnalyze)
	s.route(mux, "/api/listen", s.handleListen)
	s.route(mux, "/api/dictionary/lookup", s.handleLookup)
	s.route(mux, "/api/dictionary", s.handleDictionary)
	s.route(mux, "/api/grammar", s.handleGrammar)
	s.route(mux, "/api/automaton", s.handleAutomaton)
	s.route(mux, "/api/history", s.handleHistory)
	s.route(mux, "/healthz", s.handleHealth)
	mux.Handle("/metrics", cfg.Metrics.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.handler = c.Handler(mux)
	return s
}

// Handler returns the root handler, CORS included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on cfg.Addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Infow("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.cfg.Logger.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// route registers h under pattern with latency metrics and request logging.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		elapsed := time.Since(start)

		s.cfg.Metrics.ObserveRequest(pattern, r.Method, rec.status, elapsed)
		s.cfg.Logger.Debugw("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed,
		)
	})
}
