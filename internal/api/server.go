// Package api serves the latest screening result over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"StockRanker/internal/metrics"
	"StockRanker/internal/recorder"
	"StockRanker/internal/screener"
)

// Runner owns screening runs. *scheduler.Scheduler implements it.
type Runner interface {
	Latest() *screener.Result
	RunNow(ctx context.Context) (*screener.Result, error)
}

// Server is the read-mostly HTTP API.
type Server struct {
	router  *mux.Router
	server  *http.Server
	runner  Runner
	history recorder.Recorder
	metrics *metrics.Metrics
	topN    int
}

// NewServer builds the router. history and m may be nil.
func NewServer(addr string, runner Runner, history recorder.Recorder, m *metrics.Metrics, topN int) *Server {
	if history == nil {
		history = recorder.NewNoopRecorder()
	}
	s := &Server{
		router:  mux.NewRouter(),
		runner:  runner,
		history: history,
		metrics: m,
		topN:    topN,
	}
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute, // POST /api/runs waits for the run
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)

	s.router.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rankings", s.rankings).Methods(http.MethodGet)
	api.HandleFunc("/runs", s.triggerRun).Methods(http.MethodPost)
	api.HandleFunc("/symbols/{symbol}", s.symbol).Methods(http.MethodGet)
	api.HandleFunc("/symbols/{symbol}/indicators", s.indicators).Methods(http.MethodGet)
	api.HandleFunc("/symbols/{symbol}/history", s.symbolHistory).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no route for "+r.URL.Path)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down http api")
	return s.server.Shutdown(ctx)
}

type ctxKey struct{}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()[:8]
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func (s *Server) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		id, _ := r.Context().Value(ctxKey{}).(string)
		log.Debug().Str("request_id", id).Str("method", r.Method).Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).Dur("took", time.Since(start)).Msg("request")
	})
}

type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
