// Package server exposes the six workflow steps over HTTP. Each session keeps its
// artifacts in a session.Store between requests.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aouyang1/sarimaflow/config"
	"github.com/aouyang1/sarimaflow/metrics"
	"github.com/aouyang1/sarimaflow/session"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Server struct {
	cfg      config.ServerConfig
	workflow config.WorkflowConfig
	store    session.Store
	metrics  *metrics.Metrics
	logger   *logrus.Logger
	router   *mux.Router
}

func New(cfg *config.Config, store session.Store, m *metrics.Metrics, logger *logrus.Logger) *Server {
	if m == nil {
		m = metrics.New()
	}
	if logger == nil {
		logger = logrus.New()
	}
	s := &Server{
		cfg:      cfg.Server,
		workflow: cfg.Workflow,
		store:    store,
		metrics:  m,
		logger:   logger,
		router:   mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.recoverPanic, s.observe)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/sessions", s.createSession).Methods(http.MethodPost)

	sess := api.PathPrefix("/sessions/{id}").Subrouter()
	sess.HandleFunc("", s.getSession).Methods(http.MethodGet)
	sess.HandleFunc("", s.deleteSession).Methods(http.MethodDelete)
	sess.HandleFunc("/setup", s.setup).Methods(http.MethodPost)
	sess.HandleFunc("/explore", s.explore).Methods(http.MethodGet)
	sess.HandleFunc("/identify", s.identify).Methods(http.MethodGet)
	sess.HandleFunc("/fit", s.fit).Methods(http.MethodPost)
	sess.HandleFunc("/summary", s.summary).Methods(http.MethodGet)
	sess.HandleFunc("/evaluate", s.evaluate).Methods(http.MethodGet)
	sess.HandleFunc("/evaluate/full.csv", s.fullRangeCSV).Methods(http.MethodGet)
	sess.HandleFunc("/forecast", s.forecast).Methods(http.MethodGet)
	sess.HandleFunc("/forecast.csv", s.forecastCSV).Methods(http.MethodGet)
	sess.HandleFunc("/plots/{name}", s.plot).Methods(http.MethodGet)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured address until ctx is cancelled, then drains open
// requests within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.cfg.Addr).Info("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("unable to serve on %s, %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("unable to shut down http server, %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

// sessionCounter is implemented by stores that can report their size.
type sessionCounter interface {
	Len() int
}

func (s *Server) countSessions() {
	if c, ok := s.store.(sessionCounter); ok {
		s.metrics.SetSessions(c.Len())
	}
}
