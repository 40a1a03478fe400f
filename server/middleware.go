package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// routeName returns the path template so metric labels stay bounded.
func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		route := routeName(r)
		duration := time.Since(start)
		s.metrics.ObserveRequest(route, r.Method, wrapper.statusCode, duration)

		entry := s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"route":    route,
			"path":     r.URL.Path,
			"status":   wrapper.statusCode,
			"duration": duration,
		})
		if id := mux.Vars(r)["id"]; id != "" {
			entry = entry.WithField("session", id)
		}
		switch {
		case wrapper.statusCode >= http.StatusInternalServerError:
			entry.Error("request failed")
		case wrapper.statusCode >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Debug("request served")
		}
	})
}

func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.logger.WithFields(logrus.Fields{
					"path":  r.URL.Path,
					"panic": v,
				}).Error("handler panicked")
				writeJSONError(w, http.StatusInternalServerError, errInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
