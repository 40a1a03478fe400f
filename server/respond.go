package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aouyang1/sarimaflow"
	"github.com/aouyang1/sarimaflow/session"
	"github.com/aouyang1/sarimaflow/timedataset"
	"github.com/goccy/go-json"
)

var (
	ErrBadQuery  = errors.New("invalid query parameter")
	ErrBadBody   = errors.New("invalid request body")
	ErrBadPlot   = errors.New("unknown plot")
	ErrBadFormat = errors.New("unsupported plot format")
	errInternal  = errors.New("internal server error")
)

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Errorf("unable to encode response, %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	b, _ := json.Marshal(errorResponse{Error: err.Error(), Status: status})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

// statusFor maps workflow errors onto HTTP status codes. Anything not recognised is a
// computation failure.
func statusFor(err error) int {
	var tooBig *http.MaxBytesError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrMissingStep):
		return http.StatusConflict
	case errors.Is(err, sarimaflow.ErrOutOfRange),
		errors.Is(err, timedataset.ErrUnknownFrequency),
		errors.Is(err, ErrBadQuery),
		errors.Is(err, ErrBadBody),
		errors.Is(err, ErrBadFormat):
		return http.StatusBadRequest
	case errors.Is(err, ErrBadPlot):
		return http.StatusNotFound
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusUnprocessableEntity
	}
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s=%q, %w", key, s, ErrBadQuery)
	}
	return v, nil
}

func queryFloat(r *http.Request, key string, def float64) (float64, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q, %w", key, s, ErrBadQuery)
	}
	return v, nil
}

func queryDate(r *http.Request, key string, def time.Time) (time.Time, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	v, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s=%q, expected YYYY-MM-DD, %w", key, s, ErrBadQuery)
	}
	return v, nil
}
