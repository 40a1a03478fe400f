package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aouyang1/sarimaflow"
	"github.com/aouyang1/sarimaflow/autoarima"
	"github.com/aouyang1/sarimaflow/export"
	"github.com/aouyang1/sarimaflow/session"
	"github.com/aouyang1/sarimaflow/timedataset"
	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type sessionResponse struct {
	ID        string                `json:"id"`
	Steps     map[string]bool       `json:"steps"`
	Frequency timedataset.Frequency `json:"frequency,omitempty"`
	ModelKind session.ModelKind     `json:"model_kind,omitempty"`
	Model     string                `json:"model,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func newSessionResponse(st *session.State) sessionResponse {
	res := sessionResponse{
		ID: st.ID,
		Steps: map[string]bool{
			session.KeySeries.Step():      st.Series != nil,
			session.KeyDifferenced.Step(): st.Differenced != nil,
			session.KeyModel.Step():       st.Model != nil,
		},
		Frequency: st.Frequency,
		ModelKind: st.ModelKind,
		CreatedAt: st.CreatedAt,
		UpdatedAt: st.UpdatedAt,
	}
	if st.Model != nil {
		res.Model = st.Model.Order.String()
	}
	return res
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusUnprocessableEntity {
		s.logger.WithFields(logrus.Fields{
			"session": mux.Vars(r)["id"],
			"step":    routeName(r),
		}).WithError(err).Warn("workflow step failed")
	}
	writeJSONError(w, status, err)
}

func (s *Server) load(ctx context.Context, r *http.Request) (*session.State, error) {
	return s.store.Get(ctx, mux.Vars(r)["id"])
}

// step loads the session, runs fn and stores the state it leaves behind.
func (s *Server) step(w http.ResponseWriter, r *http.Request, fn func(*session.State) (any, error)) {
	ctx := r.Context()
	st, err := s.load(ctx, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := fn(st)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.Put(ctx, st); err != nil {
		s.fail(w, r, fmt.Errorf("unable to save session, %w", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// view loads the session and runs fn without saving.
func (s *Server) view(w http.ResponseWriter, r *http.Request, fn func(*session.State) (any, error)) {
	st, err := s.load(r.Context(), r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := fn(st)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Create(r.Context())
	if err != nil {
		s.fail(w, r, fmt.Errorf("unable to create session, %w", err))
		return
	}
	s.countSessions()
	s.logger.WithField("session", st.ID).Info("session created")
	writeJSON(w, http.StatusCreated, newSessionResponse(st))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	s.view(w, r, func(st *session.State) (any, error) {
		return newSessionResponse(st), nil
	})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.countSessions()
	s.logger.WithField("session", id).Info("session deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setupOptions(r *http.Request) (*sarimaflow.SetupOptions, error) {
	opt := s.workflow.SetupOptions()
	var err error
	if opt.Start, err = queryDate(r, "start", opt.Start); err != nil {
		return nil, err
	}
	if f := r.URL.Query().Get("freq"); f != "" {
		if opt.Frequency, err = timedataset.ParseFrequency(f); err != nil {
			return nil, err
		}
	}
	if opt.TrainPercent, err = queryInt(r, "train_pct", opt.TrainPercent); err != nil {
		return nil, err
	}
	return opt, nil
}

// setup reads the CSV upload from the request body.
func (s *Server) setup(w http.ResponseWriter, r *http.Request) {
	opt, err := s.setupOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	s.step(w, r, func(st *session.State) (any, error) {
		return sarimaflow.SetupCSV(st, body, opt)
	})
}

func (s *Server) explore(w http.ResponseWriter, r *http.Request) {
	s.view(w, r, func(st *session.State) (any, error) {
		return sarimaflow.Explore(st)
	})
}

func (s *Server) identifyOptions(r *http.Request) (*sarimaflow.IdentifyOptions, error) {
	opt := s.workflow.IdentifyOptions()
	var err error
	if opt.Lags, err = queryInt(r, "lags", opt.Lags); err != nil {
		return nil, err
	}
	if opt.D, err = queryInt(r, "d", opt.D); err != nil {
		return nil, err
	}
	if opt.SD, err = queryInt(r, "seasonal_d", opt.SD); err != nil {
		return nil, err
	}
	if opt.Period, err = queryInt(r, "s", opt.Period); err != nil {
		return nil, err
	}
	return opt, nil
}

func (s *Server) identify(w http.ResponseWriter, r *http.Request) {
	opt, err := s.identifyOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.step(w, r, func(st *session.State) (any, error) {
		return sarimaflow.Identify(st, opt)
	})
}

// fit decodes FitOptions from the body. An empty body fits with the configured
// defaults.
func (s *Server) fit(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)); err != nil {
		s.fail(w, r, err)
		return
	}
	opt := s.workflow.FitOptions()
	if buf.Len() > 0 {
		if err := json.Unmarshal(buf.Bytes(), opt); err != nil {
			s.fail(w, r, fmt.Errorf("unable to decode fit options, %v, %w", err, ErrBadBody))
			return
		}
	}
	if opt.Kind == session.ModelAuto {
		search := autoarima.NewDefaultOptions()
		search.OnCandidate = s.metrics.ObserveCandidate
		opt.Search = search
	}

	s.step(w, r, func(st *session.State) (any, error) {
		start := time.Now()
		res, err := sarimaflow.Fit(r.Context(), st, opt)
		s.metrics.ObserveFit(string(opt.Kind), err, time.Since(start))
		if err != nil {
			return nil, err
		}
		s.logger.WithFields(logrus.Fields{
			"session":  st.ID,
			"step":     "fit",
			"order":    res.Label,
			"models":   res.ModelsEvaluated,
			"duration": res.Duration,
		}).Info("model fitted")
		return res, nil
	})
}

// summary returns the coefficient table, as JSON or as aligned text with
// ?format=text.
func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	st, err := s.load(r.Context(), r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sum, err := sarimaflow.Summary(st)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if r.URL.Query().Get("format") != "text" {
		writeJSON(w, http.StatusOK, sum)
		return
	}
	var buf bytes.Buffer
	if err := sum.TablePrint(&buf, "", "  "); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) {
	s.view(w, r, func(st *session.State) (any, error) {
		return sarimaflow.Evaluate(st)
	})
}

func (s *Server) forecastOptions(r *http.Request) (*sarimaflow.ForecastOptions, error) {
	opt := s.workflow.ForecastOptions()
	var err error
	if opt.Horizon, err = queryInt(r, "horizon", opt.Horizon); err != nil {
		return nil, err
	}
	if opt.Confidence, err = queryFloat(r, "conf", opt.Confidence); err != nil {
		return nil, err
	}
	return opt, nil
}

func (s *Server) forecast(w http.ResponseWriter, r *http.Request) {
	opt, err := s.forecastOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.view(w, r, func(st *session.State) (any, error) {
		return sarimaflow.Forecast(st, opt)
	})
}

// writeCSV buffers the file so a failure can still be reported as JSON.
func (s *Server) writeCSV(w http.ResponseWriter, r *http.Request, filename string, fn func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(buf.Bytes())
}

func (s *Server) fullRangeCSV(w http.ResponseWriter, r *http.Request) {
	s.writeCSV(w, r, export.FullRangeFilename, func(buf *bytes.Buffer) error {
		st, err := s.load(r.Context(), r)
		if err != nil {
			return err
		}
		res, err := sarimaflow.FullRange(st)
		if err != nil {
			return err
		}
		return export.WriteFullRange(buf, res.T, res.Actual, res.Predicted)
	})
}

func (s *Server) forecastCSV(w http.ResponseWriter, r *http.Request) {
	opt, err := s.forecastOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeCSV(w, r, export.ForecastFilename, func(buf *bytes.Buffer) error {
		st, err := s.load(r.Context(), r)
		if err != nil {
			return err
		}
		res, err := sarimaflow.Forecast(st, opt)
		if err != nil {
			return err
		}
		return export.WriteForecast(buf, res.Train.T, res.Train.Y, res.T, res.Forecast)
	})
}
