// Package session holds the artifacts produced by the workflow steps and the stores
// that keep them between requests.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aouyang1/sarimaflow/sarima"
	"github.com/aouyang1/sarimaflow/timedataset"
	"github.com/google/uuid"
)

var (
	ErrMissingStep     = errors.New("previous step must be completed first")
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownKey      = errors.New("unknown state key")
)

// Key names an artifact a step depends on.
type Key string

const (
	KeySeries      Key = "series"
	KeyTrain       Key = "train"
	KeyDifferenced Key = "differenced"
	KeyModel       Key = "model"
)

// Step returns the workflow step that produces the artifact.
func (k Key) Step() string {
	switch k {
	case KeySeries, KeyTrain:
		return "setup"
	case KeyDifferenced:
		return "identify"
	case KeyModel:
		return "fit"
	default:
		return ""
	}
}

type ModelKind string

const (
	ModelAuto   ModelKind = "auto"
	ModelManual ModelKind = "manual"
)

func (k ModelKind) Valid() bool {
	return k == ModelAuto || k == ModelManual
}

// Differenced is the training series after differencing. T holds the training
// timestamps that survive differencing.
type Differenced struct {
	D      int                       `json:"d"`
	SD     int                       `json:"seasonal_d"`
	Period int                       `json:"s"`
	Series *timedataset.TimeDataset `json:"series"`
}

// State is everything a session has produced so far.
type State struct {
	ID           string                   `json:"id"`
	Series       *timedataset.TimeDataset `json:"series,omitempty"`
	Frequency    timedataset.Frequency    `json:"frequency,omitempty"`
	StartDate    time.Time                `json:"start_date"`
	TrainPercent int                      `json:"train_percent,omitempty"`
	Train        *timedataset.TimeDataset `json:"train,omitempty"`
	Test         *timedataset.TimeDataset `json:"test,omitempty"`
	Differenced  *Differenced             `json:"differenced,omitempty"`
	Model        *sarima.Snapshot         `json:"model,omitempty"`
	ModelKind    ModelKind                `json:"model_kind,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

func New() *State {
	now := time.Now().UTC()
	return &State{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *State) has(k Key) (bool, error) {
	switch k {
	case KeySeries:
		return s.Series != nil, nil
	case KeyTrain:
		return s.Train != nil, nil
	case KeyDifferenced:
		return s.Differenced != nil, nil
	case KeyModel:
		return s.Model != nil, nil
	default:
		return false, fmt.Errorf("%q, %w", k, ErrUnknownKey)
	}
}

// Require reports which steps must run before the caller can continue.
func (s *State) Require(keys ...Key) error {
	var missing []string
	seen := make(map[string]bool)
	for _, k := range keys {
		ok, err := s.has(k)
		if err != nil {
			return err
		}
		if ok || seen[k.Step()] {
			continue
		}
		seen[k.Step()] = true
		missing = append(missing, k.Step())
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("complete %s, %w", strings.Join(missing, " and "), ErrMissingStep)
}

// Reset drops every artifact derived from the working series.
func (s *State) Reset() {
	s.Series = nil
	s.Frequency = ""
	s.StartDate = time.Time{}
	s.TrainPercent = 0
	s.Train = nil
	s.Test = nil
	s.Differenced = nil
	s.Model = nil
	s.ModelKind = ""
}

func (s *State) Touch() {
	s.UpdatedAt = time.Now().UTC()
}
