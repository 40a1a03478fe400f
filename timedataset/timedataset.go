package timedataset

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonMontonic        = errors.New("time feature is not monotonic")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
	ErrInvalidSplit       = errors.New("invalid train percentage")
	ErrEmptyPartition     = errors.New("split leaves an empty training or testing partition")
)

const (
	MinTrainPercent     = 50
	MaxTrainPercent     = 95
	TrainPercentStep    = 5
	DefaultTrainPercent = 80
)

// TimeDataset represents a time series storing a slice of time points and values.
// Both must be of the same length.
type TimeDataset struct {
	T []time.Time `json:"t"`
	Y []float64   `json:"y"`
}

// NewUnivariateDataset returns an instance of a TimeDataset given a time and value slice.
func NewUnivariateDataset(t []time.Time, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	for i := 1; i < len(t); i++ {
		if !t[i].After(t[i-1]) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMontonic)
		}
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(t))
	copy(tSeries, t)
	copy(ySeries, y)
	td := &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}

	return td, nil
}

// NewIndexedDataset builds the time index for y from a start date and frequency.
func NewIndexedDataset(start time.Time, freq Frequency, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	t, err := GenerateIndex(start, freq, len(y))
	if err != nil {
		return nil, fmt.Errorf("unable to generate time index, %w", err)
	}
	return NewUnivariateDataset(t, y)
}

func (td *TimeDataset) Len() int {
	if td == nil {
		return 0
	}
	return len(td.Y)
}

func (td *TimeDataset) Copy() *TimeDataset {
	tSeries := make([]time.Time, len(td.T))
	ySeries := make([]float64, len(td.T))
	copy(tSeries, td.T)
	copy(ySeries, td.Y)
	return &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}
}

// Slice returns a copy of the observations in [start, end).
func (td *TimeDataset) Slice(start, end int) *TimeDataset {
	tSeries := make([]time.Time, end-start)
	ySeries := make([]float64, end-start)
	copy(tSeries, td.T[start:end])
	copy(ySeries, td.Y[start:end])
	return &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}
}

// SplitIndex returns floor(n*pct/100).
func SplitIndex(n, pct int) int {
	return n * pct / 100
}

// ValidTrainPercent reports whether pct lies in [50, 95] on a step of 5.
func ValidTrainPercent(pct int) bool {
	return pct >= MinTrainPercent && pct <= MaxTrainPercent && pct%TrainPercentStep == 0
}

// Split partitions the dataset positionally into a training prefix and testing suffix.
func (td *TimeDataset) Split(pct int) (*TimeDataset, *TimeDataset, error) {
	if !ValidTrainPercent(pct) {
		return nil, nil, fmt.Errorf(
			"expected a multiple of %d in [%d, %d], but got %d, %w",
			TrainPercentStep, MinTrainPercent, MaxTrainPercent, pct, ErrInvalidSplit,
		)
	}
	n := td.Len()
	idx := SplitIndex(n, pct)
	if idx == 0 || idx == n {
		return nil, nil, fmt.Errorf("%d observations split at %d, %w", n, idx, ErrEmptyPartition)
	}
	return td.Slice(0, idx), td.Slice(idx, n), nil
}
