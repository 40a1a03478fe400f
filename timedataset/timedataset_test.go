package timedataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnivariateDataset(t *testing.T) {
	testData := map[string]struct {
		t        []time.Time
		y        []float64
		expected *TimeDataset
		err      error
	}{
		"no training data": {
			err: ErrNoTrainingData,
		},
		"length mismatch": {
			y:   []float64{1},
			err: ErrDatasetLenMismatch,
		},
		"non increasing time": {
			t: []time.Time{
				time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			y:   []float64{1, 2},
			err: ErrNonMontonic,
		},
		"valid": {
			t: []time.Time{
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC),
			},
			y: []float64{1, 2},
			expected: &TimeDataset{
				T: []time.Time{
					time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
					time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC),
				},
				Y: []float64{1, 2},
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			ds, err := NewUnivariateDataset(td.t, td.y)
			if td.err != nil {
				assert.ErrorAs(t, err, &td.err)
				return
			}
			assert.Equal(t, td.expected, ds)
		})
	}
}

func TestCopy(t *testing.T) {
	tSeries := []time.Time{
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	y := []float64{0, 1}
	ds, err := NewUnivariateDataset(tSeries, y)
	require.Nil(t, err)

	nextDs := ds.Copy()
	require.Equal(t, ds, nextDs)

	ds.T = []time.Time{
		time.Date(1970, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(1970, 1, 4, 0, 0, 0, 0, time.UTC),
	}
	require.NotEqual(t, nextDs, ds)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSplit(t *testing.T) {
	ds, err := NewIndexedDataset(date(2020, 1, 1), Daily, GenerateTrendY(10, 0, 1))
	require.NoError(t, err)

	testData := map[string]struct {
		pct       int
		trainLen  int
		testLen   int
		err       error
		firstTest time.Time
	}{
		"default percentage": {
			pct:       80,
			trainLen:  8,
			testLen:   2,
			firstTest: date(2020, 1, 9),
		},
		"floor of fraction": {
			pct:       55,
			trainLen:  5,
			testLen:   5,
			firstTest: date(2020, 1, 6),
		},
		"below range": {
			pct: 45,
			err: ErrInvalidSplit,
		},
		"above range": {
			pct: 100,
			err: ErrInvalidSplit,
		},
		"off step": {
			pct: 82,
			err: ErrInvalidSplit,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			train, test, err := ds.Split(td.pct)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.trainLen, train.Len())
			assert.Equal(t, td.testLen, test.Len())
			assert.Equal(t, td.firstTest, test.T[0])
			assert.Equal(t, ds.Y[:td.trainLen], train.Y)
		})
	}
}

func TestSplitEmptyPartition(t *testing.T) {
	ds, err := NewIndexedDataset(date(2020, 1, 1), Daily, []float64{1})
	require.NoError(t, err)

	_, _, err = ds.Split(80)
	assert.ErrorIs(t, err, ErrEmptyPartition)
}

func TestSliceIsCopy(t *testing.T) {
	ds, err := NewIndexedDataset(date(2020, 1, 1), Daily, []float64{1, 2, 3})
	require.NoError(t, err)

	sub := ds.Slice(1, 3)
	sub.Y[0] = 100
	assert.Equal(t, []float64{1, 2, 3}, ds.Y)
	assert.Equal(t, []time.Time{date(2020, 1, 2), date(2020, 1, 3)}, sub.T)
}
