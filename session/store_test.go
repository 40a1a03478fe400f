package session

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"github.com/aouyang1/sarimaflow/sarima"
	"github.com/aouyang1/sarimaflow/timedataset"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populated(t *testing.T, s *State) {
	t.Helper()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	ds, err := timedataset.NewIndexedDataset(start, timedataset.MonthEnd, []float64(timedataset.GenerateARY(40, 1, 0.5, 1, 3)))
	require.NoError(t, err)
	train, test, err := ds.Split(80)
	require.NoError(t, err)

	m, err := sarima.New(sarima.Order{P: 1}, nil)
	require.NoError(t, err)
	require.NoError(t, m.Fit(train.Y))
	snap, err := m.Snapshot()
	require.NoError(t, err)
	snap.StdErr = []float64{math.NaN()}

	s.Series = ds
	s.Frequency = timedataset.MonthEnd
	s.StartDate = start
	s.TrainPercent = 80
	s.Train = train
	s.Test = test
	s.Model = snap
	s.ModelKind = ModelManual
}

func storeRoundTrip(t *testing.T, store Store) {
	ctx := context.Background()

	s, err := store.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)

	populated(t, s)
	require.NoError(t, store.Put(ctx, s))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Series.Y, got.Series.Y)
	assert.True(t, s.Series.T[0].Equal(got.Series.T[0]))
	assert.Equal(t, s.Train.Len(), got.Train.Len())
	assert.Equal(t, s.Model.AR, got.Model.AR)
	assert.True(t, math.IsNaN(got.Model.StdErr[0]))
	assert.Equal(t, ModelManual, got.ModelKind)

	restored, err := sarima.NewFromSnapshot(got.Model)
	require.NoError(t, err)
	assert.True(t, restored.IsFitted())

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, store.Delete(ctx, s.ID), ErrSessionNotFound)
}

func TestMemoryStore(t *testing.T) {
	storeRoundTrip(t, NewMemoryStore(time.Hour))
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	a, err := store.Create(ctx)
	require.NoError(t, err)
	_, err = store.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())

	now = now.Add(30 * time.Second)
	require.NoError(t, store.Put(ctx, a))

	now = now.Add(45 * time.Second)
	_, err = store.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	now = now.Add(time.Minute)
	_, err = store.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStoreGetIsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	s, err := store.Create(ctx)
	require.NoError(t, err)

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	got.TrainPercent = 90

	again, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Zero(t, again.TrainPercent)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("SARIMAFLOW_REDIS_ADDR")
	if addr == "" {
		t.Skip("SARIMAFLOW_REDIS_ADDR not set")
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	store, err := NewRedisStore(context.Background(), RedisConfig{
		Addr:      addr,
		KeyPrefix: "sarimaflow:test:",
		TTL:       time.Minute,
	}, logger)
	require.NoError(t, err)
	defer store.Close()

	storeRoundTrip(t, store)
}

func TestNewRedisStoreRequiresAddr(t *testing.T) {
	_, err := NewRedisStore(context.Background(), RedisConfig{}, nil)
	assert.Error(t, err)
}
