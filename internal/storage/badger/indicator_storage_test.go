package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/common"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/interfaces"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
)

func openTestDB(t *testing.T) *BadgerDB {
	t.Helper()
	db, err := NewBadgerDB(arbor.NewLogger(), &common.CacheConfig{Enabled: true, Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestIndicatorStorage_PutGet(t *testing.T) {
	storage := NewIndicatorStorage(openTestDB(t), time.Hour, arbor.NewLogger())
	ctx := context.Background()

	_, err := storage.Get(ctx, "ipca")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)

	series := &models.IndicatorSeries{
		Code: 433,
		Name: "IPCA",
		Points: []models.IndicatorPoint{
			{Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Value: 0.42},
		},
	}
	require.NoError(t, storage.Put(ctx, "IPCA", series))

	got, err := storage.Get(ctx, " ipca ")
	require.NoError(t, err)
	assert.Equal(t, 433, got.Code)
	require.Len(t, got.Points, 1)
	assert.InDelta(t, 0.42, got.Points[0].Value, 1e-9)
	assert.True(t, got.Points[0].Date.Equal(series.Points[0].Date))

	series.Points[0].Value = 0.5
	require.NoError(t, storage.Put(ctx, "ipca", series))
	got, err = storage.Get(ctx, "ipca")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got.Points[0].Value, 1e-9)
}

func TestIndicatorStorage_Expiry(t *testing.T) {
	storage := NewIndicatorStorage(openTestDB(t), time.Hour, arbor.NewLogger())
	ctx := context.Background()

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	storage.now = func() time.Time { return now }
	require.NoError(t, storage.Put(ctx, "selic", &models.IndicatorSeries{Code: 432}))

	now = now.Add(30 * time.Minute)
	_, err := storage.Get(ctx, "selic")
	assert.NoError(t, err)

	now = now.Add(time.Hour)
	_, err = storage.Get(ctx, "selic")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
}

func TestIndicatorStorage_RejectsNil(t *testing.T) {
	storage := NewIndicatorStorage(openTestDB(t), 0, arbor.NewLogger())
	assert.Error(t, storage.Put(context.Background(), "x", nil))
}
