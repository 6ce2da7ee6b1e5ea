package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
)

// IndicatorSource fetches one economic time series for a date range.
type IndicatorSource interface {
	FetchSeries(ctx context.Context, code int, from, to time.Time) (*models.IndicatorSeries, error)
}

// IndicatorCache stores fetched series between runs.
type IndicatorCache interface {
	Get(ctx context.Context, key string) (*models.IndicatorSeries, error)
	Put(ctx context.Context, key string, series *models.IndicatorSeries) error
}

// ErrCacheMiss is returned by IndicatorCache.Get for absent or expired keys.
var ErrCacheMiss = errors.New("indicator cache miss")
