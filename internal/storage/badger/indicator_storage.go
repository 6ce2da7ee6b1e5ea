package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/interfaces"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
)

// indicatorEntry is the stored form of a cached series
type indicatorEntry struct {
	Key      string
	Series   models.IndicatorSeries
	StoredAt time.Time
}

// IndicatorStorage caches economic series in Badger with a fixed lifetime
type IndicatorStorage struct {
	db     *BadgerDB
	ttl    time.Duration
	now    func() time.Time
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.IndicatorCache = (*IndicatorStorage)(nil)

// NewIndicatorStorage creates an indicator cache. A zero ttl never expires.
func NewIndicatorStorage(db *BadgerDB, ttl time.Duration, logger arbor.ILogger) *IndicatorStorage {
	return &IndicatorStorage{
		db:     db,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

func (s *IndicatorStorage) normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Get returns a cached series, or interfaces.ErrCacheMiss when the key is
// absent or older than the ttl
func (s *IndicatorStorage) Get(ctx context.Context, key string) (*models.IndicatorSeries, error) {
	var entry indicatorEntry
	err := s.db.Store().Get(s.normalizeKey(key), &entry)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached series: %w", err)
	}

	if s.ttl > 0 && s.now().Sub(entry.StoredAt) > s.ttl {
		s.logger.Debug().Str("key", key).Msg("Cached series expired")
		return nil, interfaces.ErrCacheMiss
	}

	series := entry.Series
	return &series, nil
}

// Put stores a series under key, replacing any previous entry
func (s *IndicatorStorage) Put(ctx context.Context, key string, series *models.IndicatorSeries) error {
	if series == nil {
		return fmt.Errorf("cannot cache nil series")
	}
	normalizedKey := s.normalizeKey(key)
	entry := indicatorEntry{
		Key:      normalizedKey,
		Series:   *series,
		StoredAt: s.now(),
	}
	if err := s.db.Store().Upsert(normalizedKey, &entry); err != nil {
		return fmt.Errorf("failed to cache series: %w", err)
	}
	return nil
}
