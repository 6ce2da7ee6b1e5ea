package economic

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/interfaces"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
)

// Indicator describes one series to fetch.
type Indicator struct {
	Name string // models.IndicatorIPCA or models.IndicatorSELIC
	Code int
	Unit string
}

// Service fetches the economic indicators of a run. Each indicator is
// fetched on its own; one failing leaves the other untouched.
type Service struct {
	source interfaces.IndicatorSource
	cache  interfaces.IndicatorCache
	ipca   Indicator
	selic  Indicator
	months int
	now    func() time.Time
	logger arbor.ILogger
}

// NewService creates the service. cache may be nil.
func NewService(source interfaces.IndicatorSource, cache interfaces.IndicatorCache, ipcaCode, selicCode, months int, logger arbor.ILogger) *Service {
	if months <= 0 {
		months = 24
	}
	return &Service{
		source: source,
		cache:  cache,
		ipca:   Indicator{Name: models.IndicatorIPCA, Code: ipcaCode, Unit: "% a.m."},
		selic:  Indicator{Name: models.IndicatorSELIC, Code: selicCode, Unit: "% a.a."},
		months: months,
		now:    time.Now,
		logger: logger,
	}
}

// Window returns the first day of the month months back and the current day.
func (s *Service) Window() (time.Time, time.Time) {
	now := s.now()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -s.months, 0)
	return from, to
}

// Fetch returns the indicators. It never fails as a whole: unavailable
// series are left nil with their cause in Errors.
func (s *Service) Fetch(ctx context.Context) *models.EconomicContext {
	ec := &models.EconomicContext{Errors: make(map[string]string)}
	from, to := s.Window()

	if series, err := s.fetch(ctx, s.ipca, from, to); err != nil {
		ec.Errors[s.ipca.Name] = err.Error()
	} else {
		ec.IPCA = series
	}

	if series, err := s.fetch(ctx, s.selic, from, to); err != nil {
		ec.Errors[s.selic.Name] = err.Error()
	} else {
		ec.SELIC = series
	}

	s.logger.Info().
		Bool("ipca", ec.IPCA != nil).
		Bool("selic", ec.SELIC != nil).
		Msg("Economic indicators fetched")
	return ec
}

func (s *Service) fetch(ctx context.Context, ind Indicator, from, to time.Time) (*models.IndicatorSeries, error) {
	key := fmt.Sprintf("sgs:%d:%s:%s", ind.Code, from.Format("2006-01"), to.Format("2006-01-02"))

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			s.logger.Debug().Str("indicator", ind.Name).Msg("Indicator served from cache")
			return cached, nil
		}
		if !errors.Is(err, interfaces.ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("indicator", ind.Name).Msg("Indicator cache read failed")
		}
	}

	raw, err := s.source.FetchSeries(ctx, ind.Code, from, to)
	if err != nil {
		s.logger.Warn().Err(err).Str("indicator", ind.Name).Int("code", ind.Code).Msg("Indicator fetch failed")
		return nil, err
	}
	if len(raw.Points) == 0 {
		return nil, fmt.Errorf("series %d returned no observations", ind.Code)
	}

	series := &models.IndicatorSeries{
		Code:      ind.Code,
		Name:      ind.Name,
		Unit:      ind.Unit,
		Points:    MonthlyMean(raw.Points),
		FetchedAt: raw.FetchedAt,
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, key, series); err != nil {
			s.logger.Warn().Err(err).Str("indicator", ind.Name).Msg("Indicator cache write failed")
		}
	}
	return series, nil
}

// MonthlyMean collapses points into one per calendar month, dated the first
// of the month, holding the mean of that month's values. Already monthly
// series pass through unchanged apart from the date normalisation.
func MonthlyMean(points []models.IndicatorPoint) []models.IndicatorPoint {
	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[time.Time]*bucket)
	for _, p := range points {
		month := time.Date(p.Date.Year(), p.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
		b, ok := buckets[month]
		if !ok {
			b = &bucket{}
			buckets[month] = b
		}
		b.sum += p.Value
		b.count++
	}

	out := make([]models.IndicatorPoint, 0, len(buckets))
	for month, b := range buckets {
		out = append(out, models.IndicatorPoint{Date: month, Value: b.sum / float64(b.count)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
