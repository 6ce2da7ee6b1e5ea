package models

import "time"

// IndicatorPoint is one observation of an economic series.
type IndicatorPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// IndicatorSeries is a time-ordered economic series.
type IndicatorSeries struct {
	Code      int              `json:"code"`
	Name      string           `json:"name"`
	Unit      string           `json:"unit"`
	Points    []IndicatorPoint `json:"points"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// Latest returns the most recent point.
func (s *IndicatorSeries) Latest() (IndicatorPoint, bool) {
	if s == nil || len(s.Points) == 0 {
		return IndicatorPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// EconomicContext carries the indicators fetched for one run. A nil series
// means that indicator was unavailable; Errors holds the cause by name.
type EconomicContext struct {
	IPCA   *IndicatorSeries
	SELIC  *IndicatorSeries
	Errors map[string]string
}

// Indicator names used as EconomicContext.Errors keys.
const (
	IndicatorIPCA  = "ipca"
	IndicatorSELIC = "selic"
)
