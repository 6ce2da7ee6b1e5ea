package models

import "time"

// ChartKind selects how a chart is drawn.
type ChartKind string

const (
	ChartBar  ChartKind = "bar"
	ChartPie  ChartKind = "pie"
	ChartLine ChartKind = "line"
	// ChartPairedBar draws two bars per label (e.g. revenue next to profit).
	ChartPairedBar ChartKind = "paired_bar"
)

// ValueFormat tells the renderer how to label values on the axis.
type ValueFormat string

const (
	FormatCurrency ValueFormat = "currency"
	FormatPercent  ValueFormat = "percent"
	FormatCount    ValueFormat = "count"
	FormatDecimal  ValueFormat = "decimal"
)

// Color is an RGBA colour.
type Color struct {
	R, G, B, A uint8
}

// ChartPoint is one labelled value.
type ChartPoint struct {
	Label string
	Value float64
	Color Color
}

// ChartSeries is a named list of points. Line charts use Times for the X axis.
type ChartSeries struct {
	Name   string
	Points []ChartPoint
	Times  []time.Time
	Color  Color
}

// ChartSpec fully describes one image to render.
type ChartSpec struct {
	Key      string
	Title    string
	Kind     ChartKind
	Category string // output directory under the report root
	Stem     string // file name prefix
	XLabel   string
	YLabel   string
	Format   ValueFormat
	Series   []ChartSeries
}

// ChartArtifact is a rendered chart image.
type ChartArtifact struct {
	Key      string
	Title    string
	Category string
	Path     string
}

// SkipReason says why a chart was not produced.
type SkipReason string

const (
	SkipMissingColumn     SkipReason = "missing_column"
	SkipNoData            SkipReason = "no_data"
	SkipRenderFailed      SkipReason = "render_failed"
	SkipSourceUnavailable SkipReason = "source_unavailable"
)

// ChartSkip records a chart that was omitted and why.
type ChartSkip struct {
	Key    string
	Reason SkipReason
	Detail string
}

// ChartSet is the outcome of one orchestration run.
type ChartSet struct {
	Artifacts map[string]ChartArtifact
	Order     []string // keys in creation order
	Skipped   []ChartSkip
}

// NewChartSet returns an empty set.
func NewChartSet() *ChartSet {
	return &ChartSet{Artifacts: make(map[string]ChartArtifact)}
}

// Add registers an artifact under its key.
func (s *ChartSet) Add(a ChartArtifact) {
	if _, exists := s.Artifacts[a.Key]; !exists {
		s.Order = append(s.Order, a.Key)
	}
	s.Artifacts[a.Key] = a
}

// Skip records an omitted chart.
func (s *ChartSet) Skip(key string, reason SkipReason, detail string) {
	s.Skipped = append(s.Skipped, ChartSkip{Key: key, Reason: reason, Detail: detail})
}

// Get returns the artifact for key.
func (s *ChartSet) Get(key string) (ChartArtifact, bool) {
	if s == nil {
		return ChartArtifact{}, false
	}
	a, ok := s.Artifacts[key]
	return a, ok
}

// Ordered returns the artifacts in creation order.
func (s *ChartSet) Ordered() []ChartArtifact {
	if s == nil {
		return nil
	}
	out := make([]ChartArtifact, 0, len(s.Order))
	for _, k := range s.Order {
		out = append(out, s.Artifacts[k])
	}
	return out
}
