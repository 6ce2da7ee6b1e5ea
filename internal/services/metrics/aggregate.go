package metrics

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
)

var (
	// ErrUnknownGroupKey is returned when the group column is not a known
	// categorical column, the table does not carry it or a row leaves it blank.
	ErrUnknownGroupKey = errors.New("unknown group key")
	// ErrUnknownMetricKey is returned for an unknown or absent numeric column.
	ErrUnknownMetricKey = errors.New("unknown metric key")
	// ErrUnknownOp is returned for an unsupported reduction.
	ErrUnknownOp = errors.New("unknown aggregate op")
)

// AggregateSpec describes one group-by reduction.
type AggregateSpec struct {
	GroupKey  string
	MetricKey string // ignored for OpCount
	Op        models.AggregateOp
	TopN      int // 0 keeps every group
}

// Aggregate groups the table by GroupKey, reduces MetricKey with Op and
// returns a ranking sorted descending, ties in first-occurrence order.
func Aggregate(t *models.Table, spec AggregateSpec) (models.Ranking, error) {
	if !spec.Op.Valid() {
		return models.Ranking{}, fmt.Errorf("%w: %q", ErrUnknownOp, spec.Op)
	}
	if !models.IsDimension(spec.GroupKey) || !t.HasColumn(spec.GroupKey) {
		return models.Ranking{}, fmt.Errorf("%w: %q", ErrUnknownGroupKey, spec.GroupKey)
	}
	if spec.Op != models.OpCount {
		if !models.IsMeasure(spec.MetricKey) || !t.HasColumn(spec.MetricKey) {
			return models.Ranking{}, fmt.Errorf("%w: %q", ErrUnknownMetricKey, spec.MetricKey)
		}
	}

	type group struct {
		sum   decimal.Decimal
		count int
	}
	groups := make(map[string]*group)
	var order []string

	for _, r := range t.Records() {
		key, _ := r.Dimension(spec.GroupKey)
		if key == "" {
			return models.Ranking{}, fmt.Errorf("%w: %q is blank on row %d", ErrUnknownGroupKey, spec.GroupKey, r.Row)
		}
		g, ok := groups[key]
		if !ok {
			g = &group{sum: decimal.Zero}
			groups[key] = g
			order = append(order, key)
		}
		g.count++
		if spec.Op != models.OpCount {
			v, _ := r.Measure(spec.MetricKey)
			g.sum = g.sum.Add(v)
		}
	}

	entries := make([]models.RankEntry, 0, len(order))
	for _, key := range order {
		g := groups[key]
		var value decimal.Decimal
		switch spec.Op {
		case models.OpSum:
			value = g.sum
		case models.OpMean:
			value = g.sum.Div(decimal.NewFromInt(int64(g.count)))
		case models.OpCount:
			value = decimal.NewFromInt(int64(g.count))
		}
		entries = append(entries, models.RankEntry{Entity: key, Value: value, Count: g.count})
	}

	ranking := models.Ranking{
		GroupKey:  spec.GroupKey,
		MetricKey: spec.MetricKey,
		Op:        spec.Op,
		Entries:   entries,
	}
	return ranking.Sorted().Top(spec.TopN), nil
}

// Sum adds a numeric column over every row.
func Sum(t *models.Table, metricKey string) (decimal.Decimal, error) {
	if !models.IsMeasure(metricKey) || !t.HasColumn(metricKey) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownMetricKey, metricKey)
	}
	total := decimal.Zero
	for _, r := range t.Records() {
		v, _ := r.Measure(metricKey)
		total = total.Add(v)
	}
	return total, nil
}

// Mean averages a numeric column; an empty table yields zero.
func Mean(t *models.Table, metricKey string) (decimal.Decimal, error) {
	total, err := Sum(t, metricKey)
	if err != nil || t.Len() == 0 {
		return decimal.Zero, err
	}
	return total.Div(decimal.NewFromInt(int64(t.Len()))), nil
}

// Ratio divides safely, returning zero for a zero denominator.
func Ratio(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}
