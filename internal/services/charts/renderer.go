package charts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/interfaces"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/services/insights"
)

// ErrEmptyChart is returned for a spec with nothing to draw.
var ErrEmptyChart = errors.New("chart has no data points")

// PNGRenderer draws chart specs as PNG files with go-chart.
type PNGRenderer struct {
	width  int
	height int
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.ChartRenderer = (*PNGRenderer)(nil)

// NewPNGRenderer creates a renderer producing images of the given size.
func NewPNGRenderer(width, height int, logger arbor.ILogger) *PNGRenderer {
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 576
	}
	return &PNGRenderer{width: width, height: height, logger: logger}
}

// Render draws spec and writes it to dest, creating parent directories.
// Nothing is written when drawing fails.
func (r *PNGRenderer) Render(ctx context.Context, spec models.ChartSpec, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(spec.Series) == 0 || len(spec.Series[0].Points) == 0 {
		return ErrEmptyChart
	}

	var buf bytes.Buffer
	var err error
	switch spec.Kind {
	case models.ChartBar:
		err = r.bar(spec).Render(chart.PNG, &buf)
	case models.ChartPairedBar:
		err = r.pairedBar(spec).Render(chart.PNG, &buf)
	case models.ChartPie:
		err = r.pie(spec).Render(chart.PNG, &buf)
	case models.ChartLine:
		var c chart.Chart
		c, err = r.line(spec)
		if err == nil {
			err = c.Render(chart.PNG, &buf)
		}
	default:
		err = fmt.Errorf("unsupported chart kind %q", spec.Kind)
	}
	if err != nil {
		return fmt.Errorf("failed to draw %s: %w", spec.Key, err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	if err := os.WriteFile(dest, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}

	r.logger.Debug().
		Str("chart", spec.Key).
		Str("path", dest).
		Int("bytes", buf.Len()).
		Msg("Chart rendered")
	return nil
}

func (r *PNGRenderer) bar(spec models.ChartSpec) chart.BarChart {
	points := spec.Series[0].Points
	bars := make([]chart.Value, 0, len(points))
	for _, p := range points {
		bars = append(bars, chart.Value{
			Label: p.Label,
			Value: p.Value,
			Style: chart.Style{FillColor: toColor(p.Color), StrokeColor: toColor(p.Color)},
		})
	}
	return r.barChart(spec, bars)
}

// pairedBar interleaves the series so each label shows its bars side by side.
func (r *PNGRenderer) pairedBar(spec models.ChartSpec) chart.BarChart {
	var bars []chart.Value
	for i := range spec.Series[0].Points {
		for _, s := range spec.Series {
			if i >= len(s.Points) {
				continue
			}
			p := s.Points[i]
			bars = append(bars, chart.Value{
				Label: fmt.Sprintf("%s (%s)", p.Label, s.Name),
				Value: p.Value,
				Style: chart.Style{FillColor: toColor(s.Color), StrokeColor: toColor(s.Color)},
			})
		}
	}
	return r.barChart(spec, bars)
}

func (r *PNGRenderer) barChart(spec models.ChartSpec, bars []chart.Value) chart.BarChart {
	lo, hi := valueRange(bars)
	spacing := 12
	width := (r.width-120)/len(bars) - spacing
	if width < 8 {
		width = 8
	}
	if width > 80 {
		width = 80
	}
	return chart.BarChart{
		Title:      spec.Title,
		Width:      r.width,
		Height:     r.height,
		BarWidth:   width,
		BarSpacing: spacing,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 120}},
		YAxis: chart.YAxis{
			ValueFormatter: formatter(spec.Format),
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars: bars,
	}
}

func (r *PNGRenderer) pie(spec models.ChartSpec) chart.PieChart {
	points := spec.Series[0].Points
	var total float64
	for _, p := range points {
		total += p.Value
	}
	values := make([]chart.Value, 0, len(points))
	for _, p := range points {
		label := p.Label
		if total > 0 {
			label = fmt.Sprintf("%s (%s)", p.Label, insights.FormatNumber(p.Value/total*100, 1)+"%")
		}
		values = append(values, chart.Value{
			Label: label,
			Value: p.Value,
			Style: chart.Style{FillColor: toColor(p.Color)},
		})
	}
	return chart.PieChart{
		Title:  spec.Title,
		Width:  r.width,
		Height: r.height,
		Values: values,
	}
}

func (r *PNGRenderer) line(spec models.ChartSpec) (chart.Chart, error) {
	s := spec.Series[0]
	if len(s.Times) != len(s.Points) || len(s.Times) < 2 {
		return chart.Chart{}, fmt.Errorf("line chart needs matching times and at least two points: %w", ErrEmptyChart)
	}
	ys := make([]float64, len(s.Points))
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for i, p := range s.Points {
		ys[i] = p.Value
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = 1
	}
	return chart.Chart{
		Title:      spec.Title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("01/2006"),
		},
		YAxis: chart.YAxis{
			ValueFormatter: formatter(spec.Format),
			Range:          &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: s.Name,
				Style: chart.Style{
					StrokeColor: toColor(s.Color),
					StrokeWidth: 2,
					DotWidth:    3,
					DotColor:    toColor(s.Color),
				},
				XValues: s.Times,
				YValues: ys,
			},
		},
	}, nil
}

// valueRange keeps zero on the axis and leaves headroom above the tallest
// bar. go-chart refuses a zero-height range.
func valueRange(bars []chart.Value) (float64, float64) {
	lo, hi := 0.0, 0.0
	for _, b := range bars {
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	hi *= 1.1
	if hi == 0 && lo == 0 {
		hi = 1
	}
	return lo * 1.1, hi
}

func formatter(f models.ValueFormat) chart.ValueFormatter {
	return func(v interface{}) string {
		x, ok := v.(float64)
		if !ok {
			return fmt.Sprintf("%v", v)
		}
		switch f {
		case models.FormatCurrency:
			return insights.FormatCurrency(decimal.NewFromFloat(x))
		case models.FormatPercent:
			return insights.FormatPercent(decimal.NewFromFloat(x), 1)
		case models.FormatCount:
			return insights.FormatCount(decimal.NewFromFloat(x).Round(0))
		default:
			return insights.FormatNumber(x, 2)
		}
	}
}

func toColor(c models.Color) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
