package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/common"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/interfaces"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/services/charts"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/services/insights"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/services/metrics"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/services/narrative"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/services/report"
)

// Result is everything one run produced.
type Result struct {
	RunID     string
	Stamp     string
	Records   int
	Summary   string
	Economic  *models.EconomicContext
	Charts    *models.ChartSet
	Narrative models.Narrative
	Report    *models.Report
	Outputs   []interfaces.WrittenReport

	// Warnings lists degraded steps: skipped charts, missing indicators and
	// a fallback narrative.
	Warnings []string
}

// Run executes the pipeline once for the configured input. Errors are fatal;
// degraded steps are reported in Result.Warnings.
func (a *App) Run(ctx context.Context) (*Result, error) {
	started := a.now()
	res := &Result{
		RunID: common.NewRunID(),
		Stamp: common.NewStamp(started),
	}
	rules := a.statusRules()

	a.Logger.Info().
		Str("run_id", res.RunID).
		Str("input", a.Config.Input.Path).
		Msg("Starting sales report run")

	loaded, err := a.Loader.LoadFile(ctx, a.Config.Input.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales data: %w", err)
	}
	res.Records = len(loaded.Records)

	table := metrics.Derive(loaded.Records, loaded.Columns)
	set, err := a.aggregate(table, rules)
	if err != nil {
		return nil, fmt.Errorf("failed to compute aggregates: %w", err)
	}
	baselines := metrics.ComputeBaselines(set)

	if a.Economic != nil {
		res.Economic = a.Economic.Fetch(ctx)
		for _, name := range sortedKeys(res.Economic.Errors) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("indicator %s unavailable: %s", name, res.Economic.Errors[name]))
		}
	}

	// The summary gates every paid step: charts and the model call only run
	// once it exists.
	summarizer := insights.NewSummarizer(
		insights.WithTopN(a.Config.Report.TopN),
		insights.WithEconomicContext(res.Economic),
	)
	res.Summary, err = summarizer.Summarize(set, baselines)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize sales data: %w", err)
	}

	res.Charts = a.Charts.Run(ctx, charts.RunInput{
		Table:    table,
		Rules:    rules,
		Economic: res.Economic,
		Stamp:    res.Stamp,
	})
	for _, s := range res.Charts.Skipped {
		res.Warnings = append(res.Warnings, fmt.Sprintf("chart %s skipped (%s): %s", s.Key, s.Reason, s.Detail))
	}

	res.Narrative = a.Narrative.Request(ctx, res.Summary, narrative.Context{
		Date:     started,
		Location: a.Config.Report.Location,
	})
	if res.Narrative.Degraded {
		res.Warnings = append(res.Warnings, "narrative unavailable: "+res.Narrative.Cause)
	}

	blocks := report.Assemble(res.Narrative.Text, res.Charts, report.DefaultHeadingRules())
	if a.Config.Report.AppendixKeys {
		blocks = report.AppendUnplaced(blocks, res.Charts)
	}
	res.Report = &models.Report{
		Meta: models.ReportMeta{
			RunID:       res.RunID,
			Title:       a.Config.Report.Title,
			GeneratedAt: started,
			Location:    a.Config.Report.Location,
			Provider:    res.Narrative.Provider,
			Model:       res.Narrative.Model,
			Degraded:    res.Narrative.Degraded,
			Stamp:       res.Stamp,
		},
		Blocks:  blocks,
		Skipped: res.Charts.Skipped,
	}

	for _, w := range a.Writers {
		out, err := w.Write(ctx, res.Report)
		if err != nil {
			return res, fmt.Errorf("failed to write %s report: %w", w.Format(), err)
		}
		res.Outputs = append(res.Outputs, *out)
	}

	a.Logger.Info().
		Str("run_id", res.RunID).
		Int("records", res.Records).
		Int("charts", len(res.Charts.Order)).
		Int("outputs", len(res.Outputs)).
		Int("warnings", len(res.Warnings)).
		Bool("narrative_degraded", res.Narrative.Degraded).
		Dur("elapsed", a.now().Sub(started)).
		Msg("Sales report run complete")

	return res, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
