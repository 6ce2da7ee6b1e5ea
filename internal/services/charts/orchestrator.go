package charts

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime/debug"

	"github.com/ternarybob/arbor"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/interfaces"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/services/metrics"
)

// Orchestrator runs every chart definition against a derived table and
// collects whatever rendered. One failing chart never stops the others.
type Orchestrator struct {
	renderer    interfaces.ChartRenderer
	outputDir   string
	definitions []Definition
	topN        int
	logger      arbor.ILogger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDefinitions replaces the default chart definitions.
func WithDefinitions(defs []Definition) Option {
	return func(o *Orchestrator) {
		o.definitions = defs
	}
}

// WithTopN sets how many entries the top-N charts show (default 10).
func WithTopN(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.topN = n
		}
	}
}

// NewOrchestrator creates an orchestrator writing charts under outputDir.
func NewOrchestrator(renderer interfaces.ChartRenderer, outputDir string, logger arbor.ILogger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		renderer:    renderer,
		outputDir:   outputDir,
		definitions: DefaultDefinitions(),
		topN:        10,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunInput is one pipeline run's chart input.
type RunInput struct {
	Table    *models.Table
	Rules    models.StatusRules
	Economic *models.EconomicContext
	Stamp    string
}

// Run builds and renders every chart. The returned set holds the charts
// that rendered in definition order plus a skip entry for each that did not.
func (o *Orchestrator) Run(ctx context.Context, in RunInput) *models.ChartSet {
	set := models.NewChartSet()
	if in.Table == nil {
		for _, def := range o.definitions {
			for _, key := range def.Keys {
				set.Skip(key, models.SkipNoData, "no table")
			}
		}
		return set
	}

	input := &Input{
		Views:    metrics.NewViews(in.Table, in.Rules),
		Economic: in.Economic,
		Colors:   NewColorMap(metrics.Salespeople(in.Table)),
		TopN:     o.topN,
	}

	for _, def := range o.definitions {
		if ctx.Err() != nil {
			for _, key := range def.Keys {
				set.Skip(key, models.SkipRenderFailed, ctx.Err().Error())
			}
			continue
		}
		if missing := in.Table.MissingColumns(def.Required...); len(missing) > 0 {
			for _, key := range def.Keys {
				set.Skip(key, models.SkipMissingColumn, fmt.Sprintf("missing column %s", missing[0]))
			}
			o.logger.Warn().
				Str("group", def.Group).
				Str("column", missing[0]).
				Msg("Chart group skipped: required column missing")
			continue
		}
		o.runDefinition(ctx, def, input, in.Stamp, set)
	}

	o.logger.Info().
		Int("rendered", len(set.Order)).
		Int("skipped", len(set.Skipped)).
		Msg("Charts generated")
	return set
}

// runDefinition isolates one group: a panic or error skips only the keys of
// this group that have not already been handled.
func (o *Orchestrator) runDefinition(ctx context.Context, def Definition, input *Input, stamp string, set *models.ChartSet) {
	handled := make(map[string]bool, len(def.Keys))
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().
				Str("group", def.Group).
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", string(debug.Stack())).
				Msg("Chart group panicked")
			for _, key := range def.Keys {
				if !handled[key] {
					set.Skip(key, models.SkipRenderFailed, fmt.Sprintf("panic: %v", r))
				}
			}
		}
	}()

	results, err := def.Build(input)
	if err != nil {
		o.logger.Warn().Err(err).Str("group", def.Group).Msg("Chart group failed to compute")
		for _, key := range def.Keys {
			set.Skip(key, models.SkipRenderFailed, err.Error())
		}
		return
	}

	for _, b := range results {
		if b.Skip != nil {
			handled[b.Skip.Key] = true
			set.Skip(b.Skip.Key, b.Skip.Reason, b.Skip.Detail)
			o.logger.Debug().Str("chart", b.Skip.Key).Str("reason", string(b.Skip.Reason)).Msg("Chart skipped")
			continue
		}
		spec := *b.Spec
		dest := o.Path(spec, stamp)
		err := o.renderer.Render(ctx, spec, dest)
		// marked only once Render returns so a panic inside it still skips the key
		handled[spec.Key] = true
		if err != nil {
			set.Skip(spec.Key, models.SkipRenderFailed, err.Error())
			o.logger.Warn().Err(err).Str("chart", spec.Key).Msg("Chart failed to render")
			continue
		}
		set.Add(models.ChartArtifact{
			Key:      spec.Key,
			Title:    spec.Title,
			Category: spec.Category,
			Path:     dest,
		})
	}
}

// Path returns where a chart is written: <out>/<category>/<stem>_<stamp>.png.
func (o *Orchestrator) Path(spec models.ChartSpec, stamp string) string {
	name := spec.Stem
	if stamp != "" {
		name += "_" + stamp
	}
	return filepath.Join(o.outputDir, spec.Category, name+".png")
}
