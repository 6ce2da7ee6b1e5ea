package app

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/bcb"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/common"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/interfaces"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/services/charts"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/services/economic"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/services/ingest"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/services/llm"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/services/metrics"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/services/narrative"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/services/pdf"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/services/report"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Indicator cache, nil when disabled
	DB *badger.BadgerDB

	Loader    *ingest.Loader
	Economic  *economic.Service // nil when economic context is disabled
	Charts    *charts.Orchestrator
	Narrative *narrative.Service

	LLMService      interfaces.LLMService
	IndicatorSource interfaces.IndicatorSource
	PDFService      interfaces.PDFService
	Renderer        interfaces.ChartRenderer
	Writers         []interfaces.ReportWriter

	aggregate func(*models.Table, models.StatusRules) (*models.AggregateSet, error)
	now       func() time.Time
}

// Option replaces a default component, mainly for tests.
type Option func(*App)

// WithLLMService uses svc instead of the configured providers.
func WithLLMService(svc interfaces.LLMService) Option {
	return func(a *App) { a.LLMService = svc }
}

// WithIndicatorSource uses src instead of the central bank client.
func WithIndicatorSource(src interfaces.IndicatorSource) Option {
	return func(a *App) { a.IndicatorSource = src }
}

// WithPDFService uses svc instead of the fpdf converter.
func WithPDFService(svc interfaces.PDFService) Option {
	return func(a *App) { a.PDFService = svc }
}

// WithChartRenderer uses r instead of the PNG renderer.
func WithChartRenderer(r interfaces.ChartRenderer) Option {
	return func(a *App) { a.Renderer = r }
}

// WithAggregator replaces the aggregate builder run after derivation.
func WithAggregator(build func(*models.Table, models.StatusRules) (*models.AggregateSet, error)) Option {
	return func(a *App) { a.aggregate = build }
}

// WithClock sets the time source used for stamps and the report date.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger, opts ...Option) (*App, error) {
	app := &App{
		Config:    cfg,
		Logger:    logger,
		aggregate: metrics.BuildAggregateSet,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(app)
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Debug().
		Bool("economic_enabled", app.Economic != nil).
		Bool("cache_enabled", app.DB != nil).
		Int("writers", len(app.Writers)).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase opens the indicator cache when economic context and caching
// are both enabled. A cache that cannot be opened only costs refetching.
func (a *App) initDatabase() error {
	if !a.Config.Economic.Enabled || !a.Config.Cache.Enabled {
		return nil
	}

	db, err := badger.NewBadgerDB(a.Logger, &a.Config.Cache)
	if err != nil {
		a.Logger.Warn().Err(err).Str("path", a.Config.Cache.Path).Msg("Indicator cache unavailable, continuing without it")
		return nil
	}
	a.DB = db
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Cache.Path).
		Msg("Indicator cache initialized")
	return nil
}

// initServices builds the pipeline stages in dependency order.
func (a *App) initServices() error {
	cfg := a.Config

	opts, err := ingest.OptionsFromStrings(cfg.Input.Separator, cfg.Input.DecimalSeparator)
	if err != nil {
		return err
	}
	a.Loader = ingest.NewLoader(opts, a.Logger)

	if cfg.Economic.Enabled {
		if a.IndicatorSource == nil {
			a.IndicatorSource = bcb.NewClient(
				bcb.WithBaseURL(cfg.Economic.BaseURL),
				bcb.WithTimeout(common.ParseDurationOr(cfg.Economic.Timeout, bcb.DefaultTimeout)),
				bcb.WithInterval(common.ParseDurationOr(cfg.Economic.RateLimit, bcb.DefaultInterval)),
				bcb.WithLogger(a.Logger),
			)
		}
		var cache interfaces.IndicatorCache
		if a.DB != nil {
			cache = badger.NewIndicatorStorage(a.DB, common.ParseDurationOr(cfg.Cache.TTL, 12*time.Hour), a.Logger)
		}
		a.Economic = economic.NewService(
			a.IndicatorSource,
			cache,
			cfg.Economic.IPCASeries,
			cfg.Economic.SELICSeries,
			cfg.Economic.Months,
			a.Logger,
		)
	}

	if a.Renderer == nil {
		a.Renderer = charts.NewPNGRenderer(cfg.Report.ChartWidth, cfg.Report.ChartHeight, a.Logger)
	}
	a.Charts = charts.NewOrchestrator(a.Renderer, cfg.Report.OutputDir, a.Logger, charts.WithTopN(cfg.Report.ChartTopN))

	if a.LLMService == nil {
		a.LLMService = llm.NewProviderFactory(&cfg.Gemini, &cfg.Claude, &cfg.LLM, a.Logger)
	}
	a.Narrative = narrative.NewService(a.LLMService, "", a.Logger)

	if cfg.WantsFormat("markdown") {
		a.Writers = append(a.Writers, report.NewMarkdownWriter(cfg.Report.OutputDir, a.Logger))
	}
	if cfg.WantsFormat("pdf") {
		if a.PDFService == nil {
			a.PDFService = pdf.NewService(a.Logger)
		}
		a.Writers = append(a.Writers, report.NewPDFWriter(cfg.Report.OutputDir, a.PDFService, a.Logger))
	}
	return nil
}

// statusRules maps the configured status and channel values.
func (a *App) statusRules() models.StatusRules {
	return models.StatusRules{
		Completed: a.Config.Input.CompletedStatus,
		Returned:  a.Config.Input.ReturnedStatus,
		Physical:  a.Config.Input.PhysicalChannel,
	}
}

// Close closes all application resources
func (a *App) Close() error {
	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			return fmt.Errorf("failed to close indicator cache: %w", err)
		}
		a.DB = nil
		a.Logger.Debug().Msg("Indicator cache closed")
	}
	return nil
}
