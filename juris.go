// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package juris assembles the legal question pipeline from a configuration.
package juris

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/juris/ai"
	"github.com/poiesic/juris/ai/openai"
	"github.com/poiesic/juris/answer"
	"github.com/poiesic/juris/config"
	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/expand"
	"github.com/poiesic/juris/guard"
	"github.com/poiesic/juris/ingest"
	"github.com/poiesic/juris/retrieval"
	"github.com/poiesic/juris/server"
	"github.com/poiesic/juris/storage"
	"github.com/poiesic/juris/storage/badger"
	"github.com/poiesic/juris/storage/postgres"
	"github.com/poiesic/juris/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App owns every long lived component of a running juris instance.
type App struct {
	cfg          *config.Config
	repo         storage.PassageRepository
	provider     ai.AIProvider
	limiter      *guard.RateLimiter
	engine       *retrieval.Engine
	orchestrator *answer.Orchestrator
	registry     *prometheus.Registry
	logger       *slog.Logger
}

// AppOption configures Open.
type AppOption func(*appOptions)

type appOptions struct {
	provider    ai.AIProvider
	repo        storage.PassageRepository
	webSearcher web.Searcher
	monitor     retrieval.Monitor
	registry    *prometheus.Registry
	logger      *slog.Logger
}

// WithProvider replaces the OpenAI-compatible provider built from the config.
func WithProvider(p ai.AIProvider) AppOption {
	return func(o *appOptions) {
		o.provider = p
	}
}

// WithRepository replaces the passage store built from the config.
// App.Close closes it.
func WithRepository(repo storage.PassageRepository) AppOption {
	return func(o *appOptions) {
		o.repo = repo
	}
}

// WithWebSearcher replaces the Tavily client. It enables the web fallback
// even when no Tavily key is configured.
func WithWebSearcher(s web.Searcher) AppOption {
	return func(o *appOptions) {
		o.webSearcher = s
	}
}

// WithMonitor reports every fusion pass to m.
func WithMonitor(m retrieval.Monitor) AppOption {
	return func(o *appOptions) {
		o.monitor = m
	}
}

// WithRegistry registers metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) AppOption {
	return func(o *appOptions) {
		o.registry = reg
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) AppOption {
	return func(o *appOptions) {
		o.logger = logger
	}
}

// Open builds the pipeline described by cfg. The returned App must be closed.
func Open(ctx context.Context, cfg *config.Config, opts ...AppOption) (*App, error) {
	if cfg == nil {
		return nil, errors.New("juris: config is required")
	}
	options := &appOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if options.registry == nil {
		options.registry = prometheus.NewRegistry()
		options.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	app := &App{
		cfg:      cfg,
		registry: options.registry,
		logger:   options.logger,
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(ai.NewConfig(cfg.AIOptions()...))
		if err != nil {
			return nil, err
		}
	}
	app.provider = provider

	repo := options.repo
	if repo == nil {
		var err error
		repo, err = openRepository(ctx, cfg.Storage, options.logger)
		if err != nil {
			app.Close()
			return nil, err
		}
	}
	app.repo = repo

	if err := app.build(options); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) build(options *appOptions) error {
	cfg, logger := a.cfg, a.logger
	component := func(name string) *slog.Logger {
		return logger.With("component", name)
	}

	var err error
	a.limiter, err = guard.NewRateLimiter(guard.WithLimits(cfg.Guard.PerMinute, cfg.Guard.PerHour))
	if err != nil {
		return err
	}
	scorer, err := guard.NewPatternRiskScorer(guard.WithScorerLogger(component("risk-scorer")))
	if err != nil {
		return err
	}
	classifier, err := guard.NewRelevanceClassifier(
		a.provider.Completer(ai.PurposeClassification),
		guard.WithClassifierTimeout(cfg.AI.CallTimeout.Duration),
		guard.WithClassifierLogger(component("relevance")),
	)
	if err != nil {
		return err
	}
	inputGuard, err := guard.NewInputGuard(a.limiter, scorer, classifier,
		guard.WithLengthLimits(cfg.Guard.MinChars, cfg.Guard.MaxChars, cfg.Guard.MaxWords),
		guard.WithLogger(component("input-guard")),
	)
	if err != nil {
		return err
	}

	expander, err := expand.NewQueryExpander(
		a.provider.Completer(ai.PurposeExpansion),
		expand.WithTimeout(cfg.AI.CallTimeout.Duration),
		expand.WithLogger(component("expander")),
	)
	if err != nil {
		return err
	}

	a.engine, err = retrieval.NewEngine(a.repo, a.provider.Embedder(),
		retrieval.WithTopK(cfg.Retrieval.TopK),
		retrieval.WithMinScore(float32(cfg.Retrieval.MinScore)),
		retrieval.WithContextBudget(cfg.Retrieval.ContextBudget),
		retrieval.WithNamespace(cfg.Retrieval.Namespace),
		retrieval.WithPoolSize(cfg.Retrieval.PoolSize),
		retrieval.WithTimeout(cfg.AI.CallTimeout.Duration),
		retrieval.WithLogger(component("retrieval")),
	)
	if err != nil {
		return err
	}
	var fuser answer.Fuser = a.engine
	if options.monitor != nil {
		fuser = &monitoredFuser{engine: a.engine, monitor: options.monitor}
	}

	orchestratorOpts := []answer.Option{
		answer.WithMetrics(answer.NewMetrics(a.registry)),
		answer.WithLogger(component("orchestrator")),
	}
	if fallback, err := a.webFallback(options); err != nil {
		return err
	} else if fallback != nil {
		orchestratorOpts = append(orchestratorOpts, answer.WithWebFallback(fallback))
	}

	a.orchestrator, err = answer.NewOrchestrator(inputGuard, expander, fuser,
		a.provider.Completer(ai.PurposeSynthesis), orchestratorOpts...)
	return err
}

// webFallback returns nil when no web searcher is available.
func (a *App) webFallback(options *appOptions) (*web.FallbackDecider, error) {
	searcher := options.webSearcher
	if searcher == nil {
		if a.cfg.Web.APIKey == "" {
			a.logger.Info("web fallback disabled, no Tavily API key")
			return nil, nil
		}
		client, err := web.NewTavilyClient(a.cfg.Web.APIKey)
		if err != nil {
			return nil, err
		}
		searcher = client
	}
	return web.NewFallbackDecider(searcher,
		web.WithMinContextLength(a.cfg.Web.MinContextLength),
		web.WithMaxQueries(a.cfg.Web.MaxQueries),
		web.WithRateLimit(a.cfg.Web.RatePerSecond, 2),
		web.WithTimeout(a.cfg.AI.CallTimeout.Duration),
		web.WithLogger(a.logger.With("component", "web-fallback")),
	)
}

func openRepository(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (storage.PassageRepository, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		return postgres.Open(ctx, cfg.DatabaseURL, cfg.Dimensions,
			postgres.WithTable(cfg.Table),
			postgres.WithLogger(logger.With("component", "postgres")),
		)
	default:
		if cfg.Path == "" {
			logger.Warn("no storage path configured, using an in-memory knowledge base")
			return badger.NewMemoryRepository()
		}
		return badger.OpenRepository(cfg.Path)
	}
}

// Query answers one question. It never returns an error; failures are
// reported through the outcome.
func (a *App) Query(ctx context.Context, question, userID string) (string, core.QueryOutcome) {
	return a.orchestrator.Query(ctx, question, userID)
}

// Repository exposes the passage store.
func (a *App) Repository() storage.PassageRepository {
	return a.repo
}

// Registry exposes the metrics registry.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// NewLoader creates a knowledge base loader using the app's store and embedder.
func (a *App) NewLoader(opts ...ingest.Option) (*ingest.Loader, error) {
	opts = append([]ingest.Option{
		ingest.WithNamespace(a.cfg.Retrieval.Namespace),
		ingest.WithLogger(a.logger.With("component", "loader")),
	}, opts...)
	return ingest.NewLoader(a.repo, a.provider.Embedder(), opts...)
}

// NewServer creates the HTTP transport serving this app.
func (a *App) NewServer(opts ...server.Option) (*server.Server, error) {
	opts = append([]server.Option{
		server.WithAddr(a.cfg.Server.Addr),
		server.WithRequestTimeout(a.cfg.Server.RequestTimeout.Duration),
		server.WithGatherer(a.registry),
		server.WithSweeper(a.limiter, server.DefaultSweepInterval),
		server.WithLogger(a.logger.With("component", "server")),
	}, opts...)
	return server.NewServer(a, opts...)
}

// Close releases the worker pool, the provider and the store.
func (a *App) Close() error {
	if a.engine != nil {
		a.engine.Release()
	}
	var errs []error
	if a.provider != nil {
		if err := a.provider.Close(); err != nil {
			a.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			a.logger.Error("error closing passage repository", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type monitoredFuser struct {
	engine  *retrieval.Engine
	monitor retrieval.Monitor
}

func (m *monitoredFuser) Fuse(ctx context.Context, queries []string) *core.FusedContext {
	return m.engine.FuseWithMonitor(ctx, queries, m.monitor)
}
