package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"NewsSentinel/internal/collector"
	"NewsSentinel/internal/config"
	"NewsSentinel/internal/pipeline"
	"NewsSentinel/internal/recorder"
	"NewsSentinel/internal/sentiment"
	"NewsSentinel/internal/strategy"
)

// newPriceFetcher picks the configured price provider.
func newPriceFetcher(cfg *config.Config) (collector.PriceFetcher, error) {
	switch cfg.DataSource.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Proxy), nil
	case "barsapi":
		return collector.NewBarsAPIFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy), nil
	case "mock":
		return &collector.MockFetcher{Price: 100, Drift: 0.01}, nil
	}
	return nil, fmt.Errorf("unknown price provider %q", cfg.DataSource.Provider)
}

// newNewsSource chains the configured providers. MarketAux is skipped
// without an API key.
func newNewsSource(cfg *config.Config, logger zerolog.Logger) collector.NewsSource {
	var sources []collector.NewsSource
	for _, name := range cfg.News.Providers {
		switch name {
		case "marketaux":
			if cfg.News.MarketAuxKey == "" {
				logger.Warn().Msg("MARKETAUX_API_KEY not set, skipping marketaux")
				continue
			}
			sources = append(sources, collector.NewMarketAuxSource(cfg.News.MarketAuxKey, cfg.Proxy))
		case "googlenews":
			gn := collector.NewGoogleNewsSource(cfg.Proxy)
			gn.Locale, gn.Region = cfg.News.GoogleLocale, cfg.News.GoogleRegion
			sources = append(sources, gn)
		}
	}
	switch len(sources) {
	case 0:
		return nil
	case 1:
		return sources[0]
	}
	return &collector.FallbackNewsSource{Sources: sources, Log: logger.With().Str("component", "news").Logger()}
}

// newExtractor builds the LLM extractor once per process, wrapped by the
// sentiment cache when one is configured.
func newExtractor(cfg *config.Config, logger zerolog.Logger) (sentiment.Extractor, *sentiment.Cache) {
	var ex sentiment.Extractor = sentiment.NoopExtractor{}
	if cfg.LLM.APIKey != "" {
		client := sentiment.NewOpenAIClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.Proxy)
		ex = sentiment.NewOpenAIExtractor(client, cfg.LLM.Model, cfg.LLM.Temperature, logger)
	} else {
		logger.Warn().Msg("OPENAI_API_KEY not set, every article gets a neutral sentiment")
	}

	if cfg.Cache.SentimentPath == "" {
		return ex, nil
	}
	cache, err := sentiment.LoadCache(cfg.Cache.SentimentPath)
	if err != nil {
		logger.Warn().Err(err).Msg("sentiment cache unavailable")
		return ex, nil
	}
	return &sentiment.CachedExtractor{Inner: ex, Cache: cache}, cache
}

// newRecorder opens the sqlite history, falling back to a no-op recorder.
func newRecorder(cfg *config.Config, logger zerolog.Logger) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

// buildRunner wires the pipeline from config. The caller closes the
// recorder.
func buildRunner(cfg *config.Config, logger zerolog.Logger) (*pipeline.Runner, error) {
	prices, err := newPriceFetcher(cfg)
	if err != nil {
		return nil, err
	}
	engine, err := strategy.NewEngine(cfg.Engine, logger)
	if err != nil {
		return nil, err
	}
	news := newNewsSource(cfg, logger)
	if news == nil {
		logger.Warn().Msg("no news provider configured")
	}

	col := collector.NewCollector(prices, news, cfg.News.Limit, logger)
	ex, cache := newExtractor(cfg, logger)

	r := pipeline.NewRunner(col, ex, engine, logger)
	r.Cache = cache
	r.Recorder = newRecorder(cfg, logger)
	r.ReportDir = cfg.Reports.Dir
	r.Concurrency = cfg.LLM.Concurrency

	logger.Info().
		Str("prices", prices.Name()).
		Str("extractor", ex.Name()).
		Msg("pipeline ready")
	return r, nil
}
