package strategy

import (
	"fmt"

	"github.com/rs/zerolog"

	"NewsSentinel/internal/model"
)

// Engine detects price patterns and links them to news sentiment. It holds
// only read-only state and is safe for concurrent use.
type Engine struct {
	params Params
	log    zerolog.Logger
}

// Result carries both engine outputs; the report needs the patterns even
// when no insight clears the noise floor.
type Result struct {
	Patterns []model.PatternSignal     `json:"patterns"`
	Insights []model.CorrelatedInsight `json:"insights"`
}

// NewEngine validates params and uses them as given, so explicit zeros such
// as a zero noise floor are kept. Start from DefaultParams, or call
// WithDefaults on a partial set.
func NewEngine(params Params, logger zerolog.Logger) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}
	return &Engine{params: params, log: logger.With().Str("component", "engine").Logger()}, nil
}

// Params returns the effective parameters.
func (e *Engine) Params() Params { return e.params }

// Analyze runs Detect then Correlate. Any empty input yields no insights.
func (e *Engine) Analyze(articles []model.Article, sentiments []model.ArticleSentiment, prices []model.PriceBar) []model.CorrelatedInsight {
	if len(articles) == 0 || len(sentiments) == 0 || len(prices) == 0 {
		return make([]model.CorrelatedInsight, 0)
	}
	return e.Correlate(articles, sentiments, e.Detect(prices))
}

// Run is Analyze that also returns the detected patterns. Patterns are
// detected whenever prices are present.
func (e *Engine) Run(articles []model.Article, sentiments []model.ArticleSentiment, prices []model.PriceBar) Result {
	res := Result{
		Patterns: e.Detect(prices),
		Insights: make([]model.CorrelatedInsight, 0),
	}
	if len(articles) == 0 || len(sentiments) == 0 || len(res.Patterns) == 0 {
		return res
	}
	res.Insights = e.Correlate(articles, sentiments, res.Patterns)
	return res
}

var defaultEngine = &Engine{params: DefaultParams(), log: zerolog.Nop()}

// Detect runs the default engine's detector.
func Detect(prices []model.PriceBar) []model.PatternSignal {
	return defaultEngine.Detect(prices)
}

// Correlate runs the default engine's scorer.
func Correlate(articles []model.Article, sentiments []model.ArticleSentiment, patterns []model.PatternSignal) []model.CorrelatedInsight {
	return defaultEngine.Correlate(articles, sentiments, patterns)
}

// Analyze runs the default engine end to end.
func Analyze(articles []model.Article, sentiments []model.ArticleSentiment, prices []model.PriceBar) []model.CorrelatedInsight {
	return defaultEngine.Analyze(articles, sentiments, prices)
}
