// Package pipeline runs one report end to end: collect, score sentiment,
// detect and correlate, render, persist.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"NewsSentinel/internal/calculator"
	"NewsSentinel/internal/collector"
	"NewsSentinel/internal/model"
	"NewsSentinel/internal/notifier"
	"NewsSentinel/internal/recorder"
	"NewsSentinel/internal/sentiment"
	"NewsSentinel/internal/strategy"
	"NewsSentinel/internal/tracing"
)

// ErrInvalidRequest is returned for a request the pipeline cannot run.
var ErrInvalidRequest = errors.New("invalid request")

// Request names one ticker and an inclusive date range (YYYY-MM-DD).
type Request struct {
	Ticker string
	Start  string
	End    string
}

// Validate normalizes the ticker and parses the range.
func (r *Request) Validate() (start, end time.Time, err error) {
	r.Ticker = strings.ToUpper(strings.TrimSpace(r.Ticker))
	if r.Ticker == "" {
		return start, end, fmt.Errorf("%w: ticker is required", ErrInvalidRequest)
	}
	if start, err = time.Parse(calculator.DateLayout, r.Start); err != nil {
		return start, end, fmt.Errorf("%w: start date %q: want YYYY-MM-DD", ErrInvalidRequest, r.Start)
	}
	if end, err = time.Parse(calculator.DateLayout, r.End); err != nil {
		return start, end, fmt.Errorf("%w: end date %q: want YYYY-MM-DD", ErrInvalidRequest, r.End)
	}
	if start.After(end) {
		return start, end, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRequest, r.Start, r.End)
	}
	return start, end, nil
}

// Result is everything one run produced.
type Result struct {
	RunID      string                    `json:"run_id,omitempty"`
	Ticker     string                    `json:"ticker"`
	Start      string                    `json:"start"`
	End        string                    `json:"end"`
	Articles   []model.Article           `json:"articles"`
	Prices     []model.PriceBar          `json:"prices"`
	Sentiments []model.ArticleSentiment  `json:"sentiments"`
	Patterns   []model.PatternSignal     `json:"patterns"`
	Insights   []model.CorrelatedInsight `json:"insights"`
	Snapshot   *model.PriceSnapshot      `json:"snapshot,omitempty"`
	ReportPath string                    `json:"report_path,omitempty"`
	Markdown   string                    `json:"-"`
	Duration   time.Duration             `json:"duration_ns"`
}

// ReportInput adapts the result for the renderers.
func (r *Result) ReportInput() notifier.ReportInput {
	return notifier.ReportInput{
		Ticker:     r.Ticker,
		Start:      r.Start,
		End:        r.End,
		Articles:   r.Articles,
		Sentiments: r.Sentiments,
		Patterns:   r.Patterns,
		Insights:   r.Insights,
		Snapshot:   r.Snapshot,
	}
}

// Runner wires the collaborators. Cache, Recorder and ReportDir are optional.
type Runner struct {
	Collector   *collector.Collector
	Extractor   sentiment.Extractor
	Cache       *sentiment.Cache
	Engine      *strategy.Engine
	Recorder    recorder.Recorder
	ReportDir   string
	Concurrency int

	log zerolog.Logger
	now func() time.Time
}

// NewRunner creates a Runner. A nil extractor analyses nothing and every
// article gets the neutral fallback.
func NewRunner(col *collector.Collector, ex sentiment.Extractor, engine *strategy.Engine, logger zerolog.Logger) *Runner {
	if ex == nil {
		ex = sentiment.NoopExtractor{}
	}
	return &Runner{
		Collector:   col,
		Extractor:   ex,
		Engine:      engine,
		Recorder:    recorder.NewNoopRecorder(),
		Concurrency: 4,
		log:         logger.With().Str("component", "pipeline").Logger(),
		now:         time.Now,
	}
}

// Run executes the pipeline for req. Errors are limited to request
// validation and context cancellation; failing collaborators degrade to
// partial output.
func (r *Runner) Run(ctx context.Context, req Request) (res *Result, err error) {
	start, end, err := req.Validate()
	if err != nil {
		return nil, err
	}

	startedAt := r.now()
	log := r.log.With().Str("ticker", req.Ticker).Str("start", req.Start).Str("end", req.End).Logger()
	ctx = log.WithContext(ctx)

	ctx, span := tracing.StartSpan(ctx, "pipeline.run",
		attribute.String("ticker", req.Ticker),
		attribute.String("start", req.Start),
		attribute.String("end", req.End),
	)
	defer func() { tracing.End(span, err) }()
	if id, ok := tracing.TraceID(ctx); ok {
		log = log.With().Str("trace_id", id).Logger()
	}

	log.Info().Msg("pipeline started")
	res = &Result{Ticker: req.Ticker, Start: req.Start, End: req.End}

	data, err := r.collect(ctx, req.Ticker, start, end)
	if err != nil {
		return nil, err
	}
	res.Articles, res.Prices = data.Articles, data.Prices

	if res.Sentiments, err = r.analyze(ctx, res.Articles); err != nil {
		return nil, err
	}

	r.detect(ctx, res)
	r.render(ctx, res)
	r.record(ctx, res, startedAt)

	res.Duration = r.now().Sub(startedAt)
	log.Info().
		Int("articles", len(res.Articles)).
		Int("bars", len(res.Prices)).
		Int("patterns", len(res.Patterns)).
		Int("insights", len(res.Insights)).
		Dur("took", res.Duration).
		Msg("pipeline finished")
	return res, nil
}

func (r *Runner) collect(ctx context.Context, ticker string, start, end time.Time) (_ *model.MarketData, err error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.collect")
	defer func() { tracing.End(span, err) }()

	data, err := r.Collector.Collect(ctx, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", ticker, err)
	}
	span.SetAttributes(attribute.Int("articles", len(data.Articles)), attribute.Int("bars", len(data.Prices)))
	return data, nil
}

func (r *Runner) analyze(ctx context.Context, articles []model.Article) (_ []model.ArticleSentiment, err error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.sentiment", attribute.String("extractor", r.Extractor.Name()))
	defer func() { tracing.End(span, err) }()

	sentiments, err := sentiment.AnalyzeAll(ctx, r.Extractor, articles, r.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("analyze sentiment: %w", err)
	}

	fallbacks := 0
	for _, s := range sentiments {
		if sentiment.IsFallback(s) {
			fallbacks++
		}
	}
	span.SetAttributes(attribute.Int("fallbacks", fallbacks))

	if r.Cache != nil {
		if err := r.Cache.Save(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("saving sentiment cache failed")
		}
	}
	return sentiments, nil
}

func (r *Runner) detect(ctx context.Context, res *Result) {
	_, span := tracing.StartSpan(ctx, "pipeline.engine")
	defer span.End()

	out := r.Engine.Run(res.Articles, res.Sentiments, res.Prices)
	res.Patterns, res.Insights = out.Patterns, out.Insights
	if len(res.Prices) > 0 {
		snap := calculator.Snapshot(res.Prices)
		res.Snapshot = &snap
	}
	span.SetAttributes(attribute.Int("patterns", len(res.Patterns)), attribute.Int("insights", len(res.Insights)))
}

func (r *Runner) render(ctx context.Context, res *Result) {
	_, span := tracing.StartSpan(ctx, "pipeline.render")
	var err error
	defer func() { tracing.End(span, err) }()

	res.Markdown = notifier.FormatMarkdownReport(res.ReportInput())
	if r.ReportDir == "" {
		return
	}
	if res.ReportPath, err = notifier.WriteReport(r.ReportDir, res.Ticker, res.Start, res.End, res.Markdown); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("writing report file failed")
		return
	}
	zerolog.Ctx(ctx).Info().Str("path", res.ReportPath).Msg("report written")
}

func (r *Runner) record(ctx context.Context, res *Result, startedAt time.Time) {
	if r.Recorder == nil {
		return
	}
	_, span := tracing.StartSpan(ctx, "pipeline.record")
	var err error
	defer func() { tracing.End(span, err) }()

	snap := &recorder.RunSnapshot{
		Ticker:     res.Ticker,
		Start:      res.Start,
		End:        res.End,
		StartedAt:  startedAt,
		Duration:   r.now().Sub(startedAt),
		ReportPath: res.ReportPath,
		Snapshot:   res.Snapshot,
		Articles:   res.Articles,
		Sentiments: res.Sentiments,
		Patterns:   res.Patterns,
		Insights:   res.Insights,
	}
	if err = r.Recorder.RecordRun(snap); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("recording run failed")
		return
	}
	res.RunID = snap.RunID
}
