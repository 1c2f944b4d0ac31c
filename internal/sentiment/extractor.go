// Package sentiment turns news articles into structured sentiment records.
package sentiment

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"NewsSentinel/internal/model"
)

// FallbackReasoning marks a sentiment produced because analysis failed.
const FallbackReasoning = "Fallback neutral sentiment due to model or parsing error."

// Extractor analyzes one article.
type Extractor interface {
	Analyze(ctx context.Context, article model.Article) (model.ArticleSentiment, error)
	Name() string
}

// Fallback is the neutral, zero-impact sentiment used when analysis fails.
func Fallback(articleID string) model.ArticleSentiment {
	return model.ArticleSentiment{
		ArticleID:   articleID,
		Sentiment:   model.SentimentNeutral,
		Confidence:  0,
		EventTags:   []string{},
		ImpactScore: 0,
		Reasoning:   FallbackReasoning,
	}
}

// IsFallback reports whether s came from Fallback.
func IsFallback(s model.ArticleSentiment) bool {
	return s.Reasoning == FallbackReasoning && s.ImpactScore == 0 && s.Confidence == 0
}

// NoopExtractor returns the neutral fallback for every article.
type NoopExtractor struct{}

func (NoopExtractor) Name() string { return "noop" }

func (NoopExtractor) Analyze(_ context.Context, a model.Article) (model.ArticleSentiment, error) {
	return Fallback(a.ID), nil
}

// AnalyzeAll runs ex over articles with at most concurrency calls in flight.
// The result has one sentiment per article in input order; a failed article
// gets the fallback. Only context cancellation is returned as an error.
func AnalyzeAll(ctx context.Context, ex Extractor, articles []model.Article, concurrency int) ([]model.ArticleSentiment, error) {
	out := make([]model.ArticleSentiment, len(articles))
	if len(articles) == 0 {
		return out, nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	log := zerolog.Ctx(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, a := range articles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := ex.Analyze(gctx, a)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn().Err(err).Str("article_id", a.ID).Str("extractor", ex.Name()).Msg("sentiment analysis failed, using neutral fallback")
				s = Fallback(a.ID)
			}
			s.ArticleID = a.ID
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
