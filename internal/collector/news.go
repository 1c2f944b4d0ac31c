package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"NewsSentinel/internal/model"
)

// FallbackNewsSource tries each source in order and returns the first
// non-empty result.
type FallbackNewsSource struct {
	Sources []NewsSource
	Log     zerolog.Logger
}

func (f *FallbackNewsSource) Name() string { return "fallback" }

// FetchNews returns an error only when every source failed.
func (f *FallbackNewsSource) FetchNews(ctx context.Context, ticker string, start, end time.Time, limit int) ([]model.Article, error) {
	var errs []error
	for _, src := range f.Sources {
		articles, err := src.FetchNews(ctx, ticker, start, end, limit)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			f.Log.Warn().Err(err).Str("source", src.Name()).Str("ticker", ticker).Msg("news source failed, trying next")
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		if len(articles) > 0 {
			f.Log.Info().Str("source", src.Name()).Str("ticker", ticker).Int("articles", len(articles)).Msg("fetched news")
			return articles, nil
		}
		f.Log.Warn().Str("source", src.Name()).Str("ticker", ticker).Msg("news source returned no relevant articles")
	}
	if len(errs) == len(f.Sources) && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, nil
}
