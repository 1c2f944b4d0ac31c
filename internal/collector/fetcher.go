package collector

import (
	"context"
	"time"

	"NewsSentinel/internal/model"
)

// PriceFetcher fetches daily bars for a symbol. The range is [start, end).
type PriceFetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.PriceBar, error)
	Name() string
}

// NewsSource fetches articles about a ticker published in [start, end].
type NewsSource interface {
	FetchNews(ctx context.Context, ticker string, start, end time.Time, limit int) ([]model.Article, error)
	Name() string
}
