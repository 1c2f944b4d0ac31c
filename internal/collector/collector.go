package collector

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"NewsSentinel/internal/calculator"
	"NewsSentinel/internal/model"
)

// Collector fetches news and prices for one ticker.
type Collector struct {
	Prices    PriceFetcher
	News      NewsSource
	NewsLimit int
	log       zerolog.Logger
}

// NewCollector creates a new Collector. news may be nil.
func NewCollector(prices PriceFetcher, news NewsSource, newsLimit int, logger zerolog.Logger) *Collector {
	if newsLimit <= 0 {
		newsLimit = 20
	}
	return &Collector{
		Prices:    prices,
		News:      news,
		NewsLimit: newsLimit,
		log:       logger.With().Str("component", "collector").Logger(),
	}
}

// Collect fetches articles published in [start, end] and bars for
// [start, end) concurrently. A failing source degrades to an empty list; the
// only error returned is context cancellation.
func (c *Collector) Collect(ctx context.Context, ticker string, start, end time.Time) (*model.MarketData, error) {
	data := &model.MarketData{
		Ticker:   ticker,
		Start:    start.Format(calculator.DateLayout),
		End:      end.Format(calculator.DateLayout),
		Articles: []model.Article{},
		Prices:   []model.PriceBar{},
	}

	g, gctx := errgroup.WithContext(ctx)

	if c.News != nil {
		g.Go(func() error {
			articles, err := c.News.FetchNews(gctx, ticker, start, end, c.NewsLimit)
			if err != nil {
				c.log.Error().Err(err).Str("ticker", ticker).Str("source", c.News.Name()).Msg("news fetch failed")
				return nil
			}
			if articles != nil {
				data.Articles = articles
			}
			return nil
		})
	}

	if c.Prices != nil {
		g.Go(func() error {
			raw, err := c.Prices.FetchDailyBars(gctx, ticker, start, end)
			if err != nil {
				c.log.Error().Err(err).Str("ticker", ticker).Str("source", c.Prices.Name()).Msg("price fetch failed")
				return nil
			}
			bars := calculator.NormalizeSeries(raw)
			if dropped := len(raw) - len(bars); dropped > 0 {
				c.log.Warn().Str("ticker", ticker).Int("dropped", dropped).Msg("dropped malformed or duplicate bars")
			}
			data.Prices = bars
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.log.Info().Str("ticker", ticker).Int("articles", len(data.Articles)).Int("bars", len(data.Prices)).Msg("collected market data")
	return data, nil
}
