package collector

import (
	"context"
	"time"

	"NewsSentinel/internal/calculator"
	"NewsSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Drift float64 // per-bar relative change
	Bars  []model.PriceBar
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

// FetchDailyBars returns Bars when set, otherwise one synthetic bar per
// weekday in [start, end).
func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, start, end time.Time) ([]model.PriceBar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	return generateMockBars(m.Price, m.Drift, start, end), nil
}

func generateMockBars(basePrice, drift float64, start, end time.Time) []model.PriceBar {
	if basePrice == 0 {
		basePrice = 100
	}
	var bars []model.PriceBar
	p := basePrice
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		bars = append(bars, model.PriceBar{
			Date:   d.Format(calculator.DateLayout),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
		p *= 1 + drift
	}
	return bars
}

// StaticNews is a NewsSource backed by a fixed article list.
type StaticNews struct {
	Articles []model.Article
	Err      error
}

func (s *StaticNews) Name() string { return "static" }

func (s *StaticNews) FetchNews(_ context.Context, _ string, _, _ time.Time, limit int) ([]model.Article, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if limit > 0 && len(s.Articles) > limit {
		return s.Articles[:limit], nil
	}
	return s.Articles, nil
}
