package model

import "time"

// PriceBar is a single daily OHLCV bar. Date is the ticker-local trading day
// formatted as YYYY-MM-DD.
type PriceBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// PriceSeries holds raw price data for a ticker.
type PriceSeries struct {
	Ticker    string
	Bars      []PriceBar
	FetchedAt time.Time
}

// PriceSnapshot summarizes a series for the report.
type PriceSnapshot struct {
	Bars        int
	FirstDate   string
	LastDate    string
	FirstClose  float64
	LastClose   float64
	ChangePct   float64
	PeriodHigh  float64
	PeriodLow   float64
	RangePos    float64 // last close within [PeriodLow, PeriodHigh], 0..1
	TotalVolume int64
	SMA20       float64 // 0 when fewer than 20 bars
	RSI14       float64
	HasRSI      bool
}

// MarketData is everything collected for one ticker and date range.
type MarketData struct {
	Ticker   string
	Start    string
	End      string
	Articles []Article
	Prices   []PriceBar
}
