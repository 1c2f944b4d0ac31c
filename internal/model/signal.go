package model

// Direction is the directional bias of a pattern or a piece of news.
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
	Neutral Direction = "neutral"
)

// Pattern names emitted by the detector.
const (
	PatternBullishBreakout  = "bullish_breakout"
	PatternBearishBreakdown = "bearish_breakdown"
	PatternSidewaysRange    = "sideways_range"
	PatternStrongUpSwing    = "strong_up_swing"
	PatternStrongDownSwing  = "strong_down_swing"
)

// PatternSignal is a detected price behaviour over a date range.
type PatternSignal struct {
	Name       string    `json:"name"`
	Label      string    `json:"label"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Confidence float64   `json:"confidence"`
	Direction  Direction `json:"direction"`
	Notes      string    `json:"notes"`
}

// CorrelatedInsight links one article to one pattern.
type CorrelatedInsight struct {
	ArticleID             string  `json:"article_id"`
	PatternName           string  `json:"pattern_name"`
	CorrelationConfidence float64 `json:"correlation_confidence"`
	LagDays               int     `json:"lag_days"`
	Summary               string  `json:"summary"`
}
