package strategy

import (
	"fmt"
	"math"

	"NewsSentinel/internal/calculator"
	"NewsSentinel/internal/model"
)

// Labels maps pattern names to their human-readable label.
var Labels = map[string]string{
	model.PatternBullishBreakout:  "Bullish Breakout",
	model.PatternBearishBreakdown: "Bearish Breakdown",
	model.PatternSidewaysRange:    "Sideways / Range-Bound",
	model.PatternStrongUpSwing:    "Strong Up Swing",
	model.PatternStrongDownSwing:  "Strong Down Swing",
}

// Detect classifies an ascending bar series into at most two signals: one
// trend signal followed by an optional swing signal. Fewer than two bars
// yields no signal. Bars are not validated; callers pass a normalized series.
func (e *Engine) Detect(prices []model.PriceBar) []model.PatternSignal {
	signals := make([]model.PatternSignal, 0, 2)
	if len(prices) < 2 {
		return signals
	}
	signals = append(signals, e.trend(prices))
	if swing, ok := e.swing(prices); ok {
		signals = append(signals, swing)
	}
	return signals
}

func (e *Engine) trend(prices []model.PriceBar) model.PatternSignal {
	first, last := prices[0], prices[len(prices)-1]
	r := calculator.PercentChange(first.Close, last.Close)
	p := e.params

	sig := model.PatternSignal{StartDate: first.Date, EndDate: last.Date}
	switch {
	case r >= p.TrendThreshold:
		sig.Name = model.PatternBullishBreakout
		sig.Direction = model.Bullish
		sig.Confidence = math.Min(1, math.Abs(r)*p.TrendConfidenceScale)
		sig.Notes = fmt.Sprintf("Close rose %.2f%% from %.2f to %.2f over the period.", r*100, first.Close, last.Close)
	case r <= -p.TrendThreshold:
		sig.Name = model.PatternBearishBreakdown
		sig.Direction = model.Bearish
		sig.Confidence = math.Min(1, math.Abs(r)*p.TrendConfidenceScale)
		sig.Notes = fmt.Sprintf("Close fell %.2f%% from %.2f to %.2f over the period.", -r*100, first.Close, last.Close)
	default:
		sig.Name = model.PatternSidewaysRange
		sig.Direction = model.Neutral
		sig.Confidence = p.SidewaysConfidence
		sig.Notes = fmt.Sprintf("Net change of %+.2f%% stayed inside ±%.0f%%, a mostly range-bound market.", r*100, p.TrendThreshold*100)
	}
	sig.Label = Labels[sig.Name]
	return sig
}

func (e *Engine) swing(prices []model.PriceBar) (model.PatternSignal, bool) {
	minIdx, maxIdx := calculator.ExtremaIndex(calculator.Closes(prices))
	if minIdx == maxIdx {
		return model.PatternSignal{}, false
	}
	low, high := prices[minIdx], prices[maxIdx]
	s := calculator.PercentChange(low.Close, high.Close)
	if s <= e.params.SwingThreshold {
		return model.PatternSignal{}, false
	}

	sig := model.PatternSignal{Confidence: math.Min(1, math.Abs(s)*e.params.SwingConfidenceScale)}
	if minIdx < maxIdx {
		sig.Name = model.PatternStrongUpSwing
		sig.Direction = model.Bullish
		sig.StartDate, sig.EndDate = low.Date, high.Date
		sig.Notes = fmt.Sprintf("Swing of %.2f%% from a low of %.2f on %s to a high of %.2f on %s.",
			s*100, low.Close, low.Date, high.Close, high.Date)
	} else {
		sig.Name = model.PatternStrongDownSwing
		sig.Direction = model.Bearish
		sig.StartDate, sig.EndDate = high.Date, low.Date
		sig.Notes = fmt.Sprintf("Swing of %.2f%% from a high of %.2f on %s down to a low of %.2f on %s.",
			s*100, high.Close, high.Date, low.Close, low.Date)
	}
	sig.Label = Labels[sig.Name]
	return sig, true
}
