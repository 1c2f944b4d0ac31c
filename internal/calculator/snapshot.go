package calculator

import "NewsSentinel/internal/model"

// Snapshot summarizes a normalized series. Indicators that need more history
// than the series has are left at their zero values.
func Snapshot(bars []model.PriceBar) model.PriceSnapshot {
	snap := model.PriceSnapshot{Bars: len(bars)}
	if len(bars) == 0 {
		return snap
	}
	first, last := bars[0], bars[len(bars)-1]
	snap.FirstDate = first.Date
	snap.LastDate = last.Date
	snap.FirstClose = first.Close
	snap.LastClose = last.Close
	snap.ChangePct = PercentChange(first.Close, last.Close) * 100

	if h, l, err := PeriodRange(bars); err == nil {
		snap.PeriodHigh = h
		snap.PeriodLow = l
		snap.RangePos = RangePosition(last.Close, h, l)
	}
	for _, b := range bars {
		snap.TotalVolume += b.Volume
	}
	if sma, err := CalculateSMA20(bars); err == nil {
		snap.SMA20 = sma
	}
	if rsi, err := CalculateRSI(bars, 14); err == nil {
		snap.RSI14 = rsi
		snap.HasRSI = true
	}
	return snap
}
