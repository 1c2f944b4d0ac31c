package calculator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsSentinel/internal/model"
)

func risingBars(n int) []model.PriceBar {
	bars := make([]model.PriceBar, n)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = model.PriceBar{
			Date:   fmt.Sprintf("2024-02-%02d", i+1),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func TestSnapshot(t *testing.T) {
	snap := Snapshot(risingBars(25))
	assert.Equal(t, 25, snap.Bars)
	assert.Equal(t, "2024-02-01", snap.FirstDate)
	assert.Equal(t, "2024-02-25", snap.LastDate)
	assert.InDelta(t, 24.0, snap.ChangePct, 1e-9)
	assert.Equal(t, 125.0, snap.PeriodHigh)
	assert.Equal(t, 99.0, snap.PeriodLow)
	assert.InDelta(t, 25.0/26.0, snap.RangePos, 1e-9)
	assert.Equal(t, int64(25000), snap.TotalVolume)
	assert.InDelta(t, 114.5, snap.SMA20, 1e-9)
	assert.True(t, snap.HasRSI)
	assert.Equal(t, 100.0, snap.RSI14, "only gains")
}

func TestSnapshot_ShortSeries(t *testing.T) {
	snap := Snapshot(risingBars(3))
	assert.Zero(t, snap.SMA20)
	assert.False(t, snap.HasRSI)
	assert.Equal(t, 3, snap.Bars)

	assert.Equal(t, model.PriceSnapshot{}, Snapshot(nil))
}

func TestCalculateSMA(t *testing.T) {
	v, err := CalculateSMA([]float64{1, 2, 3, 4}, 2)
	assert.NoError(t, err)
	assert.Equal(t, 3.5, v)

	_, err = CalculateSMA([]float64{1}, 2)
	assert.ErrorIs(t, err, ErrNotEnoughBars)
	_, err = CalculateSMA([]float64{1}, 0)
	assert.Error(t, err)
}

func TestCalculateRSI_NotEnoughBars(t *testing.T) {
	_, err := CalculateRSI(risingBars(14), 14)
	assert.ErrorIs(t, err, ErrNotEnoughBars)
}

func TestRangePosition(t *testing.T) {
	assert.Equal(t, 0.5, RangePosition(10, 10, 10))
	assert.Equal(t, 1.0, RangePosition(20, 15, 5))
	assert.Equal(t, 0.0, RangePosition(1, 15, 5))
	assert.InDelta(t, 0.25, RangePosition(7.5, 15, 5), 1e-12)
}

func TestCalculateRSI_WilderSmoothing(t *testing.T) {
	bars := []model.PriceBar{
		bar("2024-03-01", 10),
		bar("2024-03-02", 11),
		bar("2024-03-03", 10),
		bar("2024-03-04", 12),
	}
	// seed: avg gain 0.5, avg loss 0.5; then +2 smooths to 1.25 / 0.25
	rsi, err := CalculateRSI(bars, 2)
	require.NoError(t, err)
	assert.InDelta(t, 100-100/6.0, rsi, 1e-9)

	_, err = CalculateRSI(bars, 0)
	assert.Error(t, err)
}
