package calculator

import (
	"errors"
	"fmt"

	"NewsSentinel/internal/model"
)

// CalculateSMA averages the last period values.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, fmt.Errorf("%w: SMA%d needs %d values, have %d", ErrNotEnoughBars, period, period, len(prices))
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateSMA20 returns the 20-bar simple moving average of closes.
func CalculateSMA20(bars []model.PriceBar) (float64, error) {
	return CalculateSMA(Closes(bars), 20)
}
