package calculator

import (
	"errors"

	"NewsSentinel/internal/model"
)

// ErrNotEnoughBars is returned when an indicator needs more history.
var ErrNotEnoughBars = errors.New("not enough bars")

// CalculateRSI returns the Wilder RSI of the bars' closes. The first period
// close-to-close moves seed the averages and every later move is smoothed
// in. It needs period+1 bars; a series with no down moves reads 100.
func CalculateRSI(bars []model.PriceBar, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(bars) < period+1 {
		return 0, ErrNotEnoughBars
	}

	n := float64(period)
	var up, down float64
	for i := 1; i < len(bars); i++ {
		gain, loss := splitMove(bars[i].Close - bars[i-1].Close)
		if i <= period {
			up += gain / n
			down += loss / n
			continue
		}
		up = (up*(n-1) + gain) / n
		down = (down*(n-1) + loss) / n
	}

	if down == 0 {
		return 100, nil
	}
	return 100 - 100/(1+up/down), nil
}

// splitMove returns a close-to-close change as a (gain, loss) pair, both
// non-negative.
func splitMove(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}
