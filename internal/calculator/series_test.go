package calculator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsSentinel/internal/model"
)

func bar(date string, close float64) model.PriceBar {
	return model.PriceBar{Date: date, Open: close, High: close, Low: close, Close: close, Volume: 100}
}

func TestValidateSeries(t *testing.T) {
	assert.ErrorIs(t, ValidateSeries(nil), ErrEmptySeries)
	assert.NoError(t, ValidateSeries([]model.PriceBar{bar("2024-01-01", 1), bar("2024-01-02", 2)}))

	tests := []struct {
		name   string
		bars   []model.PriceBar
		index  int
		reason string
	}{
		{
			name:   "bad date",
			bars:   []model.PriceBar{bar("2024-01-01", 1), bar("01/02/2024", 1)},
			index:  1,
			reason: "unparseable date",
		},
		{
			name:   "duplicate",
			bars:   []model.PriceBar{bar("2024-01-01", 1), bar("2024-01-01T00:00:00Z", 1)},
			index:  1,
			reason: "duplicate date",
		},
		{
			name:   "descending",
			bars:   []model.PriceBar{bar("2024-01-02", 1), bar("2024-01-01", 1)},
			index:  1,
			reason: "dates not ascending",
		},
		{
			name:   "negative close",
			bars:   []model.PriceBar{bar("2024-01-01", -1)},
			index:  0,
			reason: "negative price",
		},
		{
			name:   "negative volume",
			bars:   []model.PriceBar{{Date: "2024-01-01", Volume: -5}},
			index:  0,
			reason: "negative volume",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSeries(tt.bars)
			var se *SeriesError
			require.True(t, errors.As(err, &se), "expected SeriesError, got %v", err)
			assert.Equal(t, tt.index, se.Index)
			assert.Equal(t, tt.reason, se.Reason)
		})
	}
}

func TestNormalizeSeries(t *testing.T) {
	in := []model.PriceBar{
		bar("2024-01-03", 3),
		bar("garbage", 9),
		bar("2024-01-01T16:00:00Z", 1),
		bar("2024-01-02", 2),
		bar("2024-01-02", 2.5),
		bar("2024-01-04", -1),
	}
	out := NormalizeSeries(in)
	require.Len(t, out, 3)
	assert.Equal(t, "2024-01-01", out[0].Date)
	assert.Equal(t, "2024-01-02", out[1].Date)
	assert.Equal(t, 2.5, out[1].Close, "last duplicate wins")
	assert.Equal(t, "2024-01-03", out[2].Date)
	assert.NoError(t, ValidateSeries(out))

	assert.Empty(t, NormalizeSeries(nil))
	assert.Equal(t, "2024-01-03", in[0].Date, "input is not mutated")
}

func TestExtremaIndex(t *testing.T) {
	minIdx, maxIdx := ExtremaIndex([]float64{5, 1, 9, 1, 9})
	assert.Equal(t, 1, minIdx)
	assert.Equal(t, 2, maxIdx)

	minIdx, maxIdx = ExtremaIndex([]float64{3, 3, 3})
	assert.Equal(t, 0, minIdx)
	assert.Equal(t, 0, maxIdx)

	minIdx, maxIdx = ExtremaIndex(nil)
	assert.Equal(t, -1, minIdx)
	assert.Equal(t, -1, maxIdx)
}

func TestPercentChange(t *testing.T) {
	assert.InDelta(t, 0.21, PercentChange(100, 121), 1e-12)
	assert.InDelta(t, -0.5, PercentChange(10, 5), 1e-12)
	assert.Zero(t, PercentChange(0, 50))
}
