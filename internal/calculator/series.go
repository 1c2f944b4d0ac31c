package calculator

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"NewsSentinel/internal/model"
)

// ErrEmptySeries is returned when a series has no bars.
var ErrEmptySeries = errors.New("price series is empty")

// SeriesError describes the first malformed bar of a series.
type SeriesError struct {
	Index  int
	Date   string
	Reason string
}

func (e *SeriesError) Error() string {
	return fmt.Sprintf("bar %d (%s): %s", e.Index, e.Date, e.Reason)
}

// ValidateSeries checks that bars have parseable dates, non-negative values
// and strictly ascending dates.
func ValidateSeries(bars []model.PriceBar) error {
	if len(bars) == 0 {
		return ErrEmptySeries
	}
	var prev time.Time
	for i, b := range bars {
		d, ok := ParseAnyDate(b.Date)
		if !ok {
			return &SeriesError{Index: i, Date: b.Date, Reason: "unparseable date"}
		}
		if reason := badValues(b); reason != "" {
			return &SeriesError{Index: i, Date: b.Date, Reason: reason}
		}
		if i > 0 {
			switch {
			case d.Equal(prev):
				return &SeriesError{Index: i, Date: b.Date, Reason: "duplicate date"}
			case d.Before(prev):
				return &SeriesError{Index: i, Date: b.Date, Reason: "dates not ascending"}
			}
		}
		prev = d
	}
	return nil
}

func badValues(b model.PriceBar) string {
	if b.Open < 0 || b.High < 0 || b.Low < 0 || b.Close < 0 {
		return "negative price"
	}
	if b.Volume < 0 {
		return "negative volume"
	}
	return ""
}

// NormalizeSeries returns a copy of bars that passes ValidateSeries, or an
// empty slice. Bars with bad dates or negative values are dropped, the rest
// are sorted by date and the last bar wins for a duplicated date.
func NormalizeSeries(bars []model.PriceBar) []model.PriceBar {
	kept := make([]model.PriceBar, 0, len(bars))
	for _, b := range bars {
		d, ok := ParseAnyDate(b.Date)
		if !ok || badValues(b) != "" {
			continue
		}
		b.Date = d.Format(DateLayout)
		kept = append(kept, b)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Date < kept[j].Date })

	out := kept[:0]
	for _, b := range kept {
		if n := len(out); n > 0 && out[n-1].Date == b.Date {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

// Closes extracts closing prices in series order.
func Closes(bars []model.PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// ExtremaIndex returns the indices of the minimum and maximum values. The
// first occurrence wins on ties. Both are -1 for an empty slice.
func ExtremaIndex(values []float64) (minIdx, maxIdx int) {
	if len(values) == 0 {
		return -1, -1
	}
	for i, v := range values {
		if v < values[minIdx] {
			minIdx = i
		}
		if v > values[maxIdx] {
			maxIdx = i
		}
	}
	return minIdx, maxIdx
}

// PercentChange returns (to-from)/from as a fraction, or 0 when from is 0.
func PercentChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from
}
