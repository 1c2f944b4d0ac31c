package strategy

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsSentinel/internal/model"
)

func testLogger(w io.Writer) zerolog.Logger {
	if w == nil {
		return zerolog.Nop()
	}
	return zerolog.New(w)
}

func article(id, published string) model.Article {
	return model.Article{ID: id, Ticker: "AAPL", Title: "headline " + id, PublishedAt: published}
}

func sentiment(id string, label model.SentimentLabel, impact float64) model.ArticleSentiment {
	return model.ArticleSentiment{ArticleID: id, Sentiment: label, Confidence: 0.9, ImpactScore: impact}
}

func pattern(name string, dir model.Direction, start string, conf float64) model.PatternSignal {
	return model.PatternSignal{Name: name, Label: Labels[name], StartDate: start, EndDate: start, Confidence: conf, Direction: dir}
}

func TestCorrelate_SameDayAgreement(t *testing.T) {
	got := Correlate(
		[]model.Article{article("a1", "2024-01-01")},
		[]model.ArticleSentiment{sentiment("a1", model.SentimentPositive, 0.8)},
		[]model.PatternSignal{pattern(model.PatternBullishBreakout, model.Bullish, "2024-01-01", 0.6)},
	)
	require.Len(t, got, 1)
	in := got[0]
	assert.Equal(t, "a1", in.ArticleID)
	assert.Equal(t, model.PatternBullishBreakout, in.PatternName)
	assert.Equal(t, 0, in.LagDays)
	assert.InDelta(t, 0.48, in.CorrelationConfidence, 1e-9)
	assert.Equal(t,
		"Positive news published 2024-01-01 (impact 0.80) preceded the Bullish Breakout pattern by 0 day(s); price action agrees with the news tone.",
		in.Summary)
}

func TestCorrelate_ConflictingDirection(t *testing.T) {
	got := Correlate(
		[]model.Article{article("a1", "2024-01-01")},
		[]model.ArticleSentiment{sentiment("a1", model.SentimentPositive, 0.8)},
		[]model.PatternSignal{pattern(model.PatternBearishBreakdown, model.Bearish, "2024-01-01", 0.6)},
	)
	require.Len(t, got, 1)
	assert.InDelta(t, 0.192, got[0].CorrelationConfidence, 1e-9)
	assert.Contains(t, got[0].Summary, "price moved against the news tone")
}

func TestCorrelate_NeutralSide(t *testing.T) {
	got := Correlate(
		[]model.Article{article("a1", "2024-01-01T09:30:00Z")},
		[]model.ArticleSentiment{sentiment("a1", model.SentimentNeutral, 1)},
		[]model.PatternSignal{pattern(model.PatternBullishBreakout, model.Bullish, "2024-01-03", 1)},
	)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].LagDays)
	assert.InDelta(t, 0.7*0.8, got[0].CorrelationConfidence, 1e-9)
	assert.Contains(t, got[0].Summary, "inconclusive")
}

func TestCorrelate_LagWindow(t *testing.T) {
	articles := []model.Article{article("a1", "2024-01-01")}
	sentiments := []model.ArticleSentiment{sentiment("a1", model.SentimentPositive, 1)}

	tests := []struct {
		name  string
		start string
		want  int
		conf  float64
	}{
		{name: "pattern before news", start: "2023-12-31", want: 0},
		{name: "lag 7 keeps floor", start: "2024-01-08", want: 1, conf: 0.4},
		{name: "lag 6 decays", start: "2024-01-07", want: 1, conf: 0.4},
		{name: "lag 3", start: "2024-01-04", want: 1, conf: 0.7},
		{name: "lag 8 dropped", start: "2024-01-09", want: 0},
		{name: "lag 10 dropped", start: "2024-01-11", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Correlate(articles, sentiments,
				[]model.PatternSignal{pattern(model.PatternBullishBreakout, model.Bullish, tt.start, 1)})
			require.Len(t, got, tt.want)
			if tt.want == 1 {
				assert.InDelta(t, tt.conf, got[0].CorrelationConfidence, 1e-9)
			}
		})
	}
}

func TestCorrelateWithin_CustomWindow(t *testing.T) {
	articles := []model.Article{article("a1", "2024-01-01")}
	sentiments := []model.ArticleSentiment{sentiment("a1", model.SentimentPositive, 1)}
	patterns := []model.PatternSignal{pattern(model.PatternBullishBreakout, model.Bullish, "2024-01-11", 1)}

	assert.Empty(t, defaultEngine.CorrelateWithin(articles, sentiments, patterns, 7))
	got := defaultEngine.CorrelateWithin(articles, sentiments, patterns, 10)
	require.Len(t, got, 1)
	assert.Equal(t, 10, got[0].LagDays)
	assert.InDelta(t, 0.4, got[0].CorrelationConfidence, 1e-9)
}

func TestCorrelate_NoiseFloor(t *testing.T) {
	articles := []model.Article{article("a1", "2024-01-01"), article("a2", "2024-01-01")}
	patterns := []model.PatternSignal{pattern(model.PatternBullishBreakout, model.Bullish, "2024-01-01", 1)}

	got := Correlate(articles, []model.ArticleSentiment{sentiment("a1", model.SentimentPositive, 0.05)}, patterns)
	assert.Empty(t, got, "score equal to the floor is discarded")

	got = Correlate(articles, []model.ArticleSentiment{sentiment("a2", model.SentimentPositive, 0.06)}, patterns)
	assert.Len(t, got, 1)
}

func TestCorrelate_ClampsToOne(t *testing.T) {
	got := Correlate(
		[]model.Article{article("a1", "2024-01-01")},
		[]model.ArticleSentiment{sentiment("a1", model.SentimentPositive, 3)},
		[]model.PatternSignal{pattern(model.PatternBullishBreakout, model.Bullish, "2024-01-01", 1)},
	)
	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].CorrelationConfidence)
}

func TestCorrelate_DropsNaNScores(t *testing.T) {
	articles := []model.Article{article("a1", "2024-01-01"), article("a2", "2024-01-01")}
	sentiments := []model.ArticleSentiment{
		sentiment("a1", model.SentimentPositive, math.NaN()),
		sentiment("a2", model.SentimentPositive, 0.8),
	}
	patterns := []model.PatternSignal{
		pattern(model.PatternBullishBreakout, model.Bullish, "2024-01-01", 0.6),
		pattern(model.PatternStrongUpSwing, model.Bullish, "2024-01-01", math.NaN()),
	}

	got := Correlate(articles, sentiments, patterns)
	require.Len(t, got, 1)
	assert.Equal(t, "a2", got[0].ArticleID)
	assert.Equal(t, model.PatternBullishBreakout, got[0].PatternName)
	assert.InDelta(t, 0.48, got[0].CorrelationConfidence, 1e-9)
}

func TestCorrelate_LabelCaseIgnored(t *testing.T) {
	got := Correlate(
		[]model.Article{article("a1", "2024-01-01")},
		[]model.ArticleSentiment{sentiment("a1", " POSITIVE ", 0.8)},
		[]model.PatternSignal{pattern(model.PatternBullishBreakout, model.Bullish, "2024-01-01", 0.6)},
	)
	require.Len(t, got, 1)
	assert.InDelta(t, 0.48, got[0].CorrelationConfidence, 1e-9)
	assert.True(t, strings.HasPrefix(got[0].Summary, "Positive news published"), got[0].Summary)
	assert.Contains(t, got[0].Summary, "agrees with the news tone")
}

func TestCorrelate_SortedStableDescending(t *testing.T) {
	articles := []model.Article{
		article("a1", "2024-01-01"),
		article("a2", "2024-01-01"),
		article("a3", "2024-01-01"),
	}
	sentiments := []model.ArticleSentiment{
		sentiment("a1", model.SentimentPositive, 0.5),
		sentiment("a2", model.SentimentPositive, 0.9),
		sentiment("a3", model.SentimentPositive, 0.5),
	}
	patterns := []model.PatternSignal{
		pattern(model.PatternBullishBreakout, model.Bullish, "2024-01-01", 1),
		pattern(model.PatternStrongUpSwing, model.Bullish, "2024-01-01", 1),
	}
	got := Correlate(articles, sentiments, patterns)
	require.Len(t, got, 6)

	var order []string
	for _, in := range got {
		order = append(order, in.ArticleID+"/"+in.PatternName)
	}
	assert.Equal(t, []string{
		"a2/bullish_breakout", "a2/strong_up_swing",
		"a1/bullish_breakout", "a1/strong_up_swing",
		"a3/bullish_breakout", "a3/strong_up_swing",
	}, order)
}

func TestCorrelate_SkipsUnknownArticlesAndBadDates(t *testing.T) {
	var buf bytes.Buffer
	e, err := NewEngine(DefaultParams(), testLogger(&buf))
	require.NoError(t, err)

	articles := []model.Article{
		article("bad", "Jan 1st"),
		article("good", "2024-01-01T10:00:00"),
	}
	sentiments := []model.ArticleSentiment{
		sentiment("missing", model.SentimentPositive, 1),
		sentiment("bad", model.SentimentPositive, 1),
		sentiment("good", model.SentimentPositive, 1),
	}
	patterns := []model.PatternSignal{
		pattern(model.PatternBullishBreakout, model.Bullish, "2024-01-02", 1),
		pattern(model.PatternStrongUpSwing, model.Bullish, "01/02/2024", 1),
	}
	got := e.Correlate(articles, sentiments, patterns)
	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].ArticleID)
	assert.Equal(t, 1, got[0].LagDays)
	assert.Contains(t, buf.String(), "unparseable publish date")
	assert.Contains(t, buf.String(), "unparseable pattern start date")
}

func TestCorrelate_EmptyInputs(t *testing.T) {
	articles := []model.Article{article("a1", "2024-01-01")}
	sentiments := []model.ArticleSentiment{sentiment("a1", model.SentimentPositive, 1)}
	patterns := []model.PatternSignal{pattern(model.PatternBullishBreakout, model.Bullish, "2024-01-01", 1)}

	assert.Empty(t, Correlate(articles, nil, patterns))
	assert.Empty(t, Correlate(articles, sentiments, nil))
	assert.Empty(t, Correlate(nil, sentiments, patterns))
}
