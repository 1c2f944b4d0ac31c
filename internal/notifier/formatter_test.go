package notifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"NewsSentinel/internal/model"
)

func sampleInput() ReportInput {
	return ReportInput{
		Ticker: "AAPL",
		Start:  "2024-11-20",
		End:    "2024-11-29",
		Articles: []model.Article{
			{ID: "AAPL-0", Title: "Apple beats estimates", Source: "reuters.com", PublishedAt: "2024-11-20T13:00:00Z", URL: "https://x/0"},
			{ID: "AAPL-1", Title: "", Source: "", PublishedAt: "", URL: ""},
		},
		Sentiments: []model.ArticleSentiment{
			{ArticleID: "AAPL-0", Sentiment: model.SentimentPositive, Confidence: 0.9, ImpactScore: 0.8, EventTags: []string{"earnings", "guidance"}, Reasoning: "beat"},
			{ArticleID: "AAPL-1", Sentiment: model.SentimentNegative, Confidence: 0.5, ImpactScore: 0.3, Reasoning: "meh"},
		},
		Patterns: []model.PatternSignal{
			{Name: model.PatternBullishBreakout, Label: "Bullish Breakout", StartDate: "2024-11-20", EndDate: "2024-11-29", Confidence: 0.5, Direction: model.Bullish, Notes: "up"},
		},
		Insights: []model.CorrelatedInsight{
			{ArticleID: "AAPL-0", PatternName: model.PatternBullishBreakout, CorrelationConfidence: 0.4, LagDays: 0, Summary: "agree"},
		},
		Snapshot: &model.PriceSnapshot{Bars: 7, FirstDate: "2024-11-20", LastDate: "2024-11-29", FirstClose: 228, LastClose: 237.33, ChangePct: 4.09, PeriodHigh: 237.81, PeriodLow: 225.5, TotalVolume: 312456789},
	}
}

func TestFormatMarkdownReport(t *testing.T) {
	md := FormatMarkdownReport(sampleInput())

	assert.True(t, strings.HasPrefix(md, "# 📈 Stock Market News-Pattern Intelligence Report: AAPL\n\n**Date range:** 2024-11-20 → 2024-11-29"))
	assert.Contains(t, md, "- **News tone:** mixed/neutral (1 positive / 1 negative / 0 neutral articles).")
	assert.Contains(t, md, "- **Market tone:** price action tilted bullish.")
	assert.Contains(t, md, "- **Strongest link:** Article `AAPL-0` → pattern `bullish_breakout` with correlation score 0.40 after 0 day(s).")
	assert.Contains(t, md, "- **Volume:** 312,456,789 shares traded")
	assert.Contains(t, md, "+4.09%")
	assert.NotContains(t, md, "RSI(14)")
	assert.Contains(t, md, "- **Bullish Breakout** (`bullish_breakout`) from 2024-11-20 to 2024-11-29  \n  Direction: **Bullish**, confidence: 0.50  \n  Notes: up")
	assert.Contains(t, md, "### 📰 Apple beats estimates")
	assert.Contains(t, md, "- **Sentiment:** Positive (confidence: 0.90, impact: 0.80)\n  - Tags: earnings, guidance\n  - Reasoning: beat")
	assert.Contains(t, md, "- Related pattern: `bullish_breakout` (lag: 0 day(s), correlation: 0.40)\n  - agree")

	assert.Contains(t, md, "### 📰 Untitled article")
	assert.Contains(t, md, "- **Source:** Unknown  \n- **Published at:** Unknown")
	assert.Contains(t, md, "  - Tags: None")
	assert.Contains(t, md, "_No strong pattern correlation identified for this article._")
	assert.True(t, strings.HasSuffix(md, "How quickly the stock tends to react to different categories of news."))

	first := strings.Index(md, "Apple beats estimates")
	second := strings.Index(md, "Untitled article")
	assert.Less(t, first, second, "articles keep input order")
}

func TestFormatMarkdownReport_Empty(t *testing.T) {
	md := FormatMarkdownReport(ReportInput{Ticker: "TSLA", Start: "2024-01-01", End: "2024-01-05"})
	assert.Contains(t, md, "There was not enough news or price data to form a meaningful summary for this period.")
	assert.Contains(t, md, "_No price data was retrieved for this period._")
	assert.Contains(t, md, "_No clear technical patterns detected in this date range._")
	assert.Contains(t, md, "_No news articles were retrieved for this period._")
	assert.NotContains(t, md, "Strongest link")
}

func TestDominantTone(t *testing.T) {
	tests := []struct {
		c    toneCounts
		want string
	}{
		{toneCounts{pos: 2, neg: 1, neu: 1}, "overall positive"},
		{toneCounts{pos: 1, neg: 2, neu: 0}, "overall negative"},
		{toneCounts{pos: 2, neg: 0, neu: 2}, "mixed/neutral"},
		{toneCounts{}, "mixed/neutral"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.c.dominant())
	}
}

func TestMarketTone(t *testing.T) {
	assert.Equal(t, "price action tilted bearish", marketTone([]model.PatternSignal{{Direction: model.Bearish}, {Direction: model.Neutral}}))
	assert.Equal(t, "price action remained relatively balanced or sideways",
		marketTone([]model.PatternSignal{{Direction: model.Bearish}, {Direction: model.Bullish}}))
}

func TestFormatTelegramDigest(t *testing.T) {
	in := sampleInput()
	in.Articles[0].Title = "Apple <beats> & more"
	for i := 0; i < 4; i++ {
		in.Insights = append(in.Insights, model.CorrelatedInsight{ArticleID: "AAPL-1", PatternName: "x", CorrelationConfidence: 0.1})
	}
	msg := FormatTelegramDigest(in)

	assert.True(t, strings.HasPrefix(msg, "📈 <b>AAPL</b> | 2024-11-20 → 2024-11-29"))
	assert.Contains(t, msg, "Apple &lt;beats&gt; &amp; more")
	assert.Contains(t, msg, "• Bullish Breakout (0.50)")
	assert.Contains(t, msg, "vol 312,456,789")
	assert.Contains(t, msg, "… and 2 more")
	assert.False(t, strings.HasSuffix(msg, "\n"))

	empty := FormatTelegramDigest(ReportInput{Ticker: "X"})
	assert.Contains(t, empty, "No news/pattern link cleared the noise floor.")
}
