package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/dustin/go-humanize"

	"NewsSentinel/internal/model"
)

// ReportInput is everything a report renders.
type ReportInput struct {
	Ticker     string
	Start      string
	End        string
	Articles   []model.Article
	Sentiments []model.ArticleSentiment
	Patterns   []model.PatternSignal
	Insights   []model.CorrelatedInsight
	Snapshot   *model.PriceSnapshot
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func orUnknown(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// toneCounts counts sentiments by label.
type toneCounts struct{ pos, neg, neu int }

func countTones(sentiments []model.ArticleSentiment) toneCounts {
	var c toneCounts
	for _, s := range sentiments {
		switch s.Sentiment {
		case model.SentimentPositive:
			c.pos++
		case model.SentimentNegative:
			c.neg++
		case model.SentimentNeutral:
			c.neu++
		}
	}
	return c
}

// dominant is the label that strictly outnumbers both others.
func (c toneCounts) dominant() string {
	switch {
	case c.pos > c.neg && c.pos > c.neu:
		return "overall positive"
	case c.neg > c.pos && c.neg > c.neu:
		return "overall negative"
	}
	return "mixed/neutral"
}

func marketTone(patterns []model.PatternSignal) string {
	var bull, bear int
	for _, p := range patterns {
		switch p.Direction {
		case model.Bullish:
			bull++
		case model.Bearish:
			bear++
		}
	}
	switch {
	case bull > bear:
		return "price action tilted bullish"
	case bear > bull:
		return "price action tilted bearish"
	}
	return "price action remained relatively balanced or sideways"
}

func formatSummary(in ReportInput) string {
	if len(in.Sentiments) == 0 && len(in.Patterns) == 0 {
		return "There was not enough news or price data to form a meaningful summary for this period."
	}
	c := countTones(in.Sentiments)
	lines := []string{
		fmt.Sprintf("- **News tone:** %s (%d positive / %d negative / %d neutral articles).", c.dominant(), c.pos, c.neg, c.neu),
		fmt.Sprintf("- **Market tone:** %s.", marketTone(in.Patterns)),
	}
	if len(in.Insights) > 0 {
		top := in.Insights[0]
		lines = append(lines, fmt.Sprintf("- **Strongest link:** Article `%s` → pattern `%s` with correlation score %.2f after %d day(s).",
			top.ArticleID, top.PatternName, top.CorrelationConfidence, top.LagDays))
	}
	return strings.Join(lines, "\n")
}

func formatSnapshot(snap *model.PriceSnapshot) string {
	if snap == nil || snap.Bars == 0 {
		return "_No price data was retrieved for this period._"
	}
	lines := []string{
		fmt.Sprintf("- **Close:** %.2f (%s) → %.2f (%s), %+.2f%%", snap.FirstClose, snap.FirstDate, snap.LastClose, snap.LastDate, snap.ChangePct),
		fmt.Sprintf("- **Range:** %.2f – %.2f over %d trading day(s), last close at %.0f%% of range", snap.PeriodLow, snap.PeriodHigh, snap.Bars, snap.RangePos*100),
		fmt.Sprintf("- **Volume:** %s shares traded", humanize.Comma(snap.TotalVolume)),
	}
	if snap.SMA20 > 0 {
		lines = append(lines, fmt.Sprintf("- **SMA(20):** %.2f", snap.SMA20))
	}
	if snap.HasRSI {
		lines = append(lines, fmt.Sprintf("- **RSI(14):** %.1f", snap.RSI14))
	}
	return strings.Join(lines, "\n")
}

func formatPatterns(patterns []model.PatternSignal) string {
	if len(patterns) == 0 {
		return "_No clear technical patterns detected in this date range._"
	}
	lines := make([]string, 0, len(patterns))
	for _, p := range patterns {
		lines = append(lines, fmt.Sprintf("- **%s** (`%s`) from %s to %s  \n  Direction: **%s**, confidence: %.2f  \n  Notes: %s",
			p.Label, p.Name, p.StartDate, p.EndDate, titleCase(string(p.Direction)), p.Confidence, p.Notes))
	}
	return strings.Join(lines, "\n")
}

func formatArticle(a model.Article, sentiments []model.ArticleSentiment, insights []model.CorrelatedInsight) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "### 📰 %s\n\n", orUnknown(a.Title, "Untitled article"))
	fmt.Fprintf(&sb, "- **Source:** %s  \n", orUnknown(a.Source, "Unknown"))
	fmt.Fprintf(&sb, "- **Published at:** %s  \n", orUnknown(a.PublishedAt, "Unknown"))
	fmt.Fprintf(&sb, "- **URL:** %s\n\n", a.URL)

	sb.WriteString("**Sentiment & Event Analysis**\n\n")
	if len(sentiments) == 0 {
		sb.WriteString("_No sentiment analysis available for this article._")
	}
	for i, s := range sentiments {
		if i > 0 {
			sb.WriteString("\n")
		}
		tags := "None"
		if len(s.EventTags) > 0 {
			tags = strings.Join(s.EventTags, ", ")
		}
		fmt.Fprintf(&sb, "- **Sentiment:** %s (confidence: %.2f, impact: %.2f)\n  - Tags: %s\n  - Reasoning: %s",
			titleCase(string(s.Sentiment)), s.Confidence, s.ImpactScore, tags, s.Reasoning)
	}

	sb.WriteString("\n\n**Linked Market Reactions**\n\n")
	if len(insights) == 0 {
		sb.WriteString("_No strong pattern correlation identified for this article._")
	}
	for i, c := range insights {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "- Related pattern: `%s` (lag: %d day(s), correlation: %.2f)\n  - %s",
			c.PatternName, c.LagDays, c.CorrelationConfidence, c.Summary)
	}
	return sb.String()
}

const takeaways = `This report does not provide financial advice, but highlights how news and technical patterns interacted over the selected period. Traders may consider:
- Whether strong negative or positive events consistently precede large moves.
- Which types of news (earnings, regulation, macro) seem most impactful.
- How quickly the stock tends to react to different categories of news.`

// FormatMarkdownReport renders the full markdown report. Articles appear in
// input order; a repeated id keeps its first position.
func FormatMarkdownReport(in ReportInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 📈 Stock Market News-Pattern Intelligence Report: %s\n\n", orUnknown(in.Ticker, "UNKNOWN"))
	fmt.Fprintf(&b, "**Date range:** %s → %s\n\n", orUnknown(in.Start, "UNKNOWN"), orUnknown(in.End, "UNKNOWN"))

	b.WriteString("## 🔍 High-Level Summary\n\n")
	b.WriteString(formatSummary(in))
	b.WriteString("\n\n## 💹 Price Snapshot\n\n")
	b.WriteString(formatSnapshot(in.Snapshot))
	b.WriteString("\n\n## 📊 Detected Technical Patterns\n\n")
	b.WriteString(formatPatterns(in.Patterns))
	b.WriteString("\n\n## 📰 News Events & Their Market Impact\n\n")

	if len(in.Articles) == 0 {
		b.WriteString("_No news articles were retrieved for this period._")
	} else {
		sentimentsBy := map[string][]model.ArticleSentiment{}
		for _, s := range in.Sentiments {
			sentimentsBy[s.ArticleID] = append(sentimentsBy[s.ArticleID], s)
		}
		insightsBy := map[string][]model.CorrelatedInsight{}
		for _, c := range in.Insights {
			insightsBy[c.ArticleID] = append(insightsBy[c.ArticleID], c)
		}

		var order []string
		byID := map[string]model.Article{}
		for _, a := range in.Articles {
			if _, seen := byID[a.ID]; !seen {
				order = append(order, a.ID)
			}
			byID[a.ID] = a
		}
		blocks := make([]string, 0, len(order))
		for _, id := range order {
			blocks = append(blocks, formatArticle(byID[id], sentimentsBy[id], insightsBy[id]))
		}
		b.WriteString(strings.Join(blocks, "\n\n"))
	}

	b.WriteString("\n\n## 🎯 Trader Takeaways (Qualitative)\n\n")
	b.WriteString(takeaways)
	return b.String()
}

// FormatTelegramDigest renders a short HTML summary for chat delivery.
func FormatTelegramDigest(in ReportInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 <b>%s</b> | %s → %s\n\n", html.EscapeString(in.Ticker), in.Start, in.End)

	c := countTones(in.Sentiments)
	fmt.Fprintf(&b, "News: %s (%d+ / %d- / %d=)\n", c.dominant(), c.pos, c.neg, c.neu)
	fmt.Fprintf(&b, "Market: %s\n", marketTone(in.Patterns))
	if in.Snapshot != nil && in.Snapshot.Bars > 0 {
		fmt.Fprintf(&b, "Close: %.2f (%+.2f%%), vol %s\n", in.Snapshot.LastClose, in.Snapshot.ChangePct, humanize.Comma(in.Snapshot.TotalVolume))
	}

	if len(in.Patterns) > 0 {
		b.WriteString("\n📊 <b>Patterns</b>\n")
		for _, p := range in.Patterns {
			fmt.Fprintf(&b, "• %s (%.2f)\n", html.EscapeString(p.Label), p.Confidence)
		}
	}

	titles := map[string]string{}
	for _, a := range in.Articles {
		titles[a.ID] = a.Title
	}
	if len(in.Insights) > 0 {
		b.WriteString("\n🔗 <b>Top links</b>\n")
		for i, c := range in.Insights {
			if i == 3 {
				fmt.Fprintf(&b, "… and %d more\n", len(in.Insights)-3)
				break
			}
			fmt.Fprintf(&b, "• %s → <code>%s</code> %.2f, lag %dd\n",
				html.EscapeString(orUnknown(titles[c.ArticleID], c.ArticleID)), c.PatternName, c.CorrelationConfidence, c.LagDays)
		}
	} else {
		b.WriteString("\nNo news/pattern link cleared the noise floor.\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
