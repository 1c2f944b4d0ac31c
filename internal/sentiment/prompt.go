package sentiment

import (
	"fmt"
	"strings"

	"NewsSentinel/internal/model"
)

const systemPrompt = `You are an expert financial news analyst.
Your job is to read news articles about a specific stock
and extract structured information that explains how this news
is likely to influence the stock's price.

Be especially careful to:
- Focus ONLY on information relevant to the stock's performance.
- Distinguish between truly impactful events and minor noise.
- Consider both short-term and medium-term price impact.

Respond ONLY with a JSON object, no prose. The JSON must have keys:
sentiment ("positive"|"neutral"|"negative"), confidence (0-1),
event_tags (list of short strings), impact_score (0-1), reasoning (short string).`

const userPromptTemplate = `Analyze the following news article about stock "%s".

Return a JSON object with:
  - sentiment: "positive", "neutral", or "negative"
  - confidence: a number between 0 and 1
  - event_tags: list of short tags like ["earnings", "acquisition", "lawsuit"]
  - impact_score: number between 0 and 1 representing how strongly this news is likely to affect the stock's price
  - reasoning: a short explanation in plain English

Article metadata:
  - Title: %s
  - Source: %s
  - Published at: %s
  - URL: %s

Article text:
---
%s
---`

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// UserPrompt fills the per-article prompt. Full text falls back to the
// summary.
func UserPrompt(a model.Article) string {
	text := a.FullText
	if strings.TrimSpace(text) == "" {
		text = a.Summary
	}
	return fmt.Sprintf(userPromptTemplate,
		a.Ticker,
		orDefault(a.Title, "N/A"),
		orDefault(a.Source, "Unknown"),
		orDefault(a.PublishedAt, "Unknown"),
		a.URL,
		text,
	)
}
