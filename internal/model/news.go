package model

import "strings"

// SentimentLabel is the overall tone of an article toward the stock.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// ParseSentimentLabel normalizes free-form model output into a label.
func ParseSentimentLabel(s string) (SentimentLabel, bool) {
	switch SentimentLabel(strings.ToLower(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive, true
	case SentimentNegative:
		return SentimentNegative, true
	case SentimentNeutral:
		return SentimentNeutral, true
	}
	return SentimentNeutral, false
}

// Direction maps the label to the price direction it implies. Case and
// surrounding space are ignored; unknown labels are neutral.
func (l SentimentLabel) Direction() Direction {
	norm, _ := ParseSentimentLabel(string(l))
	switch norm {
	case SentimentPositive:
		return Bullish
	case SentimentNegative:
		return Bearish
	default:
		return Neutral
	}
}

// Article is a news item about a ticker. PublishedAt must be in one of the
// layouts accepted by calculator.ParseAnyDate or the scorer skips it.
type Article struct {
	ID          string `json:"id"`
	Ticker      string `json:"ticker"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	Source      string `json:"source"`
	Summary     string `json:"summary"`
	FullText    string `json:"full_text"`
}

// ArticleSentiment is the structured sentiment extracted from one article.
type ArticleSentiment struct {
	ArticleID   string         `json:"article_id"`
	Sentiment   SentimentLabel `json:"sentiment"`
	Confidence  float64        `json:"confidence"`
	EventTags   []string       `json:"event_tags"`
	ImpactScore float64        `json:"impact_score"`
	Reasoning   string         `json:"reasoning"`
}
