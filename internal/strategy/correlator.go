package strategy

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"NewsSentinel/internal/calculator"
	"NewsSentinel/internal/model"
)

// Correlate scores every sentiment against every pattern using the engine's
// MaxLagDays window. All inputs must belong to the same ticker.
func (e *Engine) Correlate(articles []model.Article, sentiments []model.ArticleSentiment, patterns []model.PatternSignal) []model.CorrelatedInsight {
	return e.CorrelateWithin(articles, sentiments, patterns, e.params.MaxLagDays)
}

// CorrelateWithin is Correlate with an explicit lag window in days. Pairs
// whose article is missing or whose dates do not parse are skipped. The
// result is sorted by confidence, highest first; ties keep the
// sentiment-major iteration order.
func (e *Engine) CorrelateWithin(articles []model.Article, sentiments []model.ArticleSentiment, patterns []model.PatternSignal, maxLagDays int) []model.CorrelatedInsight {
	insights := make([]model.CorrelatedInsight, 0)
	if len(sentiments) == 0 || len(patterns) == 0 {
		return insights
	}

	byID := make(map[string]model.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}

	for _, s := range sentiments {
		article, ok := byID[s.ArticleID]
		if !ok {
			e.log.Debug().Str("article_id", s.ArticleID).Msg("no article for sentiment, skipping")
			continue
		}
		newsDate, ok := calculator.ParseAnyDate(article.PublishedAt)
		if !ok {
			e.log.Warn().Str("article_id", article.ID).Str("published_at", article.PublishedAt).
				Msg("unparseable publish date, skipping article")
			continue
		}
		for _, p := range patterns {
			patternDate, ok := calculator.ParseAnyDate(p.StartDate)
			if !ok {
				e.log.Warn().Str("pattern", p.Name).Str("start_date", p.StartDate).
					Msg("unparseable pattern start date, skipping pair")
				continue
			}
			lag := calculator.DaysBetween(newsDate, patternDate)
			if lag < 0 || lag > maxLagDays {
				continue
			}

			factor, read := e.directionFactor(s.Sentiment.Direction(), p.Direction)
			score := s.ImpactScore * p.Confidence * factor * e.lagPenalty(lag)
			score = math.Max(0, math.Min(1, score))
			// NaN compares false both ways, so test for the keep case.
			if !(score > e.params.NoiseFloor) {
				continue
			}

			insights = append(insights, model.CorrelatedInsight{
				ArticleID:             s.ArticleID,
				PatternName:           p.Name,
				CorrelationConfidence: score,
				LagDays:               lag,
				Summary:               summarize(s, newsDate.Format(calculator.DateLayout), p, lag, read),
			})
		}
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].CorrelationConfidence > insights[j].CorrelationConfidence
	})
	return insights
}

// directionFactor returns the multiplier for a news/pattern direction pair
// and a phrase describing the read.
func (e *Engine) directionFactor(news, pattern model.Direction) (float64, string) {
	switch {
	case news == pattern:
		return e.params.DirectionAgree, "price action agrees with the news tone"
	case news == model.Neutral || pattern == model.Neutral:
		return e.params.DirectionNeutral, "the directional read is inconclusive"
	default:
		return e.params.DirectionConflict, "price moved against the news tone"
	}
}

func (e *Engine) lagPenalty(lag int) float64 {
	return math.Max(e.params.LagPenaltyFloor, 1-float64(lag)*e.params.LagDecayPerDay)
}

func summarize(s model.ArticleSentiment, published string, p model.PatternSignal, lag int, read string) string {
	label := p.Label
	if label == "" {
		label = p.Name
	}
	toneLabel, _ := model.ParseSentimentLabel(string(s.Sentiment))
	tone := string(toneLabel)
	return fmt.Sprintf("%s news published %s (impact %.2f) preceded the %s pattern by %d day(s); %s.",
		strings.ToUpper(tone[:1])+tone[1:], published, s.ImpactScore, label, lag, read)
}
