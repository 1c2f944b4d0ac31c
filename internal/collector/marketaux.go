package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"NewsSentinel/internal/calculator"
	"NewsSentinel/internal/model"
)

const marketAuxBaseURL = "https://api.marketaux.com"

// companyKeywords widen the relevance filter beyond the bare ticker.
var companyKeywords = map[string][]string{
	"AAPL":  {"apple"},
	"MSFT":  {"microsoft"},
	"GOOGL": {"google", "alphabet"},
	"GOOG":  {"google", "alphabet"},
	"AMZN":  {"amazon"},
	"META":  {"meta platforms", "facebook"},
	"NVDA":  {"nvidia"},
	"TSLA":  {"tesla"},
	"NFLX":  {"netflix"},
}

// Keywords returns the lower-case terms an article must mention to count as
// being about ticker.
func Keywords(ticker string) []string {
	kws := []string{strings.ToLower(ticker)}
	return append(kws, companyKeywords[strings.ToUpper(ticker)]...)
}

func mentions(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// MarketAuxSource fetches entity-filtered news from MarketAux.
type MarketAuxSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Retry   RetryPolicy
}

// NewMarketAuxSource creates a MarketAux client with optional proxy support.
func NewMarketAuxSource(apiKey, proxyURL string) *MarketAuxSource {
	return &MarketAuxSource{
		BaseURL: marketAuxBaseURL,
		APIKey:  apiKey,
		Client:  NewHTTPClient(proxyURL, 15*time.Second),
		Retry:   DefaultRetryPolicy(),
	}
}

func (s *MarketAuxSource) Name() string { return "marketaux" }

type marketAuxResponse struct {
	Data []struct {
		UUID        string `json:"uuid"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Snippet     string `json:"snippet"`
		URL         string `json:"url"`
		PublishedAt string `json:"published_at"`
		Source      string `json:"source"`
	} `json:"data"`
}

// FetchNews returns articles that mention the ticker or its company name.
func (s *MarketAuxSource) FetchNews(ctx context.Context, ticker string, start, end time.Time, limit int) ([]model.Article, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("marketaux: api key not configured")
	}
	q := url.Values{}
	q.Set("entities", ticker)
	q.Set("filter_entities", "true")
	q.Set("language", "en")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("published_after", start.Format("2006-01-02T15:04"))
	q.Set("published_before", end.AddDate(0, 0, 1).Format("2006-01-02T15:04"))
	q.Set("api_token", s.APIKey)

	body, err := getBody(ctx, s.Client, s.BaseURL+"/v1/news/all?"+q.Encode(), nil, s.Retry)
	if err != nil {
		return nil, fmt.Errorf("marketaux fetch: %w", err)
	}
	var resp marketAuxResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("marketaux decode: %w", err)
	}

	keywords := Keywords(ticker)
	fallbackTime := start.Format(calculator.TimestampLayout)
	articles := make([]model.Article, 0, len(resp.Data))
	for _, n := range resp.Data {
		if !mentions(strings.Join([]string{n.Title, n.Description, n.Snippet}, " "), keywords) {
			continue
		}
		summary := n.Description
		if summary == "" {
			summary = n.Snippet
		}
		published := fallbackTime
		if n.PublishedAt != "" {
			published = calculator.NormalizeTimestamp(n.PublishedAt)
		}
		source := n.Source
		if source == "" {
			source = "Unknown"
		}
		articles = append(articles, model.Article{
			ID:          fmt.Sprintf("%s-%d", ticker, len(articles)),
			Ticker:      ticker,
			Title:       n.Title,
			URL:         n.URL,
			PublishedAt: published,
			Source:      source,
			Summary:     summary,
			FullText:    summary,
		})
	}
	return articles, nil
}
