package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"NewsSentinel/internal/calculator"
	"NewsSentinel/internal/model"
)

const googleNewsBaseURL = "https://news.google.com"

// GoogleNewsSource scrapes the Google News RSS search feed.
type GoogleNewsSource struct {
	BaseURL  string
	ProxyURL string
	Timeout  time.Duration
	Locale   string // hl parameter, e.g. en-US
	Region   string // gl parameter, e.g. US
}

// NewGoogleNewsSource creates a US-English Google News scraper.
func NewGoogleNewsSource(proxyURL string) *GoogleNewsSource {
	return &GoogleNewsSource{
		BaseURL:  googleNewsBaseURL,
		ProxyURL: proxyURL,
		Timeout:  15 * time.Second,
		Locale:   "en-US",
		Region:   "US",
	}
}

func (s *GoogleNewsSource) Name() string { return "googlenews" }

func (s *GoogleNewsSource) searchURL(ticker string, start, end time.Time) string {
	query := fmt.Sprintf("%s stock after:%s before:%s", ticker,
		start.Format(calculator.DateLayout), end.AddDate(0, 0, 1).Format(calculator.DateLayout))
	q := url.Values{}
	q.Set("q", query)
	q.Set("hl", s.Locale)
	q.Set("gl", s.Region)
	q.Set("ceid", s.Region+":"+strings.SplitN(s.Locale, "-", 2)[0])
	return s.BaseURL + "/rss/search?" + q.Encode()
}

// FetchNews returns feed items dated within [start, end], up to limit.
func (s *GoogleNewsSource) FetchNews(ctx context.Context, ticker string, start, end time.Time, limit int) ([]model.Article, error) {
	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.Async(false),
		colly.UserAgent(userAgent),
	)
	c.SetRequestTimeout(s.Timeout)
	if s.ProxyURL != "" {
		if err := c.SetProxy(s.ProxyURL); err != nil {
			return nil, fmt.Errorf("googlenews proxy: %w", err)
		}
	}

	from := start.Format(calculator.DateLayout)
	to := end.Format(calculator.DateLayout)
	var articles []model.Article

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	c.OnXML("//item", func(e *colly.XMLElement) {
		if limit > 0 && len(articles) >= limit {
			return
		}
		title := strings.TrimSpace(e.ChildText("title"))
		link := strings.TrimSpace(e.ChildText("link"))
		if title == "" || link == "" {
			return
		}
		published := calculator.NormalizeTimestamp(e.ChildText("pubDate"))
		day, ok := calculator.ParseAnyDate(published)
		if !ok {
			return
		}
		if d := day.Format(calculator.DateLayout); d < from || d > to {
			return
		}
		source := strings.TrimSpace(e.ChildText("source"))
		if source == "" {
			source = "Google News"
		}
		summary := StripHTML(e.ChildText("description"))
		articles = append(articles, model.Article{
			ID:          fmt.Sprintf("%s-gn-%d", ticker, len(articles)),
			Ticker:      ticker,
			Title:       title,
			URL:         link,
			PublishedAt: published,
			Source:      source,
			Summary:     summary,
			FullText:    summary,
		})
	})

	var scrapeErr error
	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = fmt.Errorf("googlenews: status %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(s.searchURL(ticker, start, end)); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("googlenews visit: %w", err)
	}
	c.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if scrapeErr != nil {
		return nil, scrapeErr
	}
	return articles, nil
}

// StripHTML returns the visible text of an HTML fragment with whitespace
// collapsed.
func StripHTML(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
