package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"

	"NewsSentinel/internal/model"
	"NewsSentinel/internal/tracing"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4.1-mini"

// NewOpenAIClient builds the process-wide client. baseURL and proxyURL are
// optional.
func NewOpenAIClient(apiKey, baseURL, proxyURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second, Transport: transport}
	return openai.NewClientWithConfig(cfg)
}

// OpenAIExtractor asks a chat model for a JSON sentiment record.
type OpenAIExtractor struct {
	client      *openai.Client
	model       string
	temperature float32
	log         zerolog.Logger
}

// NewOpenAIExtractor wraps an existing client.
func NewOpenAIExtractor(client *openai.Client, model string, temperature float32, logger zerolog.Logger) *OpenAIExtractor {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIExtractor{
		client:      client,
		model:       model,
		temperature: temperature,
		log:         logger.With().Str("component", "sentiment").Logger(),
	}
}

func (e *OpenAIExtractor) Name() string { return "openai:" + e.model }

// Analyze returns the model's sentiment for a, or the neutral fallback when
// the call or the response is unusable. The only error is ctx's.
func (e *OpenAIExtractor) Analyze(ctx context.Context, a model.Article) (model.ArticleSentiment, error) {
	ctx, span := tracing.StartSpan(ctx, "sentiment.openai",
		attribute.String("article_id", a.ID), attribute.String("model", e.model))
	defer span.End()

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: UserPrompt(a)},
		},
		Temperature:    e.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		if ctx.Err() != nil {
			return model.ArticleSentiment{}, ctx.Err()
		}
		e.log.Error().Err(err).Str("article_id", a.ID).Str("title", a.Title).Msg("sentiment request failed")
		return Fallback(a.ID), nil
	}
	if len(resp.Choices) == 0 {
		e.log.Error().Str("article_id", a.ID).Msg("sentiment response had no choices")
		return Fallback(a.ID), nil
	}

	s, err := ParseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		e.log.Error().Err(err).Str("article_id", a.ID).Str("title", a.Title).Msg("sentiment response unusable")
		return Fallback(a.ID), nil
	}
	s.ArticleID = a.ID
	return s, nil
}

type rawSentiment struct {
	Sentiment   string `json:"sentiment"`
	Confidence  any    `json:"confidence"`
	EventTags   any    `json:"event_tags"`
	ImpactScore any    `json:"impact_score"`
	Reasoning   string `json:"reasoning"`
}

// ParseResponse decodes a model reply. Code fences are stripped, numeric
// fields are clamped to [0,1] and the label must be one of the three tones.
func ParseResponse(content string) (model.ArticleSentiment, error) {
	content = stripFences(content)
	if content == "" {
		return model.ArticleSentiment{}, errors.New("empty response")
	}
	var raw rawSentiment
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return model.ArticleSentiment{}, fmt.Errorf("decode sentiment: %w", err)
	}
	label, ok := model.ParseSentimentLabel(raw.Sentiment)
	if !ok {
		return model.ArticleSentiment{}, fmt.Errorf("unknown sentiment %q", raw.Sentiment)
	}
	return model.ArticleSentiment{
		Sentiment:   label,
		Confidence:  clampUnit(raw.Confidence),
		EventTags:   tags(raw.EventTags),
		ImpactScore: clampUnit(raw.ImpactScore),
		Reasoning:   strings.TrimSpace(raw.Reasoning),
	}, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.ReplaceAll(s, "```json", "")
		s = strings.ReplaceAll(s, "```", "")
	}
	return strings.TrimSpace(s)
}

// clampUnit coerces a JSON number or numeric string into [0,1]; anything
// else is 0.
func clampUnit(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func tags(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
