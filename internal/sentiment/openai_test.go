package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsSentinel/internal/model"
)

func chatServer(t *testing.T, calls *int32, reply func(req map[string]any) (int, string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		status, content := reply(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			fmt.Fprint(w, `{"error":{"message":"upstream exploded","type":"server_error"}}`)
			return
		}
		body, _ := json.Marshal(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   req["model"],
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
		w.Write(body)
	}))
}

func testArticle() model.Article {
	return model.Article{
		ID:          "AAPL-0",
		Ticker:      "AAPL",
		Title:       "Apple beats estimates",
		URL:         "https://x/1",
		PublishedAt: "2024-11-21T13:05:00Z",
		Source:      "reuters.com",
		Summary:     "Strong iPhone sales",
	}
}

func TestOpenAIExtractor_Analyze(t *testing.T) {
	srv := chatServer(t, nil, func(req map[string]any) (int, string) {
		assert.Equal(t, "gpt-test", req["model"])
		msgs, _ := req["messages"].([]any)
		if assert.Len(t, msgs, 2) {
			user, _ := msgs[1].(map[string]any)["content"].(string)
			assert.Contains(t, user, `stock "AAPL"`)
			assert.Contains(t, user, "Strong iPhone sales", "summary stands in for empty full text")
		}
		return http.StatusOK, "```json\n{\"sentiment\":\"Positive\",\"confidence\":0.9,\"event_tags\":[\"earnings\"],\"impact_score\":1.7,\"reasoning\":\" beat \"}\n```"
	})
	defer srv.Close()

	ex := NewOpenAIExtractor(NewOpenAIClient("k", srv.URL+"/v1", ""), "gpt-test", 0.2, zerolog.Nop())
	assert.Equal(t, "openai:gpt-test", ex.Name())

	got, err := ex.Analyze(context.Background(), testArticle())
	require.NoError(t, err)
	assert.Equal(t, model.ArticleSentiment{
		ArticleID:   "AAPL-0",
		Sentiment:   model.SentimentPositive,
		Confidence:  0.9,
		EventTags:   []string{"earnings"},
		ImpactScore: 1,
		Reasoning:   "beat",
	}, got)
}

func TestOpenAIExtractor_FallsBack(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		content string
	}{
		{name: "server error", status: http.StatusInternalServerError},
		{name: "not json", status: http.StatusOK, content: "I think it is bullish"},
		{name: "bad label", status: http.StatusOK, content: `{"sentiment":"mixed","confidence":0.5,"impact_score":0.5}`},
		{name: "empty", status: http.StatusOK, content: "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := chatServer(t, nil, func(map[string]any) (int, string) { return tt.status, tt.content })
			defer srv.Close()

			ex := NewOpenAIExtractor(NewOpenAIClient("k", srv.URL+"/v1", ""), "", 0, zerolog.Nop())
			got, err := ex.Analyze(context.Background(), testArticle())
			require.NoError(t, err)
			assert.Equal(t, Fallback("AAPL-0"), got)
			assert.True(t, IsFallback(got))
		})
	}
}

func TestParseResponse_Coercion(t *testing.T) {
	s, err := ParseResponse(`{"sentiment":" negative ","confidence":"0.4","event_tags":"lawsuit, recall","impact_score":-2,"reasoning":"r"}`)
	require.NoError(t, err)
	assert.Equal(t, model.SentimentNegative, s.Sentiment)
	assert.Equal(t, 0.4, s.Confidence)
	assert.Equal(t, []string{"lawsuit", "recall"}, s.EventTags)
	assert.Equal(t, 0.0, s.ImpactScore)

	s, err = ParseResponse(`{"sentiment":"neutral","confidence":null,"event_tags":[1,"macro",""]}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Confidence)
	assert.Equal(t, []string{"macro"}, s.EventTags)
}

func TestUserPrompt_Defaults(t *testing.T) {
	p := UserPrompt(model.Article{Ticker: "TSLA", FullText: "body"})
	assert.Contains(t, p, "Title: N/A")
	assert.Contains(t, p, "Source: Unknown")
	assert.Contains(t, p, "Published at: Unknown")
	assert.Contains(t, p, "---\nbody\n---")
}
