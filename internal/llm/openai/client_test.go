package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/permit-compliance/internal/llm"
)

func TestReview_SendsRequestAndParsesLines(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "Here are the issues:\n1. [Stairways]: width 0.8m below 0.9m\nnote\n2. [Fire Safety]: no rating given"}
			}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	lines, err := c.Review(context.Background(), llm.ReviewRequest{
		SystemPrompt: "sys",
		UserPrompt:   "DOCUMENT EXCERPT:\nplan",
		Temperature:  0.2,
		MaxTokens:    800,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{
		"1. [Stairways]: width 0.8m below 0.9m",
		"2. [Fire Safety]: no rating given",
	}, lines)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.InDelta(t, 0.2, got["temperature"], 1e-6)
	assert.EqualValues(t, 800, got["max_tokens"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestReview_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "upstream down", "type": "server_error"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := c.Review(context.Background(), llm.ReviewRequest{SystemPrompt: "s", UserPrompt: "u"})

	require.Error(t, err)
}
