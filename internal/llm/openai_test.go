package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/ideator/internal/config"
)

const completionResponse = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "mixtral-8x7b-32768",
  "choices": [
    {
      "index": 0,
      "message": {"role": "assistant", "content": "- Build an invoicing assistant"},
      "finish_reason": "stop",
      "logprobs": null
    }
  ],
  "usage": {"prompt_tokens": 40, "completion_tokens": 12, "total_tokens": 52}
}`

type capturedRequest struct {
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   *int64   `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OpenAI {
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	provider, err := NewOpenAI(&config.LLMConfig{
		APIKey:      "gsk_test",
		APIEndpoint: ts.URL + "/openai/v1",
		Model:       "mixtral-8x7b-32768",
		Timeout:     5 * time.Second,
	})
	require.NoError(t, err)
	return provider
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI(&config.LLMConfig{APIEndpoint: "http://localhost"})
	assert.Error(t, err)
}

func TestComplete(t *testing.T) {
	var got capturedRequest
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionResponse))
	})

	resp, err := provider.Complete(context.Background(), "Title: Invoicing is painful")
	require.NoError(t, err)

	assert.Equal(t, "- Build an invoicing assistant", resp.Content)
	assert.Equal(t, "mixtral-8x7b-32768", resp.Model)
	assert.Equal(t, int64(52), resp.Usage.TotalTokens)

	assert.Equal(t, "mixtral-8x7b-32768", got.Model)
	assert.Nil(t, got.Temperature, "temperature should be left to the provider")
	assert.Nil(t, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "Title: Invoicing is painful", got.Messages[0].Content)
}

func TestCompleteWithOptions(t *testing.T) {
	var got capturedRequest
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionResponse))
	})

	_, err := provider.Complete(context.Background(), "prompt",
		WithModel("llama-3.1-8b-instant"),
		WithTemperature(0.5),
		WithMaxTokens(256),
	)
	require.NoError(t, err)

	assert.Equal(t, "llama-3.1-8b-instant", got.Model)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.5, *got.Temperature, 1e-9)
	require.NotNil(t, got.MaxTokens)
	assert.Equal(t, int64(256), *got.MaxTokens)
}

func TestCompleteUpstreamError(t *testing.T) {
	calls := 0
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
	})

	_, err := provider.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Equal(t, 1, calls, "failed completions must not be retried")
}

func TestCompleteNoChoices(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","model":"m","choices":[]}`))
	})

	_, err := provider.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, errNoChoices)
}
