package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/longkey1/llmchat/internal/llmchat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	baseURL string
	token   string
	model   string
	timeout time.Duration
}

func (c testConfig) GetModel() string { return c.model }

func (c testConfig) GetBaseURL() (string, error) {
	if c.baseURL == "" {
		return "", errors.New("no base URL")
	}
	return c.baseURL, nil
}

func (c testConfig) GetToken() (string, error) {
	if c.token == "" {
		return "", errors.New("no token")
	}
	return c.token, nil
}

func (c testConfig) GetTimeout() time.Duration { return c.timeout }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(testConfig{
		baseURL: server.URL,
		token:   "sk-or-test",
		model:   DefaultModel,
		timeout: 5 * time.Second,
	})
}

var conversation = []llmchat.Message{
	{Role: llmchat.RoleSystem, Content: "Answer in Markdown."},
	{Role: llmchat.RoleUser, Content: "hi"},
}

func TestCompleteSendsRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-or-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "https://example.test", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "llmchat", r.Header.Get("X-Title"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req ChatRequest
		require.NoError(t, json.Unmarshal(raw, &req))
		assert.Equal(t, DefaultModel, req.Model)
		assert.Equal(t, conversation, req.Messages)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"**hi**"}}]}`))
	})
	client.WithAttribution("https://example.test", "llmchat")

	reply, err := client.Complete(context.Background(), conversation)
	require.NoError(t, err)
	assert.Equal(t, "**hi**", reply)
}

func TestCompleteStructuredError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"rate limited"}}`))
	})

	_, err := client.Complete(context.Background(), conversation)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "429", apiErr.Code)
	assert.Equal(t, "rate limited", apiErr.DisplayMessage())
	assert.Contains(t, err.Error(), "rate limited")
}

func TestCompleteUnstructuredError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	})

	_, err := client.Complete(context.Background(), conversation)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Empty(t, apiErr.Message)
	assert.Equal(t, "upstream exploded", apiErr.DisplayMessage())
}

func TestCompleteEmptyErrorBodyFallsBackToStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Complete(context.Background(), conversation)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "401 Unauthorized", apiErr.DisplayMessage())
}

func TestCompleteErrorInsideOKResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"code":502,"message":"provider returned error"}}`))
	})

	_, err := client.Complete(context.Background(), conversation)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 502, apiErr.StatusCode)
	assert.Equal(t, "provider returned error", apiErr.DisplayMessage())
}

func TestCompleteMalformedResponse(t *testing.T) {
	bodies := []string{
		`{"id":"x"}`,
		`{"choices":[]}`,
		`{"choices":[{"message":{"role":"assistant"}}]}`,
		`not json`,
	}
	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			_, err := client.Complete(context.Background(), conversation)
			require.ErrorIs(t, err, ErrMalformedResponse)
			assert.Contains(t, err.Error(), body)
		})
	}
}

func TestCompleteTransportErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(200 * time.Millisecond)
	})
	client.WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond})

	_, err := client.Complete(context.Background(), conversation)
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "error sending request")
	assert.LessOrEqual(t, calls.Load(), int32(1))
}

func TestCompleteMissingToken(t *testing.T) {
	client := NewClient(testConfig{baseURL: "http://127.0.0.1:0", model: DefaultModel})
	_, err := client.Complete(context.Background(), conversation)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get token")
}

func TestListModels(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/models", r.URL.Path)
		assert.Empty(t, r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"data":[
			{"id":"openai/gpt-4o","name":"GPT-4o","context_length":128000},
			{"id":"meta-llama/llama-3.3-70b-instruct:free","name":"Llama 3.3 70B (free)","context_length":131072}
		]}`))
	})

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, DefaultModel, models[0].ID)
	assert.True(t, models[0].IsDefault)
	assert.Equal(t, "openai/gpt-4o", models[1].ID)
	assert.False(t, models[1].IsDefault)
	assert.Equal(t, 128000, models[1].ContextSize)
}
